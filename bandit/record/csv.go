package record

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit/trace"
)

var csvHeader = []string{"epoch", "arm", "arm_name", "reward", "timestamp", "fallback", "metrics"}

// CSVWriter writes decision epochs to a delimited table, one row per epoch.
// Metrics are stored in a single column as name=value pairs sorted by name
// and separated by ';'.
type CSVWriter struct {
	path   string
	file   *os.File
	w      *csv.Writer
	next   int64
	closed bool

	epochs     []trace.DecisionEpoch
	bufferSize int
}

// NewCSVWriter creates the CSV file at path. An empty path picks a unique
// name in the working directory. An existing file is never overwritten.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if path == "" {
		path = "mab_decisions_" + xid.New().String() + ".csv"
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("file %s already exists", path)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating decision log: %w", err)
	}
	t := &CSVWriter{
		path:       path,
		file:       file,
		w:          csv.NewWriter(file),
		bufferSize: 1000,
	}
	if err := t.w.Write(csvHeader); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("writing decision log header: %w", err)
	}

	atexit.Register(func() { _ = t.Close() })

	return t, nil
}

// Path returns the file the writer appends to.
func (t *CSVWriter) Path() string {
	return t.path
}

// Write buffers one epoch. Epochs must arrive in index order starting at 0.
func (t *CSVWriter) Write(e trace.DecisionEpoch) error {
	if t.closed {
		return fmt.Errorf("decision log %s is closed", t.path)
	}
	if e.Index != t.next {
		return fmt.Errorf("decision log %s: epoch %d out of order, want %d", t.path, e.Index, t.next)
	}
	t.next++
	t.epochs = append(t.epochs, e)
	if len(t.epochs) >= t.bufferSize {
		return t.Flush()
	}
	return nil
}

// Flush writes the buffered epochs to the file.
func (t *CSVWriter) Flush() error {
	if t.closed {
		return nil
	}
	for _, e := range t.epochs {
		row := []string{
			strconv.FormatInt(e.Index, 10),
			strconv.Itoa(e.ArmID),
			e.ArmName,
			strconv.FormatFloat(e.Reward, 'g', -1, 64),
			strconv.FormatUint(e.Timestamp, 10),
			strconv.FormatBool(e.Fallback),
			encodeMetrics(e.Metrics),
		}
		if err := t.w.Write(row); err != nil {
			return fmt.Errorf("writing epoch %d: %w", e.Index, err)
		}
	}
	t.epochs = nil
	t.w.Flush()
	return t.w.Error()
}

// Close flushes and closes the file. Closing twice is a no-op.
func (t *CSVWriter) Close() error {
	if t.closed {
		return nil
	}
	flushErr := t.Flush()
	t.closed = true
	if err := t.file.Close(); err != nil {
		return err
	}
	return flushErr
}

// ReadCSV loads a decision log written by CSVWriter.
func ReadCSV(path string) ([]trace.DecisionEpoch, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening decision log: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing decision log: %w", err)
	}
	if len(rows) == 0 || strings.Join(rows[0], ",") != strings.Join(csvHeader, ",") {
		return nil, fmt.Errorf("decision log %s: missing or unexpected header", path)
	}

	epochs := make([]trace.DecisionEpoch, 0, len(rows)-1)
	for i, row := range rows[1:] {
		e, err := decodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("decision log %s row %d: %w", path, i+1, err)
		}
		if e.Index != int64(i) {
			return nil, fmt.Errorf("decision log %s row %d: epoch %d out of order", path, i+1, e.Index)
		}
		epochs = append(epochs, e)
	}
	return epochs, nil
}

func decodeRow(row []string) (trace.DecisionEpoch, error) {
	var e trace.DecisionEpoch
	if len(row) != len(csvHeader) {
		return e, fmt.Errorf("want %d columns, got %d", len(csvHeader), len(row))
	}
	var err error
	if e.Index, err = strconv.ParseInt(row[0], 10, 64); err != nil {
		return e, err
	}
	if e.ArmID, err = strconv.Atoi(row[1]); err != nil {
		return e, err
	}
	e.ArmName = row[2]
	if e.Reward, err = strconv.ParseFloat(row[3], 64); err != nil {
		return e, err
	}
	if e.Timestamp, err = strconv.ParseUint(row[4], 10, 64); err != nil {
		return e, err
	}
	if e.Fallback, err = strconv.ParseBool(row[5]); err != nil {
		return e, err
	}
	e.Metrics, err = decodeMetrics(row[6])
	return e, err
}

func encodeMetrics(m map[string]float64) string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + strconv.FormatFloat(m[name], 'g', -1, 64)
	}
	return strings.Join(parts, ";")
}

func decodeMetrics(s string) (map[string]float64, error) {
	m := make(map[string]float64)
	if s == "" {
		return m, nil
	}
	for _, part := range strings.Split(s, ";") {
		name, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("malformed metric %q", part)
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("metric %q: %w", name, err)
		}
		m[name] = v
	}
	return m, nil
}
