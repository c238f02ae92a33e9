package record

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/fatih/structs"
	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit/trace"
)

const (
	epochTable  = "decision_epoch"
	metricTable = "epoch_metric"
)

type epochRow struct {
	Epoch     int64
	ArmID     int
	ArmName   string
	Reward    float64
	Timestamp int64
	Fallback  bool
}

type metricRow struct {
	Epoch int64
	Name  string
	Value float64
}

// SQLiteWriter stores decision epochs in a SQLite database with two tables:
// decision_epoch (one row per epoch) and epoch_metric (one row per metric of
// each epoch). Rows are inserted in batches, one transaction per batch.
type SQLiteWriter struct {
	*sql.DB

	path   string
	next   int64
	closed bool

	epochs    []trace.DecisionEpoch
	batchSize int
}

// NewSQLiteWriter creates the database at path. An empty path picks a unique
// name in the working directory. An existing file is never overwritten.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	if path == "" {
		path = "mab_decisions_" + xid.New().String() + ".sqlite3"
	}
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("file %s already exists", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening decision database: %w", err)
	}
	w := &SQLiteWriter{
		DB:        db,
		path:      path,
		batchSize: 10000,
	}
	if err := w.createTable(epochTable, epochRow{}); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := w.createTable(metricTable, metricRow{}); err != nil {
		_ = db.Close()
		return nil, err
	}

	atexit.Register(func() { _ = w.Close() })

	return w, nil
}

// Path returns the database file.
func (w *SQLiteWriter) Path() string {
	return w.path
}

func (w *SQLiteWriter) createTable(name string, sample any) error {
	fields := strings.Join(structs.Names(sample), ", \n\t")
	_, err := w.Exec(`CREATE TABLE ` + name + ` (` + "\n\t" + fields + "\n" + `);`)
	if err != nil {
		return fmt.Errorf("creating table %s: %w", name, err)
	}
	return nil
}

func insertStatement(table string, sample any) string {
	n := structs.Names(sample)
	for i := range n {
		n[i] = "?"
	}
	return "INSERT INTO " + table + " VALUES (" + strings.Join(n, ", ") + ")"
}

// Write buffers one epoch. Epochs must arrive in index order starting at 0.
func (w *SQLiteWriter) Write(e trace.DecisionEpoch) error {
	if w.closed {
		return fmt.Errorf("decision database %s is closed", w.path)
	}
	if e.Index != w.next {
		return fmt.Errorf("decision database %s: epoch %d out of order, want %d", w.path, e.Index, w.next)
	}
	if e.Timestamp > math.MaxInt64 {
		return fmt.Errorf("epoch %d: timestamp %d does not fit a SQLite integer", e.Index, e.Timestamp)
	}
	w.next++
	w.epochs = append(w.epochs, e)
	if len(w.epochs) >= w.batchSize {
		return w.Flush()
	}
	return nil
}

// Flush inserts the buffered epochs in a single transaction.
func (w *SQLiteWriter) Flush() error {
	if w.closed || len(w.epochs) == 0 {
		return nil
	}

	tx, err := w.Begin()
	if err != nil {
		return err
	}
	epochStmt, err := tx.Prepare(insertStatement(epochTable, epochRow{}))
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer epochStmt.Close()
	metricStmt, err := tx.Prepare(insertStatement(metricTable, metricRow{}))
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer metricStmt.Close()

	for _, e := range w.epochs {
		row := epochRow{
			Epoch:     e.Index,
			ArmID:     e.ArmID,
			ArmName:   e.ArmName,
			Reward:    e.Reward,
			Timestamp: int64(e.Timestamp),
			Fallback:  e.Fallback,
		}
		if _, err := epochStmt.Exec(structs.Values(row)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("inserting epoch %d: %w", e.Index, err)
		}

		names := make([]string, 0, len(e.Metrics))
		for name := range e.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			m := metricRow{Epoch: e.Index, Name: name, Value: e.Metrics[name]}
			if _, err := metricStmt.Exec(structs.Values(m)...); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("inserting metric %s of epoch %d: %w", name, e.Index, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	w.epochs = nil
	return nil
}

// Close flushes and closes the database. Closing twice is a no-op.
func (w *SQLiteWriter) Close() error {
	if w.closed {
		return nil
	}
	flushErr := w.Flush()
	w.closed = true
	if err := w.DB.Close(); err != nil {
		return err
	}
	return flushErr
}
