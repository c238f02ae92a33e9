package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit/adapter/champsim"
	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit/controller"
	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit/record"
)

// Decision log formats.
const (
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// closingRecorder is a controller.Recorder that must be closed after the run.
type closingRecorder interface {
	controller.Recorder
	Close() error
}

func openRecorder(path, format string) (closingRecorder, error) {
	switch format {
	case FormatCSV:
		return record.NewCSVWriter(path)
	case FormatSQLite:
		return record.NewSQLiteWriter(path)
	default:
		return nil, fmt.Errorf("unknown decision log format %q (want %s or %s)", format, FormatCSV, FormatSQLite)
	}
}

// recorderFactory returns a RecorderFactory that opens one log per run and
// remembers it so the caller can close every log after the runs end.
func recorderFactory(pathFor func(runID string) string, format string, opened *[]closingRecorder) controller.RecorderFactory {
	return func(runID string) (controller.Recorder, error) {
		rec, err := openRecorder(pathFor(runID), format)
		if err != nil {
			return nil, err
		}
		*opened = append(*opened, rec)
		return rec, nil
	}
}

func closeAll(recs []closingRecorder) error {
	var first error
	for _, r := range recs {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// executeRun performs the single run of rf. logPath empty disables persistence.
func executeRun(ctx context.Context, rf *RunFile, logPath, format string) (*controller.Result, error) {
	factory, err := rf.AdapterFactory()
	if err != nil {
		return nil, err
	}
	spec := rf.BaseSpec(factory)

	var opened []closingRecorder
	if logPath != "" {
		spec.NewRecorder = recorderFactory(func(string) string { return logPath }, format, &opened)
	}

	c, err := controller.Prepare(spec)
	if err != nil {
		return nil, err
	}
	res, runErr := c.Run(ctx, spec.Epochs)
	if err := closeAll(opened); err != nil && runErr == nil {
		runErr = fmt.Errorf("closing decision log: %w", err)
	}
	return res, runErr
}

// executeSweep runs every sweep entry of rf. dir empty disables persistence;
// otherwise each run writes <dir>/<name>.<ext>.
func executeSweep(ctx context.Context, rf *RunFile, parallel int, dir, format string) ([]controller.SweepResult, error) {
	factory, err := rf.AdapterFactory()
	if err != nil {
		return nil, err
	}
	specs := rf.RunSpecs(factory)

	ext := map[string]string{FormatCSV: ".csv", FormatSQLite: ".sqlite3"}[format]
	if dir != "" && ext == "" {
		return nil, fmt.Errorf("unknown decision log format %q (want %s or %s)", format, FormatCSV, FormatSQLite)
	}

	// One slice per run: factories run concurrently.
	opened := make([][]closingRecorder, len(specs))
	if dir != "" {
		for i := range specs {
			path := filepath.Join(dir, specs[i].Name+ext)
			specs[i].NewRecorder = recorderFactory(func(string) string { return path }, format, &opened[i])
		}
	}

	results := controller.Sweep(ctx, specs, parallel)
	for i := range opened {
		if err := closeAll(opened[i]); err != nil && results[i].Err == nil {
			results[i].Err = fmt.Errorf("closing decision log: %w", err)
		}
	}
	return results, nil
}

type runReport struct {
	RunID          string      `json:"run_id"`
	Strategy       string      `json:"strategy"`
	Epochs         int         `json:"epochs"`
	MeanReward     float64     `json:"mean_reward"`
	Switches       int         `json:"switches"`
	FallbackEpochs int         `json:"fallback_epochs"`
	Warnings       int         `json:"warnings"`
	ArmEpochs      map[int]int `json:"arm_epochs"`
}

func report(res *controller.Result) runReport {
	return runReport{
		RunID:          res.RunID,
		Strategy:       string(res.Strategy),
		Epochs:         res.Summary.TotalEpochs,
		MeanReward:     res.Summary.MeanReward,
		Switches:       res.Summary.Switches,
		FallbackEpochs: res.Summary.FallbackEpochs,
		Warnings:       len(res.Warnings),
		ArmEpochs:      res.Summary.ArmDistribution,
	}
}

// printResult writes the run summary as JSON.
func printResult(w io.Writer, res *controller.Result) {
	data, err := json.MarshalIndent(report(res), "", "  ")
	if err != nil {
		logrus.Errorf("encoding run summary: %v", err)
		return
	}
	fmt.Fprintln(w, "=== Run Summary ===")
	fmt.Fprintln(w, string(data))
}

// printSweep writes one line per run, best mean reward first.
func printSweep(w io.Writer, results []controller.SweepResult) {
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	mean := func(i int) float64 {
		if results[i].Result == nil {
			return 0
		}
		return results[i].Result.Summary.MeanReward
	}
	sort.SliceStable(order, func(a, b int) bool { return mean(order[a]) > mean(order[b]) })

	fmt.Fprintln(w, "=== Sweep Summary ===")
	fmt.Fprintf(w, "%-20s %-15s %8s %12s %9s %9s  %s\n", "name", "strategy", "epochs", "mean_reward", "switches", "warnings", "error")
	for _, i := range order {
		r := results[i]
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		if r.Result == nil {
			fmt.Fprintf(w, "%-20s %-15s %8s %12s %9s %9s  %s\n", r.Spec.Name, r.Spec.Config.Strategy, "-", "-", "-", "-", errText)
			continue
		}
		rep := report(r.Result)
		fmt.Fprintf(w, "%-20s %-15s %8d %12.6f %9d %9d  %s\n",
			r.Spec.Name, rep.Strategy, rep.Epochs, rep.MeanReward, rep.Switches, rep.Warnings, errText)
	}
}

// parseStats prints the decision metrics of every ChampSim output file.
func parseStats(w io.Writer, paths []string, baseline float64) error {
	for _, path := range paths {
		m, err := champsim.ParseStatsFile(path)
		if err != nil {
			return err
		}
		if baseline > 0 {
			delta, err := champsim.IPCDelta(m, baseline)
			if err != nil {
				return err
			}
			m[champsim.MetricIPCDelta] = delta
		}
		names := make([]string, 0, len(m))
		for name := range m {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintln(w, path)
		for _, name := range names {
			fmt.Fprintf(w, "  %-10s %.6f\n", name, m[name])
		}
	}
	return nil
}
