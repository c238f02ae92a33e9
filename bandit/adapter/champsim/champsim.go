// Package champsim extracts named metrics from ChampSim's textual statistics
// report, for adapters that drive ChampSim and read its phase output.
package champsim

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/vinalal/Multi-Armed-Bandit-based-Microarchitecture-Decision-Making/bandit"
)

// Metric names produced by ParseStats.
const (
	MetricIPC     = "ipc"
	MetricL1DMPKI = "l1d_mpki"
	MetricL2CMPKI = "l2c_mpki"
	MetricLLCMPKI = "llc_mpki"

	// MetricIPCDelta is derived by IPCDelta, not parsed.
	MetricIPCDelta = "ipc_delta"
)

var (
	ipcCPU0 = regexp.MustCompile(`CPU\s*0\s+cumulative\s+IPC:\s*([0-9]*\.?[0-9]+)`)
	ipcAny  = regexp.MustCompile(`cumulative\s+IPC:\s*([0-9]*\.?[0-9]+)`)
	l1dMPKI = regexp.MustCompile(`L1D(?:\s+TOTAL)?[\s\S]{0,200}?MPKI:\s*([0-9]*\.?[0-9]+)`)
	l2cMPKI = regexp.MustCompile(`L2C(?:\s+TOTAL)?[\s\S]{0,200}?MPKI:\s*([0-9]*\.?[0-9]+)`)
	l2MPKI  = regexp.MustCompile(`\nL2(?:\s+TOTAL)?[\s\S]{0,200}?MPKI:\s*([0-9]*\.?[0-9]+)`)
	llcMPKI = regexp.MustCompile(`LLC(?:\s+TOTAL)?[\s\S]{0,200}?MPKI:\s*([0-9]*\.?[0-9]+)`)
)

// ErrNoIPC is returned when the report carries no cumulative IPC line.
var ErrNoIPC = errors.New("champsim: no cumulative IPC in report")

// ParseStats extracts IPC and the per-level MPKI values from a ChampSim report.
// IPC is the last cumulative value reported, preferring CPU 0's region
// summary over heartbeat lines. IPC is required; cache levels missing from the report are left out of the
// returned metrics.
func ParseStats(text string) (bandit.Metrics, error) {
	m := bandit.Metrics{}

	ipc, ok, err := last(text, ipcCPU0, ipcAny)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoIPC
	}
	m[MetricIPC] = ipc

	levels := []struct {
		name string
		res  []*regexp.Regexp
	}{
		{MetricL1DMPKI, []*regexp.Regexp{l1dMPKI}},
		{MetricL2CMPKI, []*regexp.Regexp{l2cMPKI, l2MPKI}},
		{MetricLLCMPKI, []*regexp.Regexp{llcMPKI}},
	}
	for _, lvl := range levels {
		v, ok, err := first(text, lvl.res...)
		if err != nil {
			return nil, err
		}
		if ok {
			m[lvl.name] = v
		}
	}
	return m, nil
}

// ParseStatsFile reads a ChampSim report from disk and parses it.
func ParseStatsFile(path string) (bandit.Metrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading champsim report: %w", err)
	}
	m, err := ParseStats(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// first returns the value captured by the first regexp that matches.
func first(text string, res ...*regexp.Regexp) (float64, bool, error) {
	for _, re := range res {
		sub := re.FindStringSubmatch(text)
		if sub == nil {
			continue
		}
		v, err := strconv.ParseFloat(sub[1], 64)
		if err != nil {
			return 0, false, fmt.Errorf("champsim: parsing %q: %w", sub[1], err)
		}
		return v, true, nil
	}
	return 0, false, nil
}

// last returns the value captured by the final match of the first regexp
// that matches at all. Heartbeat lines repeat the cumulative IPC during the
// run; only the final one covers the whole region.
func last(text string, res ...*regexp.Regexp) (float64, bool, error) {
	for _, re := range res {
		all := re.FindAllStringSubmatch(text, -1)
		if len(all) == 0 {
			continue
		}
		sub := all[len(all)-1]
		v, err := strconv.ParseFloat(sub[1], 64)
		if err != nil {
			return 0, false, fmt.Errorf("champsim: parsing %q: %w", sub[1], err)
		}
		return v, true, nil
	}
	return 0, false, nil
}

// IPCDelta returns the relative IPC change of m against a no-action
// baseline, (ipc - base) / base, the usual reward signal for prefetch arms.
func IPCDelta(m bandit.Metrics, baselineIPC float64) (float64, error) {
	ipc, ok := m[MetricIPC]
	if !ok {
		return 0, ErrNoIPC
	}
	if baselineIPC <= 0 {
		return 0, fmt.Errorf("champsim: baseline IPC must be positive, got %v", baselineIPC)
	}
	return (ipc - baselineIPC) / baselineIPC, nil
}
