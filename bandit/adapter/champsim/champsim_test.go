package champsim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const report = `
*** ChampSim Multicore Out-of-Order Simulator ***
Warmup Instructions: 10000000
Simulation Instructions: 100000000

CPU 0 cumulative IPC: 1.4372 instructions: 100000002 cycles: 69579943
L1D TOTAL     ACCESS:   33821347  HIT:   32101337  MISS:    1720010  MPKI: 17.2001
L2C TOTAL     ACCESS:    2618723  HIT:    1930046  MISS:     688677  MPKI: 6.8868
LLC TOTAL     ACCESS:     734912  HIT:     301443  MISS:     433469  MPKI: 4.3347
`

func TestParseStats_FullReport(t *testing.T) {
	m, err := ParseStats(report)

	require.NoError(t, err)
	assert.Equal(t, 1.4372, m[MetricIPC])
	assert.Equal(t, 17.2001, m[MetricL1DMPKI])
	assert.Equal(t, 6.8868, m[MetricL2CMPKI])
	assert.Equal(t, 4.3347, m[MetricLLCMPKI])
}

func TestParseStats_MissingCacheLevels_Omitted(t *testing.T) {
	m, err := ParseStats("Finished CPU 0 instructions: 1000 cycles: 800 cumulative IPC: 1.25\n")

	require.NoError(t, err)
	assert.Equal(t, 1.25, m[MetricIPC])
	assert.Len(t, m, 1)
}

func TestParseStats_HeartbeatsOnly_TakesLastCumulativeIPC(t *testing.T) {
	// GIVEN a report cut off before the region summary, with two heartbeats
	text := `Heartbeat CPU 0 instructions: 10000000 cycles: 25000000 heartbeat IPC: 0.4 cumulative IPC: 0.40 (Simulation time: 0 hr 0 min 5 sec)
Heartbeat CPU 0 instructions: 20000000 cycles: 15037594 heartbeat IPC: 2.26 cumulative IPC: 1.33 (Simulation time: 0 hr 0 min 9 sec)
`
	// WHEN it is parsed
	m, err := ParseStats(text)

	// THEN the latest cumulative value is used, not the warm-up one
	require.NoError(t, err)
	assert.Equal(t, 1.33, m[MetricIPC])
}

func TestParseStats_HeartbeatsBeforeSummary_TakesSummary(t *testing.T) {
	m, err := ParseStats("Heartbeat CPU 0 instructions: 10000000 cycles: 25000000 heartbeat IPC: 0.4 cumulative IPC: 0.40\n" + report)

	require.NoError(t, err)
	assert.Equal(t, 1.4372, m[MetricIPC])
}

func TestParseStats_NoIPC_Error(t *testing.T) {
	_, err := ParseStats("LLC TOTAL ACCESS: 10 HIT: 5 MISS: 5 MPKI: 0.5\n")

	assert.ErrorIs(t, err, ErrNoIPC)
}

func TestParseStatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "phase_3.txt")
	require.NoError(t, os.WriteFile(path, []byte(report), 0o644))

	m, err := ParseStatsFile(path)

	require.NoError(t, err)
	assert.Equal(t, 1.4372, m[MetricIPC])

	_, err = ParseStatsFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestIPCDelta(t *testing.T) {
	d, err := IPCDelta(map[string]float64{MetricIPC: 1.5}, 1.2)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, d, 1e-12)

	_, err = IPCDelta(map[string]float64{MetricIPC: 1.5}, 0)
	assert.Error(t, err)

	_, err = IPCDelta(map[string]float64{}, 1)
	assert.ErrorIs(t, err, ErrNoIPC)
}
