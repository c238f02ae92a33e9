package cmd

import (
	"os"

	"github.com/shirou/gopsutil/process"
	"github.com/sirupsen/logrus"
)

// logFootprint reports the CPU and resident memory of this process.
func logFootprint() {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logrus.Debugf("process footprint unavailable: %v", err)
		return
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		logrus.Debugf("process CPU unavailable: %v", err)
		return
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		logrus.Debugf("process memory unavailable: %v", err)
		return
	}
	logrus.Infof("footprint: cpu=%.1f%% rss=%.1fMiB", cpu, float64(mem.RSS)/(1<<20))
}
