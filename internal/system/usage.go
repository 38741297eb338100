package system

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Usage is a snapshot of the resources held by this process.
type Usage struct {
	RSS        uint64
	CPUPercent float64
	SystemUsed float64 // percent of physical memory in use
}

// CurrentUsage samples the running process.
func CurrentUsage() (Usage, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return Usage{}, fmt.Errorf("inspecting process: %w", err)
	}

	var u Usage
	if info, err := proc.MemoryInfo(); err == nil {
		u.RSS = info.RSS
	}
	if cpu, err := proc.CPUPercent(); err == nil {
		u.CPUPercent = cpu
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		u.SystemUsed = vm.UsedPercent
	}
	return u, nil
}

func (u Usage) String() string {
	return fmt.Sprintf("RSS: %.1f MiB | CPU: %.1f%% | System memory: %.1f%%",
		float64(u.RSS)/(1<<20), u.CPUPercent, u.SystemUsed)
}
