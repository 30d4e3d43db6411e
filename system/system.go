// Package system reads host resource usage for the debug overlay.
package system

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Stats is a point-in-time snapshot of host usage.
type Stats struct {
	CPUPercent float64
	MemPercent float64
}

// Snapshot collects current CPU and memory usage. Collection is best
// effort; a zero value with an error is returned when the platform
// refuses to report.
func Snapshot() (Stats, error) {
	percentages, err := cpu.Percent(0, false)
	if err != nil {
		return Stats{}, err
	}
	if len(percentages) == 0 {
		return Stats{}, fmt.Errorf("could not get CPU usage")
	}

	virtualMem, err := mem.VirtualMemory()
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		CPUPercent: percentages[0],
		MemPercent: virtualMem.UsedPercent,
	}, nil
}

// String renders the snapshot for the debug overlay.
func (s Stats) String() string {
	return fmt.Sprintf("CPU: %.1f%%  MEM: %.1f%%", s.CPUPercent, s.MemPercent)
}
