package system

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot is a point-in-time view of the machine used in batch reports.
type Snapshot struct {
	LogicalCPU  int
	PhysicalCPU int
	TotalMemMB  uint64
	UsedMemMB   uint64
	UsedPercent float64
	HeapAllocMB uint64
}

// TakeSnapshot collects CPU counts and memory usage. Fields gopsutil cannot
// read on this platform stay zero.
func TakeSnapshot() Snapshot {
	var s Snapshot
	if n, err := cpu.Counts(true); err == nil {
		s.LogicalCPU = n
	}
	if n, err := cpu.Counts(false); err == nil {
		s.PhysicalCPU = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.TotalMemMB = vm.Total / 1024 / 1024
		s.UsedMemMB = vm.Used / 1024 / 1024
		s.UsedPercent = vm.UsedPercent
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.HeapAllocMB = ms.HeapAlloc / 1024 / 1024
	return s
}

// WorkerCount returns requested if positive, otherwise the number of logical
// CPUs.
func WorkerCount(requested int) int {
	if requested > 0 {
		return requested
	}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}
