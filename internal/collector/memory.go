package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"
)

// MemoryCollector reads physical memory usage.
type MemoryCollector struct {
	virtual func(ctx context.Context) (*mem.VirtualMemoryStat, error)
}

// NewMemoryCollector returns a collector backed by gopsutil.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{virtual: mem.VirtualMemoryWithContext}
}

func (c *MemoryCollector) Category() Category { return CategoryMemory }

func (c *MemoryCollector) Collect(ctx context.Context) (Snapshot, error) {
	vm, err := c.virtual(ctx)
	if err != nil {
		return nil, transient("virtual memory", err)
	}

	m := Memory{
		Total:     vm.Total,
		Available: vm.Available,
		Used:      vm.Used,
	}
	// Keep used + available within total; some kernels over-report
	// available memory briefly after large frees.
	if m.Available > m.Total {
		m.Available = m.Total
	}
	if m.Used+m.Available > m.Total {
		m.Used = m.Total - m.Available
	}
	return m, nil
}
