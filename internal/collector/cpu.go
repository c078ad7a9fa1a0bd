package collector

import (
	"context"
	"errors"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// CPUCollector samples CPU utilization over a fixed window. Collect
// blocks for the whole window.
type CPUCollector struct {
	interval time.Duration
	percent  func(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error)
	counts   func(ctx context.Context, logical bool) (int, error)
}

// NewCPUCollector returns a collector sampling over interval.
func NewCPUCollector(interval time.Duration) *CPUCollector {
	return &CPUCollector{
		interval: interval,
		percent:  cpu.PercentWithContext,
		counts:   cpu.CountsWithContext,
	}
}

func (c *CPUCollector) Category() Category { return CategoryCPU }

func (c *CPUCollector) Collect(ctx context.Context) (Snapshot, error) {
	pct, err := c.percent(ctx, c.interval, false)
	if err != nil {
		return nil, transient("cpu percent", err)
	}
	if len(pct) == 0 {
		return nil, transient("cpu percent", errors.New("no samples"))
	}

	logical, err := c.counts(ctx, true)
	if err != nil {
		return nil, transient("logical cpu count", err)
	}
	// Physical counts are unavailable on some virtualized hosts.
	physical, _ := c.counts(ctx, false)

	logical, physical = clampCores(logical, physical)
	return CPU{
		UsagePercent:   pct[0],
		LogicalCores:   logical,
		PhysicalCores:  physical,
		SampleInterval: c.interval,
	}, nil
}

// clampCores enforces logical >= physical >= 1.
func clampCores(logical, physical int) (int, int) {
	if logical < 1 {
		logical = 1
	}
	if physical < 1 || physical > logical {
		physical = min(max(physical, 1), logical)
	}
	return logical, physical
}
