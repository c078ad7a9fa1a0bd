package collector

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrProbeUnavailable means the OS facility does not exist on this platform.
	ErrProbeUnavailable = errors.New("probe unavailable")
	// ErrEntryMalformed marks one record of a multi-record probe that could not be parsed.
	ErrEntryMalformed = errors.New("malformed entry")
	// ErrTransientProbe means the OS call itself failed.
	ErrTransientProbe = errors.New("probe failed")
)

// Collector probes one category of live host state. Every call re-reads
// the OS; caching belongs to the caller.
type Collector interface {
	Category() Category
	Collect(ctx context.Context) (Snapshot, error)
}

// Options tunes the default collector set.
type Options struct {
	CPUSampleInterval time.Duration
}

// DefaultCPUSampleInterval is the observation window for CPU usage.
const DefaultCPUSampleInterval = time.Second

// Defaults returns one production collector per category, in display
// order. The software capability is detected here, once.
func Defaults(opts Options) []Collector {
	interval := opts.CPUSampleInterval
	if interval <= 0 {
		interval = DefaultCPUSampleInterval
	}
	return []Collector{
		NewIdentityCollector(),
		NewMemoryCollector(),
		NewCPUCollector(interval),
		NewDiskCollector(),
		NewNetworkCollector(),
		NewSoftwareCollector(DetectSoftwareCapability()),
		NewSerialCollector(),
	}
}

// CollectAll runs every collector once. Each category lands in exactly
// one of the two maps.
func CollectAll(ctx context.Context, collectors []Collector) (map[Category]Snapshot, map[Category]error) {
	snaps := make(map[Category]Snapshot, len(collectors))
	errs := make(map[Category]error)
	for _, c := range collectors {
		snap, err := c.Collect(ctx)
		if err != nil {
			errs[c.Category()] = err
			continue
		}
		snaps[c.Category()] = snap
	}
	return snaps, errs
}

func transient(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransientProbe, what, err)
}
