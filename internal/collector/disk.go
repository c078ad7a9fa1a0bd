package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/disk"
)

// DiskCollector reports usage for every mounted physical partition.
type DiskCollector struct {
	partitions func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	usage      func(ctx context.Context, path string) (*disk.UsageStat, error)
}

// NewDiskCollector returns a collector backed by gopsutil.
func NewDiskCollector() *DiskCollector {
	return &DiskCollector{
		partitions: disk.PartitionsWithContext,
		usage:      disk.UsageWithContext,
	}
}

func (c *DiskCollector) Category() Category { return CategoryDisk }

// Collect keeps partition enumeration order. A partition whose usage
// cannot be read (unmounted media, permission denied) is skipped.
func (c *DiskCollector) Collect(ctx context.Context) (Snapshot, error) {
	parts, err := c.partitions(ctx, false)
	if err != nil {
		return nil, transient("disk partitions", err)
	}

	d := Disk{Volumes: make([]DiskVolume, 0, len(parts))}
	for _, p := range parts {
		u, err := c.usage(ctx, p.Mountpoint)
		if err != nil {
			d.Skipped = append(d.Skipped, SkippedEntry{Key: p.Device, Reason: err.Error()})
			continue
		}
		d.Volumes = append(d.Volumes, DiskVolume{
			Device:     p.Device,
			Mountpoint: p.Mountpoint,
			FSType:     p.Fstype,
			Total:      u.Total,
			Used:       u.Used,
			Free:       u.Free,
		})
	}
	return d, nil
}
