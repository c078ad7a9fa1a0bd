package collector

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SoftwareRecord is one raw uninstall registration as read from the
// platform source. Err is set when the record itself could not be read.
type SoftwareRecord struct {
	Key         string
	DisplayName string
	InstallDate string
	Err         error
}

// SoftwareProbe enumerates uninstall registrations.
type SoftwareProbe interface {
	Records(ctx context.Context) ([]SoftwareRecord, error)
}

// SoftwareCapability is either Supported or Unsupported.
type SoftwareCapability interface {
	capability()
}

// Supported carries the probe for a platform that has a software registry.
type Supported struct {
	Probe SoftwareProbe
}

// Unsupported explains why this platform has no software registry.
type Unsupported struct {
	Reason string
}

func (Supported) capability()   {}
func (Unsupported) capability() {}

// SoftwareCollector builds the installed software inventory.
type SoftwareCollector struct {
	capability SoftwareCapability
}

// NewSoftwareCollector returns a collector for the given capability,
// normally the result of DetectSoftwareCapability.
func NewSoftwareCollector(capability SoftwareCapability) *SoftwareCollector {
	return &SoftwareCollector{capability: capability}
}

func (c *SoftwareCollector) Category() Category { return CategorySoftware }

func (c *SoftwareCollector) Collect(ctx context.Context) (Snapshot, error) {
	var probe SoftwareProbe
	switch capability := c.capability.(type) {
	case Supported:
		probe = capability.Probe
	case Unsupported:
		return nil, fmt.Errorf("%w: %s", ErrProbeUnavailable, capability.Reason)
	default:
		return nil, fmt.Errorf("%w: no software source configured", ErrProbeUnavailable)
	}

	records, err := probe.Records(ctx)
	if err != nil {
		return nil, transient("software registry", err)
	}

	s := Software{Entries: make([]SoftwareEntry, 0, len(records))}
	for _, rec := range records {
		r := ParseSoftwareRecord(rec)
		if r.Skipped != nil {
			s.Skipped = append(s.Skipped, *r.Skipped)
			continue
		}
		s.Entries = append(s.Entries, r.Entry)
	}
	return s, nil
}

// SoftwareResult is the outcome of parsing one record: either Entry is
// valid or Skipped says why the record was dropped.
type SoftwareResult struct {
	Entry   SoftwareEntry
	Skipped *SkippedEntry
}

// installDateLayout is the registry's InstallDate format.
const installDateLayout = "20060102"

// ParseSoftwareRecord validates one record. Records without a display
// name or with an InstallDate that is not exactly YYYYMMDD are skipped.
func ParseSoftwareRecord(rec SoftwareRecord) SoftwareResult {
	skip := func(err error) SoftwareResult {
		return SoftwareResult{Skipped: &SkippedEntry{Key: rec.Key, Reason: err.Error()}}
	}

	if rec.Err != nil {
		return skip(fmt.Errorf("%w: %w", ErrEntryMalformed, rec.Err))
	}
	if rec.DisplayName == "" {
		return skip(fmt.Errorf("%w: missing DisplayName", ErrEntryMalformed))
	}
	date, err := parseInstallDate(rec.InstallDate)
	if err != nil {
		return skip(fmt.Errorf("%w: InstallDate: %w", ErrEntryMalformed, err))
	}
	return SoftwareResult{Entry: SoftwareEntry{Name: rec.DisplayName, InstallDate: date}}
}

func parseInstallDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("missing")
	}
	if len(s) != len(installDateLayout) {
		return time.Time{}, fmt.Errorf("%q is not YYYYMMDD", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return time.Time{}, fmt.Errorf("%q is not YYYYMMDD", s)
		}
	}
	return time.Parse(installDateLayout, s)
}
