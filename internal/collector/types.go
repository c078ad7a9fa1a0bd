package collector

import (
	"fmt"
	"strings"
	"time"
)

// Category identifies one telemetry domain.
type Category string

const (
	CategoryIdentity Category = "identity"
	CategoryMemory   Category = "memory"
	CategoryCPU      Category = "cpu"
	CategoryDisk     Category = "disk"
	CategoryNetwork  Category = "network"
	CategorySoftware Category = "software"
	CategoryDevices  Category = "devices"
)

var categories = []Category{
	CategoryIdentity,
	CategoryMemory,
	CategoryCPU,
	CategoryDisk,
	CategoryNetwork,
	CategorySoftware,
	CategoryDevices,
}

var aliases = map[string]Category{
	"system":             CategoryIdentity,
	"platform":           CategoryIdentity,
	"software-inventory": CategorySoftware,
	"serial":             CategoryDevices,
}

var titles = map[Category]string{
	CategoryIdentity: "System Summary",
	CategoryMemory:   "Memory Information",
	CategoryCPU:      "CPU Information",
	CategoryDisk:     "Disk Information",
	CategoryNetwork:  "Network Information",
	CategorySoftware: "Installed Software",
	CategoryDevices:  "Connected Devices",
}

var nouns = map[Category]string{
	CategoryIdentity: "system information",
	CategoryMemory:   "memory information",
	CategoryCPU:      "CPU information",
	CategoryDisk:     "disk information",
	CategoryNetwork:  "network information",
	CategorySoftware: "software",
	CategoryDevices:  "connected devices",
}

// Categories returns every category in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory resolves a category name or alias, case-insensitively.
func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, c := range categories {
		if string(c) == name {
			return c, nil
		}
	}
	if c, ok := aliases[name]; ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	_, ok := titles[c]
	return ok
}

// Title returns the heading used for the detailed view of c.
func (c Category) Title() string {
	return titles[c]
}

// Noun is the phrase used in failure reports ("Error retrieving <noun>").
func (c Category) Noun() string {
	if n, ok := nouns[c]; ok {
		return n
	}
	return string(c)
}

// Snapshot is a point-in-time result for one category. The set of
// implementations is closed to this package.
type Snapshot interface {
	Category() Category
	snapshot()
}

// Identity describes the platform and host.
type Identity struct {
	Platform  string `json:"platform"`
	Release   string `json:"release"`
	Version   string `json:"version"`
	Machine   string `json:"machine"`
	Processor string `json:"processor"`
	Hostname  string `json:"hostname"`

	// Firmware fields are empty when SMBIOS tables cannot be read.
	Manufacturer string `json:"manufacturer,omitempty"`
	Product      string `json:"product,omitempty"`
	BIOSVendor   string `json:"bios_vendor,omitempty"`
	BIOSVersion  string `json:"bios_version,omitempty"`
}

// Memory holds physical memory usage in bytes.
type Memory struct {
	Total     uint64 `json:"total_bytes"`
	Available uint64 `json:"available_bytes"`
	Used      uint64 `json:"used_bytes"`
}

// UsagePercent is the share of memory not available to new allocations.
func (m Memory) UsagePercent() float64 {
	if m.Total == 0 || m.Available > m.Total {
		return 0
	}
	return float64(m.Total-m.Available) / float64(m.Total) * 100
}

// CPU holds a sampled utilization and core counts.
type CPU struct {
	UsagePercent   float64       `json:"usage_percent"`
	LogicalCores   int           `json:"logical_cores"`
	PhysicalCores  int           `json:"physical_cores"`
	SampleInterval time.Duration `json:"sample_interval"`
}

// DiskVolume is the usage of one mounted partition.
type DiskVolume struct {
	Device     string `json:"device"`
	Mountpoint string `json:"mountpoint"`
	FSType     string `json:"fstype"`
	Total      uint64 `json:"total_bytes"`
	Used       uint64 `json:"used_bytes"`
	Free       uint64 `json:"free_bytes"`
}

// UsagePercent matches df: used over the space visible to users.
func (v DiskVolume) UsagePercent() float64 {
	avail := v.Used + v.Free
	if avail == 0 {
		return 0
	}
	return float64(v.Used) / float64(avail) * 100
}

// Disk lists volumes in partition enumeration order.
type Disk struct {
	Volumes []DiskVolume   `json:"volumes"`
	Skipped []SkippedEntry `json:"skipped,omitempty"`
}

// Family is an address family tag.
type Family string

const (
	FamilyIPv4 Family = "IPv4"
	FamilyIPv6 Family = "IPv6"
	FamilyLink Family = "Link"
)

// AddressBinding is one address assigned to an interface.
type AddressBinding struct {
	Family  Family `json:"family"`
	Address string `json:"address"`
	Netmask string `json:"netmask"`
}

// NetworkInterface is a named interface with its IP bindings.
type NetworkInterface struct {
	Name      string           `json:"name"`
	Addresses []AddressBinding `json:"addresses"`
}

// Network holds addressing and cumulative traffic counters since boot.
type Network struct {
	Hostname   string             `json:"hostname"`
	PrimaryIP  string             `json:"primary_ip"`
	Interfaces []NetworkInterface `json:"interfaces"`
	BytesSent  uint64             `json:"bytes_sent"`
	BytesRecv  uint64             `json:"bytes_recv"`
}

// SoftwareEntry is one registered application.
type SoftwareEntry struct {
	Name        string    `json:"name"`
	InstallDate time.Time `json:"install_date"`
}

// Software is the installed software inventory.
type Software struct {
	Entries []SoftwareEntry `json:"entries"`
	Skipped []SkippedEntry  `json:"skipped,omitempty"`
}

// SerialDevice is an enumerated serial port.
type SerialDevice struct {
	Path         string `json:"path"`
	Description  string `json:"description"`
	IsUSB        bool   `json:"is_usb"`
	VID          string `json:"vid,omitempty"`
	PID          string `json:"pid,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
}

// SerialDevices lists ports in enumeration order.
type SerialDevices struct {
	Devices []SerialDevice `json:"devices"`
}

// SkippedEntry records a record dropped from a multi-record probe.
type SkippedEntry struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

func (Identity) Category() Category      { return CategoryIdentity }
func (Memory) Category() Category        { return CategoryMemory }
func (CPU) Category() Category           { return CategoryCPU }
func (Disk) Category() Category          { return CategoryDisk }
func (Network) Category() Category       { return CategoryNetwork }
func (Software) Category() Category      { return CategorySoftware }
func (SerialDevices) Category() Category { return CategoryDevices }

func (Identity) snapshot()      {}
func (Memory) snapshot()        {}
func (CPU) snapshot()           {}
func (Disk) snapshot()          {}
func (Network) snapshot()       {}
func (Software) snapshot()      {}
func (SerialDevices) snapshot() {}
