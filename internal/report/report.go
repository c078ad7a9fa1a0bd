// Package report renders snapshots into fixed-format text: one
// "Label: value" field per line, repeated groups separated by a blank
// line. Sizes are GiB with a GB label and two decimals; percentages
// carry one decimal.
package report

import (
	"fmt"
	"strings"

	"github.com/go-tangra/go-tangra-sysinfo/internal/collector"
)

const gib = 1024 * 1024 * 1024

// GiB formats a byte count as "8.00 GB".
func GiB(bytes uint64) string {
	return fmt.Sprintf("%.2f GB", float64(bytes)/gib)
}

// Percent formats a percentage as "42.5%".
func Percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// Render dispatches on the snapshot's concrete type.
func Render(s collector.Snapshot) string {
	switch v := s.(type) {
	case collector.Identity:
		return Identity(v)
	case collector.Memory:
		return Memory(v)
	case collector.CPU:
		return CPU(v)
	case collector.Disk:
		return Disk(v)
	case collector.Network:
		return Network(v)
	case collector.Software:
		return Software(v)
	case collector.SerialDevices:
		return SerialDevices(v)
	default:
		return fmt.Sprintf("Unsupported snapshot %T", s)
	}
}

// Error renders a collection failure for category c.
func Error(c collector.Category, err error) string {
	return fmt.Sprintf("Error retrieving %s: %v", c.Noun(), err)
}

// Identity renders the platform and host block. Firmware lines are
// omitted when empty.
func Identity(id collector.Identity) string {
	var b lines
	b.field("Platform", id.Platform)
	b.field("Release", id.Release)
	b.field("Version", id.Version)
	b.field("Machine", id.Machine)
	b.field("Processor", id.Processor)
	b.field("Device Name", id.Hostname)
	b.optional("Manufacturer", id.Manufacturer)
	b.optional("Model", id.Product)
	b.optional("BIOS Vendor", id.BIOSVendor)
	b.optional("BIOS Version", id.BIOSVersion)
	return b.String()
}

// Memory renders totals in GB and the usage percentage.
func Memory(m collector.Memory) string {
	var b lines
	b.field("Total", GiB(m.Total))
	b.field("Available", GiB(m.Available))
	b.field("Used", GiB(m.Used))
	b.field("Memory Usage", Percent(m.UsagePercent()))
	return b.String()
}

// CPU renders the sampled usage and core counts.
func CPU(c collector.CPU) string {
	var b lines
	b.field("CPU Usage", Percent(c.UsagePercent))
	b.field("Logical Cores", fmt.Sprint(c.LogicalCores))
	b.field("Physical Cores", fmt.Sprint(c.PhysicalCores))
	return b.String()
}

// Disk renders one block per volume, separated by a blank line.
func Disk(d collector.Disk) string {
	if len(d.Volumes) == 0 {
		return "No disk volumes found."
	}
	blocks := make([]string, 0, len(d.Volumes))
	for _, v := range d.Volumes {
		var b lines
		b.raw("=== " + v.Device + " ===")
		b.field("Total", GiB(v.Total))
		b.field("Used", GiB(v.Used))
		b.field("Free", GiB(v.Free))
		b.field("Percentage", Percent(v.UsagePercent()))
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// Network renders the host header, one block per interface and the
// traffic totals.
func Network(n collector.Network) string {
	primary := n.PrimaryIP
	if primary == "" {
		primary = "unknown"
	}

	var head lines
	head.field("Hostname", n.Hostname)
	head.field("Primary IP Address", primary)

	blocks := []string{head.String()}
	for _, iface := range n.Interfaces {
		blocks = append(blocks, Interface(iface))
	}

	var tail lines
	tail.field("Total Bytes Sent", GiB(n.BytesSent))
	tail.field("Total Bytes Received", GiB(n.BytesRecv))
	blocks = append(blocks, tail.String())

	return strings.Join(blocks, "\n\n")
}

// Interface renders one interface block. Only IPv4 and IPv6 bindings
// produce lines.
func Interface(iface collector.NetworkInterface) string {
	var b lines
	b.field("Interface", iface.Name)
	for _, a := range iface.Addresses {
		if a.Family != collector.FamilyIPv4 && a.Family != collector.FamilyIPv6 {
			continue
		}
		b.raw(fmt.Sprintf("  %s: %s (Subnet: %s)", a.Family, a.Address, a.Netmask))
	}
	return b.String()
}

// Software lists installed programs with their install dates.
func Software(s collector.Software) string {
	if len(s.Entries) == 0 {
		return "No installed software found."
	}
	var b lines
	for _, e := range s.Entries {
		b.raw(fmt.Sprintf("%s - Installed on: %s", e.Name, e.InstallDate.Format("2006-01-02")))
	}
	return b.String()
}

// SerialDevices lists attached serial ports.
func SerialDevices(s collector.SerialDevices) string {
	if len(s.Devices) == 0 {
		return "No serial devices found."
	}
	var b lines
	for _, d := range s.Devices {
		b.raw(fmt.Sprintf("Device: %s - %s", d.Path, d.Description))
	}
	return b.String()
}

type lines struct {
	out []string
}

func (l *lines) raw(s string) {
	l.out = append(l.out, s)
}

func (l *lines) field(label, value string) {
	l.out = append(l.out, label+": "+value)
}

func (l *lines) optional(label, value string) {
	if value != "" {
		l.field(label, value)
	}
}

func (l *lines) String() string {
	return strings.Join(l.out, "\n")
}
