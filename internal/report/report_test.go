package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-tangra/go-tangra-sysinfo/internal/collector"
)

func TestGiB(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{0, "0.00 GB"},
		{8589934592, "8.00 GB"},
		{1610612736, "1.50 GB"},
		{1 << 20, "0.00 GB"},
	}
	for _, tt := range tests {
		if got := GiB(tt.bytes); got != tt.want {
			t.Errorf("GiB(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}

func TestMemory(t *testing.T) {
	got := Memory(collector.Memory{
		Total:     8589934592,
		Available: 6442450944,
		Used:      2147483648,
	})
	want := "Total: 8.00 GB\n" +
		"Available: 6.00 GB\n" +
		"Used: 2.00 GB\n" +
		"Memory Usage: 25.0%"
	if got != want {
		t.Errorf("Memory() =\n%s\nwant\n%s", got, want)
	}
}

func TestCPU(t *testing.T) {
	got := CPU(collector.CPU{UsagePercent: 12.34, LogicalCores: 8, PhysicalCores: 4})
	want := "CPU Usage: 12.3%\nLogical Cores: 8\nPhysical Cores: 4"
	if got != want {
		t.Errorf("CPU() = %q, want %q", got, want)
	}
}

func TestIdentityOmitsEmptyFirmware(t *testing.T) {
	got := Identity(collector.Identity{
		Platform:  "Linux",
		Release:   "6.8.0",
		Version:   "#1 SMP",
		Machine:   "x86_64",
		Processor: "AMD EPYC 7763",
		Hostname:  "build01",
	})
	want := "Platform: Linux\nRelease: 6.8.0\nVersion: #1 SMP\nMachine: x86_64\n" +
		"Processor: AMD EPYC 7763\nDevice Name: build01"
	if got != want {
		t.Errorf("Identity() =\n%s\nwant\n%s", got, want)
	}

	withFirmware := Identity(collector.Identity{Platform: "Linux", Manufacturer: "ASUS", Product: "WRX90E"})
	if !strings.Contains(withFirmware, "Manufacturer: ASUS\nModel: WRX90E") {
		t.Errorf("firmware lines missing:\n%s", withFirmware)
	}
}

func TestDiskSeparatesVolumes(t *testing.T) {
	got := Disk(collector.Disk{Volumes: []collector.DiskVolume{
		{Device: "/dev/sda1", Total: 4 * gib, Used: gib, Free: 3 * gib},
		{Device: "/dev/sdb1", Total: 2 * gib, Used: 2 * gib, Free: 0},
	}})
	want := "=== /dev/sda1 ===\nTotal: 4.00 GB\nUsed: 1.00 GB\nFree: 3.00 GB\nPercentage: 25.0%\n" +
		"\n" +
		"=== /dev/sdb1 ===\nTotal: 2.00 GB\nUsed: 2.00 GB\nFree: 0.00 GB\nPercentage: 100.0%"
	if got != want {
		t.Errorf("Disk() =\n%s\nwant\n%s", got, want)
	}

	if got := Disk(collector.Disk{}); got != "No disk volumes found." {
		t.Errorf("Disk(empty) = %q", got)
	}
}

func TestInterfaceListsOnlyIPBindings(t *testing.T) {
	got := Interface(collector.NetworkInterface{
		Name: "eth0",
		Addresses: []collector.AddressBinding{
			{Family: collector.FamilyIPv4, Address: "192.168.1.10", Netmask: "255.255.255.0"},
			{Family: collector.FamilyIPv6, Address: "fe80::1", Netmask: "ffff:ffff:ffff:ffff::"},
			{Family: collector.FamilyLink, Address: "00:11:22:33:44:55"},
		},
	})

	lines := strings.Split(got, "\n")
	if lines[0] != "Interface: eth0" {
		t.Errorf("first line = %q", lines[0])
	}
	addressLines := lines[1:]
	if len(addressLines) != 2 {
		t.Fatalf("got %d address lines, want 2:\n%s", len(addressLines), got)
	}
	if addressLines[0] != "  IPv4: 192.168.1.10 (Subnet: 255.255.255.0)" {
		t.Errorf("IPv4 line = %q", addressLines[0])
	}
	if addressLines[1] != "  IPv6: fe80::1 (Subnet: ffff:ffff:ffff:ffff::)" {
		t.Errorf("IPv6 line = %q", addressLines[1])
	}
}

func TestNetwork(t *testing.T) {
	got := Network(collector.Network{
		Hostname: "build01",
		Interfaces: []collector.NetworkInterface{
			{Name: "lo", Addresses: []collector.AddressBinding{{Family: collector.FamilyIPv4, Address: "127.0.0.1", Netmask: "255.0.0.0"}}},
		},
		BytesSent: gib,
		BytesRecv: 2 * gib,
	})
	want := "Hostname: build01\nPrimary IP Address: unknown\n" +
		"\n" +
		"Interface: lo\n  IPv4: 127.0.0.1 (Subnet: 255.0.0.0)\n" +
		"\n" +
		"Total Bytes Sent: 1.00 GB\nTotal Bytes Received: 2.00 GB"
	if got != want {
		t.Errorf("Network() =\n%s\nwant\n%s", got, want)
	}
}

func TestSoftwareAndDevices(t *testing.T) {
	sw := Software(collector.Software{Entries: []collector.SoftwareEntry{
		{Name: "7-Zip", InstallDate: time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "Git", InstallDate: time.Date(2024, 11, 30, 0, 0, 0, 0, time.UTC)},
	}})
	if sw != "7-Zip - Installed on: 2023-04-01\nGit - Installed on: 2024-11-30" {
		t.Errorf("Software() = %q", sw)
	}

	dev := SerialDevices(collector.SerialDevices{Devices: []collector.SerialDevice{
		{Path: "COM3", Description: "USB Serial Device"},
	}})
	if dev != "Device: COM3 - USB Serial Device" {
		t.Errorf("SerialDevices() = %q", dev)
	}
	if got := SerialDevices(collector.SerialDevices{}); got != "No serial devices found." {
		t.Errorf("SerialDevices(empty) = %q", got)
	}
}

func TestError(t *testing.T) {
	got := Error(collector.CategorySoftware, errors.New("registry unavailable"))
	if got != "Error retrieving software: registry unavailable" {
		t.Errorf("Error() = %q", got)
	}
}

func TestRenderDispatch(t *testing.T) {
	if got := Render(collector.Memory{Total: 8589934592, Available: 8589934592}); !strings.HasPrefix(got, "Total: 8.00 GB") {
		t.Errorf("Render(Memory) = %q", got)
	}
	if got := Render(collector.CPU{LogicalCores: 2, PhysicalCores: 1}); !strings.HasPrefix(got, "CPU Usage: 0.0%") {
		t.Errorf("Render(CPU) = %q", got)
	}
}
