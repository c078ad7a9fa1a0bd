package collector

import (
	"context"
	"net"
	"net/netip"
	"os"
	"strings"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// NetworkCollector reports addressing and cumulative traffic counters.
type NetworkCollector struct {
	hostname   func() (string, error)
	lookup     func(ctx context.Context, host string) ([]net.IPAddr, error)
	interfaces func(ctx context.Context) (psnet.InterfaceStatList, error)
	counters   func(ctx context.Context, pernic bool) ([]psnet.IOCountersStat, error)
}

// NewNetworkCollector returns a collector backed by gopsutil and the
// system resolver.
func NewNetworkCollector() *NetworkCollector {
	return &NetworkCollector{
		hostname:   os.Hostname,
		lookup:     net.DefaultResolver.LookupIPAddr,
		interfaces: psnet.InterfacesWithContext,
		counters:   psnet.IOCountersWithContext,
	}
}

func (c *NetworkCollector) Category() Category { return CategoryNetwork }

func (c *NetworkCollector) Collect(ctx context.Context) (Snapshot, error) {
	ifaces, err := c.interfaces(ctx)
	if err != nil {
		return nil, transient("network interfaces", err)
	}
	totals, err := c.counters(ctx, false)
	if err != nil {
		return nil, transient("network counters", err)
	}

	n := Network{Interfaces: make([]NetworkInterface, 0, len(ifaces))}
	if name, err := c.hostname(); err == nil {
		n.Hostname = name
		n.PrimaryIP = c.primaryIP(ctx, name)
	}

	for _, iface := range ifaces {
		n.Interfaces = append(n.Interfaces, NetworkInterface{
			Name:      iface.Name,
			Addresses: FilterIP(bindings(iface)),
		})
	}

	if len(totals) > 0 {
		n.BytesSent = totals[0].BytesSent
		n.BytesRecv = totals[0].BytesRecv
	}
	return n, nil
}

// primaryIP returns the first IPv4 address the host name resolves to.
func (c *NetworkCollector) primaryIP(ctx context.Context, host string) string {
	addrs, err := c.lookup(ctx, host)
	if err != nil {
		return ""
	}
	for _, a := range addrs {
		if v4 := a.IP.To4(); v4 != nil {
			return v4.String()
		}
	}
	return ""
}

// bindings converts gopsutil's CIDR strings into tagged bindings. The
// hardware address is reported as a Link binding.
func bindings(iface psnet.InterfaceStat) []AddressBinding {
	var out []AddressBinding
	if iface.HardwareAddr != "" {
		out = append(out, AddressBinding{Family: FamilyLink, Address: iface.HardwareAddr})
	}
	for _, a := range iface.Addrs {
		addr, bits, ok := parseBinding(a.Addr)
		if !ok {
			continue
		}
		b := AddressBinding{Family: FamilyIPv6, Address: addr.String()}
		if addr.Is4() {
			b.Family = FamilyIPv4
		}
		if bits >= 0 {
			b.Netmask = netmaskString(net.CIDRMask(bits, addr.BitLen()))
		}
		out = append(out, b)
	}
	return out
}

// parseBinding accepts "addr/bits" or a bare address, in which case bits
// is -1. IPv4-mapped IPv6 literals stay IPv6. A zone is dropped.
func parseBinding(s string) (netip.Addr, int, bool) {
	if i := strings.IndexByte(s, '%'); i >= 0 {
		if j := strings.IndexByte(s[i:], '/'); j >= 0 {
			s = s[:i] + s[i+j:]
		} else {
			s = s[:i]
		}
	}
	if p, err := netip.ParsePrefix(s); err == nil {
		return p.Addr(), p.Bits(), true
	}
	if a, err := netip.ParseAddr(s); err == nil {
		return a, -1, true
	}
	return netip.Addr{}, 0, false
}

// FilterIP keeps only IPv4 and IPv6 bindings, preserving order.
func FilterIP(in []AddressBinding) []AddressBinding {
	out := make([]AddressBinding, 0, len(in))
	for _, b := range in {
		if b.Family == FamilyIPv4 || b.Family == FamilyIPv6 {
			out = append(out, b)
		}
	}
	return out
}

// netmaskString renders a mask as dotted quad for IPv4 and as an
// address literal for IPv6 ("ffff:ffff:ffff:ffff::").
func netmaskString(mask net.IPMask) string {
	switch len(mask) {
	case net.IPv4len, net.IPv6len:
		return net.IP(mask).String()
	}
	return ""
}
