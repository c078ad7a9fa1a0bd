package collector

import (
	"context"
	"fmt"

	"go.bug.st/serial/enumerator"
)

// SerialCollector enumerates serial ports.
type SerialCollector struct {
	list func() ([]*enumerator.PortDetails, error)
}

// NewSerialCollector returns a collector backed by the OS port enumerator.
func NewSerialCollector() *SerialCollector {
	return &SerialCollector{list: enumerator.GetDetailedPortsList}
}

func (c *SerialCollector) Category() Category { return CategoryDevices }

func (c *SerialCollector) Collect(_ context.Context) (Snapshot, error) {
	ports, err := c.list()
	if err != nil {
		return nil, transient("serial ports", err)
	}

	s := SerialDevices{Devices: make([]SerialDevice, 0, len(ports))}
	for _, p := range ports {
		if p == nil {
			continue
		}
		s.Devices = append(s.Devices, SerialDevice{
			Path:         p.Name,
			Description:  describePort(p),
			IsUSB:        p.IsUSB,
			VID:          p.VID,
			PID:          p.PID,
			SerialNumber: p.SerialNumber,
		})
	}
	return s, nil
}

// describePort prefers the USB product string, then the VID:PID pair.
func describePort(p *enumerator.PortDetails) string {
	switch {
	case p.Product != "":
		return p.Product
	case p.IsUSB:
		return fmt.Sprintf("USB VID:PID=%s:%s", p.VID, p.PID)
	default:
		return "n/a"
	}
}
