package servo

import (
	"fmt"
	"sort"
	"strings"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// PortInfo describes one serial port found on the host.
type PortInfo struct {
	Name        string
	Description string
	HWID        string
}

func (p PortInfo) String() string {
	return fmt.Sprintf("%s: %s [%s]", p.Name, p.Description, p.HWID)
}

// ListPorts enumerates serial ports sorted by name. When the detailed
// enumerator is unavailable it falls back to bare port names.
func ListPorts() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		names, nerr := serial.GetPortsList()
		if nerr != nil {
			return nil, fmt.Errorf("list ports: %w", nerr)
		}
		ports := make([]PortInfo, 0, len(names))
		for _, n := range names {
			ports = append(ports, PortInfo{Name: n, Description: "n/a", HWID: "n/a"})
		}
		sortPorts(ports)
		return ports, nil
	}

	ports := make([]PortInfo, 0, len(details))
	for _, d := range details {
		ports = append(ports, describePort(d))
	}
	sortPorts(ports)
	return ports, nil
}

func describePort(d *enumerator.PortDetails) PortInfo {
	p := PortInfo{Name: d.Name, Description: "n/a", HWID: "n/a"}
	if !d.IsUSB {
		return p
	}
	if d.Product != "" {
		p.Description = d.Product
	}
	hwid := fmt.Sprintf("USB VID:PID=%s:%s", strings.ToUpper(d.VID), strings.ToUpper(d.PID))
	if d.SerialNumber != "" {
		hwid += " SER=" + d.SerialNumber
	}
	p.HWID = hwid
	return p
}

func sortPorts(ports []PortInfo) {
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })
}
