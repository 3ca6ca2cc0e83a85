package serial

import (
	"fmt"
	"sort"

	goserial "go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

// PortInfo describes a serial device visible to the OS.
type PortInfo struct {
	Name    string
	USB     bool
	VID     string
	PID     string
	Serial  string
	Product string
}

// Ports lists serial devices, with USB details when the platform exposes them.
func Ports() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err == nil {
		out := make([]PortInfo, 0, len(details))
		for _, d := range details {
			out = append(out, PortInfo{
				Name:    d.Name,
				USB:     d.IsUSB,
				VID:     d.VID,
				PID:     d.PID,
				Serial:  d.SerialNumber,
				Product: d.Product,
			})
		}
		sortPorts(out)
		return out, nil
	}

	// Some platforms only support the plain listing.
	names, listErr := goserial.GetPortsList()
	if listErr != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", listErr)
	}
	out := make([]PortInfo, 0, len(names))
	for _, n := range names {
		out = append(out, PortInfo{Name: n})
	}
	sortPorts(out)
	return out, nil
}

func sortPorts(ports []PortInfo) {
	sort.Slice(ports, func(i, j int) bool { return ports[i].Name < ports[j].Name })
}

// USBID formats VID:PID, or "-" for non-USB devices.
func (p PortInfo) USBID() string {
	if !p.USB || (p.VID == "" && p.PID == "") {
		return "-"
	}
	return p.VID + ":" + p.PID
}
