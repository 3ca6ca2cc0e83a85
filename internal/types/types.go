package types

import (
	"fmt"
	"image"
)

// Signal is the single byte sent to the indicator once per processed frame.
type Signal byte

const (
	// SignalOff means no face was found in the frame.
	SignalOff Signal = '0'
	// SignalOn means at least one face was found in the frame.
	SignalOn Signal = '1'
)

// SignalFor maps a detection count to the byte sent for that frame.
// Three faces produce the same single '1' as one face.
func SignalFor(faces int) Signal {
	if faces > 0 {
		return SignalOn
	}
	return SignalOff
}

// ParseSignal accepts "0", "1", "on" and "off".
func ParseSignal(s string) (Signal, error) {
	switch s {
	case "1", "on", "ON", "On":
		return SignalOn, nil
	case "0", "off", "OFF", "Off":
		return SignalOff, nil
	}
	return 0, fmt.Errorf("invalid signal %q (want 0, 1, on or off)", s)
}

// On reports whether s lights the indicator.
func (s Signal) On() bool { return s == SignalOn }

func (s Signal) String() string {
	switch s {
	case SignalOn:
		return "on"
	case SignalOff:
		return "off"
	}
	return fmt.Sprintf("Signal(%d)", byte(s))
}

// FaceRegion is an axis-aligned face candidate in frame coordinates.
// It is produced fresh for every frame and never retained.
type FaceRegion = image.Rectangle
