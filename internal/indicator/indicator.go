// Package indicator drives the on/off presence light.
//
// The default sink is the serial link to a microcontroller. A GPIO sink is
// available for hosts with the LED wired straight to a header pin.
package indicator

import (
	"context"
	"fmt"

	"github.com/andresmejia3/facelight/internal/serial"
	"github.com/andresmejia3/facelight/internal/types"
)

// Sink receives one signal per processed frame.
type Sink interface {
	Write(sig types.Signal) error
	Close() error
}

// Kinds of sink selectable from the command line.
const (
	KindSerial = "serial"
	KindGPIO   = "gpio"
)

// Config picks and configures a sink.
type Config struct {
	Kind    string
	Serial  serial.Config
	GPIOPin string
}

// Validate checks the fields the selected kind needs.
func (c Config) Validate() error {
	switch c.Kind {
	case KindSerial:
		if c.Serial.Port == "" {
			return fmt.Errorf("serial sink needs a port")
		}
		if c.Serial.BaudRate <= 0 {
			return fmt.Errorf("invalid baud rate %d", c.Serial.BaudRate)
		}
		if c.Serial.Settle < 0 {
			return fmt.Errorf("settle delay must not be negative")
		}
	case KindGPIO:
		if c.GPIOPin == "" {
			return fmt.Errorf("gpio sink needs a pin name (e.g. GPIO17)")
		}
	default:
		return fmt.Errorf("unknown sink %q (want %s or %s)", c.Kind, KindSerial, KindGPIO)
	}
	return nil
}

// Open opens the configured sink.
func Open(ctx context.Context, cfg Config) (Sink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Kind {
	case KindGPIO:
		g, err := OpenGPIO(cfg.GPIOPin)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		ch, err := serial.Open(ctx, cfg.Serial)
		if err != nil {
			return nil, err
		}
		return ch, nil
	}
}
