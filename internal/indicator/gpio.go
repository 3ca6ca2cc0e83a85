package indicator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/andresmejia3/facelight/internal/types"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// ErrPinNotFound is returned when the host has no pin by the given name.
var ErrPinNotFound = errors.New("gpio pin not found")

// GPIO lights an LED wired to a host pin: High for on, Low for off.
type GPIO struct {
	pin gpio.PinOut

	closeOnce sync.Once
	closeErr  error
}

var hostInit = sync.OnceValue(func() error {
	_, err := host.Init()
	return err
})

// OpenGPIO initialises the host drivers and drives the named pin Low.
func OpenGPIO(name string) (*GPIO, error) {
	if err := hostInit(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("%w: %q", ErrPinNotFound, name)
	}
	return NewGPIO(pin)
}

// NewGPIO wraps an output pin and sets it Low.
func NewGPIO(pin gpio.PinOut) (*GPIO, error) {
	if err := pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("set %s low: %w", pin, err)
	}
	return &GPIO{pin: pin}, nil
}

// Write sets the pin level for sig.
func (g *GPIO) Write(sig types.Signal) error {
	level := gpio.Low
	if sig.On() {
		level = gpio.High
	}
	if err := g.pin.Out(level); err != nil {
		return fmt.Errorf("set %s %s: %w", g.pin, level, err)
	}
	return nil
}

// Close leaves the LED off. Later calls return the first result.
func (g *GPIO) Close() error {
	g.closeOnce.Do(func() {
		g.closeErr = g.pin.Out(gpio.Low)
	})
	return g.closeErr
}
