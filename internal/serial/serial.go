// Package serial is the one-way byte link to the indicator microcontroller.
package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/andresmejia3/facelight/internal/types"
	goserial "go.bug.st/serial"
)

// ErrConnection is wrapped by every failure to establish the link.
var ErrConnection = errors.New("serial connection failed")

// Port is the subset of a serial port the channel needs.
type Port interface {
	io.WriteCloser
}

// Config selects the device and line speed.
type Config struct {
	Port     string
	BaudRate int
	// Settle is how long to wait after opening before the first write.
	// Boards that reset on DTR need this to get through their bootloader.
	Settle time.Duration
}

// Channel sends one signal byte per call over an open serial port.
type Channel struct {
	name string
	port Port

	closeOnce sync.Once
	closeErr  error
}

// openPort opens an 8N1 port. Tests replace it.
var openPort = func(name string, baud int) (Port, error) {
	return goserial.Open(name, &goserial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   goserial.NoParity,
		StopBits: goserial.OneStopBit,
	})
}

// Open connects to cfg.Port and waits cfg.Settle before returning.
// A cancelled context during the settle pause closes the port.
func Open(ctx context.Context, cfg Config) (*Channel, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("%w: no port given", ErrConnection)
	}
	if cfg.BaudRate <= 0 {
		return nil, fmt.Errorf("%w: invalid baud rate %d", ErrConnection, cfg.BaudRate)
	}

	p, err := openPort(cfg.Port, cfg.BaudRate)
	if err != nil {
		return nil, fmt.Errorf("open %s at %d baud: %w: %w%s", cfg.Port, cfg.BaudRate, ErrConnection, err, hint(err))
	}

	ch := NewChannel(cfg.Port, p)

	if cfg.Settle > 0 {
		timer := time.NewTimer(cfg.Settle)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			_ = ch.Close()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return ch, nil
}

// NewChannel wraps an already open port.
func NewChannel(name string, p Port) *Channel {
	return &Channel{name: name, port: p}
}

// Name is the device the channel writes to.
func (c *Channel) Name() string { return c.name }

// Write sends exactly one byte. Nothing is read back and nothing is retried.
func (c *Channel) Write(sig types.Signal) error {
	n, err := c.port.Write([]byte{byte(sig)})
	if err != nil {
		return fmt.Errorf("write %q to %s: %w", byte(sig), c.name, err)
	}
	if n != 1 {
		return fmt.Errorf("write %q to %s: %w", byte(sig), c.name, io.ErrShortWrite)
	}
	return nil
}

// Close releases the port. Later calls return the first result.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.port.Close()
	})
	return c.closeErr
}

func hint(err error) string {
	var pe *goserial.PortError
	if !errors.As(err, &pe) {
		return ""
	}
	switch pe.Code() {
	case goserial.PortNotFound:
		return " (device not found; run `facelight ports`)"
	case goserial.PortBusy:
		return " (device busy; close any serial monitor)"
	case goserial.PermissionDenied:
		return " (permission denied; check the dialout/uucp group)"
	case goserial.InvalidSpeed:
		return " (baud rate not supported by the device)"
	}
	return ""
}
