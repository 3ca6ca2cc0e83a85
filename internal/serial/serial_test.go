package serial

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/andresmejia3/facelight/internal/types"
	goserial "go.bug.st/serial"
)

// MockPort records writes in memory and counts Close calls,
// standing in for a real device.
type MockPort struct {
	bytes.Buffer
	closes   int
	writeErr error
	short    bool
}

func (m *MockPort) Write(p []byte) (int, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	if m.short {
		return 0, nil
	}
	return m.Buffer.Write(p)
}

func (m *MockPort) Close() error {
	m.closes++
	return nil
}

func withOpener(t *testing.T, fn func(name string, baud int) (Port, error)) {
	t.Helper()
	orig := openPort
	openPort = fn
	t.Cleanup(func() { openPort = orig })
}

func TestWriteSendsOneBytePerCall(t *testing.T) {
	port := &MockPort{}
	ch := NewChannel("COM3", port)

	for _, sig := range []types.Signal{types.SignalOff, types.SignalOn, types.SignalOn, types.SignalOff} {
		if err := ch.Write(sig); err != nil {
			t.Fatalf("Write(%q) failed: %v", sig, err)
		}
	}

	if got := port.String(); got != "0110" {
		t.Errorf("Expected wire bytes %q, got %q", "0110", got)
	}
}

func TestWriteErrors(t *testing.T) {
	boom := errors.New("device unplugged")
	ch := NewChannel("COM3", &MockPort{writeErr: boom})
	if err := ch.Write(types.SignalOn); !errors.Is(err, boom) {
		t.Errorf("Expected wrapped device error, got %v", err)
	}

	ch = NewChannel("COM3", &MockPort{short: true})
	if err := ch.Write(types.SignalOn); !errors.Is(err, io.ErrShortWrite) {
		t.Errorf("Expected io.ErrShortWrite, got %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	port := &MockPort{}
	ch := NewChannel("COM3", port)

	for i := 0; i < 3; i++ {
		if err := ch.Close(); err != nil {
			t.Fatalf("Close #%d failed: %v", i+1, err)
		}
	}
	if port.closes != 1 {
		t.Errorf("Expected port closed exactly once, got %d", port.closes)
	}
}

func TestOpenPassesConfig(t *testing.T) {
	port := &MockPort{}
	var gotName string
	var gotBaud int
	withOpener(t, func(name string, baud int) (Port, error) {
		gotName, gotBaud = name, baud
		return port, nil
	})

	ch, err := Open(context.Background(), Config{Port: "/dev/ttyACM0", BaudRate: 9600})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer ch.Close()

	if gotName != "/dev/ttyACM0" || gotBaud != 9600 {
		t.Errorf("Opener got (%q, %d)", gotName, gotBaud)
	}
	if ch.Name() != "/dev/ttyACM0" {
		t.Errorf("Name() = %q", ch.Name())
	}
}

func TestOpenWaitsForSettle(t *testing.T) {
	withOpener(t, func(string, int) (Port, error) { return &MockPort{}, nil })

	settle := 30 * time.Millisecond
	start := time.Now()
	ch, err := Open(context.Background(), Config{Port: "COM3", BaudRate: 9600, Settle: settle})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer ch.Close()

	if elapsed := time.Since(start); elapsed < settle {
		t.Errorf("Open returned after %v, expected at least %v", elapsed, settle)
	}
}

func TestOpenCancelledDuringSettleClosesPort(t *testing.T) {
	port := &MockPort{}
	withOpener(t, func(string, int) (Port, error) { return port, nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, Config{Port: "COM3", BaudRate: 9600, Settle: time.Hour})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if port.closes != 1 {
		t.Errorf("Expected port closed once after cancel, got %d", port.closes)
	}
}

func TestOpenFailures(t *testing.T) {
	withOpener(t, func(string, int) (Port, error) {
		return nil, &goserial.PortError{}
	})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"Empty port", Config{BaudRate: 9600}},
		{"Zero baud", Config{Port: "COM3"}},
		{"Device error", Config{Port: "COM99", BaudRate: 9600}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), tt.cfg)
			if !errors.Is(err, ErrConnection) {
				t.Errorf("Expected ErrConnection, got %v", err)
			}
		})
	}
}

func TestUSBID(t *testing.T) {
	tests := []struct {
		p    PortInfo
		want string
	}{
		{PortInfo{Name: "/dev/ttyS0"}, "-"},
		{PortInfo{Name: "/dev/ttyACM0", USB: true, VID: "2341", PID: "0043"}, "2341:0043"},
		{PortInfo{Name: "/dev/ttyUSB0", USB: true}, "-"},
	}
	for _, tt := range tests {
		if got := tt.p.USBID(); got != tt.want {
			t.Errorf("USBID(%+v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}
