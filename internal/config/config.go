// Package config resolves facelight defaults from FACELIGHT_* environment
// variables, falling back to the bench setup values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Defaults for a single board on the first camera.
const (
	DefaultCamera       = 0
	DefaultSerialPort   = "COM3"
	DefaultBaudRate     = 9600
	DefaultSettle       = 2 * time.Second
	DefaultCascade      = "haarcascade_frontalface_default.xml"
	DefaultScaleFactor  = 1.1
	DefaultMinNeighbors = 5
	DefaultWindowTitle  = "Face Detection"
	DefaultRetryDelay   = 100 * time.Millisecond
	MinRetryDelay       = time.Millisecond
	DefaultSink         = "serial"
)

// Environment variable names.
const (
	EnvCamera     = "FACELIGHT_CAMERA"
	EnvSerialPort = "FACELIGHT_SERIAL_PORT"
	EnvBaudRate   = "FACELIGHT_BAUD"
	EnvCascade    = "FACELIGHT_CASCADE"
	EnvSink       = "FACELIGHT_SINK"
	EnvGPIOPin    = "FACELIGHT_GPIO_PIN"
	EnvLogLevel   = "FACELIGHT_LOG_LEVEL"
)

// CascadeDirs are searched for a bare cascade file name that is not in the
// working directory.
var CascadeDirs = []string{
	"/usr/share/opencv4/haarcascades",
	"/usr/local/share/opencv4/haarcascades",
	"/opt/homebrew/share/opencv4/haarcascades",
	"/usr/share/opencv/haarcascades",
	"/usr/local/share/opencv/haarcascades",
}

// Camera returns the camera index from FACELIGHT_CAMERA or DefaultCamera.
// A malformed value yields DefaultCamera and an error.
func Camera() (int, error) {
	return intEnv(EnvCamera, DefaultCamera)
}

// SerialPort returns the serial device from FACELIGHT_SERIAL_PORT or DefaultSerialPort.
func SerialPort() string {
	return stringEnv(EnvSerialPort, DefaultSerialPort)
}

// BaudRate returns the baud rate from FACELIGHT_BAUD or DefaultBaudRate.
// A malformed value yields DefaultBaudRate and an error.
func BaudRate() (int, error) {
	return intEnv(EnvBaudRate, DefaultBaudRate)
}

// Cascade returns the cascade XML path from FACELIGHT_CASCADE or DefaultCascade.
func Cascade() string {
	return stringEnv(EnvCascade, DefaultCascade)
}

// Sink returns the indicator sink kind from FACELIGHT_SINK or DefaultSink.
func Sink() string {
	return stringEnv(EnvSink, DefaultSink)
}

// GPIOPin returns FACELIGHT_GPIO_PIN, empty when unset.
func GPIOPin() string {
	return os.Getenv(EnvGPIOPin)
}

// LogLevel returns FACELIGHT_LOG_LEVEL or "info".
func LogLevel() string {
	return stringEnv(EnvLogLevel, "info")
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Validate reports every malformed FACELIGHT_* value.
func Validate() error {
	var errs []error
	if _, err := Camera(); err != nil {
		errs = append(errs, err)
	}
	if _, err := BaudRate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// FindCascade resolves a cascade path. Paths that exist, or that name a
// directory, are returned unchanged; a bare file name missing from the
// working directory is looked up in CascadeDirs.
func FindCascade(path string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if filepath.Base(path) != path {
		return path
	}
	for _, dir := range CascadeDirs {
		candidate := filepath.Join(dir, path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return path
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s=%q is not an integer", key, v)
	}
	return n, nil
}
