// Package serialport opens serial devices for the servo bus and the
// host link.
package serialport

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/tarm/serial"
)

// Config describes a serial device.
type Config struct {
	Name        string        `yaml:"port"`
	Baud        int           `yaml:"baud"`
	ReadTimeout time.Duration `yaml:"read-timeout"`
}

// Port is an opened serial device.
type Port interface {
	io.ReadWriteCloser
	Flush() error
}

// Validate checks the device can be opened.
func (c Config) Validate() error {
	if c.Name == "" {
		return errors.New("serial port name is empty")
	}
	if c.Baud <= 0 {
		return errors.Errorf("serial port %s: invalid baud rate %d", c.Name, c.Baud)
	}
	return nil
}

// Open opens the device. A zero ReadTimeout blocks reads until data
// arrives.
func (c Config) Open() (Port, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        c.Name,
		Baud:        c.Baud,
		ReadTimeout: c.ReadTimeout,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", c.Name)
	}
	return port, nil
}

// Open opens the named device.
func Open(name string, baud int, readTimeout time.Duration) (Port, error) {
	return Config{Name: name, Baud: baud, ReadTimeout: readTimeout}.Open()
}
