// Package serialtransport implements transport.Device over a serial port,
// for devices that expose the register protocol via UART instead of USB
// bulk endpoints.
package serialtransport

import (
	"github.com/tarm/serial"

	"github.com/openbuttnakedgang/ellocopo2/transport"
)

// Device wraps a tarm/serial port as a transport.Device. There is no line
// terminator handling: ellocopo2 messages are length-delimited by their
// own header, not by a terminator byte.
type Device struct {
	port *serial.Port
}

// Open opens name at baud and wraps it as a Device.
func Open(name string, baud int) (*Device, error) {
	port, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, err
	}
	return &Device{port: port}, nil
}

// Opener adapts Open to transport.Opener for use with transport.Dial.
func Opener(name string, baud int) transport.Opener {
	return func() (transport.Device, error) { return Open(name, baud) }
}

// Write writes b to the serial port.
func (d *Device) Write(b []byte) (int, error) { return d.port.Write(b) }

// Read reads into b from the serial port.
func (d *Device) Read(b []byte) (int, error) { return d.port.Read(b) }

// Close closes the serial port.
func (d *Device) Close() error { return d.port.Close() }
