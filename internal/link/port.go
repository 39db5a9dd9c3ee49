package link

import (
	"fmt"
	"io"

	"go.bug.st/serial"

	"github.com/tm-mech/diy-tensile-tester/internal/config"
)

// Port is the narrow serial interface the reader and dispatcher need.
// go.bug.st/serial ports satisfy it; tests substitute in-memory fakes.
type Port interface {
	io.ReadWriteCloser
}

// Open connects to the configured serial device. Reads are bounded by the
// configured timeout: a timed-out Read returns (0, nil), which gives the
// reader loop its cancellation check cadence.
func Open(cfg config.LinkConfig) (Port, error) {
	mode := &serial.Mode{BaudRate: cfg.Baud}
	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("link: open %s: %w", cfg.Port, err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("link: set read timeout: %w", err)
	}
	return port, nil
}

// ListPorts returns the serial device names present on the system.
func ListPorts() ([]string, error) {
	return serial.GetPortsList()
}
