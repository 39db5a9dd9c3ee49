package link

import (
	"fmt"
	"io"
	"strconv"
	"sync"
)

// Dispatcher serializes outbound commands onto the link. Commands are opaque
// newline-terminated ASCII strings; the firmware interprets them.
type Dispatcher struct {
	mu sync.Mutex
	w  io.Writer
}

// NewDispatcher returns a Dispatcher writing to w, normally the open Port.
func NewDispatcher(w io.Writer) *Dispatcher {
	return &Dispatcher{w: w}
}

func (d *Dispatcher) send(cmd string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := io.WriteString(d.w, cmd+"\n"); err != nil {
		return fmt.Errorf("link: send %s: %w", cmd, err)
	}
	return nil
}

// Start begins a tensile test.
func (d *Dispatcher) Start() error { return d.send("START") }

// Stop is the emergency stop.
func (d *Dispatcher) Stop() error { return d.send("STOP") }

// Up jogs the crosshead up for specimen positioning.
func (d *Dispatcher) Up() error { return d.send("UP") }

// Down jogs the crosshead down for specimen positioning.
func (d *Dispatcher) Down() error { return d.send("DOWN") }

// Tare zeroes the force measurement.
func (d *Dispatcher) Tare() error { return d.send("TARE") }

// Force requests a one-off force reading.
func (d *Dispatcher) Force() error { return d.send("FORCE") }

// Reset returns the machine to the IDLE state.
func (d *Dispatcher) Reset() error { return d.send("RESET") }

// Status requests a STATUS frame.
func (d *Dispatcher) Status() error { return d.send("STATUS") }

// SetSpeed sets the crosshead speed in mm/min.
func (d *Dispatcher) SetSpeed(mmPerMin float64) error {
	if mmPerMin <= 0 {
		return fmt.Errorf("link: speed must be positive, got %g", mmPerMin)
	}
	return d.send("SET_SPEED:" + strconv.FormatFloat(mmPerMin, 'g', -1, 64))
}

// SetDirection sets the pull direction: 1 = pull, -1 = return.
func (d *Dispatcher) SetDirection(dir int) error {
	if dir != 1 && dir != -1 {
		return fmt.Errorf("link: direction must be 1 or -1, got %d", dir)
	}
	return d.send("SET_DIR:" + strconv.Itoa(dir))
}
