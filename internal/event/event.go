package event

import (
	"fmt"
	"sync"
)

// MachineState is the firmware state machine position reported in STATUS frames.
type MachineState int

const (
	StateIdle MachineState = iota
	StateRunning
	StateStopped
	StateError
	StateJog

	// StateUnknown is the sentinel for state indices outside the firmware
	// enumeration. A newer firmware must never crash an older host.
	StateUnknown
)

var stateNames = [...]string{"IDLE", "RUNNING", "STOPPED", "ERROR", "JOG"}

func (s MachineState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// StateFromIndex maps a firmware state index to a MachineState.
// Out-of-range indices map to StateUnknown.
func StateFromIndex(idx int) MachineState {
	if idx < 0 || idx >= len(stateNames) {
		return StateUnknown
	}
	return MachineState(idx)
}

// Message is the closed set of notification variants. Only the types in this
// package implement it.
type Message interface {
	message()
	String() string
}

// Warning is a host-side warning, e.g. the first step loss seen in a run.
type Warning struct {
	Text string
}

// DeviceEvent is a named out-of-band event emitted by the firmware
// (READY, TEST_DONE, ENDSTOP, ...). The name is passed through opaquely.
type DeviceEvent struct {
	Name string
}

// StatusUpdate is a decoded STATUS frame.
type StatusUpdate struct {
	State         MachineState
	SpeedMMPerMin float64
	Direction     int // 1 = pull, -1 = return
}

func (Warning) message()      {}
func (DeviceEvent) message()  {}
func (StatusUpdate) message() {}

func (w Warning) String() string     { return "[WARNING] " + w.Text }
func (e DeviceEvent) String() string { return "[EVENT] " + e.Name }
func (s StatusUpdate) String() string {
	return fmt.Sprintf("[STATUS] %s, Speed: %g mm/min, Dir: %d", s.State, s.SpeedMMPerMin, s.Direction)
}

// Queue is an unbounded FIFO of Messages with a non-blocking producer side.
type Queue struct {
	mu      sync.Mutex
	backlog []Message
	updates chan struct{}
}

// NewQueue returns an empty Queue.
func NewQueue() *Queue {
	return &Queue{updates: make(chan struct{}, 1)}
}

// Publish enqueues m. It never blocks, regardless of consumer pace.
func (q *Queue) Publish(m Message) {
	q.mu.Lock()
	q.backlog = append(q.backlog, m)
	q.mu.Unlock()

	select {
	case q.updates <- struct{}{}:
	default:
	}
}

// Drain removes and returns all queued messages in FIFO order.
// It returns nil when the queue is empty.
func (q *Queue) Drain() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.backlog
	q.backlog = nil
	return out
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.backlog)
}

// Updates signals when new messages may be available. The channel carries at
// most one pending notification; consumers should Drain after each receive.
func (q *Queue) Updates() <-chan struct{} {
	return q.updates
}
