package link

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tm-mech/diy-tensile-tester/internal/config"
	"github.com/tm-mech/diy-tensile-tester/internal/event"
	"github.com/tm-mech/diy-tensile-tester/internal/sample"
)

// readErrorWait is how long the reader backs off after a failed read before
// retrying. The link is never reconnected automatically; replugging the
// device is an explicit operator action.
const readErrorWait = 100 * time.Millisecond

// dataFieldCount is the exact field count of a DATA frame:
// tag;t_ms;steps;force_raw;ax;ay;az;endstop;step_loss
const dataFieldCount = 9

// Stats are the reader's monotonically increasing frame counters.
type Stats struct {
	FramesDecoded uint64 `json:"frames_decoded"`
	FramesDropped uint64 `json:"frames_dropped"`
	SamplesStored uint64 `json:"samples_stored"`
	ReadErrors    uint64 `json:"read_errors"`
}

// Reader continuously decodes newline-terminated frames from the serial port
// into the sample store and the event queue. It is the sole writer to both.
//
// A malformed frame is dropped and counted, never fatal; a failed read is
// logged and retried at its own cadence. Run returns only when ctx is done.
type Reader struct {
	port   Port
	store  *sample.Store
	events *event.Queue
	cal    config.CalibrationConfig

	// stepLossWarned dedupes the step-loss warning: the firmware flag is
	// sticky, so only the first flagged sample of a run produces a Warning.
	stepLossWarned atomic.Bool

	framesDecoded atomic.Uint64
	framesDropped atomic.Uint64
	samplesStored atomic.Uint64
	readErrors    atomic.Uint64
}

// NewReader returns a Reader decoding from port with the given calibration.
func NewReader(port Port, store *sample.Store, events *event.Queue, cal config.CalibrationConfig) *Reader {
	return &Reader{
		port:   port,
		store:  store,
		events: events,
		cal:    cal,
	}
}

// Run reads frames until ctx is cancelled. Samples recorded before
// cancellation stay in the store.
func (r *Reader) Run(ctx context.Context) {
	buf := make([]byte, 256)
	var pending []byte

	for {
		if ctx.Err() != nil {
			return
		}

		n, err := r.port.Read(buf)
		if err != nil {
			r.readErrors.Add(1)
			slog.Warn("link: read failed, retrying", "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(readErrorWait):
			}
			continue
		}
		if n == 0 {
			// Read timeout — the loop's idle cadence.
			continue
		}

		pending = append(pending, buf[:n]...)
		for {
			i := bytes.IndexByte(pending, '\n')
			if i < 0 {
				break
			}
			line := strings.TrimRight(string(pending[:i]), "\r")
			pending = pending[i+1:]
			if line != "" {
				r.handleLine(line)
			}
		}
	}
}

// ResetRun rearms the one-per-run step loss warning. Call it whenever the
// store is cleared for a new test.
func (r *Reader) ResetRun() {
	r.stepLossWarned.Store(false)
}

// Stats returns a snapshot of the frame counters.
func (r *Reader) Stats() Stats {
	return Stats{
		FramesDecoded: r.framesDecoded.Load(),
		FramesDropped: r.framesDropped.Load(),
		SamplesStored: r.samplesStored.Load(),
		ReadErrors:    r.readErrors.Load(),
	}
}

// handleLine decodes one frame. Decode failures drop the frame and bump the
// counter; the stream keeps flowing.
func (r *Reader) handleLine(line string) {
	parts := strings.Split(line, ";")

	var err error
	switch parts[0] {
	case "DATA":
		err = r.handleData(parts)
	case "EVENT":
		r.handleEvent(parts)
	case "STATUS":
		err = r.handleStatus(parts)
	default:
		err = fmt.Errorf("unknown frame tag %q", parts[0])
	}

	if err != nil {
		r.framesDropped.Add(1)
		slog.Debug("link: dropped frame", "line", line, "err", err)
		return
	}
	r.framesDecoded.Add(1)
}

func (r *Reader) handleData(parts []string) error {
	if len(parts) != dataFieldCount {
		return fmt.Errorf("DATA frame has %d fields, want %d", len(parts), dataFieldCount)
	}

	nums := make([]int, dataFieldCount-1)
	for i := 1; i < dataFieldCount; i++ {
		v, err := strconv.Atoi(parts[i])
		if err != nil {
			return fmt.Errorf("DATA field %d: %w", i, err)
		}
		nums[i-1] = v
	}

	s := sample.Sample{
		TimeS:          float64(nums[0]) / 1000.0,
		Steps:          nums[1],
		DisplacementMM: float64(nums[1]) / r.cal.StepsPerMM,
		ForceRaw:       nums[2],
		ForceN:         float64(nums[2]) * r.cal.ForceFactor,
		AccelX:         nums[3],
		AccelY:         nums[4],
		AccelZ:         nums[5],
		Endstop:        nums[6],
		StepLoss:       nums[7],
	}
	r.store.Append(s)
	r.samplesStored.Add(1)

	if s.StepLoss != 0 && r.stepLossWarned.CompareAndSwap(false, true) {
		r.events.Publish(event.Warning{Text: "step loss detected"})
	}
	return nil
}

func (r *Reader) handleEvent(parts []string) {
	name := "UNKNOWN"
	if len(parts) > 1 && parts[1] != "" {
		name = parts[1]
	}
	r.events.Publish(event.DeviceEvent{Name: name})
}

func (r *Reader) handleStatus(parts []string) error {
	if len(parts) < 4 {
		return fmt.Errorf("STATUS frame has %d fields, want 4", len(parts))
	}
	idx, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("STATUS state index: %w", err)
	}
	speed, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return fmt.Errorf("STATUS speed: %w", err)
	}
	dir, err := strconv.Atoi(parts[3])
	if err != nil {
		return fmt.Errorf("STATUS direction: %w", err)
	}

	r.events.Publish(event.StatusUpdate{
		State:         event.StateFromIndex(idx),
		SpeedMMPerMin: speed,
		Direction:     dir,
	})
	return nil
}
