package sample

// Sample is one decoded measurement frame from the microcontroller.
// ForceN and DisplacementMM are derived from the raw counter values using the
// calibration constants in effect when the sample was appended.
type Sample struct {
	TimeS          float64 // seconds since the firmware started streaming
	Steps          int     // signed stepper position
	DisplacementMM float64 // Steps / steps-per-mm
	ForceRaw       int     // raw load cell ADC value
	ForceN         float64 // ForceRaw × force calibration factor
	AccelX         int
	AccelY         int
	AccelZ         int
	Endstop        int // 0/1
	StepLoss       int // 0/1, sticky from the firmware side
}

// Run holds the parallel measurement columns of one recorded test.
// The column layout mirrors the CSV export contract, so a Run round-trips
// through runfile without reshaping.
type Run struct {
	TimeS          []float64
	Steps          []int
	DisplacementMM []float64
	ForceRaw       []int
	ForceN         []float64
	AccelX         []int
	AccelY         []int
	AccelZ         []int
	Endstop        []int
	StepLoss       []int
}

// Len returns the number of samples in the run.
func (r *Run) Len() int { return len(r.TimeS) }

// append adds one sample to every column.
func (r *Run) append(s Sample) {
	r.TimeS = append(r.TimeS, s.TimeS)
	r.Steps = append(r.Steps, s.Steps)
	r.DisplacementMM = append(r.DisplacementMM, s.DisplacementMM)
	r.ForceRaw = append(r.ForceRaw, s.ForceRaw)
	r.ForceN = append(r.ForceN, s.ForceN)
	r.AccelX = append(r.AccelX, s.AccelX)
	r.AccelY = append(r.AccelY, s.AccelY)
	r.AccelZ = append(r.AccelZ, s.AccelZ)
	r.Endstop = append(r.Endstop, s.Endstop)
	r.StepLoss = append(r.StepLoss, s.StepLoss)
}

// Clone returns a deep copy of the run.
func (r *Run) Clone() Run {
	return Run{
		TimeS:          append([]float64(nil), r.TimeS...),
		Steps:          append([]int(nil), r.Steps...),
		DisplacementMM: append([]float64(nil), r.DisplacementMM...),
		ForceRaw:       append([]int(nil), r.ForceRaw...),
		ForceN:         append([]float64(nil), r.ForceN...),
		AccelX:         append([]int(nil), r.AccelX...),
		AccelY:         append([]int(nil), r.AccelY...),
		AccelZ:         append([]int(nil), r.AccelZ...),
		Endstop:        append([]int(nil), r.Endstop...),
		StepLoss:       append([]int(nil), r.StepLoss...),
	}
}

// At returns the i'th sample reassembled from the columns.
func (r *Run) At(i int) Sample {
	return Sample{
		TimeS:          r.TimeS[i],
		Steps:          r.Steps[i],
		DisplacementMM: r.DisplacementMM[i],
		ForceRaw:       r.ForceRaw[i],
		ForceN:         r.ForceN[i],
		AccelX:         r.AccelX[i],
		AccelY:         r.AccelY[i],
		AccelZ:         r.AccelZ[i],
		Endstop:        r.Endstop[i],
		StepLoss:       r.StepLoss[i],
	}
}
