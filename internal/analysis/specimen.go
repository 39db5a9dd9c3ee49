package analysis

import (
	"github.com/tm-mech/diy-tensile-tester/internal/sample"
)

// Geometry describes the specimen cross-section and gauge length.
type Geometry struct {
	WidthMM     float64
	ThicknessMM float64
	GripMM      float64 // grip separation, used to convert displacement to strain
}

// AreaMM2 returns the cross-section area.
func (g Geometry) AreaMM2() float64 { return g.WidthMM * g.ThicknessMM }

// valid reports whether all dimensions are positive.
func (g Geometry) valid() bool {
	return g.WidthMM > 0 && g.ThicknessMM > 0 && g.GripMM > 0
}

// Params are the analysis tuning knobs.
type Params struct {
	// PreloadN is the force confirming grip engagement; samples before the
	// first one at or above it are trimmed.
	PreloadN float64

	// ModulusMinPct and ModulusMaxPct bound the strain window (percent)
	// for the elastic modulus fit.
	ModulusMinPct float64
	ModulusMaxPct float64
}

// DefaultParams are the standard settings: 10 N preload, modulus fit over
// 0.05–0.25 % strain.
func DefaultParams() Params {
	return Params{PreloadN: 10, ModulusMinPct: 0.05, ModulusMaxPct: 0.25}
}

// ModulusFit is the result of the elastic modulus regression.
type ModulusFit struct {
	MPa    float64 // slope of stress over strain within the fit window
	R2     float64 // goodness of fit; 0 when the window has zero stress variance
	Points int     // number of samples in the fit window
}

// Specimen is the immutable analysis result for one run. A parameter change
// means re-running Analyze, never editing a Specimen in place.
type Specimen struct {
	Geometry Geometry
	AreaMM2  float64

	// Series, trimmed to the preload point. DisplacementCorrMM is
	// compliance-corrected and zeroed at the trim point.
	ForceN             []float64
	DisplacementMM     []float64
	DisplacementCorrMM []float64
	StressMPa          []float64
	StrainPct          []float64
	StepLoss           []int

	TensileStrengthMPa float64
	ForceAtMaxN        float64
	MaxStressIndex     int

	// EModulus is nil when fewer than two samples fall inside the fit
	// window. An absent modulus is never rendered as a number.
	EModulus *ModulusFit

	ElongationAtBreakPct float64

	StepLossDetected bool
	StepLossIndex    int // first trimmed index with step loss; -1 when none
}

// Analyze runs the full pipeline over one recorded run:
// compliance correction, preload trim, zeroing, stress/strain conversion,
// tensile strength, modulus fit, elongation at break and step-loss detection.
//
// The run is not modified; every call recomputes from the raw series.
func Analyze(run sample.Run, table Table, geom Geometry, p Params) (*Specimen, error) {
	if run.Len() == 0 {
		return nil, ErrEmptySeries
	}
	if !geom.valid() {
		return nil, ErrInvalidGeometry
	}

	corrected, err := table.Correct(run.ForceN, run.DisplacementMM)
	if err != nil {
		return nil, err
	}

	// Trim everything before the preload point. When no sample reaches the
	// threshold the run is analyzed from its first sample; see DESIGN.md.
	idx := trimIndex(run.ForceN, p.PreloadN)
	force := append([]float64(nil), run.ForceN[idx:]...)
	disp := append([]float64(nil), run.DisplacementMM[idx:]...)
	dispCorr := corrected[idx:]
	stepLoss := append([]int(nil), run.StepLoss[idx:]...)

	// Zero the corrected displacement at the trim point.
	offset := dispCorr[0]
	for i := range dispCorr {
		dispCorr[i] -= offset
	}

	area := geom.AreaMM2()
	n := len(force)
	stress := make([]float64, n)
	strain := make([]float64, n)
	strainPct := make([]float64, n)
	for i := 0; i < n; i++ {
		stress[i] = force[i] / area
		strain[i] = dispCorr[i] / geom.GripMM
		strainPct[i] = strain[i] * 100
	}

	spec := &Specimen{
		Geometry:           geom,
		AreaMM2:            area,
		ForceN:             force,
		DisplacementMM:     disp,
		DisplacementCorrMM: dispCorr,
		StressMPa:          stress,
		StrainPct:          strainPct,
		StepLossIndex:      -1,
	}

	// Tensile strength: the maximum engineering stress.
	maxIdx := 0
	for i, s := range stress {
		if s > stress[maxIdx] {
			maxIdx = i
		}
	}
	spec.MaxStressIndex = maxIdx
	spec.TensileStrengthMPa = stress[maxIdx]
	spec.ForceAtMaxN = force[maxIdx]

	// Elastic modulus over the configured strain window.
	var fitStrain, fitStress []float64
	for i := 0; i < n; i++ {
		if strainPct[i] >= p.ModulusMinPct && strainPct[i] <= p.ModulusMaxPct {
			fitStrain = append(fitStrain, strain[i])
			fitStress = append(fitStress, stress[i])
		}
	}
	if len(fitStrain) >= 2 {
		slope, intercept := linearFit(fitStrain, fitStress)
		spec.EModulus = &ModulusFit{
			MPa:    slope,
			R2:     rSquared(fitStrain, fitStress, slope, intercept),
			Points: len(fitStrain),
		}
	}

	spec.ElongationAtBreakPct = strainPct[n-1]

	spec.StepLoss = stepLoss
	for i, v := range stepLoss {
		if v != 0 {
			spec.StepLossDetected = true
			spec.StepLossIndex = i
			break
		}
	}

	return spec, nil
}

// trimIndex returns the index of the first sample whose force reaches the
// preload threshold, or 0 when none does. Raising the threshold never moves
// the trim point backwards.
func trimIndex(force []float64, threshold float64) int {
	for i, f := range force {
		if f >= threshold {
			return i
		}
	}
	return 0
}
