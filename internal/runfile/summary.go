package runfile

import (
	"fmt"
	"io"
	"strings"

	"github.com/tm-mech/diy-tensile-tester/internal/analysis"
)

// WriteSummary writes the human-readable results block for one analyzed
// specimen. An unavailable modulus renders as N/A, never as a number.
func WriteSummary(w io.Writer, source string, spec *analysis.Specimen) error {
	var b strings.Builder
	rule := strings.Repeat("=", 50)

	fmt.Fprintf(&b, "Tensile Test Analysis\n%s\n", rule)
	fmt.Fprintf(&b, "Source file:        %s\n", source)
	fmt.Fprintf(&b, "Data points:        %d\n\n", len(spec.ForceN))

	fmt.Fprintf(&b, "Specimen:\n")
	fmt.Fprintf(&b, "  Width:            %.2f mm\n", spec.Geometry.WidthMM)
	fmt.Fprintf(&b, "  Thickness:        %.2f mm\n", spec.Geometry.ThicknessMM)
	fmt.Fprintf(&b, "  Area:             %.2f mm²\n", spec.AreaMM2)
	fmt.Fprintf(&b, "  Grip separation:  %.1f mm\n\n", spec.Geometry.GripMM)

	fmt.Fprintf(&b, "Results:\n")
	fmt.Fprintf(&b, "  Tensile strength: %.1f MPa (%.0f N)\n", spec.TensileStrengthMPa, spec.ForceAtMaxN)
	if m := spec.EModulus; m != nil {
		fmt.Fprintf(&b, "  E-modulus:        %.2f GPa (R²=%.4f, %d pts)\n", m.MPa/1000, m.R2, m.Points)
	} else {
		fmt.Fprintf(&b, "  E-modulus:        N/A (not enough data in fit window)\n")
	}
	fmt.Fprintf(&b, "  Elong. at break:  %.2f%%\n", spec.ElongationAtBreakPct)
	if spec.StepLossDetected {
		i := spec.StepLossIndex
		fmt.Fprintf(&b, "  Step Loss:        DETECTED at %.0f N / %.2f%% strain\n",
			spec.ForceN[i], spec.StrainPct[i])
	} else {
		fmt.Fprintf(&b, "  Step Loss:        none\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
