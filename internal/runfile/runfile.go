package runfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tm-mech/diy-tensile-tester/internal/analysis"
	"github.com/tm-mech/diy-tensile-tester/internal/sample"
)

// runHeader is the fixed column order of a run export. Older exports lack the
// trailing step_loss column; ReadRun accepts both.
var runHeader = []string{
	"time_s", "steps", "displacement_mm", "force_raw", "force_N",
	"accel_x", "accel_y", "accel_z", "endstop", "step_loss",
}

// specimenHeader is the column order of an analyzed specimen export.
var specimenHeader = []string{
	"displacement_mm", "displacement_corr_mm", "force_N",
	"stress_MPa", "strain_pct", "step_loss",
}

// WriteRun writes the run in the fixed 10-column format.
func WriteRun(w io.Writer, run sample.Run) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(runHeader); err != nil {
		return fmt.Errorf("runfile: write header: %w", err)
	}
	for i := 0; i < run.Len(); i++ {
		rec := []string{
			strconv.FormatFloat(run.TimeS[i], 'f', 3, 64),
			strconv.Itoa(run.Steps[i]),
			strconv.FormatFloat(run.DisplacementMM[i], 'f', 4, 64),
			strconv.Itoa(run.ForceRaw[i]),
			strconv.FormatFloat(run.ForceN[i], 'f', 3, 64),
			strconv.Itoa(run.AccelX[i]),
			strconv.Itoa(run.AccelY[i]),
			strconv.Itoa(run.AccelZ[i]),
			strconv.Itoa(run.Endstop[i]),
			strconv.Itoa(run.StepLoss[i]),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("runfile: write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveRun writes the run to a new file at path.
func SaveRun(path string, run sample.Run) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("runfile: create %s: %w", path, err)
	}
	if err := WriteRun(f, run); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadRun parses a run export. Legacy 9-column files (no step_loss) import
// with step_loss defaulting to 0.
func ReadRun(r io.Reader) (sample.Run, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1 // 9 or 10 columns

	if _, err := cr.Read(); err != nil {
		return sample.Run{}, fmt.Errorf("runfile: read header: %w", err)
	}

	var run sample.Run
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sample.Run{}, fmt.Errorf("runfile: row %d: %w", row, err)
		}
		if len(rec) < 9 {
			return sample.Run{}, fmt.Errorf("runfile: row %d: got %d columns, want at least 9", row, len(rec))
		}

		s, err := parseRow(rec)
		if err != nil {
			return sample.Run{}, fmt.Errorf("runfile: row %d: %w", row, err)
		}
		run.TimeS = append(run.TimeS, s.TimeS)
		run.Steps = append(run.Steps, s.Steps)
		run.DisplacementMM = append(run.DisplacementMM, s.DisplacementMM)
		run.ForceRaw = append(run.ForceRaw, s.ForceRaw)
		run.ForceN = append(run.ForceN, s.ForceN)
		run.AccelX = append(run.AccelX, s.AccelX)
		run.AccelY = append(run.AccelY, s.AccelY)
		run.AccelZ = append(run.AccelZ, s.AccelZ)
		run.Endstop = append(run.Endstop, s.Endstop)
		run.StepLoss = append(run.StepLoss, s.StepLoss)
	}
	return run, nil
}

// LoadRun reads a run export from path.
func LoadRun(path string) (sample.Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return sample.Run{}, fmt.Errorf("runfile: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRun(f)
}

func parseRow(rec []string) (sample.Sample, error) {
	var s sample.Sample
	var err error

	if s.TimeS, err = strconv.ParseFloat(rec[0], 64); err != nil {
		return s, fmt.Errorf("time_s: %w", err)
	}
	if s.Steps, err = strconv.Atoi(rec[1]); err != nil {
		return s, fmt.Errorf("steps: %w", err)
	}
	if s.DisplacementMM, err = strconv.ParseFloat(rec[2], 64); err != nil {
		return s, fmt.Errorf("displacement_mm: %w", err)
	}
	if s.ForceRaw, err = strconv.Atoi(rec[3]); err != nil {
		return s, fmt.Errorf("force_raw: %w", err)
	}
	if s.ForceN, err = strconv.ParseFloat(rec[4], 64); err != nil {
		return s, fmt.Errorf("force_N: %w", err)
	}
	if s.AccelX, err = strconv.Atoi(rec[5]); err != nil {
		return s, fmt.Errorf("accel_x: %w", err)
	}
	if s.AccelY, err = strconv.Atoi(rec[6]); err != nil {
		return s, fmt.Errorf("accel_y: %w", err)
	}
	if s.AccelZ, err = strconv.Atoi(rec[7]); err != nil {
		return s, fmt.Errorf("accel_z: %w", err)
	}
	if s.Endstop, err = strconv.Atoi(rec[8]); err != nil {
		return s, fmt.Errorf("endstop: %w", err)
	}
	if len(rec) > 9 {
		if s.StepLoss, err = strconv.Atoi(rec[9]); err != nil {
			return s, fmt.Errorf("step_loss: %w", err)
		}
	}
	return s, nil
}

// ReadTable parses a compliance lookup: one header line, then
// force_N;system_displacement_mm rows. Ordering is validated by the caller's
// use of the table; Validate is invoked here so a bad file fails fast.
func ReadTable(r io.Reader) (analysis.Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = 2

	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("runfile: read table header: %w", err)
	}

	var table analysis.Table
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("runfile: table row %d: %w", row, err)
		}
		force, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("runfile: table row %d force: %w", row, err)
		}
		disp, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("runfile: table row %d displacement: %w", row, err)
		}
		table = append(table, analysis.TablePoint{ForceN: force, DisplacementMM: disp})
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// LoadTable reads a compliance lookup from path.
func LoadTable(path string) (analysis.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("runfile: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTable(f)
}

// WriteSpecimen writes the analyzed curves in the 6-column export format.
func WriteSpecimen(w io.Writer, spec *analysis.Specimen) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(specimenHeader); err != nil {
		return fmt.Errorf("runfile: write header: %w", err)
	}
	for i := range spec.ForceN {
		rec := []string{
			strconv.FormatFloat(spec.DisplacementMM[i], 'f', 4, 64),
			strconv.FormatFloat(spec.DisplacementCorrMM[i], 'f', 4, 64),
			strconv.FormatFloat(spec.ForceN[i], 'f', 3, 64),
			strconv.FormatFloat(spec.StressMPa[i], 'f', 3, 64),
			strconv.FormatFloat(spec.StrainPct[i], 'f', 4, 64),
			strconv.Itoa(spec.StepLoss[i]),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("runfile: write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveSpecimen writes the analyzed curves to a new file at path.
func SaveSpecimen(path string, spec *analysis.Specimen) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("runfile: create %s: %w", path, err)
	}
	if err := WriteSpecimen(f, spec); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
