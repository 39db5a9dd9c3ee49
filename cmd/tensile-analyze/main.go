// Command tensile-analyze post-processes recorded runs into stress-strain
// results: it applies the compliance correction, computes tensile strength,
// elastic modulus and elongation at break per specimen, and prints mean ± SD
// across specimens when more than one run is given.
//
// Analysis parameters come from the config file's analysis section when one
// is present; explicit flags override it.
//
// Usage:
//
//	tensile-analyze -width 10 -thickness 2 -grip 50 -table compliance_lookup.csv run1.csv run2.csv
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tm-mech/diy-tensile-tester/internal/analysis"
	"github.com/tm-mech/diy-tensile-tester/internal/config"
	"github.com/tm-mech/diy-tensile-tester/internal/runfile"
)

func main() {
	configPath := flag.String("config", "config.yaml", "config file supplying analysis defaults (optional)")
	width := flag.Float64("width", 0, "specimen width in mm (required)")
	thickness := flag.Float64("thickness", 0, "specimen thickness in mm (required)")
	grip := flag.Float64("grip", 0, "grip separation in mm (required)")
	tablePath := flag.String("table", "compliance_lookup.csv", "compliance lookup file")
	preload := flag.Float64("preload", analysis.DefaultParams().PreloadN, "preload trim threshold in N")
	save := flag.Bool("save", false, "write <run>_analyzed.csv and <run>_results.txt next to each input")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: tensile-analyze [flags] run.csv [run2.csv ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	setFlags := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	cfg, err := config.Load(*configPath)
	if err != nil {
		// A missing default config.yaml is fine. Anything else is fatal,
		// including an explicitly named file that does not exist.
		if setFlags["config"] || !errors.Is(err, os.ErrNotExist) {
			slog.Error("failed to load config", "path", *configPath, "err", err)
			os.Exit(1)
		}
		cfg = nil
	}

	geom := analysis.Geometry{WidthMM: *width, ThicknessMM: *thickness, GripMM: *grip}
	params, tableFile := resolveAnalysis(cfg, setFlags, *preload, *tablePath)

	table, err := runfile.LoadTable(tableFile)
	if err != nil {
		slog.Error("failed to load compliance table", "path", tableFile, "err", err)
		os.Exit(1)
	}

	var coll analysis.Collection
	for _, path := range flag.Args() {
		run, err := runfile.LoadRun(path)
		if err != nil {
			slog.Error("failed to load run", "path", path, "err", err)
			os.Exit(1)
		}

		spec, err := analysis.Analyze(run, table, geom, params)
		if err != nil {
			slog.Error("analysis failed", "path", path, "err", err)
			os.Exit(1)
		}

		label := filepath.Base(path)
		coll.Add(label, spec)

		if err := runfile.WriteSummary(os.Stdout, label, spec); err != nil {
			slog.Error("write summary", "err", err)
			os.Exit(1)
		}
		fmt.Println()

		if *save {
			if err := saveOutputs(path, label, spec); err != nil {
				slog.Error("save outputs", "path", path, "err", err)
				os.Exit(1)
			}
		}
	}

	if coll.Len() >= 2 {
		printStats(&coll)
	}
}

// resolveAnalysis merges the config file's analysis section with the command
// line: the config seeds the parameters and table path, explicitly set flags
// win. A nil cfg means no config file was found.
func resolveAnalysis(cfg *config.Config, setFlags map[string]bool, preload float64, tablePath string) (analysis.Params, string) {
	params := analysis.DefaultParams()
	if cfg != nil {
		params.PreloadN = cfg.Analysis.PreloadN
		params.ModulusMinPct = cfg.Analysis.ModulusMinPct
		params.ModulusMaxPct = cfg.Analysis.ModulusMaxPct
		if cfg.Analysis.ComplianceTable != "" && !setFlags["table"] {
			tablePath = cfg.Analysis.ComplianceTable
		}
	}
	if setFlags["preload"] {
		params.PreloadN = preload
	}
	return params, tablePath
}

// saveOutputs writes the analyzed curves and the results summary next to the
// input run file.
func saveOutputs(runPath, label string, spec *analysis.Specimen) error {
	base := strings.TrimSuffix(runPath, filepath.Ext(runPath))

	csvOut := base + "_analyzed.csv"
	if err := runfile.SaveSpecimen(csvOut, spec); err != nil {
		return err
	}
	slog.Info("saved", "path", csvOut)

	txtOut := base + "_results.txt"
	f, err := os.Create(txtOut)
	if err != nil {
		return err
	}
	if err := runfile.WriteSummary(f, label, spec); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	slog.Info("saved", "path", txtOut)
	return nil
}

// printStats prints mean ± sample SD across all loaded specimens.
func printStats(coll *analysis.Collection) {
	rule := strings.Repeat("=", 50)
	fmt.Printf("%s\nStatistics (%d specimens)\n%s\n", rule, coll.Len(), rule)

	for i := 0; i < coll.Len(); i++ {
		label, s := coll.At(i)
		mod := "N/A"
		if s.EModulus != nil {
			mod = fmt.Sprintf("%.2f GPa", s.EModulus.MPa/1000)
		}
		fmt.Printf("  %s: UTS=%.1f MPa  E=%s  elong=%.1f%%\n",
			label, s.TensileStrengthMPa, mod, s.ElongationAtBreakPct)
	}
	fmt.Println(strings.Repeat("-", 50))

	if st, err := coll.Stats(analysis.PropTensileStrength); err == nil {
		fmt.Printf("  UTS:        %.1f ± %.1f MPa\n", st.Mean, st.SD)
	}
	if st, err := coll.Stats(analysis.PropEModulus); err == nil {
		fmt.Printf("  E-modulus:  %.2f ± %.2f GPa\n", st.Mean/1000, st.SD/1000)
	} else {
		fmt.Println("  E-modulus:  insufficient data")
	}
	if st, err := coll.Stats(analysis.PropElongation); err == nil {
		fmt.Printf("  Elongation: %.1f ± %.1f %%\n", st.Mean, st.SD)
	}
	fmt.Println(rule)
}
