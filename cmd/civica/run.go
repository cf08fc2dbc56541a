package main

import (
	"fmt"
	"io"
	"os"

	"Civica/internal/calc/gradation"
	"Civica/internal/calc/importer"
	"Civica/internal/calc/standards"
	"Civica/internal/calc/units"
)

func loadLibrary(dataDir string) (*standards.Library, error) {
	if dataDir == "" {
		return standards.Default()
	}
	lib, err := standards.Load(os.DirFS(dataDir))
	if err != nil {
		return nil, fmt.Errorf("loading catalog from %s: %w", dataDir, err)
	}
	return lib, nil
}

func gradationStandard(dataDir, calculator, standard string) (standards.Standard, error) {
	lib, err := loadLibrary(dataDir)
	if err != nil {
		return standards.Standard{}, err
	}
	cat, err := lib.Catalog(calculator)
	if err != nil {
		return standards.Standard{}, err
	}
	if cat.Calculator().Family != standards.FamilyGradation {
		return standards.Standard{}, fmt.Errorf("%s is a %s calculator, not a gradation one", calculator, cat.Calculator().Family)
	}
	return cat.Get(standard)
}

func runGradation(w io.Writer, dataDir, calculator, standard string, total float64, retained map[string]string) error {
	std, err := gradationStandard(dataDir, calculator, standard)
	if err != nil {
		return err
	}
	sample := gradation.Sample{TotalWeight: total, Retained: make(map[string]float64, len(retained))}
	for label, v := range retained {
		if _, ok := std.Sieve(label); !ok {
			return fmt.Errorf("%s has no sieve %q", std.ID, label)
		}
		f, ok := units.CoerceStrict(v)
		if !ok {
			return fmt.Errorf("retained weight for %s: %q is not a number", label, v)
		}
		sample.Retained[label] = f
	}

	results := gradation.Evaluate(std, sample)
	if len(results) == 0 {
		fmt.Fprintln(w, "No result: total sample weight must be positive.")
		return nil
	}
	printGradation(w, std, results, gradation.Summarize(results, sample))
	return nil
}

func runImport(w io.Writer, dataDir, calculator, standard, path string) error {
	std, err := gradationStandard(dataDir, calculator, standard)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	samples, err := importer.Parse(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	reports, err := gradation.Batch(std, samples)
	if err != nil {
		return err
	}
	printBatch(w, std, reports)
	return nil
}
