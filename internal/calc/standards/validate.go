package standards

import (
	"errors"
	"fmt"
)

// Validate checks a calculator definition and its standards against the
// catalog invariants. All problems are joined into one error.
func Validate(calc Calculator, stds []Standard) error {
	var errs []error
	if calc.ID == "" {
		errs = append(errs, errors.New("calculator id is required"))
	}
	if !calc.Family.Valid() {
		errs = append(errs, fmt.Errorf("calculator %s: unknown family %q", calc.ID, calc.Family))
	}
	if len(stds) == 0 {
		errs = append(errs, fmt.Errorf("calculator %s: no standards", calc.ID))
	}

	seen := make(map[string]bool, len(stds))
	for _, s := range stds {
		if s.ID == "" {
			errs = append(errs, fmt.Errorf("calculator %s: standard without id", calc.ID))
			continue
		}
		if seen[s.ID] {
			errs = append(errs, fmt.Errorf("standard %s: duplicate id", s.ID))
		}
		seen[s.ID] = true
		errs = append(errs, validateStandard(calc.Family, s)...)
	}
	if calc.DefaultStandard != "" && !seen[calc.DefaultStandard] {
		errs = append(errs, fmt.Errorf("calculator %s: default standard %q is not in the catalog",
			calc.ID, calc.DefaultStandard))
	}
	return errors.Join(errs...)
}

func validateStandard(family Family, s Standard) []error {
	var errs []error
	for i, sv := range s.Sieves {
		if sv.Label == "" {
			errs = append(errs, fmt.Errorf("standard %s: sieve %d has no label", s.ID, i))
		}
		if sv.MinPassing < 0 || sv.MaxPassing > 100 || sv.MinPassing > sv.MaxPassing {
			errs = append(errs, fmt.Errorf("standard %s: sieve %s band %.1f-%.1f out of 0..100",
				s.ID, sv.Label, sv.MinPassing, sv.MaxPassing))
		}
		if i > 0 && sv.SizeMM >= s.Sieves[i-1].SizeMM {
			errs = append(errs, fmt.Errorf("standard %s: sieve %s is not smaller than %s",
				s.ID, sv.Label, s.Sieves[i-1].Label))
		}
		for _, prev := range s.Sieves[:i] {
			if prev.Label == sv.Label {
				errs = append(errs, fmt.Errorf("standard %s: duplicate sieve %s", s.ID, sv.Label))
			}
		}
	}

	keys := make(map[string]bool, len(s.Rates))
	for _, r := range s.Rates {
		if r.Key == "" {
			errs = append(errs, fmt.Errorf("standard %s: rate without key", s.ID))
		}
		if keys[r.Key] {
			errs = append(errs, fmt.Errorf("standard %s: duplicate rate %s", s.ID, r.Key))
		}
		keys[r.Key] = true
		if r.Min < 0 || r.Min > r.Max {
			errs = append(errs, fmt.Errorf("standard %s: rate %s range %.2f-%.2f is invalid",
				s.ID, r.Key, r.Min, r.Max))
		}
	}

	switch family {
	case FamilyGradation:
		if len(s.Sieves) == 0 {
			errs = append(errs, fmt.Errorf("standard %s: gradation standard has no sieves", s.ID))
		}
	case FamilyAreaRate:
		if len(s.Rates) == 0 {
			errs = append(errs, fmt.Errorf("standard %s: area rate standard has no rates", s.ID))
		}
	case FamilyStaircase:
		if s.Mix == nil || s.Mix.Parts() <= 0 {
			errs = append(errs, fmt.Errorf("standard %s: staircase standard needs a mix ratio", s.ID))
		}
	}
	return errs
}
