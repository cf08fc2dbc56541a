package standards

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned for ids that are not in a catalog or library.
var ErrNotFound = errors.New("standard not found")

// Family selects the formula a calculator runs.
type Family string

const (
	FamilyGradation  Family = "gradation"
	FamilyVolumetric Family = "volumetric"
	FamilyAreaRate   Family = "area_rate"
	FamilyBOD        Family = "bod"
	FamilyStaircase  Family = "staircase"
)

func (f Family) Valid() bool {
	switch f {
	case FamilyGradation, FamilyVolumetric, FamilyAreaRate, FamilyBOD, FamilyStaircase:
		return true
	}
	return false
}

type Metadata struct {
	Title       string `json:"title" yaml:"title"`
	Clause      string `json:"clause,omitempty" yaml:"clause"`
	Description string `json:"description,omitempty" yaml:"description"`
}

// SieveSpec is one row of a gradation envelope. Label is the key samples use.
type SieveSpec struct {
	Label      string  `json:"label" yaml:"label"`
	SizeMM     float64 `json:"size_mm" yaml:"size_mm"`
	MinPassing float64 `json:"min_passing" yaml:"min"`
	MaxPassing float64 `json:"max_passing" yaml:"max"`
}

// Accepts reports whether passing lies inside the inclusive tolerance band.
func (s SieveSpec) Accepts(passing float64) bool {
	return passing >= s.MinPassing && passing <= s.MaxPassing
}

// RateRange is a spray rate or density band keyed by surface/category.
type RateRange struct {
	Key          string  `json:"key" yaml:"key"`
	Label        string  `json:"label" yaml:"label"`
	Min          float64 `json:"min" yaml:"min"`
	Max          float64 `json:"max" yaml:"max"`
	Unit         string  `json:"unit" yaml:"unit"`
	QuantityUnit string  `json:"quantity_unit,omitempty" yaml:"quantity_unit"`
}

func (r RateRange) String() string {
	if r.Min == r.Max {
		return fmt.Sprintf("%.2f %s", r.Min, r.Unit)
	}
	return fmt.Sprintf("%.2f - %.2f %s", r.Min, r.Max, r.Unit)
}

// MixRatio is a cement:sand:aggregate proportion by volume.
type MixRatio struct {
	Cement    float64 `json:"cement" yaml:"cement"`
	Sand      float64 `json:"sand" yaml:"sand"`
	Aggregate float64 `json:"aggregate" yaml:"aggregate"`
}

func (m MixRatio) Parts() float64 { return m.Cement + m.Sand + m.Aggregate }

func (m MixRatio) String() string {
	return fmt.Sprintf("%s:%s:%s", trimFloat(m.Cement), trimFloat(m.Sand), trimFloat(m.Aggregate))
}

// Standard is a named reference specification with its tolerance tables and constants.
type Standard struct {
	ID        string             `json:"id" yaml:"id"`
	Metadata  Metadata           `json:"metadata" yaml:"metadata"`
	Sieves    []SieveSpec        `json:"sieves,omitempty" yaml:"sieves"`
	Rates     []RateRange        `json:"rates,omitempty" yaml:"rates"`
	Constants map[string]float64 `json:"constants,omitempty" yaml:"constants"`
	Mix       *MixRatio          `json:"mix,omitempty" yaml:"mix"`
}

// Sieve looks a sieve up by label.
func (s Standard) Sieve(label string) (SieveSpec, bool) {
	for _, sv := range s.Sieves {
		if sv.Label == label {
			return sv, true
		}
	}
	return SieveSpec{}, false
}

// Rate looks a rate up by key.
func (s Standard) Rate(key string) (RateRange, bool) {
	for _, r := range s.Rates {
		if r.Key == key {
			return r, true
		}
	}
	return RateRange{}, false
}

// DefaultRate is the first rate of the table, if any.
func (s Standard) DefaultRate() (RateRange, bool) {
	if len(s.Rates) == 0 {
		return RateRange{}, false
	}
	return s.Rates[0], true
}

// Constant returns a named constant or def when the standard does not set it.
func (s Standard) Constant(name string, def float64) float64 {
	if v, ok := s.Constants[name]; ok {
		return v
	}
	return def
}

// Summary is the list view of a standard.
type Summary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Clause string `json:"clause,omitempty"`
	Sieves int    `json:"sieves"`
	Rates  int    `json:"rates"`
}

func (s Standard) Summary() Summary {
	return Summary{
		ID:     s.ID,
		Title:  s.Metadata.Title,
		Clause: s.Metadata.Clause,
		Sieves: len(s.Sieves),
		Rates:  len(s.Rates),
	}
}

// Defaults seed a calculation session on creation and on reset.
type Defaults struct {
	System     string                `json:"system,omitempty" yaml:"system"`
	Dimensions map[string]DefaultPair `json:"dimensions,omitempty" yaml:"dimensions"`
	Count      int                   `json:"count,omitempty" yaml:"count"`
	BODRows    int                   `json:"bod_rows,omitempty" yaml:"bod_rows"`
}

type DefaultPair struct {
	Primary   float64 `json:"primary" yaml:"primary"`
	Secondary float64 `json:"secondary" yaml:"secondary"`
}

// Calculator describes one calculator page: its formula family and default standard.
type Calculator struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Icon            string   `json:"icon" yaml:"icon"`
	Category        string   `json:"category" yaml:"category"`
	Family          Family   `json:"family" yaml:"family"`
	DefaultStandard string   `json:"default_standard" yaml:"default_standard"`
	Dimensions      []string `json:"dimensions,omitempty" yaml:"dimensions"`
	Defaults        Defaults `json:"defaults" yaml:"defaults"`
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
