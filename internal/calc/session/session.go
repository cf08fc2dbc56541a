package session

import (
	"errors"
	"fmt"
	"sort"

	"Civica/internal/calc/gradation"
	"Civica/internal/calc/quantity"
	"Civica/internal/calc/standards"
	"Civica/internal/calc/units"
)

var (
	ErrUnknownSieve = errors.New("unknown sieve")
	ErrUnknownField = errors.New("unknown field")
)

// MaxBODRows bounds how far a BOD event may grow the sample table.
const MaxBODRows = 50

type State string

const (
	Empty    State = "empty"
	Computed State = "computed"
)

// Inputs is the editable state of a session.
type Inputs struct {
	Standard string               `json:"standard"`
	Sample   gradation.Sample     `json:"sample"`
	Geometry quantity.Geometry    `json:"geometry"`
	Surface  string               `json:"surface,omitempty"`
	Rate     float64              `json:"rate,omitempty"`
	Count    int                  `json:"count,omitempty"`
	BOD      []quantity.BODSample `json:"bod,omitempty"`
}

func (in Inputs) clone() Inputs {
	out := in
	out.Sample.Retained = make(map[string]float64, len(in.Sample.Retained))
	for k, v := range in.Sample.Retained {
		out.Sample.Retained[k] = v
	}
	out.Geometry.Dimensions = make(map[string]units.Pair, len(in.Geometry.Dimensions))
	for k, v := range in.Geometry.Dimensions {
		out.Geometry.Dimensions[k] = v
	}
	out.BOD = append([]quantity.BODSample(nil), in.BOD...)
	return out
}

// Result is the latest computation. It is replaced on every recomputation.
type Result struct {
	Calculator string              `json:"calculator"`
	Standard   string              `json:"standard"`
	Family     standards.Family    `json:"family"`
	Gradation  []gradation.Result  `json:"gradation,omitempty"`
	Summary    *gradation.Summary  `json:"summary,omitempty"`
	Quantity   *quantity.Result    `json:"quantity,omitempty"`
	BOD        *quantity.BODResult `json:"bod,omitempty"`
}

// Observer is told about every recomputation.
type Observer func(calculator string, state State)

type Option func(*Session)

func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// Session is the reducer behind one open calculator. It is not safe for
// concurrent use; Registry serializes access per session.
type Session struct {
	calc     standards.Calculator
	catalog  *standards.Catalog
	std      standards.Standard
	in       Inputs
	result   *Result
	warnings map[string]string
	observer Observer
}

// New opens a session on the calculator's default standard with its seeded
// defaults and computes once.
func New(catalog *standards.Catalog, opts ...Option) (*Session, error) {
	s := &Session{
		calc:    catalog.Calculator(),
		catalog: catalog,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if err := s.reset(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) Calculator() standards.Calculator { return s.calc }
func (s *Session) Standard() standards.Standard { return s.std }

// Inputs returns a copy of the current inputs.
func (s *Session) Inputs() Inputs { return s.in.clone() }

// Result is the latest result, or nil in the empty state.
func (s *Session) Result() *Result { return s.result }

func (s *Session) State() State {
	if s.result == nil {
		return Empty
	}
	return Computed
}

// Warnings lists numeric fields that held text that is not a number. Those
// fields were used as 0.
func (s *Session) Warnings() []string {
	out := make([]string, 0, len(s.warnings))
	for _, msg := range s.warnings {
		out = append(out, msg)
	}
	sort.Strings(out)
	return out
}

func (s *Session) reset() error {
	std, err := s.catalog.Get(s.calc.DefaultStandard)
	if err != nil {
		return err
	}
	d := s.calc.Defaults
	in := Inputs{
		Standard: std.ID,
		Sample:   gradation.Sample{Retained: map[string]float64{}},
		Geometry: quantity.Geometry{
			System:     units.ParseSystem(d.System),
			Dimensions: make(map[string]units.Pair, len(s.calc.Dimensions)),
		},
		Count: d.Count,
	}
	for _, name := range s.calc.Dimensions {
		p := d.Dimensions[name]
		in.Geometry.Dimensions[name] = units.Pair{Primary: p.Primary, Secondary: p.Secondary}
	}
	if d.BODRows > 0 {
		in.BOD = make([]quantity.BODSample, d.BODRows)
	}
	s.std = std
	s.in = in
	s.warnings = map[string]string{}
	s.selectDefaultSurface()
	s.recompute()
	return nil
}

func (s *Session) selectDefaultSurface() {
	s.in.Surface, s.in.Rate = "", 0
	if rr, ok := s.std.DefaultRate(); ok {
		s.in.Surface, s.in.Rate = rr.Key, rr.Min
	}
}

func (s *Session) recompute() {
	res := &Result{Calculator: s.calc.ID, Standard: s.std.ID, Family: s.calc.Family}
	computed := false

	switch s.calc.Family {
	case standards.FamilyGradation:
		res.Gradation = gradation.Evaluate(s.std, s.in.Sample)
		res.Summary = gradation.Summarize(res.Gradation, s.in.Sample)
		computed = len(res.Gradation) > 0
	case standards.FamilyBOD:
		bod := quantity.BOD(s.std, s.in.BOD)
		res.BOD = &bod
		computed = bod.Computed > 0
	default:
		rate := s.in.Rate
		q, ok, err := quantity.Evaluate(s.calc.Family, s.std, quantity.Input{
			Geometry: s.in.Geometry,
			Key:      s.in.Surface,
			Rate:     &rate,
			Count:    s.in.Count,
		})
		if err == nil && ok {
			res.Quantity = &q
			computed = true
		}
	}

	if computed {
		s.result = res
	} else {
		s.result = nil
	}
	if s.observer != nil {
		s.observer(s.calc.ID, s.State())
	}
}

func (s *Session) coerce(field string, v any) float64 {
	f, ok := units.CoerceStrict(v)
	if ok {
		delete(s.warnings, field)
	} else {
		s.warnings[field] = fmt.Sprintf("%s: %v is not a number, using 0", field, v)
	}
	return f
}
