package session

import (
	"fmt"
	"strings"

	"Civica/internal/calc/gradation"
	"Civica/internal/calc/quantity"
	"Civica/internal/calc/units"
)

type EventKind string

const (
	EventStandard    EventKind = "standard"
	EventTotalWeight EventKind = "total_weight"
	EventRetained    EventKind = "retained"
	EventDimension   EventKind = "dimension"
	EventUnitSystem  EventKind = "unit_system"
	EventSurface     EventKind = "surface"
	EventRate        EventKind = "rate"
	EventCount       EventKind = "count"
	EventBOD         EventKind = "bod"
	EventReset       EventKind = "reset"
)

// Event is one user edit.
//
//	standard     Key = standard id
//	retained     Key = sieve label, Value = grams
//	dimension    Key = dimension name, Part = primary|secondary, Value = number
//	surface      Key = rate key
//	bod          Row = table row, Key = d1|d5|b1|b5|df, Value = mg/L
//
// Other kinds read Value only.
type Event struct {
	Kind  EventKind `json:"kind"`
	Key   string    `json:"key,omitempty"`
	Part  string    `json:"part,omitempty"`
	Row   int       `json:"row,omitempty"`
	Value any       `json:"value,omitempty"`
}

// Apply validates the event, mutates the inputs and recomputes. A rejected
// event leaves the session untouched.
func (s *Session) Apply(ev Event) error {
	switch ev.Kind {
	case EventReset:
		return s.reset()
	case EventStandard:
		std, err := s.catalog.Get(ev.Key)
		if err != nil {
			return err
		}
		s.std = std
		s.in.Standard = std.ID
		s.in.Sample = gradation.Sample{Retained: map[string]float64{}}
		s.clearWarnings("total weight", "retained ")
		s.selectDefaultSurface()
	case EventTotalWeight:
		s.in.Sample.TotalWeight = s.coerce("total weight", ev.Value)
	case EventRetained:
		if _, ok := s.std.Sieve(ev.Key); !ok {
			return fmt.Errorf("%s in %s: %w", ev.Key, s.std.ID, ErrUnknownSieve)
		}
		s.in.Sample.Retained[ev.Key] = s.coerce("retained "+ev.Key, ev.Value)
	case EventDimension:
		if !s.hasDimension(ev.Key) {
			return fmt.Errorf("dimension %q: %w", ev.Key, ErrUnknownField)
		}
		p := s.in.Geometry.Dimensions[ev.Key]
		switch strings.ToLower(ev.Part) {
		case "", "primary":
			p.Primary = s.coerce(ev.Key, ev.Value)
		case "secondary":
			p.Secondary = s.coerce(ev.Key+" (secondary)", ev.Value)
		default:
			return fmt.Errorf("dimension part %q: %w", ev.Part, ErrUnknownField)
		}
		s.in.Geometry.Dimensions[ev.Key] = p
	case EventUnitSystem:
		s.in.Geometry.System = units.ParseSystem(fmt.Sprint(ev.Value))
	case EventSurface:
		rr, ok := s.std.Rate(ev.Key)
		if !ok {
			return fmt.Errorf("surface %q: %w", ev.Key, ErrUnknownField)
		}
		s.in.Surface, s.in.Rate = rr.Key, rr.Min
	case EventRate:
		s.in.Rate = s.coerce("rate", ev.Value)
	case EventCount:
		n, err := quantity.Count(units.Coerce(ev.Value))
		if err != nil {
			return err
		}
		s.coerce("count", ev.Value)
		s.in.Count = n
	case EventBOD:
		if ev.Row < 0 || ev.Row >= MaxBODRows {
			return fmt.Errorf("bod row %d: %w", ev.Row, ErrUnknownField)
		}
		field := strings.ToLower(ev.Key)
		if !isBODField(field) {
			return fmt.Errorf("bod field %q: %w", ev.Key, ErrUnknownField)
		}
		for len(s.in.BOD) <= ev.Row {
			s.in.BOD = append(s.in.BOD, quantity.BODSample{})
		}
		v := s.coerce(fmt.Sprintf("row %d %s", ev.Row+1, field), ev.Value)
		setBODField(&s.in.BOD[ev.Row], field, v)
	default:
		return fmt.Errorf("event %q: %w", ev.Kind, ErrUnknownField)
	}
	s.recompute()
	return nil
}

func (s *Session) SelectStandard(id string) error {
	return s.Apply(Event{Kind: EventStandard, Key: id})
}

func (s *Session) SetTotalWeight(v any) error {
	return s.Apply(Event{Kind: EventTotalWeight, Value: v})
}

func (s *Session) SetRetained(label string, v any) error {
	return s.Apply(Event{Kind: EventRetained, Key: label, Value: v})
}

// SetDimension sets both components of a dimension.
func (s *Session) SetDimension(name string, primary, secondary any) error {
	if err := s.Apply(Event{Kind: EventDimension, Key: name, Part: "primary", Value: primary}); err != nil {
		return err
	}
	return s.Apply(Event{Kind: EventDimension, Key: name, Part: "secondary", Value: secondary})
}

func (s *Session) SetUnitSystem(system units.System) error {
	return s.Apply(Event{Kind: EventUnitSystem, Value: string(system)})
}

// SelectSurface picks a rate row and re-selects the numeric rate from it.
func (s *Session) SelectSurface(key string) error {
	return s.Apply(Event{Kind: EventSurface, Key: key})
}

func (s *Session) SetRate(v any) error {
	return s.Apply(Event{Kind: EventRate, Value: v})
}

func (s *Session) SetCount(v any) error {
	return s.Apply(Event{Kind: EventCount, Value: v})
}

func (s *Session) SetBOD(row int, field string, v any) error {
	return s.Apply(Event{Kind: EventBOD, Row: row, Key: field, Value: v})
}

func (s *Session) Reset() error {
	return s.Apply(Event{Kind: EventReset})
}

func (s *Session) hasDimension(name string) bool {
	for _, d := range s.calc.Dimensions {
		if d == name {
			return true
		}
	}
	return false
}

func (s *Session) clearWarnings(prefixes ...string) {
	for field := range s.warnings {
		for _, p := range prefixes {
			if strings.HasPrefix(field, p) {
				delete(s.warnings, field)
			}
		}
	}
}

func isBODField(f string) bool {
	switch f {
	case "d1", "d5", "b1", "b5", "df":
		return true
	}
	return false
}

func setBODField(b *quantity.BODSample, field string, v float64) {
	switch field {
	case "d1":
		b.D1 = v
	case "d5":
		b.D5 = v
	case "b1":
		b.B1 = v
	case "b5":
		b.B5 = v
	case "df":
		b.DF = v
	}
}
