package session

import (
	"testing"

	"Civica/internal/calc/quantity"
	"Civica/internal/calc/standards"
	"Civica/internal/calc/units"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, calculator string, opts ...Option) *Session {
	t.Helper()
	cat, err := standards.MustDefault().Catalog(calculator)
	require.NoError(t, err)
	s, err := New(cat, opts...)
	require.NoError(t, err)
	return s
}

func quantityValue(t *testing.T, s *Session, name string) float64 {
	t.Helper()
	res := s.Result()
	require.NotNil(t, res)
	require.NotNil(t, res.Quantity)
	v, ok := res.Quantity.Value(name)
	require.True(t, ok, "missing %s", name)
	return v
}

func TestGradationSession(t *testing.T) {
	s := open(t, "bituminous-macadam")
	assert.Equal(t, Empty, s.State())
	assert.Equal(t, "Grading I", s.Standard().ID)

	require.NoError(t, s.SetRetained("37.5 mm", 50))
	assert.Equal(t, Empty, s.State(), "no total weight yet")

	require.NoError(t, s.SetTotalWeight("1000"))
	require.Equal(t, Computed, s.State())
	res := s.Result()
	require.Len(t, res.Gradation, 8)
	assert.InDelta(t, 95.0, res.Gradation[1].PercentPassing, 1e-9)
	require.NotNil(t, res.Summary)

	t.Run("results are replaced, not mutated", func(t *testing.T) {
		before := s.Result()
		require.NoError(t, s.SetRetained("26.5 mm", 100))
		after := s.Result()
		assert.NotSame(t, before, after)
		assert.InDelta(t, 95.0, before.Gradation[1].PercentPassing, 1e-9)
		assert.InDelta(t, 85.0, after.Gradation[2].PercentPassing, 1e-9)
	})

	t.Run("unknown sieve is rejected without changes", func(t *testing.T) {
		before := s.Inputs()
		err := s.SetRetained("19 mm", 10)
		assert.ErrorIs(t, err, ErrUnknownSieve)
		assert.Equal(t, before, s.Inputs())
	})

	t.Run("zero total empties the session", func(t *testing.T) {
		require.NoError(t, s.SetTotalWeight(0))
		assert.Equal(t, Empty, s.State())
		assert.Nil(t, s.Result())
		require.NoError(t, s.SetTotalWeight(1000))
		assert.Equal(t, Computed, s.State())
	})

	t.Run("standard change starts a new sample", func(t *testing.T) {
		require.NoError(t, s.SelectStandard("Grading II"))
		assert.Equal(t, Empty, s.State())
		assert.Empty(t, s.Inputs().Sample.Retained)
		require.NoError(t, s.SetRetained("19 mm", 10))
	})

	t.Run("unknown standard", func(t *testing.T) {
		err := s.SelectStandard("Grading III")
		assert.ErrorIs(t, err, standards.ErrNotFound)
		assert.Equal(t, "Grading II", s.Standard().ID)
	})
}

func TestMalformedNumbersWarn(t *testing.T) {
	s := open(t, "dbm")
	require.NoError(t, s.SetTotalWeight(1000))
	require.NoError(t, s.SetRetained("45 mm", "ten"))

	assert.Equal(t, Computed, s.State())
	assert.Equal(t, 0.0, s.Inputs().Sample.Retained["45 mm"])
	require.Len(t, s.Warnings(), 1)
	assert.Contains(t, s.Warnings()[0], "retained 45 mm")

	require.NoError(t, s.SetRetained("45 mm", ""))
	assert.Empty(t, s.Warnings(), "absent is not invalid")
}

func TestAsphaltSession(t *testing.T) {
	s := open(t, "asphalt")
	assert.Equal(t, Empty, s.State())

	require.NoError(t, s.SetDimension("length", 10, 0))
	require.NoError(t, s.SetDimension("width", 7, nil))
	assert.Equal(t, Empty, s.State())
	require.NoError(t, s.SetDimension("depth", 0, 10))

	require.Equal(t, Computed, s.State())
	assert.InDelta(t, 7.0, quantityValue(t, s, "volume_m3"), 1e-9)
	assert.InDelta(t, 16254.0, quantityValue(t, s, "total_quantity_kg"), 1e-6)
	assert.InDelta(t, 16.254, quantityValue(t, s, "total_quantity_t"), 1e-9)

	t.Run("unknown dimension", func(t *testing.T) {
		assert.ErrorIs(t, s.SetDimension("height", 1, 0), ErrUnknownField)
	})

	t.Run("feet", func(t *testing.T) {
		require.NoError(t, s.SetUnitSystem(units.Feet))
		// 10 ft × 7 ft × 10 in
		want := 10 * 7 * (10.0 / 12) * 0.3048 * 0.3048 * 0.3048
		assert.InDelta(t, want, quantityValue(t, s, "volume_m3"), 1e-9)
	})

	t.Run("reset clears inputs", func(t *testing.T) {
		require.NoError(t, s.Reset())
		assert.Equal(t, Empty, s.State())
		assert.Equal(t, units.Meter, s.Inputs().Geometry.System)
		assert.Equal(t, units.Pair{}, s.Inputs().Geometry.Dimensions["length"])
	})
}

func TestTackCoatSurfaceReselectsRate(t *testing.T) {
	s := open(t, "tack-coat")
	in := s.Inputs()
	assert.Equal(t, "normal", in.Surface)
	assert.Equal(t, 0.20, in.Rate)

	require.NoError(t, s.SetDimension("length", 100, 0))
	require.NoError(t, s.SetDimension("width", 7, 50))
	assert.InDelta(t, 150.0, quantityValue(t, s, "quantity"), 1e-9)

	require.NoError(t, s.SelectSurface("concrete"))
	assert.Equal(t, 0.30, s.Inputs().Rate)
	assert.InDelta(t, 225.0, quantityValue(t, s, "quantity"), 1e-9)

	require.NoError(t, s.SetRate(0.33))
	assert.InDelta(t, 247.5, quantityValue(t, s, "quantity"), 1e-9)

	t.Run("zero rate empties", func(t *testing.T) {
		require.NoError(t, s.SetRate(0))
		assert.Equal(t, Empty, s.State())
		require.NoError(t, s.SelectSurface("concrete"))
		assert.Equal(t, Computed, s.State())
	})

	t.Run("standard change picks the new default surface", func(t *testing.T) {
		require.NoError(t, s.SelectStandard("EN"))
		assert.Equal(t, "new-asphalt", s.Inputs().Surface)
		assert.Equal(t, 0.15, s.Inputs().Rate)
		assert.Equal(t, Computed, s.State(), "geometry survives a standard change")
	})

	t.Run("unknown surface", func(t *testing.T) {
		assert.ErrorIs(t, s.SelectSurface("gravel"), ErrUnknownField)
	})
}

func TestStaircaseDefaults(t *testing.T) {
	s := open(t, "staircase")
	assert.Equal(t, 11, s.Inputs().Count)
	assert.Equal(t, Computed, s.State(), "seeded defaults already compute")

	bags := quantityValue(t, s, "cement_bags")
	assert.Greater(t, bags, 0.0)

	require.NoError(t, s.SetCount(0))
	assert.Equal(t, Empty, s.State())

	require.NoError(t, s.Reset())
	assert.Equal(t, 11, s.Inputs().Count)
	assert.Equal(t, Computed, s.State())
	assert.Equal(t, bags, quantityValue(t, s, "cement_bags"))
}

func TestBODSession(t *testing.T) {
	s := open(t, "bod")
	require.Len(t, s.Inputs().BOD, 3)
	assert.Equal(t, Empty, s.State())

	for field, v := range map[string]any{"d1": 8.0, "d5": 3.0, "b1": 8.0, "b5": 7.9, "df": "2"} {
		require.NoError(t, s.SetBOD(0, field, v))
	}
	require.Equal(t, Computed, s.State())
	require.NotNil(t, s.Result().BOD.Average)
	assert.InDelta(t, 9.8, *s.Result().BOD.Average, 1e-9)

	require.NoError(t, s.SetBOD(4, "D1", 5))
	assert.Len(t, s.Inputs().BOD, 5)

	assert.ErrorIs(t, s.SetBOD(0, "ph", 7), ErrUnknownField)
	assert.ErrorIs(t, s.SetBOD(MaxBODRows, "d1", 7), ErrUnknownField)
	assert.ErrorIs(t, s.SetBOD(-1, "d1", 7), ErrUnknownField)
}

func TestApplyUnknownKind(t *testing.T) {
	s := open(t, "mss")
	assert.ErrorIs(t, s.Apply(Event{Kind: "colour"}), ErrUnknownField)
}

func TestObserver(t *testing.T) {
	var states []State
	s := open(t, "surface-dressing", WithObserver(func(calc string, st State) {
		assert.Equal(t, "surface-dressing", calc)
		states = append(states, st)
	}))
	require.NoError(t, s.SetTotalWeight(500))
	assert.Equal(t, []State{Empty, Computed}, states)
}

func TestSnapshot(t *testing.T) {
	s := open(t, "mss")
	require.NoError(t, s.SetTotalWeight(1000))
	require.NoError(t, s.SetRetained("5.6 mm", 300))

	snap := s.Snapshot()
	assert.Equal(t, "mss", snap.CalculatorID)
	assert.Equal(t, "Mix Seal Surfacing Gradation", snap.CalculatorName)
	assert.Equal(t, Computed, snap.State)
	require.NotNil(t, snap.Output)

	snap.Input.Sample.Retained["5.6 mm"] = 0
	assert.Equal(t, 300.0, s.Inputs().Sample.Retained["5.6 mm"], "snapshot does not alias session state")
}

func TestOverflowLeavesSessionEmpty(t *testing.T) {
	s := open(t, "bituminous-macadam")
	require.NoError(t, s.SetTotalWeight(1e-320))
	require.NoError(t, s.SetRetained("45 mm", 1))
	assert.Equal(t, Empty, s.State())
	assert.Nil(t, s.Result())

	require.NoError(t, s.SetTotalWeight(1000))
	assert.Equal(t, Computed, s.State())
}

func TestStaircaseCount(t *testing.T) {
	s := open(t, "staircase")

	require.NoError(t, s.SetCount("2.7"))
	assert.Equal(t, 2, s.Inputs().Count)

	require.NoError(t, s.SetCount(-4))
	assert.Equal(t, 0, s.Inputs().Count)
	assert.Equal(t, Empty, s.State())

	require.NoError(t, s.SetCount(11))
	assert.ErrorIs(t, s.SetCount(1e30), quantity.ErrCountRange)
	assert.Equal(t, 11, s.Inputs().Count)
	assert.Equal(t, Computed, s.State())
}
