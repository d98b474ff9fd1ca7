package qty

import (
	"math"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_SameDimension(t *testing.T) {
	h, err := Convert[Hour](New[Second](5400))
	require.NoError(t, err)
	assert.InDelta(t, 1.5, h.Value(), 1e-12)

	d, err := Convert[Day](New[Second](86400))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, d.Value(), 1e-12)

	rad, err := Convert[Radian](New[Degree](180))
	require.NoError(t, err)
	assert.InDelta(t, math.Pi, rad.Value(), 1e-12)
}

func TestConvert_IdentityKeepsValue(t *testing.T) {
	s, err := Convert[Second](New[Second](0.1))
	require.NoError(t, err)
	assert.Equal(t, 0.1, s.Value())
}

func TestConvert_RoundTrip(t *testing.T) {
	values := []float64{0, 1, 1.5, 3.14159, 12345.678, 1e-6, 86400 * 365.25}
	for _, v := range values {
		mins, err := Convert[Minute](New[Second](v))
		require.NoError(t, err)
		back, err := Convert[Second](mins)
		require.NoError(t, err)
		assert.InDelta(t, v, back.Value(), 1e-9*math.Max(1, math.Abs(v)), "value %v", v)

		deg, err := Convert[Degree](New[Radian](v))
		require.NoError(t, err)
		rad, err := Convert[Radian](deg)
		require.NoError(t, err)
		assert.InDelta(t, v, rad.Value(), 1e-9*math.Max(1, math.Abs(v)), "value %v", v)
	}
}

func TestConvert_IncompatibleDimension(t *testing.T) {
	_, err := Convert[Meter](New[Second](1))
	require.ErrorIs(t, err, ErrIncompatibleDimension)

	var dimErr *DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, "s", dimErr.From.Symbol())
	assert.Equal(t, "m", dimErr.To.Symbol())

	assert.Panics(t, func() { MustConvert[Degree](New[Hour](1)) })
}

func TestQuantity_Arithmetic(t *testing.T) {
	a := New[Second](2)
	b := New[Second](0.5)

	assert.Equal(t, 2.5, a.Add(b).Value())
	assert.Equal(t, 1.5, a.Sub(b).Value())
	assert.Equal(t, 6.0, a.Scale(3).Value())
	assert.True(t, b.Less(a))
	assert.False(t, a.Less(b))
	assert.True(t, Zero[Second]().IsZero())
	assert.Equal(t, "2 s", a.String())
}

func TestMinMax(t *testing.T) {
	a := New[Second](10)
	b := New[Second](20)
	assert.Equal(t, 10.0, Min(a, b).Value())
	assert.Equal(t, 10.0, Min(b, a).Value())
	assert.Equal(t, 20.0, Max(a, b).Value())
	assert.Equal(t, 20.0, Max(b, a).Value())
	assert.Equal(t, 5.0, Min(New[Second](5), New[Second](5)).Value())
}

func TestQuantity_JSON(t *testing.T) {
	data, err := json.Marshal(New[Minute](2.5))
	require.NoError(t, err)
	assert.Equal(t, "2.5", string(data))

	var q Quantity[Minute]
	require.NoError(t, json.Unmarshal([]byte("7"), &q))
	assert.Equal(t, 7.0, q.Value())

	require.Error(t, json.Unmarshal([]byte(`"x"`), &q))
}

func TestMeasure(t *testing.T) {
	m, err := MeasureOf(90, "min")
	require.NoError(t, err)
	assert.Equal(t, "90 min", m.String())

	h, err := m.In(Hour{})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, h.Value, 1e-12)

	axis, err := ToAxis[Second](m)
	require.NoError(t, err)
	assert.InDelta(t, 5400, axis.Value(), 1e-9)

	_, err = ToAxis[Meter](m)
	require.ErrorIs(t, err, ErrIncompatibleDimension)

	_, err = MeasureOf(1, "furlong")
	require.ErrorIs(t, err, ErrUnknownUnit)

	_, err = Measure{Value: 1}.In(Second{})
	require.ErrorIs(t, err, ErrUnknownUnit)
}

func TestLookup(t *testing.T) {
	u, ok := Lookup("h")
	require.True(t, ok)
	assert.Equal(t, Time, u.Dimension())
	assert.Equal(t, 3600.0, u.Ratio())

	_, ok = Lookup("parsec")
	assert.False(t, ok)

	assert.Contains(t, Symbols(), "deg")
	assert.True(t, Compatible(Second{}, Day{}))
	assert.False(t, Compatible(Second{}, Kilometer{}))
}
