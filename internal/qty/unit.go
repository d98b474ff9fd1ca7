package qty

import (
	"math"
	"sort"
)

// Dimension identifies the physical dimension a unit measures.
type Dimension int

const (
	// Dimensionless quantities are plain ratios or counts.
	Dimensionless Dimension = iota
	// Time is measured in seconds at the base.
	Time
	// Length is measured in meters at the base.
	Length
	// Angle is measured in radians at the base.
	Angle
)

func (d Dimension) String() string {
	switch d {
	case Time:
		return "time"
	case Length:
		return "length"
	case Angle:
		return "angle"
	default:
		return "dimensionless"
	}
}

// Unit describes a unit of measure. Implementations are zero-size types so
// that a Quantity can be tagged with its unit at compile time.
type Unit interface {
	// Symbol is the short printable name ("s", "min", "km").
	Symbol() string
	// Dimension is the physical dimension the unit measures.
	Dimension() Dimension
	// Ratio scales one of this unit to the base unit of its dimension.
	Ratio() float64
}

// Time units.
type (
	Millisecond struct{}
	Second      struct{}
	Minute      struct{}
	Hour        struct{}
	Day         struct{}
)

func (Millisecond) Symbol() string       { return "ms" }
func (Millisecond) Dimension() Dimension { return Time }
func (Millisecond) Ratio() float64       { return 1e-3 }

func (Second) Symbol() string       { return "s" }
func (Second) Dimension() Dimension { return Time }
func (Second) Ratio() float64       { return 1 }

func (Minute) Symbol() string       { return "min" }
func (Minute) Dimension() Dimension { return Time }
func (Minute) Ratio() float64       { return 60 }

func (Hour) Symbol() string       { return "h" }
func (Hour) Dimension() Dimension { return Time }
func (Hour) Ratio() float64       { return 3600 }

func (Day) Symbol() string       { return "d" }
func (Day) Dimension() Dimension { return Time }
func (Day) Ratio() float64       { return 86400 }

// Length units.
type (
	Meter     struct{}
	Kilometer struct{}
)

func (Meter) Symbol() string       { return "m" }
func (Meter) Dimension() Dimension { return Length }
func (Meter) Ratio() float64       { return 1 }

func (Kilometer) Symbol() string       { return "km" }
func (Kilometer) Dimension() Dimension { return Length }
func (Kilometer) Ratio() float64       { return 1e3 }

// Angle units.
type (
	Radian struct{}
	Degree struct{}
)

func (Radian) Symbol() string       { return "rad" }
func (Radian) Dimension() Dimension { return Angle }
func (Radian) Ratio() float64       { return 1 }

func (Degree) Symbol() string       { return "deg" }
func (Degree) Dimension() Dimension { return Angle }
func (Degree) Ratio() float64       { return math.Pi / 180 }

var registry = map[string]Unit{}

func init() {
	for _, u := range []Unit{
		Millisecond{}, Second{}, Minute{}, Hour{}, Day{},
		Meter{}, Kilometer{},
		Radian{}, Degree{},
	} {
		registry[u.Symbol()] = u
	}
}

// Lookup returns the unit registered under symbol.
func Lookup(symbol string) (Unit, bool) {
	u, ok := registry[symbol]
	return u, ok
}

// Symbols returns every registered unit symbol, sorted.
func Symbols() []string {
	out := make([]string, 0, len(registry))
	for s := range registry {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Compatible reports whether values can be converted between a and b.
func Compatible(a, b Unit) bool {
	return a.Dimension() == b.Dimension()
}

func rescale(v float64, from, to Unit) float64 {
	fr, tr := from.Ratio(), to.Ratio()
	if fr == tr {
		return v
	}
	return v * fr / tr
}
