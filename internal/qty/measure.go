package qty

import (
	"fmt"
	"strconv"
)

// Measure is a quantity whose unit is only known at runtime, such as a task
// size read from a plan file.
type Measure struct {
	Value float64
	Unit  Unit
}

// MeasureOf builds a measure from a registered unit symbol.
func MeasureOf(v float64, symbol string) (Measure, error) {
	u, ok := Lookup(symbol)
	if !ok {
		return Measure{}, fmt.Errorf("%w: %q", ErrUnknownUnit, symbol)
	}
	return Measure{Value: v, Unit: u}, nil
}

// In re-expresses m in unit u.
func (m Measure) In(u Unit) (Measure, error) {
	if m.Unit == nil {
		return Measure{}, fmt.Errorf("%w: measure has no unit", ErrUnknownUnit)
	}
	if !Compatible(m.Unit, u) {
		return Measure{}, &DimensionError{From: m.Unit, To: u}
	}
	return Measure{Value: rescale(m.Value, m.Unit, u), Unit: u}, nil
}

func (m Measure) String() string {
	if m.Unit == nil {
		return strconv.FormatFloat(m.Value, 'g', -1, 64)
	}
	return strconv.FormatFloat(m.Value, 'g', -1, 64) + " " + m.Unit.Symbol()
}

// ToAxis converts m onto the typed axis unit A.
func ToAxis[A Unit](m Measure) (Quantity[A], error) {
	var axis A
	converted, err := m.In(axis)
	if err != nil {
		return Quantity[A]{}, err
	}
	return Quantity[A]{value: converted.Value}, nil
}
