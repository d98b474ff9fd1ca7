// Package qty implements physical quantities tagged with their unit.
//
// A Quantity[U] carries its unit in the type, so quantities of different
// units cannot be mixed by accident; Convert moves a value between units of
// the same Dimension and refuses anything else.
package qty

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrIncompatibleDimension is returned when converting between units that
	// do not measure the same dimension.
	ErrIncompatibleDimension = errors.New("incompatible dimension")

	// ErrUnknownUnit is returned by lookups of unregistered unit symbols.
	ErrUnknownUnit = errors.New("unknown unit")
)

// DimensionError reports a refused conversion.
type DimensionError struct {
	From, To Unit
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: cannot convert %s (%s) to %s (%s)",
		ErrIncompatibleDimension, e.From.Symbol(), e.From.Dimension(), e.To.Symbol(), e.To.Dimension())
}

func (e *DimensionError) Unwrap() error { return ErrIncompatibleDimension }

// Quantity is a numeric value expressed in unit U.
type Quantity[U Unit] struct {
	value float64
}

// New returns v expressed in U.
func New[U Unit](v float64) Quantity[U] {
	return Quantity[U]{value: v}
}

// Zero returns the zero quantity of U.
func Zero[U Unit]() Quantity[U] {
	return Quantity[U]{}
}

// Value returns the raw number, in U.
func (q Quantity[U]) Value() float64 { return q.value }

// Unit returns the unit instance of U.
func (q Quantity[U]) Unit() Unit {
	var u U
	return u
}

func (q Quantity[U]) Add(o Quantity[U]) Quantity[U] { return Quantity[U]{value: q.value + o.value} }
func (q Quantity[U]) Sub(o Quantity[U]) Quantity[U] { return Quantity[U]{value: q.value - o.value} }
func (q Quantity[U]) Scale(f float64) Quantity[U]   { return Quantity[U]{value: q.value * f} }
func (q Quantity[U]) Less(o Quantity[U]) bool       { return q.value < o.value }
func (q Quantity[U]) IsZero() bool                  { return q.value == 0 }

// Measure drops the compile-time unit tag.
func (q Quantity[U]) Measure() Measure {
	return Measure{Value: q.value, Unit: q.Unit()}
}

func (q Quantity[U]) String() string {
	return strconv.FormatFloat(q.value, 'g', -1, 64) + " " + q.Unit().Symbol()
}

// MarshalJSON encodes the quantity as a bare number in U.
func (q Quantity[U]) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, q.value, 'g', -1, 64), nil
}

// UnmarshalJSON decodes a bare number in U.
func (q *Quantity[U]) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("decode quantity: %w", err)
	}
	q.value = v
	return nil
}

// Convert re-expresses q in unit T. Units of different dimensions are refused
// with a *DimensionError.
func Convert[T, U Unit](q Quantity[U]) (Quantity[T], error) {
	var from U
	var to T
	if !Compatible(from, to) {
		return Quantity[T]{}, &DimensionError{From: from, To: to}
	}
	return Quantity[T]{value: rescale(q.value, from, to)}, nil
}

// MustConvert is Convert for unit pairs known to be compatible. It panics on
// a dimension mismatch.
func MustConvert[T, U Unit](q Quantity[U]) Quantity[T] {
	out, err := Convert[T](q)
	if err != nil {
		panic(err)
	}
	return out
}

// Min returns the smaller of a and b; a on ties.
func Min[U Unit](a, b Quantity[U]) Quantity[U] {
	if b.value < a.value {
		return b
	}
	return a
}

// Max returns the larger of a and b; a on ties.
func Max[U Unit](a, b Quantity[U]) Quantity[U] {
	if b.value > a.value {
		return b
	}
	return a
}
