package qty

import (
	"errors"
	"fmt"
)

// ErrInvertedInterval is returned when an interval would end before it starts.
var ErrInvertedInterval = errors.New("interval start must be <= end")

// Interval is the half-open range [start, end) on unit U. Abutting intervals
// share no point.
type Interval[U Unit] struct {
	start, end Quantity[U]
}

// NewInterval returns [start, end).
func NewInterval[U Unit](start, end Quantity[U]) (Interval[U], error) {
	if start.value > end.value {
		return Interval[U]{}, fmt.Errorf("%w: [%v, %v)", ErrInvertedInterval, start, end)
	}
	return Interval[U]{start: start, end: end}, nil
}

// MustInterval is NewInterval over raw values; it panics if start > end.
func MustInterval[U Unit](start, end float64) Interval[U] {
	iv, err := NewInterval(New[U](start), New[U](end))
	if err != nil {
		panic(err)
	}
	return iv
}

func (iv Interval[U]) Start() Quantity[U]    { return iv.start }
func (iv Interval[U]) End() Quantity[U]      { return iv.end }
func (iv Interval[U]) Duration() Quantity[U] { return iv.end.Sub(iv.start) }

// Contains reports whether p lies in [start, end).
func (iv Interval[U]) Contains(p Quantity[U]) bool {
	return iv.start.value <= p.value && p.value < iv.end.value
}

// Overlaps reports whether the intervals share an interior point.
func (iv Interval[U]) Overlaps(o Interval[U]) bool {
	return iv.start.value < o.end.value && o.start.value < iv.end.value
}

// Intersection returns the common part of both intervals, if any.
func (iv Interval[U]) Intersection(o Interval[U]) (Interval[U], bool) {
	if !iv.Overlaps(o) {
		return Interval[U]{}, false
	}
	return Interval[U]{start: Max(iv.start, o.start), end: Min(iv.end, o.end)}, true
}

// CanFit reports whether a span of size starting at start stays inside iv.
func (iv Interval[U]) CanFit(start, size Quantity[U]) bool {
	return iv.Contains(start) && start.value+size.value <= iv.end.value
}

func (iv Interval[U]) String() string {
	return fmt.Sprintf("[%.3f, %.3f]", iv.start.value, iv.end.value)
}

// ConvertInterval re-expresses both bounds of iv in T.
func ConvertInterval[T, U Unit](iv Interval[U]) (Interval[T], error) {
	start, err := Convert[T](iv.start)
	if err != nil {
		return Interval[T]{}, err
	}
	end, err := Convert[T](iv.end)
	if err != nil {
		return Interval[T]{}, err
	}
	return Interval[T]{start: start, end: end}, nil
}
