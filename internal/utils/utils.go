package utils

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/ZanzyTHEbar/dagscale/internal/qty"
)

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%d µs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%d ms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.2f s", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.2f min", d.Minutes())
	}
	return fmt.Sprintf("%.2f h", d.Hours())
}

// Duration converts a seconds-axis quantity to a time.Duration, saturating
// at the representable range.
func Duration(q qty.Quantity[qty.Second]) time.Duration {
	ns := q.Value() * float64(time.Second)
	switch {
	case ns >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case ns <= math.MinInt64:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(math.Round(ns))
}

// FormatSeconds is FormatDuration for a seconds-axis quantity.
func FormatSeconds(q qty.Quantity[qty.Second]) string {
	return FormatDuration(Duration(q))
}

// CreateDirIfNotExists creates a directory if it doesn't exist
func CreateDirIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, 0o755)
	}
	return nil
}
