package uploader

import (
	"fmt"
	"math"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// throttle reduces a stream of progress fractions to at most one
// notification per 10% threshold. A fraction which crosses several
// thresholds at once produces a single notification at the highest one.
type throttle struct {
	next int // next threshold, in tenths
	fn   func(float64)
}

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func newThrottle(fn func(float64)) *throttle {
	return &throttle{next: 1, fn: fn}
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// FormatPercent renders a fraction as a whole percentage, such as "30%"
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (t *throttle) update(f float64) {
	// Tolerate rounding, so that 0.3 counts as three tenths
	crossed := min(int(math.Floor(f*10+1e-9)), 10)
	if crossed < t.next {
		return
	}
	t.next = crossed + 1
	if t.fn != nil {
		t.fn(float64(crossed) / 10)
	}
}
