package health

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The Evaluator reads it exactly once per call so that every contact in a
// batch is classified against the same "now".
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}
