package clock

import "time"

// Clocker reports the current time.
type Clocker interface {
	Now() time.Time
}

// TimeClocker is the production Clocker backed by the system clock.
type TimeClocker struct{}

// New returns a system-clock backed TimeClocker.
func New() *TimeClocker {
	return &TimeClocker{}
}

// Now returns the current system time.
func (*TimeClocker) Now() time.Time {
	return time.Now()
}
