// Package clock abstracts wall-clock time behind a small interface.
//
// Anything that compares against credential expiry depends on Clocker instead
// of calling time.Now() directly, so tests can pin time to a fixed instant.
package clock
