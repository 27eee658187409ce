// Package integrations provides the small injected collaborators the
// core depends on but never implements directly: Clock, UniqueIDGenerator,
// PasswordUtil and Notifications. Tests substitute deterministic doubles
// for the non-deterministic ones (clock, id generator) per spec §9.
package integrations

import "time"

// Clock abstracts wall-clock time so the core never calls time.Now()
// directly.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock, backed by time.Now().
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock is a deterministic test double that always returns the
// same instant unless advanced.
type FixedClock struct {
	current time.Time
}

// NewFixedClock returns a FixedClock starting at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{current: t}
}

// Now returns the fixed instant.
func (c *FixedClock) Now() time.Time { return c.current }

// Advance moves the fixed instant forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
