package uid

import "github.com/google/uuid"

// UUID generates RFC 4122 UUID strings, preferring time-ordered v7 values.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a new UUID string. Falls back to a random v4 value when
// v7 generation fails.
func (u *UUID) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
