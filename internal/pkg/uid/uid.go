package uid

// StringID generates opaque string identifiers.
type StringID interface {
	// Generate returns a new unique string identifier.
	Generate() string
}

// NumberID generates int64 identifiers.
type NumberID interface {
	// Generate returns a new unique int64 identifier.
	Generate() int64
}
