package output

// SeenStore interface - Output port
// Persistence behind the seen set. The format is opaque to the engine: any
// store that can give back the same set of ids it was handed suffices.
// The application layer keeps the authoritative in-memory copy and calls
// Save with the full set on every mutation, so implementations do not need
// incremental operations.
type SeenStore interface {
	// Load returns the persisted seen ids, called once at startup.
	// A missing store (first launch) returns an empty set, not an error.
	Load() (map[string]struct{}, error)

	// Save persists the full seen set, replacing whatever was stored.
	Save(ids map[string]struct{}) error
}
