package input

// SeenService interface - Input port (use case)
// Defines what the application can do with the cross-session seen record.
type SeenService interface {
	// IsSeen reports whether the id has been reviewed in some session and
	// not un-seen since.
	IsSeen(id string) bool

	// AllSeen returns a copy of every seen id.
	AllSeen() map[string]struct{}

	// Clear resets the seen record so every asset becomes reviewable again.
	Clear() error
}
