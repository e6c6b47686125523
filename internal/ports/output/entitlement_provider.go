package output

// EntitlementProvider interface - Output port
// Defines what the deck builder needs from the monetization layer. Read
// synchronously at deck build time only - an entitlement change mid-session
// does not retroactively alter an already-built deck.
type EntitlementProvider interface {
	// IsEntitled reports whether the user holds the ad-free entitlement.
	IsEntitled() bool
}
