package domain

// ChangeType type - what kind of mutation an event describes
type ChangeType string

const (
	// ChangeSessionStarted const
	ChangeSessionStarted ChangeType = "SESSION_STARTED"
	// ChangeSwiped const
	ChangeSwiped ChangeType = "SWIPED"
	// ChangeUndone const
	ChangeUndone ChangeType = "UNDONE"
	// ChangeSlotFilled const
	ChangeSlotFilled ChangeType = "SLOT_FILLED"
	// ChangePayloadReady const - a prefetched payload became available
	ChangePayloadReady ChangeType = "PAYLOAD_READY"
	// ChangeDeletionsCommitted const
	ChangeDeletionsCommitted ChangeType = "DELETIONS_COMMITTED"
	// ChangeSessionAbandoned const
	ChangeSessionAbandoned ChangeType = "SESSION_ABANDONED"
)

// ChangeEvent struct - Emitted after every mutating engine operation.
// The rendering layer subscribes to these instead of the engine holding any
// UI-specific observation machinery.
type ChangeEvent struct {
	Type      ChangeType
	SessionID string
	Cursor    int
	State     SessionState
	ItemID    string
	Direction SwipeDirection
}
