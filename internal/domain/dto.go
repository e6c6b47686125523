package domain

import "time"

// DTOs (Data Transfer Objects) - Domain layer request/response structures

type (
	// StartSessionRequest struct - Domain request DTO for opening a session
	StartSessionRequest struct {
		Feed FeedSpec
	}

	// DeckEntryView struct - One deck entry as exposed to callers. For slot
	// entries Content is nil and Sponsored carries the fill, if any has
	// landed yet.
	DeckEntryView struct {
		Type      ItemType
		Content   *ContentItem
		SlotID    string
		Sponsored *SponsoredContent

		// PayloadReady reports whether the prefetch cache holds a
		// renderable payload for this entry; when false the rendering
		// layer shows a loading state.
		PayloadReady bool
	}

	// SessionSnapshot struct - Domain response DTO describing the observable
	// session state after an operation
	SessionSnapshot struct {
		SessionID         string
		State             SessionState
		Cursor            int
		DeckSize          int
		ContentCount      int
		HistoryLen        int
		PendingDeletions  []string
		Committing        bool
		Current           *DeckEntryView
		LastUndoDirection *SwipeDirection
	}

	// CommitResult struct - Domain response DTO for a deletion commit
	CommitResult struct {
		Deleted   []string
		Remaining int
	}

	// RenderablePayload struct - Resolved, renderable content for one deck
	// entry. Data is the decoded bytes; for large videos an adapter may set
	// StreamURL instead and leave Data empty.
	RenderablePayload struct {
		ItemID     string
		MIMEType   string
		Data       []byte
		StreamURL  string
		ResolvedAt time.Time
	}
)
