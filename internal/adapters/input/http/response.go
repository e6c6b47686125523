package http

import (
	"net/http"
	"time"
)

var (
	// Success response
	Success = Status{Code: http.StatusOK, Message: []string{"Success"}}
	// BadRequest response
	BadRequest = Status{Code: http.StatusBadRequest, Message: []string{"Sorry, Not responding because of incorrect syntax"}}
	// NotFound response
	NotFound = Status{Code: http.StatusNotFound, Message: []string{"Sorry, No session with that id"}}
	// ConFlict response
	ConFlict = Status{Code: http.StatusConflict, Message: []string{"Sorry, Operation conflicts with the session state"}}
	// ServiceUnavailable response
	ServiceUnavailable = Status{Code: http.StatusServiceUnavailable, Message: []string{"Sorry, The media library is not reachable"}}
	// InternalServerError response
	InternalServerError = Status{Code: http.StatusInternalServerError, Message: []string{"Internal Server Error"}}
)

// ResponseBody struct - Generic HTTP response wrapper
type ResponseBody struct {
	Status Status      `json:"status,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// Status struct
type Status struct {
	Code    int      `json:"code,omitempty"`
	Message []string `json:"message,omitempty"`
}

type (
	// DeckEntryResponse struct - HTTP response DTO for one deck entry
	DeckEntryResponse struct {
		Type         string            `json:"type"`
		ItemID       string            `json:"item_id,omitempty"`
		Kind         string            `json:"kind,omitempty"`
		SourceRef    string            `json:"source_ref,omitempty"`
		SlotID       string            `json:"slot_id,omitempty"`
		Sponsored    *SponsoredContent `json:"sponsored,omitempty"`
		PayloadReady bool              `json:"payload_ready"`
	}

	// SponsoredContent struct - HTTP response DTO for an ad slot fill
	SponsoredContent struct {
		CampaignID string `json:"campaign_id"`
		Headline   string `json:"headline,omitempty"`
		MediaURL   string `json:"media_url,omitempty"`
		ClickURL   string `json:"click_url,omitempty"`
	}

	// SessionResponse struct - HTTP response DTO for the observable session
	// state after any operation
	SessionResponse struct {
		SessionID         string             `json:"session_id"`
		State             string             `json:"state"`
		Cursor            int                `json:"cursor"`
		DeckSize          int                `json:"deck_size"`
		ContentCount      int                `json:"content_count"`
		HistoryLen        int                `json:"history_len"`
		PendingDeletions  []string           `json:"pending_deletions"`
		Committing        bool               `json:"committing"`
		Current           *DeckEntryResponse `json:"current,omitempty"`
		LastUndoDirection *string            `json:"last_undo_direction,omitempty"`
	}

	// CommitResponse struct - HTTP response DTO for a deletion commit
	CommitResponse struct {
		Deleted   []string `json:"deleted"`
		Remaining int      `json:"remaining"`
	}

	// SeenResponse struct - HTTP response DTO for the cross-session seen
	// record
	SeenResponse struct {
		Count int      `json:"count"`
		IDs   []string `json:"ids"`
	}

	// EventResponse struct - wire shape of one change event on the event
	// stream
	EventResponse struct {
		Type      string    `json:"type"`
		SessionID string    `json:"session_id"`
		Cursor    int       `json:"cursor"`
		State     string    `json:"state"`
		ItemID    string    `json:"item_id,omitempty"`
		Direction string    `json:"direction,omitempty"`
		At        time.Time `json:"at"`
	}
)
