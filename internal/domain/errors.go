package domain

import "errors"

// Session deck engine error types

var (
	// ErrSessionFinished indicates a swipe was attempted after the cursor
	// reached the end of the deck (callers must check state after every swipe)
	ErrSessionFinished = errors.New("session already finished")

	// ErrSessionNotFound indicates the session id is unknown or was abandoned
	ErrSessionNotFound = errors.New("session not found")

	// ErrSourceUnavailable indicates the asset source failed and no deck
	// could be built
	ErrSourceUnavailable = errors.New("asset source unavailable")

	// ErrCommitInFlight indicates a deletion commit was requested while a
	// previous commit has not returned yet
	ErrCommitInFlight = errors.New("deletion commit already in flight")

	// ErrNothingPending indicates a commit was requested with an empty
	// pending-deletion set
	ErrNothingPending = errors.New("no pending deletions to commit")

	// ErrHistoryMismatch indicates the swipe history disagrees with the
	// cursor position - an invariant violation inside the state machine
	ErrHistoryMismatch = errors.New("swipe history does not match cursor")

	// ErrAdFrequency indicates an invalid ad frequency configuration value
	ErrAdFrequency = errors.New("ad frequency must be at least 1")
)
