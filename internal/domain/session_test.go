package domain

import (
	"errors"
	"testing"
)

// stubSeenMarker implements SeenMarker for testing
type stubSeenMarker struct {
	seen map[string]struct{}

	// Captured values for assertions
	MarkSeenCalls   []string
	MarkUnseenCalls []string
}

func newStubSeenMarker() *stubSeenMarker {
	return &stubSeenMarker{seen: make(map[string]struct{})}
}

func (m *stubSeenMarker) MarkSeen(id string) {
	m.MarkSeenCalls = append(m.MarkSeenCalls, id)
	m.seen[id] = struct{}{}
}

func (m *stubSeenMarker) MarkUnseen(id string) {
	m.MarkUnseenCalls = append(m.MarkUnseenCalls, id)
	delete(m.seen, id)
}

func (m *stubSeenMarker) isSeen(id string) bool {
	_, ok := m.seen[id]
	return ok
}

func testSession(t *testing.T, itemCount, adFrequency int, entitled bool) *ReviewSession {
	t.Helper()
	deck, err := BuildDeck(contentItems(itemCount), entitled, adFrequency)
	if err != nil {
		t.Fatalf("BuildDeck returned error: %v", err)
	}
	return NewReviewSession("session-1", FeedSpec{Kind: FeedKindRecents}, deck, entitled)
}

func TestNewReviewSession_EmptyDeckStartsFinished(t *testing.T) {
	session := NewReviewSession("session-1", FeedSpec{Kind: FeedKindRecents}, Deck{}, false)

	if session.State() != SessionStateFinished {
		t.Errorf("Expected an empty deck to start finished, got %v", session.State())
	}
	if session.Current() != nil {
		t.Errorf("Expected no current entry on an empty deck")
	}
}

func TestSwipe_KeepMarksSeenWithoutFlaggingDeletion(t *testing.T) {
	session := testSession(t, 4, 4, true)
	seen := newStubSeenMarker()

	item, err := session.Swipe(SwipeKeep, seen)
	if err != nil {
		t.Fatalf("Swipe returned error: %v", err)
	}

	if item.Content.ID != "item-1" {
		t.Errorf("Expected item-1 under the cursor, got %s", item.Content.ID)
	}
	if !seen.isSeen("item-1") {
		t.Error("Expected item-1 to be marked seen")
	}
	if session.IsPendingDeletion("item-1") {
		t.Error("Keep swipe must not flag the item for deletion")
	}
	if session.Cursor() != 1 {
		t.Errorf("Expected cursor 1, got %d", session.Cursor())
	}
	if session.HistoryLen() != 1 {
		t.Errorf("Expected history length 1, got %d", session.HistoryLen())
	}
}

func TestSwipe_DeleteFlagsPendingDeletionAndMarksSeen(t *testing.T) {
	session := testSession(t, 4, 4, true)
	seen := newStubSeenMarker()

	if _, err := session.Swipe(SwipeDelete, seen); err != nil {
		t.Fatalf("Swipe returned error: %v", err)
	}

	if !session.IsPendingDeletion("item-1") {
		t.Error("Delete swipe must flag the item for deletion")
	}
	if !seen.isSeen("item-1") {
		t.Error("Delete swipe must still mark the item seen")
	}
}

func TestSwipe_SlotDismissalLeavesNoTrace(t *testing.T) {
	// adFrequency 2: content, content, slot, content
	session := testSession(t, 3, 2, false)
	seen := newStubSeenMarker()

	session.Swipe(SwipeKeep, seen)
	session.Swipe(SwipeKeep, seen)

	item, err := session.Swipe(SwipeDelete, seen)
	if err != nil {
		t.Fatalf("Swipe returned error: %v", err)
	}
	if !item.IsSlot() {
		t.Fatalf("Expected a slot under the cursor, got %v", item.Type)
	}

	if session.HistoryLen() != 2 {
		t.Errorf("Slot dismissal must not be recorded in history, got length %d", session.HistoryLen())
	}
	if len(session.PendingDeletions()) != 0 {
		t.Errorf("Slot dismissal must not flag deletions, got %v", session.PendingDeletions())
	}
	if len(seen.MarkSeenCalls) != 2 {
		t.Errorf("Slot dismissal must not mark anything seen, got calls %v", seen.MarkSeenCalls)
	}
}

func TestSwipe_FinishesSessionOnLastEntry(t *testing.T) {
	session := testSession(t, 2, 4, true)
	seen := newStubSeenMarker()

	session.Swipe(SwipeKeep, seen)
	if session.State() != SessionStateActive {
		t.Fatalf("Expected the session to stay active, got %v", session.State())
	}

	session.Swipe(SwipeKeep, seen)
	if session.State() != SessionStateFinished {
		t.Errorf("Expected the session to finish after the last entry, got %v", session.State())
	}

	_, err := session.Swipe(SwipeKeep, seen)
	if !errors.Is(err, ErrSessionFinished) {
		t.Errorf("Expected ErrSessionFinished on a finished session, got %v", err)
	}
}

func TestUndo_IsLeftInverseOfSwipe(t *testing.T) {
	session := testSession(t, 4, 4, true)
	seen := newStubSeenMarker()

	session.Swipe(SwipeDelete, seen)

	result, err := session.Undo(seen)
	if err != nil {
		t.Fatalf("Undo returned error: %v", err)
	}
	if result == nil {
		t.Fatal("Expected an undo result")
	}

	if result.Restored.Content.ID != "item-1" {
		t.Errorf("Expected item-1 restored, got %s", result.Restored.Content.ID)
	}
	if result.Direction != SwipeDelete {
		t.Errorf("Expected the undone direction DELETE, got %v", result.Direction)
	}
	if session.Cursor() != 0 {
		t.Errorf("Expected cursor back at 0, got %d", session.Cursor())
	}
	if session.HistoryLen() != 0 {
		t.Errorf("Expected empty history, got length %d", session.HistoryLen())
	}
	if session.IsPendingDeletion("item-1") {
		t.Error("Undo must remove the pending-deletion flag")
	}
	if seen.isSeen("item-1") {
		t.Error("Undo must un-see the restored item")
	}
}

func TestUndo_ReversesFinishedBackToActive(t *testing.T) {
	session := testSession(t, 2, 4, true)
	seen := newStubSeenMarker()

	session.Swipe(SwipeKeep, seen)
	session.Swipe(SwipeKeep, seen)
	if session.State() != SessionStateFinished {
		t.Fatalf("Expected finished, got %v", session.State())
	}

	result, err := session.Undo(seen)
	if err != nil || result == nil {
		t.Fatalf("Undo failed: result=%v err=%v", result, err)
	}
	if session.State() != SessionStateActive {
		t.Errorf("Expected the session active again after undo, got %v", session.State())
	}
}

func TestUndo_SkipsBackOverSlotsWithoutPoppingHistory(t *testing.T) {
	// adFrequency 2: content, content, slot, content
	session := testSession(t, 3, 2, false)
	seen := newStubSeenMarker()

	session.Swipe(SwipeKeep, seen)   // item-1
	session.Swipe(SwipeDelete, seen) // item-2
	session.Swipe(SwipeKeep, seen)   // slot-1 dismissed
	if session.Cursor() != 3 {
		t.Fatalf("Expected cursor 3, got %d", session.Cursor())
	}

	result, err := session.Undo(seen)
	if err != nil {
		t.Fatalf("Undo returned error: %v", err)
	}
	if result == nil {
		t.Fatal("Expected an undo result")
	}

	// The slot is skipped silently, the undo lands on item-2.
	if result.Restored.Content.ID != "item-2" {
		t.Errorf("Expected item-2 restored, got %s", result.Restored.Content.ID)
	}
	if session.Cursor() != 1 {
		t.Errorf("Expected cursor 1, got %d", session.Cursor())
	}
	if session.HistoryLen() != 1 {
		t.Errorf("Expected one remaining history record, got %d", session.HistoryLen())
	}
	if session.IsPendingDeletion("item-2") {
		t.Error("Undo must remove the pending-deletion flag for item-2")
	}
}

func TestUndo_UnboundedBackToSessionStart(t *testing.T) {
	session := testSession(t, 5, 2, false)
	seen := newStubSeenMarker()

	for session.State() == SessionStateActive {
		session.Swipe(SwipeDelete, seen)
	}

	for i := 0; i < 5; i++ {
		result, err := session.Undo(seen)
		if err != nil {
			t.Fatalf("Undo %d returned error: %v", i+1, err)
		}
		if result == nil {
			t.Fatalf("Undo %d returned no result", i+1)
		}
	}

	if session.Cursor() != 0 {
		t.Errorf("Expected cursor back at 0, got %d", session.Cursor())
	}
	if session.HistoryLen() != 0 {
		t.Errorf("Expected empty history, got %d", session.HistoryLen())
	}
	if len(session.PendingDeletions()) != 0 {
		t.Errorf("Expected no pending deletions, got %v", session.PendingDeletions())
	}
	if len(seen.seen) != 0 {
		t.Errorf("Expected everything un-seen, got %v", seen.seen)
	}

	result, err := session.Undo(seen)
	if err != nil {
		t.Fatalf("Undo at start returned error: %v", err)
	}
	if result != nil {
		t.Error("Expected no result when nothing is reversible")
	}
}

func TestUndo_NothingReversibleIsNotAnError(t *testing.T) {
	session := testSession(t, 3, 4, true)
	seen := newStubSeenMarker()

	result, err := session.Undo(seen)
	if err != nil {
		t.Fatalf("Undo returned error: %v", err)
	}
	if result != nil {
		t.Error("Expected no result on a fresh session")
	}
}

func TestUndo_HistoryMismatchSurfacesSentinel(t *testing.T) {
	session := testSession(t, 4, 4, true)
	seen := newStubSeenMarker()

	session.Swipe(SwipeKeep, seen)
	// Corrupt the history to simulate an invariant violation.
	session.history[0].ItemIndex = 3

	_, err := session.Undo(seen)
	if !errors.Is(err, ErrHistoryMismatch) {
		t.Errorf("Expected ErrHistoryMismatch, got %v", err)
	}
}

func TestUndo_RecordsLastUndoDirectionUntilNextSwipe(t *testing.T) {
	session := testSession(t, 4, 4, true)
	seen := newStubSeenMarker()

	if session.LastUndoDirection() != nil {
		t.Error("Expected no undo direction on a fresh session")
	}

	session.Swipe(SwipeDelete, seen)
	session.Undo(seen)

	direction := session.LastUndoDirection()
	if direction == nil || *direction != SwipeDelete {
		t.Errorf("Expected last undo direction DELETE, got %v", direction)
	}

	session.Swipe(SwipeKeep, seen)
	if session.LastUndoDirection() != nil {
		t.Error("Expected the undo direction cleared by the next swipe")
	}
}

func TestFillSlot_FillsEarliestUnfilledSlotAtOrBeyondCursor(t *testing.T) {
	// content x4, slot-1, content x4, slot-2
	session := testSession(t, 8, 4, false)

	filled := session.FillSlot("", SponsoredContent{CampaignID: "campaign-1"})
	if !filled {
		t.Fatal("Expected the fill to land")
	}
	if session.Deck[4].Filled == nil || session.Deck[4].Filled.CampaignID != "campaign-1" {
		t.Errorf("Expected slot-1 filled with campaign-1, got %v", session.Deck[4].Filled)
	}
	if session.Deck[9].Filled != nil {
		t.Error("Expected slot-2 untouched")
	}
}

func TestFillSlot_IsIdempotentPerSlot(t *testing.T) {
	session := testSession(t, 4, 4, false)

	if !session.FillSlot("slot-1", SponsoredContent{CampaignID: "campaign-1"}) {
		t.Fatal("Expected the first fill to land")
	}
	if session.FillSlot("slot-1", SponsoredContent{CampaignID: "campaign-2"}) {
		t.Error("Expected a repeated fill to be a no-op")
	}
	if session.Deck[4].Filled.CampaignID != "campaign-1" {
		t.Errorf("Expected the original fill kept, got %s", session.Deck[4].Filled.CampaignID)
	}
}

func TestFillSlot_PassedSlotIsSilentNoOp(t *testing.T) {
	session := testSession(t, 4, 4, false)
	seen := newStubSeenMarker()

	// Swipe past the slot at index 4.
	for i := 0; i < 5; i++ {
		session.Swipe(SwipeKeep, seen)
	}

	if session.FillSlot("slot-1", SponsoredContent{CampaignID: "campaign-late"}) {
		t.Error("Expected a fill for a passed slot to be a silent no-op")
	}
	if session.Deck[4].Filled != nil {
		t.Error("Expected the passed slot to stay unfilled")
	}
}

func TestUnfilledSlots_ReportsOnlySlotsInRange(t *testing.T) {
	session := testSession(t, 8, 4, false)
	session.FillSlot("slot-1", SponsoredContent{CampaignID: "campaign-1"})

	ids := session.UnfilledSlots(0, len(session.Deck))
	if len(ids) != 1 || ids[0] != "slot-2" {
		t.Errorf("Expected only slot-2 unfilled, got %v", ids)
	}

	ids = session.UnfilledSlots(0, 5)
	if len(ids) != 0 {
		t.Errorf("Expected no unfilled slots before index 5, got %v", ids)
	}
}

func TestBeginCommit_SnapshotsPendingContentReferences(t *testing.T) {
	session := testSession(t, 4, 4, true)
	seen := newStubSeenMarker()

	session.Swipe(SwipeDelete, seen) // item-1
	session.Swipe(SwipeKeep, seen)   // item-2
	session.Swipe(SwipeDelete, seen) // item-3

	items, err := session.BeginCommit()
	if err != nil {
		t.Fatalf("BeginCommit returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items in the commit, got %d", len(items))
	}
	if !session.Committing() {
		t.Error("Expected the committing sub-state entered")
	}
}

func TestBeginCommit_RejectsSecondCommitWhileInFlight(t *testing.T) {
	session := testSession(t, 4, 4, true)
	seen := newStubSeenMarker()
	session.Swipe(SwipeDelete, seen)

	if _, err := session.BeginCommit(); err != nil {
		t.Fatalf("BeginCommit returned error: %v", err)
	}
	_, err := session.BeginCommit()
	if !errors.Is(err, ErrCommitInFlight) {
		t.Errorf("Expected ErrCommitInFlight, got %v", err)
	}
}

func TestBeginCommit_RejectsEmptyPendingSet(t *testing.T) {
	session := testSession(t, 4, 4, true)

	_, err := session.BeginCommit()
	if !errors.Is(err, ErrNothingPending) {
		t.Errorf("Expected ErrNothingPending, got %v", err)
	}
}

func TestFinishCommit_SuccessClearsCommittedIDs(t *testing.T) {
	session := testSession(t, 4, 4, true)
	seen := newStubSeenMarker()
	session.Swipe(SwipeDelete, seen)
	session.Swipe(SwipeDelete, seen)

	if _, err := session.BeginCommit(); err != nil {
		t.Fatalf("BeginCommit returned error: %v", err)
	}
	session.FinishCommit(true)

	if session.Committing() {
		t.Error("Expected the committing sub-state left")
	}
	if len(session.PendingDeletions()) != 0 {
		t.Errorf("Expected the pending set cleared, got %v", session.PendingDeletions())
	}
}

func TestFinishCommit_FailurePreservesPendingSet(t *testing.T) {
	session := testSession(t, 4, 4, true)
	seen := newStubSeenMarker()
	session.Swipe(SwipeDelete, seen)
	session.Swipe(SwipeDelete, seen)

	if _, err := session.BeginCommit(); err != nil {
		t.Fatalf("BeginCommit returned error: %v", err)
	}
	session.FinishCommit(false)

	if session.Committing() {
		t.Error("Expected the committing sub-state left")
	}
	pending := session.PendingDeletions()
	if len(pending) != 2 {
		t.Errorf("Expected the pending set preserved, got %v", pending)
	}
}

func TestUndo_DuringCommitLeavesInFlightMembershipUntouched(t *testing.T) {
	session := testSession(t, 4, 4, true)
	seen := newStubSeenMarker()
	session.Swipe(SwipeDelete, seen) // item-1

	if _, err := session.BeginCommit(); err != nil {
		t.Fatalf("BeginCommit returned error: %v", err)
	}

	result, err := session.Undo(seen)
	if err != nil {
		t.Fatalf("Undo returned error: %v", err)
	}
	if result == nil {
		t.Fatal("Expected an undo result")
	}

	// The id stays in the pending set for the in-flight commit, but the
	// item is still un-seen so it can reappear in a later session.
	if !session.IsPendingDeletion("item-1") {
		t.Error("Expected item-1 to stay pending while its commit is in flight")
	}
	if seen.isSeen("item-1") {
		t.Error("Expected item-1 un-seen despite the in-flight commit")
	}

	session.FinishCommit(true)
	if session.IsPendingDeletion("item-1") {
		t.Error("Expected item-1 removed once the commit succeeded")
	}
}

func TestSwipeAfterUndo_RebuildsForwardState(t *testing.T) {
	session := testSession(t, 4, 4, true)
	seen := newStubSeenMarker()

	session.Swipe(SwipeDelete, seen)
	session.Undo(seen)
	session.Swipe(SwipeKeep, seen)

	if session.IsPendingDeletion("item-1") {
		t.Error("Expected the re-swipe to replace the deletion flag")
	}
	if session.Cursor() != 1 {
		t.Errorf("Expected cursor 1, got %d", session.Cursor())
	}
	if session.HistoryLen() != 1 {
		t.Errorf("Expected history length 1, got %d", session.HistoryLen())
	}
}
