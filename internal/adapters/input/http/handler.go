package http

import (
	"bufio"
	"encoding/json"
	"errors"
	"time"

	"github.com/ZHANGV25/Prune/internal/domain"
	"github.com/ZHANGV25/Prune/internal/ports/input"
	"github.com/ZHANGV25/Prune/pkg/validator"

	"gorm.io/gorm"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// HTTPHandler struct - Primary/Driving adapter for HTTP
type HTTPHandler struct {
	srv       input.ReviewService
	seen      input.SeenService
	db        *gorm.DB
	validator validator.Validator
}

// New func - Creates new HTTP handler. db may be nil when the seen record
// runs on a non-postgres backend.
func New(srv input.ReviewService, seen input.SeenService, db *gorm.DB) *HTTPHandler {
	return &HTTPHandler{
		srv:       srv,
		seen:      seen,
		db:        db,
		validator: validator.New(),
	}
}

// HealthCheck func
func (hdl *HTTPHandler) HealthCheck(c *fiber.Ctx) error {
	if hdl.db != nil {
		sqlDB, err := hdl.db.DB()
		if err != nil {
			logrus.Errorln(err)
			return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
		}
		err = sqlDB.Ping()
		if err != nil {
			logrus.Errorln(err)
			return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
		}
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: ""})
}

// StartSession func
/* open a review session */
// StartSession godoc
// @Summary Start session
// @Description Build a deck for the feed and open a review session over it
// @Tags SESSION
// @Accept application/json
// @Success 200 {object} map[string]interface{}
// @Router /v1/api/session [post]
// @Produce json
// @param StartSession body StartSessionRequest true "StartSession"
func (hdl *HTTPHandler) StartSession(c *fiber.Ctx) error {
	var request StartSessionRequest
	if err := c.BodyParser(&request); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(request); err != nil {
		msg := ResponseBody{
			Status: BadRequest,
		}
		msg.Status.Message = []string{
			err.Error(),
		}
		return c.Status(fiber.StatusBadRequest).JSON(msg)
	}
	// Convert HTTP request to domain request
	feed := domain.FeedSpec{Kind: domain.FeedKind(request.Feed)}
	if request.Timeframe != nil {
		feed.Timeframe = domain.Timeframe(*request.Timeframe)
	}
	if request.Start != nil {
		feed.Start = *request.Start
	}
	if request.End != nil {
		feed.End = *request.End
	}
	snapshot, err := hdl.srv.StartSession(c.Context(), domain.StartSessionRequest{Feed: feed})
	if err != nil {
		logrus.Errorln(err)
		return hdl.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: toSessionResponse(snapshot)})
}

// GetSession func
/* observe a session */
// GetSession godoc
// @Summary Get session
// @Description Observe the current session state without mutating it
// @Tags SESSION
// @Accept application/json
// @Success 200 {object} map[string]interface{}
// @Router /v1/api/session/{id} [get]
// @Produce json
// @param id path string true "session id"
func (hdl *HTTPHandler) GetSession(c *fiber.Ctx) error {
	snapshot, err := hdl.srv.Snapshot(c.Params("id"))
	if err != nil {
		return hdl.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: toSessionResponse(snapshot)})
}

// Swipe func
/* decide the entry under the cursor */
// Swipe godoc
// @Summary Swipe
// @Description Keep or delete the entry under the cursor and advance
// @Tags SESSION
// @Accept application/json
// @Success 200 {object} map[string]interface{}
// @Router /v1/api/session/{id}/swipe [post]
// @Produce json
// @param id path string true "session id"
// @param Swipe body SwipeRequest true "Swipe"
func (hdl *HTTPHandler) Swipe(c *fiber.Ctx) error {
	var request SwipeRequest
	if err := c.BodyParser(&request); err != nil {
		logrus.Errorln(err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}
	if err := hdl.validator.ValidateStruct(request); err != nil {
		msg := ResponseBody{
			Status: BadRequest,
		}
		msg.Status.Message = []string{
			err.Error(),
		}
		return c.Status(fiber.StatusBadRequest).JSON(msg)
	}
	snapshot, err := hdl.srv.Swipe(c.Params("id"), domain.SwipeDirection(request.Direction))
	if err != nil {
		logrus.Errorln(err)
		return hdl.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: toSessionResponse(snapshot)})
}

// Undo func
/* reverse the last content decision */
// Undo godoc
// @Summary Undo
// @Description Reverse the most recent content decision, skipping back over ad slots
// @Tags SESSION
// @Accept application/json
// @Success 200 {object} map[string]interface{}
// @Router /v1/api/session/{id}/undo [post]
// @Produce json
// @param id path string true "session id"
func (hdl *HTTPHandler) Undo(c *fiber.Ctx) error {
	snapshot, err := hdl.srv.Undo(c.Params("id"))
	if err != nil {
		logrus.Errorln(err)
		return hdl.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: toSessionResponse(snapshot)})
}

// CommitDeletions func
/* commit the pending-deletion set */
// CommitDeletions godoc
// @Summary Commit deletions
// @Description Hand the pending-deletion set to the media library, all-or-nothing
// @Tags SESSION
// @Accept application/json
// @Success 200 {object} map[string]interface{}
// @Router /v1/api/session/{id}/commit [post]
// @Produce json
// @param id path string true "session id"
func (hdl *HTTPHandler) CommitDeletions(c *fiber.Ctx) error {
	result, err := hdl.srv.CommitDeletions(c.Context(), c.Params("id"))
	if err != nil {
		logrus.Errorln(err)
		return hdl.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: CommitResponse{
		Deleted:   result.Deleted,
		Remaining: result.Remaining,
	}})
}

// AbandonSession func
/* tear a session down */
// AbandonSession godoc
// @Summary Abandon session
// @Description Tear the session down without committing anything
// @Tags SESSION
// @Accept application/json
// @Success 200 {object} map[string]interface{}
// @Router /v1/api/session/{id} [delete]
// @Produce json
// @param id path string true "session id"
func (hdl *HTTPHandler) AbandonSession(c *fiber.Ctx) error {
	if err := hdl.srv.AbandonSession(c.Params("id")); err != nil {
		logrus.Errorln(err)
		return hdl.errorResponse(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: ""})
}

// GetPayload func
/* read a prefetched payload */
// GetPayload godoc
// @Summary Get payload
// @Description Serve the prefetched renderable payload for a deck item
// @Tags SESSION
// @Accept application/json
// @Success 200 {object} map[string]interface{}
// @Router /v1/api/session/{id}/payload/{itemID} [get]
// @Produce json
// @param id path string true "session id"
// @param itemID path string true "deck item id"
func (hdl *HTTPHandler) GetPayload(c *fiber.Ctx) error {
	payload, err := hdl.srv.Payload(c.Params("id"), c.Params("itemID"))
	if err != nil {
		return hdl.errorResponse(c, err)
	}
	if payload == nil {
		msg := ResponseBody{Status: NotFound}
		msg.Status.Message = []string{"Payload is not prefetched yet"}
		return c.Status(fiber.StatusNotFound).JSON(msg)
	}
	if payload.StreamURL != "" {
		return c.Redirect(payload.StreamURL, fiber.StatusFound)
	}
	c.Set(fiber.HeaderContentType, payload.MIMEType)
	return c.Status(fiber.StatusOK).Send(payload.Data)
}

// StreamEvents func
/* observe session change events */
// StreamEvents godoc
// @Summary Stream events
// @Description Server-sent event stream of the session's change events
// @Tags SESSION
// @Accept application/json
// @Success 200 {object} map[string]interface{}
// @Router /v1/api/session/{id}/events [get]
// @Produce text/event-stream
// @param id path string true "session id"
func (hdl *HTTPHandler) StreamEvents(c *fiber.Ctx) error {
	events, cancel, err := hdl.srv.Subscribe(c.Params("id"))
	if err != nil {
		return hdl.errorResponse(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		for event := range events {
			line, err := json.Marshal(toEventResponse(event))
			if err != nil {
				logrus.Errorln(err)
				continue
			}
			if _, err := w.WriteString("data: " + string(line) + "\n\n"); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	})
	return nil
}

// GetSeen func
/* list the cross-session seen record */
// GetSeen godoc
// @Summary Get seen record
// @Description List every asset id reviewed in some session
// @Tags SEEN
// @Accept application/json
// @Success 200 {object} map[string]interface{}
// @Router /v1/api/seen [get]
// @Produce json
func (hdl *HTTPHandler) GetSeen(c *fiber.Ctx) error {
	all := hdl.seen.AllSeen()
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: SeenResponse{
		Count: len(ids),
		IDs:   ids,
	}})
}

// ClearSeen func
/* reset the cross-session seen record */
// ClearSeen godoc
// @Summary Clear seen record
// @Description Reset the seen record so every asset becomes reviewable again
// @Tags SEEN
// @Accept application/json
// @Success 200 {object} map[string]interface{}
// @Router /v1/api/seen [delete]
// @Produce json
func (hdl *HTTPHandler) ClearSeen(c *fiber.Ctx) error {
	if err := hdl.seen.Clear(); err != nil {
		logrus.Errorln(err)
		msg := ResponseBody{
			Status: InternalServerError,
		}
		msg.Status.Message = []string{
			err.Error(),
		}
		return c.Status(fiber.StatusInternalServerError).JSON(msg)
	}
	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: ""})
}

// errorResponse maps domain sentinels onto HTTP statuses
func (hdl *HTTPHandler) errorResponse(c *fiber.Ctx, err error) error {
	var status Status
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		status = NotFound
	case errors.Is(err, domain.ErrSessionFinished),
		errors.Is(err, domain.ErrCommitInFlight),
		errors.Is(err, domain.ErrNothingPending):
		status = ConFlict
	case errors.Is(err, domain.ErrSourceUnavailable):
		status = ServiceUnavailable
	case errors.Is(err, domain.ErrAdFrequency):
		status = BadRequest
	default:
		status = InternalServerError
	}
	msg := ResponseBody{Status: status}
	msg.Status.Message = []string{
		err.Error(),
	}
	return c.Status(status.Code).JSON(msg)
}

// toSessionResponse converts the domain snapshot to the HTTP response DTO
func toSessionResponse(snapshot *domain.SessionSnapshot) SessionResponse {
	response := SessionResponse{
		SessionID:        snapshot.SessionID,
		State:            string(snapshot.State),
		Cursor:           snapshot.Cursor,
		DeckSize:         snapshot.DeckSize,
		ContentCount:     snapshot.ContentCount,
		HistoryLen:       snapshot.HistoryLen,
		PendingDeletions: snapshot.PendingDeletions,
		Committing:       snapshot.Committing,
	}
	if snapshot.LastUndoDirection != nil {
		direction := string(*snapshot.LastUndoDirection)
		response.LastUndoDirection = &direction
	}
	if snapshot.Current != nil {
		entry := DeckEntryResponse{
			Type:         string(snapshot.Current.Type),
			SlotID:       snapshot.Current.SlotID,
			PayloadReady: snapshot.Current.PayloadReady,
		}
		if snapshot.Current.Content != nil {
			entry.ItemID = snapshot.Current.Content.ID
			entry.Kind = string(snapshot.Current.Content.Kind)
			entry.SourceRef = snapshot.Current.Content.SourceRef
		}
		if snapshot.Current.Sponsored != nil {
			entry.Sponsored = &SponsoredContent{
				CampaignID: snapshot.Current.Sponsored.CampaignID,
				Headline:   snapshot.Current.Sponsored.Headline,
				MediaURL:   snapshot.Current.Sponsored.MediaURL,
				ClickURL:   snapshot.Current.Sponsored.ClickURL,
			}
		}
		response.Current = &entry
	}
	return response
}

// toEventResponse converts a domain change event to its wire shape
func toEventResponse(event domain.ChangeEvent) EventResponse {
	return EventResponse{
		Type:      string(event.Type),
		SessionID: event.SessionID,
		Cursor:    event.Cursor,
		State:     string(event.State),
		ItemID:    event.ItemID,
		Direction: string(event.Direction),
		At:        time.Now(),
	}
}
