package http

import "time"

type (
	// StartSessionRequest struct - HTTP request DTO for opening a session
	StartSessionRequest struct {
		Feed      string     `json:"feed" validate:"required,oneof=RECENTS SCREENSHOTS SELFIES VIDEOS FAVORITES TIMEFRAME DATE_RANGE" form:"feed" query:"feed"`
		Timeframe *string    `json:"timeframe" validate:"omitempty,timeframe" form:"timeframe" query:"timeframe"`
		Start     *time.Time `json:"start" validate:"omitempty" form:"start" query:"start"`
		End       *time.Time `json:"end" validate:"omitempty" form:"end" query:"end"`
	}

	// SwipeRequest struct - HTTP request DTO for deciding the entry under
	// the cursor
	SwipeRequest struct {
		Direction string `json:"direction" validate:"required,oneof=KEEP DELETE" form:"direction" query:"direction"`
	}
)
