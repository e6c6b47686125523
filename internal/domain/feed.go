package domain

import "time"

// FeedKind type - which slice of the media library a session reviews
type FeedKind string

const (
	// FeedKindRecents const
	FeedKindRecents FeedKind = "RECENTS"
	// FeedKindScreenshots const
	FeedKindScreenshots FeedKind = "SCREENSHOTS"
	// FeedKindSelfies const
	FeedKindSelfies FeedKind = "SELFIES"
	// FeedKindVideos const
	FeedKindVideos FeedKind = "VIDEOS"
	// FeedKindFavorites const
	FeedKindFavorites FeedKind = "FAVORITES"
	// FeedKindTimeframe const - a named rolling window, see Timeframe
	FeedKindTimeframe FeedKind = "TIMEFRAME"
	// FeedKindDateRange const - an explicit [Start, End] window
	FeedKindDateRange FeedKind = "DATE_RANGE"
)

// Timeframe type - named rolling windows for FeedKindTimeframe
type Timeframe string

const (
	// TimeframeToday const
	TimeframeToday Timeframe = "TODAY"
	// TimeframeYesterday const
	TimeframeYesterday Timeframe = "YESTERDAY"
	// TimeframeLast7Days const
	TimeframeLast7Days Timeframe = "LAST_7_DAYS"
	// TimeframeLast30Days const
	TimeframeLast30Days Timeframe = "LAST_30_DAYS"
	// TimeframeOlder const - everything older than 30 days
	TimeframeOlder Timeframe = "OLDER"
)

// FeedSpec struct - Query shape handed to the asset source when a session
// starts. Timeframe is set only for FeedKindTimeframe; Start/End only for
// FeedKindDateRange.
type FeedSpec struct {
	Kind      FeedKind
	Timeframe Timeframe
	Start     time.Time
	End       time.Time
}

// BeginningOfDay returns midnight of the given date.
func BeginningOfDay(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location())
}

// EndOfDay returns the last instant (23:59:59) of the given date.
func EndOfDay(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, date.Location())
}

// MatchesTimeframe reports whether a creation date falls inside the named
// rolling window, evaluated relative to now.
func MatchesTimeframe(date time.Time, frame Timeframe, now time.Time) bool {
	switch frame {
	case TimeframeToday:
		return !date.Before(BeginningOfDay(now))
	case TimeframeYesterday:
		yesterday := now.AddDate(0, 0, -1)
		return !date.Before(BeginningOfDay(yesterday)) && !date.After(EndOfDay(yesterday))
	case TimeframeLast7Days:
		return !date.Before(now.AddDate(0, 0, -7))
	case TimeframeLast30Days:
		return !date.Before(now.AddDate(0, 0, -30))
	case TimeframeOlder:
		return date.Before(now.AddDate(0, 0, -30))
	default:
		return true
	}
}
