package domain

import (
	"testing"
	"time"
)

func TestMatchesTimeframe_NamedWindows(t *testing.T) {
	now := time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		date  time.Time
		frame Timeframe
		want  bool
	}{
		{"today matches this morning", time.Date(2026, 8, 31, 1, 0, 0, 0, time.UTC), TimeframeToday, true},
		{"today rejects yesterday evening", time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC), TimeframeToday, false},
		{"yesterday matches all of yesterday", time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC), TimeframeYesterday, true},
		{"yesterday rejects today", time.Date(2026, 8, 31, 0, 1, 0, 0, time.UTC), TimeframeYesterday, false},
		{"last 7 days includes 6 days ago", now.AddDate(0, 0, -6), TimeframeLast7Days, true},
		{"last 7 days rejects 8 days ago", now.AddDate(0, 0, -8), TimeframeLast7Days, false},
		{"last 30 days includes 29 days ago", now.AddDate(0, 0, -29), TimeframeLast30Days, true},
		{"older means beyond 30 days", now.AddDate(0, 0, -31), TimeframeOlder, true},
		{"older rejects recent", now.AddDate(0, 0, -5), TimeframeOlder, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesTimeframe(tt.date, tt.frame, now); got != tt.want {
				t.Errorf("MatchesTimeframe(%v, %v) = %v, want %v", tt.date, tt.frame, got, tt.want)
			}
		})
	}
}

func TestBeginningAndEndOfDay_BracketTheDate(t *testing.T) {
	date := time.Date(2026, 8, 31, 13, 45, 12, 0, time.UTC)

	start := BeginningOfDay(date)
	if start.Hour() != 0 || start.Minute() != 0 || start.Second() != 0 {
		t.Errorf("Expected midnight, got %v", start)
	}
	end := EndOfDay(date)
	if end.Hour() != 23 || end.Minute() != 59 || end.Second() != 59 {
		t.Errorf("Expected 23:59:59, got %v", end)
	}
	if start.Day() != date.Day() || end.Day() != date.Day() {
		t.Error("Expected both bounds on the same calendar day")
	}
}
