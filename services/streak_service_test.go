package services

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextStreak_FirstActivityEver(t *testing.T) {
	got, ok := nextStreak(0, nil, date(2024, 1, 11))
	if !ok {
		t.Fatal("expected a streak update for first activity")
	}
	if got != 1 {
		t.Errorf("expected streak 1, got %d", got)
	}
}

func TestNextStreak_ConsecutiveDay(t *testing.T) {
	last := date(2024, 1, 10)
	got, ok := nextStreak(3, &last, date(2024, 1, 11))
	if !ok {
		t.Fatal("expected a streak update for a consecutive day")
	}
	if got != 4 {
		t.Errorf("expected streak 4, got %d", got)
	}
}

func TestNextStreak_GapBreaksStreak(t *testing.T) {
	last := date(2024, 1, 10)
	for _, day := range []int{12, 15, 31} {
		got, ok := nextStreak(7, &last, date(2024, 1, day))
		if !ok {
			t.Fatalf("expected a streak update for day %d", day)
		}
		if got != 1 {
			t.Errorf("day %d: expected streak reset to 1, got %d", day, got)
		}
	}
}

func TestNextStreak_SameDayIsNoOp(t *testing.T) {
	last := date(2024, 1, 11)
	if _, ok := nextStreak(4, &last, date(2024, 1, 11)); ok {
		t.Error("same-day completion must not change stored state")
	}
}

func TestNextStreak_BackdatedCompletionIsNoOp(t *testing.T) {
	last := date(2024, 1, 11)
	if _, ok := nextStreak(4, &last, date(2024, 1, 9)); ok {
		t.Error("backdated completion must not change stored state")
	}
}

func TestNextStreak_IgnoresTimeOfDayOnLastActivity(t *testing.T) {
	// last_activity_date comes back from the store as a date, but guard
	// against a timestamp sneaking in.
	last := time.Date(2024, 1, 10, 23, 45, 0, 0, time.UTC)
	got, ok := nextStreak(3, &last, date(2024, 1, 11))
	if !ok || got != 4 {
		t.Errorf("expected streak 4, got %d (ok=%v)", got, ok)
	}
}

func TestNormalizeDate(t *testing.T) {
	in := time.Date(2024, 1, 11, 18, 30, 12, 999, time.UTC)
	want := date(2024, 1, 11)
	if got := normalizeDate(in); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalizeDate_MonthBoundary(t *testing.T) {
	last := date(2024, 1, 31)
	got, ok := nextStreak(5, &last, date(2024, 2, 1))
	if !ok || got != 6 {
		t.Errorf("expected streak 6 across month boundary, got %d (ok=%v)", got, ok)
	}
}
