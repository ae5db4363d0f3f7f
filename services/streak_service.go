package services

import (
	"context"
	"errors"
	"log"
	"time"

	"studyTrackAPI/internal/types/calendar"
	"studyTrackAPI/internal/types/streak"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

var streakUpdateFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "streak_update_failures_total",
		Help: "Streak updates or history inserts dropped best-effort",
	},
	[]string{"stage"},
)

// InitMetrics registers the service metrics. Call this from main.go
func InitMetrics() {
	prometheus.MustRegister(streakUpdateFailures)
}

type StreakService struct {
	db *pgxpool.Pool
}

func NewStreakService(db *pgxpool.Pool) *StreakService {
	return &StreakService{db: db}
}

// OnTaskCompleted records a completion event and advances the user's
// daily streak. It must be called exactly once per incomplete->complete
// transition. The whole update is best-effort: every failure is logged
// and counted but never surfaced, so the task update that triggered it
// cannot fail on streak bookkeeping.
func (s *StreakService) OnTaskCompleted(ctx context.Context, userID, taskID uuid.UUID, taskTitle string, completedAt time.Time) {
	today := normalizeDate(completedAt)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.dropUpdate("begin", err)
		return
	}
	defer tx.Rollback(ctx)

	// Lock the user's streak row first. Two same-day completions for one
	// user would otherwise both see count==1 below and double-increment.
	var currentStreak int
	var lastActivity *time.Time
	err = tx.QueryRow(ctx,
		`SELECT current_streak, last_activity_date FROM users WHERE id = $1 FOR UPDATE`,
		userID,
	).Scan(&currentStreak, &lastActivity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			log.Printf("OnTaskCompleted: user %s not found, skipping streak update", userID)
		} else {
			s.dropUpdate("read_state", err)
		}
		return
	}

	// History dedup guard: at most one event per (user, task, day), a
	// conflict is an expected no-op.
	_, err = tx.Exec(ctx, `
        INSERT INTO task_history (user_id, task_id, completed_date, task_title)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id, task_id, completed_date) DO NOTHING
    `, userID, taskID, today, taskTitle)
	if err != nil {
		s.dropUpdate("insert_history", err)
		return
	}

	var todayCount int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM task_history WHERE user_id = $1 AND completed_date = $2`,
		userID, today,
	).Scan(&todayCount)
	if err != nil {
		s.dropUpdate("count_today", err)
		return
	}

	// count > 1: an earlier completion already advanced the streak
	// today. count == 0 cannot happen after the insert above but is
	// treated the same. Either way only the history insert commits.
	if todayCount != 1 {
		if err := tx.Commit(ctx); err != nil {
			s.dropUpdate("commit", err)
		}
		return
	}

	newStreak, ok := nextStreak(currentStreak, lastActivity, today)
	if !ok {
		if err := tx.Commit(ctx); err != nil {
			s.dropUpdate("commit", err)
		}
		return
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET current_streak = $1, last_activity_date = $2 WHERE id = $3`,
		newStreak, today, userID,
	)
	if err != nil {
		s.dropUpdate("write_state", err)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		s.dropUpdate("commit", err)
	}
}

func (s *StreakService) dropUpdate(stage string, err error) {
	log.Printf("Streak update dropped at %s: %v", stage, err)
	streakUpdateFailures.WithLabelValues(stage).Inc()
}

// nextStreak computes the streak value after the first completion of a
// day. ok is false when the stored state must not change.
func nextStreak(current int, lastActivity *time.Time, today time.Time) (newStreak int, ok bool) {
	if lastActivity == nil {
		// First activity ever.
		return 1, true
	}

	daysDiff := int(today.Sub(normalizeDate(*lastActivity)).Hours() / 24)
	switch {
	case daysDiff == 1:
		return current + 1, true
	case daysDiff > 1:
		// Gap of two or more days breaks the streak.
		return 1, true
	default:
		// daysDiff == 0 is already filtered by the count-for-today
		// guard; negative diffs (backdated completions, clock skew) are
		// ignored.
		return 0, false
	}
}

func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *StreakService) GetStreakState(ctx context.Context, userID uuid.UUID) (*streak.State, error) {
	state := &streak.State{UserID: userID}
	err := s.db.QueryRow(ctx,
		`SELECT current_streak, last_activity_date FROM users WHERE id = $1`,
		userID,
	).Scan(&state.CurrentStreak, &state.LastActivityDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return state, nil
}

// QueryCompletions returns completion events in a date range, ordered
// by day and then by insertion order within a day.
func (s *StreakService) QueryCompletions(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*streak.CompletionEvent, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, task_id, completed_date, task_title, completed_at
        FROM task_history
        WHERE user_id = $1
          AND completed_date >= $2
          AND completed_date <= $3
        ORDER BY completed_date ASC, completed_at ASC
    `, userID, normalizeDate(from), normalizeDate(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*streak.CompletionEvent
	for rows.Next() {
		event := &streak.CompletionEvent{}
		if err := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.TaskID,
			&event.CompletedDate,
			&event.TaskTitle,
			&event.CompletedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// GetStreakCalendar builds the last-7-days activity view shown on the
// dashboard.
func (s *StreakService) GetStreakCalendar(ctx context.Context, userID uuid.UUID, now time.Time) (*calendar.CalendarResponse, error) {
	today := normalizeDate(now)
	start := today.AddDate(0, 0, -6)

	events, err := s.QueryCompletions(ctx, userID, start, today)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]calendar.CalendarTask)
	for _, event := range events {
		key := event.CompletedDate.Format("2006-01-02")
		byDate[key] = append(byDate[key], calendar.CalendarTask{
			ID:    event.TaskID,
			Title: event.TaskTitle,
		})
	}

	days := make([]calendar.CalendarDay, 0, 7)
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		tasks := byDate[key]
		if tasks == nil {
			tasks = []calendar.CalendarTask{}
		}
		days = append(days, calendar.CalendarDay{
			Date:        key,
			HasActivity: len(tasks) > 0,
			Tasks:       tasks,
		})
	}

	return &calendar.CalendarResponse{CalendarData: days}, nil
}
