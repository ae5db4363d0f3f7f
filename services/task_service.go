package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studyTrackAPI/internal/stats"
	"studyTrackAPI/internal/types/task"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrTaskNotFound = errors.New("assignment not found")

type TaskService struct {
	db            *pgxpool.Pool
	streakService *StreakService
}

func NewTaskService(db *pgxpool.Pool, streakService *StreakService) *TaskService {
	return &TaskService{
		db:            db,
		streakService: streakService,
	}
}

func (s *TaskService) ListTasks(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, title, description, subject, due_date, is_completed, created_at, updated_at
        FROM assignments
        WHERE user_id = $1
        ORDER BY due_date ASC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

func (s *TaskService) CreateTask(ctx context.Context, userID uuid.UUID, req *task.CreateTaskRequest) (*task.Task, error) {
	dueDate, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("invalid due date: %w", err)
	}

	t := &task.Task{}
	query := `
	INSERT INTO assignments (id, user_id, title, description, subject, due_date)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, user_id, title, description, subject, due_date, is_completed, created_at, updated_at
	`

	err = s.db.QueryRow(ctx, query, uuid.New(), userID, req.Title, req.Description, req.Subject, dueDate).Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Subject,
		&t.DueDate,
		&t.IsCompleted,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	return t, nil
}

// UpdateTask applies a partial update. When the update flips the task
// from incomplete to complete it also records the completion and
// advances the user's streak, best-effort.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID uuid.UUID, req *task.UpdateTaskRequest) (*task.Task, error) {
	var wasCompleted bool
	var currentTitle string
	err := s.db.QueryRow(ctx,
		`SELECT is_completed, title FROM assignments WHERE id = $1 AND user_id = $2`,
		taskID, userID,
	).Scan(&wasCompleted, &currentTitle)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	var dueDate *time.Time
	if req.DueDate != nil {
		parsed, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due date: %w", err)
		}
		dueDate = &parsed
	}

	t := &task.Task{}
	query := `
	UPDATE assignments
	SET title = COALESCE($1, title),
	    description = COALESCE($2, description),
	    subject = COALESCE($3, subject),
	    due_date = COALESCE($4, due_date),
	    is_completed = COALESCE($5, is_completed),
	    updated_at = NOW()
	WHERE id = $6 AND user_id = $7
	RETURNING id, user_id, title, description, subject, due_date, is_completed, created_at, updated_at
	`

	err = s.db.QueryRow(ctx, query,
		req.Title, req.Description, req.Subject, dueDate, req.IsCompleted, taskID, userID,
	).Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Subject,
		&t.DueDate,
		&t.IsCompleted,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update assignment: %w", err)
	}

	// Only the incomplete->complete transition feeds the streak engine.
	// Un-completing has no streak effect.
	if req.IsCompleted != nil && *req.IsCompleted && !wasCompleted {
		s.streakService.OnTaskCompleted(ctx, userID, taskID, currentTitle, time.Now())
	}

	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) (*task.Task, error) {
	t := &task.Task{}
	err := s.db.QueryRow(ctx, `
        DELETE FROM assignments WHERE id = $1 AND user_id = $2
        RETURNING id, user_id, title, description, subject, due_date, is_completed, created_at, updated_at
    `, taskID, userID).Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Subject,
		&t.DueDate,
		&t.IsCompleted,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to delete assignment: %w", err)
	}

	return t, nil
}

func (s *TaskService) GetOverdueTasks(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, title, description, subject, due_date, is_completed, created_at, updated_at
        FROM assignments
        WHERE user_id = $1
          AND is_completed = false
          AND due_date < NOW()
        ORDER BY due_date ASC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue assignments: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

func (s *TaskService) GetDashboardStats(ctx context.Context, userID uuid.UUID) (*stats.DashboardStats, error) {
	dashboard := &stats.DashboardStats{}

	err := s.db.QueryRow(ctx, `
        SELECT
            COUNT(*) as total_tasks,
            COUNT(*) FILTER (WHERE is_completed = false) as pending_tasks,
            COUNT(*) FILTER (WHERE is_completed = true) as completed_tasks,
            COUNT(*) FILTER (WHERE is_completed = false AND due_date < NOW()) as overdue_tasks
        FROM assignments
        WHERE user_id = $1
    `, userID).Scan(
		&dashboard.TotalTasks,
		&dashboard.PendingTasks,
		&dashboard.CompletedTasks,
		&dashboard.OverdueTasks,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment stats: %w", err)
	}

	err = s.db.QueryRow(ctx, `SELECT current_streak FROM users WHERE id = $1`, userID).Scan(&dashboard.CurrentStreak)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}

	return dashboard, nil
}

func scanTasks(rows pgx.Rows) ([]*task.Task, error) {
	tasks := []*task.Task{}
	for rows.Next() {
		t := &task.Task{}
		if err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Title,
			&t.Description,
			&t.Subject,
			&t.DueDate,
			&t.IsCompleted,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}
