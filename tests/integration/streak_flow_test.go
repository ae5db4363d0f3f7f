package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyTrackAPI/internal/types/task"
	"studyTrackAPI/services"
	"studyTrackAPI/tests/helpers"
)

func todayDate() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func createTestTask(t *testing.T, svc *services.TaskService, userID uuid.UUID, title string) *task.Task {
	t.Helper()

	created, err := svc.CreateTask(context.Background(), userID, &task.CreateTaskRequest{
		Title:   title,
		DueDate: time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)
	return created
}

func completeTask(t *testing.T, svc *services.TaskService, tk *task.Task, completed bool) {
	t.Helper()
	_, err := svc.UpdateTask(context.Background(), tk.UserID, tk.ID, &task.UpdateTaskRequest{
		IsCompleted: &completed,
	})
	require.NoError(t, err)
}

func TestStreak_FirstEverCompletion(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	streakService := services.NewStreakService(pool)
	taskService := services.NewTaskService(pool, streakService)

	u := helpers.CreateTestUser(t, pool)
	require.Nil(t, u.LastActivityDate)
	require.Equal(t, 0, u.CurrentStreak)

	tk := createTestTask(t, taskService, u.ID, "read chapter 3")
	completeTask(t, taskService, tk, true)

	state, err := streakService.GetStreakState(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentStreak)
	require.NotNil(t, state.LastActivityDate)
	assert.Equal(t, todayDate(), *state.LastActivityDate)

	events, err := streakService.QueryCompletions(context.Background(), u.ID, todayDate(), todayDate())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, tk.ID, events[0].TaskID)
	assert.Equal(t, "read chapter 3", events[0].TaskTitle)
}

func TestStreak_ConsecutiveDayIncrements(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	streakService := services.NewStreakService(pool)
	taskService := services.NewTaskService(pool, streakService)

	u := helpers.CreateTestUser(t, pool)
	yesterday := todayDate().AddDate(0, 0, -1)
	helpers.SetStreakState(t, pool, u.ID, 3, &yesterday)

	tk := createTestTask(t, taskService, u.ID, "algebra problem set")
	completeTask(t, taskService, tk, true)

	state, err := streakService.GetStreakState(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, state.CurrentStreak)
	assert.Equal(t, todayDate(), *state.LastActivityDate)
}

func TestStreak_SecondTaskSameDayDoesNotDoubleIncrement(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	streakService := services.NewStreakService(pool)
	taskService := services.NewTaskService(pool, streakService)

	u := helpers.CreateTestUser(t, pool)
	yesterday := todayDate().AddDate(0, 0, -1)
	helpers.SetStreakState(t, pool, u.ID, 3, &yesterday)

	first := createTestTask(t, taskService, u.ID, "first task")
	second := createTestTask(t, taskService, u.ID, "second task")
	completeTask(t, taskService, first, true)
	completeTask(t, taskService, second, true)

	state, err := streakService.GetStreakState(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, state.CurrentStreak, "second completion on the same day must not advance the streak again")

	events, err := streakService.QueryCompletions(context.Background(), u.ID, todayDate(), todayDate())
	require.NoError(t, err)
	assert.Len(t, events, 2, "both completions must be recorded in history")
}

func TestStreak_GapResetsToOne(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	streakService := services.NewStreakService(pool)
	taskService := services.NewTaskService(pool, streakService)

	u := helpers.CreateTestUser(t, pool)
	fiveDaysAgo := todayDate().AddDate(0, 0, -5)
	helpers.SetStreakState(t, pool, u.ID, 3, &fiveDaysAgo)

	tk := createTestTask(t, taskService, u.ID, "essay draft")
	completeTask(t, taskService, tk, true)

	state, err := streakService.GetStreakState(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentStreak)
}

func TestStreak_RecompleteSameTaskIsDeduped(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	streakService := services.NewStreakService(pool)
	taskService := services.NewTaskService(pool, streakService)

	u := helpers.CreateTestUser(t, pool)
	yesterday := todayDate().AddDate(0, 0, -1)
	helpers.SetStreakState(t, pool, u.ID, 3, &yesterday)

	tk := createTestTask(t, taskService, u.ID, "flashcards")
	completeTask(t, taskService, tk, true)
	completeTask(t, taskService, tk, false)
	completeTask(t, taskService, tk, true)

	events, err := streakService.QueryCompletions(context.Background(), u.ID, todayDate(), todayDate())
	require.NoError(t, err)
	assert.Len(t, events, 1, "complete -> uncomplete -> recomplete must leave one history row")

	state, err := streakService.GetStreakState(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, state.CurrentStreak)
}

func TestStreak_UncompletingHasNoEffect(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	streakService := services.NewStreakService(pool)
	taskService := services.NewTaskService(pool, streakService)

	u := helpers.CreateTestUser(t, pool)
	yesterday := todayDate().AddDate(0, 0, -1)
	helpers.SetStreakState(t, pool, u.ID, 3, &yesterday)

	tk := createTestTask(t, taskService, u.ID, "lab report")
	completeTask(t, taskService, tk, true)
	completeTask(t, taskService, tk, false)

	state, err := streakService.GetStreakState(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, state.CurrentStreak)
	assert.Equal(t, todayDate(), *state.LastActivityDate)
}

func TestStreak_DashboardReflectsStreak(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	streakService := services.NewStreakService(pool)
	taskService := services.NewTaskService(pool, streakService)

	u := helpers.CreateTestUser(t, pool)
	tk := createTestTask(t, taskService, u.ID, "reading")
	completeTask(t, taskService, tk, true)

	dashboard, err := taskService.GetDashboardStats(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, dashboard.TotalTasks)
	assert.Equal(t, 1, dashboard.CompletedTasks)
	assert.Equal(t, 0, dashboard.PendingTasks)
	assert.Equal(t, 1, dashboard.CurrentStreak)
}

func TestStreak_CalendarShowsLastSevenDays(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	streakService := services.NewStreakService(pool)
	taskService := services.NewTaskService(pool, streakService)

	u := helpers.CreateTestUser(t, pool)
	tk := createTestTask(t, taskService, u.ID, "vocab review")
	completeTask(t, taskService, tk, true)

	cal, err := streakService.GetStreakCalendar(context.Background(), u.ID, time.Now())
	require.NoError(t, err)
	require.Len(t, cal.CalendarData, 7)

	today := cal.CalendarData[6]
	assert.Equal(t, todayDate().Format("2006-01-02"), today.Date)
	assert.True(t, today.HasActivity)
	require.Len(t, today.Tasks, 1)
	assert.Equal(t, "vocab review", today.Tasks[0].Title)

	for _, day := range cal.CalendarData[:6] {
		assert.False(t, day.HasActivity)
		assert.Empty(t, day.Tasks)
	}
}
