package helpers

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"studyTrackAPI/internal/user"
	"studyTrackAPI/services"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SetupTestDB creates a test database connection. Tests are skipped
// when no database is configured.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL must be set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	return pool
}

// CleanupTestDB cleans up test data
func CleanupTestDB(t *testing.T, pool *pgxpool.Pool) {
	ctx := context.Background()
	_, err := pool.Exec(ctx, "DELETE FROM users WHERE email LIKE 'test%@example.com'")
	if err != nil {
		t.Logf("Warning: failed to cleanup test data: %v", err)
	}
	pool.Close()
}

// CreateTestUser registers a throwaway user with a unique email.
func CreateTestUser(t *testing.T, pool *pgxpool.Pool) *user.User {
	svc := services.NewUserService(pool)

	req := &user.SignupRequest{
		Name:     "Test User",
		Email:    fmt.Sprintf("test-%s@example.com", uuid.NewString()),
		Password: "password123",
	}

	u, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u
}

// SetStreakState seeds a user's streak columns directly.
func SetStreakState(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID, streak int, lastActivity *time.Time) {
	_, err := pool.Exec(context.Background(),
		`UPDATE users SET current_streak = $1, last_activity_date = $2 WHERE id = $3`,
		streak, lastActivity, userID,
	)
	if err != nil {
		t.Fatalf("Failed to seed streak state: %v", err)
	}
}
