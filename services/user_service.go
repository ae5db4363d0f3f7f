package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studyTrackAPI/internal/user"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrEmailNotRegistered = errors.New("email is not registered")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrUserNotFound       = errors.New("user not found")
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Register(ctx context.Context, req *user.SignupRequest) (*user.User, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, req.Email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: time.Now(),
	}

	query := `
	INSERT INTO users (id, name, email, password, created_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, name, email, current_streak, last_activity_date, created_at
	`

	err = s.db.QueryRow(ctx, query, u.ID, u.Name, u.Email, string(hash), u.CreatedAt).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.CurrentStreak,
		&u.LastActivityDate,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserService) Authenticate(ctx context.Context, req *user.SigninRequest) (*user.User, error) {
	u := &user.User{}
	query := `
	SELECT id, name, email, password, current_streak, last_activity_date, created_at
	FROM users
	WHERE email = $1
	`

	err := s.db.QueryRow(ctx, query, req.Email).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.CurrentStreak,
		&u.LastActivityDate,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmailNotRegistered
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidPassword
	}

	return u, nil
}

func (s *UserService) GetUserByID(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	u := &user.User{}
	query := `
	SELECT id, name, email, current_streak, last_activity_date, created_at
	FROM users
	WHERE id = $1
	`

	err := s.db.QueryRow(ctx, query, userID).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.CurrentStreak,
		&u.LastActivityDate,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

// UpdateProfile changes name and password after verifying the old one.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *user.UpdateProfileRequest) (*user.User, error) {
	var storedHash string
	err := s.db.QueryRow(ctx, `SELECT password FROM users WHERE id = $1`, userID).Scan(&storedHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.OldPassword)); err != nil {
		return nil, ErrInvalidPassword
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &user.User{}
	err = s.db.QueryRow(ctx, `
        UPDATE users SET name = $1, password = $2
        WHERE id = $3
        RETURNING id, name, email, current_streak, last_activity_date, created_at
    `, req.Name, string(newHash), userID).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.CurrentStreak,
		&u.LastActivityDate,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return u, nil
}

// DeleteUser removes the account after verifying the password.
// Assignments and completion history go with it via cascade.
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID, password string) error {
	var storedHash string
	err := s.db.QueryRow(ctx, `SELECT password FROM users WHERE id = $1`, userID).Scan(&storedHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)); err != nil {
		return ErrInvalidPassword
	}

	_, err = s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*user.PublicUser, error) {
	rows, err := s.db.Query(ctx, `SELECT name, created_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*user.PublicUser{}
	for rows.Next() {
		u := &user.PublicUser{}
		if err := rows.Scan(&u.Name, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}
