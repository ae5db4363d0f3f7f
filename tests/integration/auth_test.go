package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyTrackAPI/handlers"
	"studyTrackAPI/internal/user"
	"studyTrackAPI/middleware"
	"studyTrackAPI/services"
	"studyTrackAPI/tests/helpers"
)

func TestSignupAndSignin(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")

	userService := services.NewUserService(pool)
	userHandler := handlers.NewUserHandler(userService)

	email := "test" + time.Now().Format("20060102150405") + "@example.com"
	body := `{"name": "Test Student", "email": "` + email + `", "password": "secret123"}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/signup", strings.NewReader(body))
	rr := httptest.NewRecorder()
	userHandler.Signup(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var signupResp user.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &signupResp))
	assert.NotEmpty(t, signupResp.Token)
	require.NotNil(t, signupResp.User)
	assert.Equal(t, email, signupResp.User.Email)
	assert.Equal(t, 0, signupResp.User.CurrentStreak)
	assert.Nil(t, signupResp.User.LastActivityDate)

	// Duplicate signup is rejected
	req = httptest.NewRequest(http.MethodPost, "/api/v1/user/signup", strings.NewReader(body))
	rr = httptest.NewRecorder()
	userHandler.Signup(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Signin with the same credentials
	signinBody := `{"email": "` + email + `", "password": "secret123"}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/user/signin", strings.NewReader(signinBody))
	rr = httptest.NewRecorder()
	userHandler.Signin(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var signinResp user.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &signinResp))
	assert.NotEmpty(t, signinResp.Token)

	// Wrong password
	badBody := `{"email": "` + email + `", "password": "wrongpass1"}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/user/signin", strings.NewReader(badBody))
	rr = httptest.NewRecorder()
	userHandler.Signin(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSignup_RejectsInvalidInput(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	userHandler := handlers.NewUserHandler(userService)

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"email": "test-x@example.com", "password": "secret123"}`},
		{"bad email", `{"name": "A", "email": "not-an-email", "password": "secret123"}`},
		{"short password", `{"name": "A", "email": "test-x@example.com", "password": "ab1"}`},
		{"non-alphanumeric password", `{"name": "A", "email": "test-x@example.com", "password": "secret!23"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/user/signup", strings.NewReader(tc.body))
			rr := httptest.NewRecorder()
			userHandler.Signup(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestGetProfile_Authenticated(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	userHandler := handlers.NewUserHandler(userService)

	u := helpers.CreateTestUser(t, pool)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, u.ID)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	userHandler.GetProfile(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var response user.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, u.ID, response.ID)
	assert.Equal(t, u.Email, response.Email)
}

func TestGetProfile_Unauthenticated(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	userHandler := handlers.NewUserHandler(userService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
	rr := httptest.NewRecorder()
	userHandler.GetProfile(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthMiddleware_RoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")

	u := &user.User{ID: uuid.New(), Name: "Test User", Email: "roundtrip@example.com"}
	token, err := middleware.GenerateToken(u.ID, u.Email, u.Name)
	require.NoError(t, err)

	var gotID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r.Context())
		require.True(t, ok)
		gotID = userID.String()
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/bulk", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	middleware.AuthMiddleware(next).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, u.ID.String(), gotID)

	// Garbage token is rejected
	req = httptest.NewRequest(http.MethodGet, "/api/v1/tasks/bulk", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rr = httptest.NewRecorder()
	middleware.AuthMiddleware(next).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
