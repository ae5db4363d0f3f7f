package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"time"

	"studyTrackAPI/internal/user"
	"studyTrackAPI/middleware"
	"studyTrackAPI/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req user.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if msg, ok := validateCredentials(req.Email, req.Password); !ok {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	u, err := h.userService.Register(ctx, &req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			respondWithError(w, http.StatusUnauthorized, "User is already registered")
			return
		}
		log.Printf("Signup Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := middleware.GenerateToken(u.ID, u.Email, u.Name)
	if err != nil {
		log.Printf("Signup Handler: Token error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	respondWithJSON(w, http.StatusCreated, user.AuthResponse{
		Message: "User created successfully",
		Token:   token,
		User:    u,
	})
}

func (h *UserHandler) Signin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req user.SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if msg, ok := validateCredentials(req.Email, req.Password); !ok {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	u, err := h.userService.Authenticate(ctx, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailNotRegistered):
			respondWithError(w, http.StatusBadRequest, "Email is not registered")
		case errors.Is(err, services.ErrInvalidPassword):
			respondWithError(w, http.StatusUnauthorized, "Invalid password")
		default:
			log.Printf("Signin Handler: Service error: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to sign in")
		}
		return
	}

	token, err := middleware.GenerateToken(u.ID, u.Email, u.Name)
	if err != nil {
		log.Printf("Signin Handler: Token error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	respondWithJSON(w, http.StatusOK, user.AuthResponse{
		Message: "User logged in",
		Token:   token,
	})
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	u, err := h.userService.GetUserByID(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	respondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req user.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if !isValidPassword(req.Password) {
		respondWithError(w, http.StatusBadRequest, "Password must be at least 6 alphanumeric characters")
		return
	}

	u, err := h.userService.UpdateProfile(ctx, userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			respondWithError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, services.ErrInvalidPassword):
			respondWithError(w, http.StatusUnauthorized, "Wrong old password")
		default:
			log.Printf("UpdateProfile Handler: Service error: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to update user")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User updated successfully",
		"user":    u,
	})
}

func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req user.DeleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.userService.DeleteUser(ctx, userID, req.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			respondWithError(w, http.StatusNotFound, "User not found")
		case errors.Is(err, services.ErrInvalidPassword):
			respondWithError(w, http.StatusUnauthorized, "Wrong password")
		default:
			log.Printf("DeleteAccount Handler: Service error: %v", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to delete user")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	users, err := h.userService.ListUsers(ctx)
	if err != nil {
		log.Printf("ListUsers Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	respondWithJSON(w, http.StatusOK, users)
}

func validateCredentials(email, password string) (string, bool) {
	if _, err := mail.ParseAddress(email); err != nil {
		return "Invalid email address", false
	}
	if !isValidPassword(password) {
		return "Password must be at least 6 alphanumeric characters", false
	}
	return "", true
}

func isValidPassword(password string) bool {
	if len(password) < 6 {
		return false
	}
	for _, c := range password {
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if !isLetter && !isDigit {
			return false
		}
	}
	return true
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
