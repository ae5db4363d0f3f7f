package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"studyTrackAPI/internal/types/task"
	"studyTrackAPI/middleware"
	"studyTrackAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type TaskHandler struct {
	taskService   *services.TaskService
	streakService *services.StreakService
}

func NewTaskHandler(taskService *services.TaskService, streakService *services.StreakService) *TaskHandler {
	return &TaskHandler{
		taskService:   taskService,
		streakService: streakService,
	}
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	tasks, err := h.taskService.ListTasks(ctx, userID)
	if err != nil {
		log.Printf("ListTasks Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to list assignments")
		return
	}

	respondWithJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req task.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title == "" {
		respondWithError(w, http.StatusBadRequest, "Title is required")
		return
	}
	if req.DueDate == "" {
		respondWithError(w, http.StatusBadRequest, "Due date is required")
		return
	}

	created, err := h.taskService.CreateTask(ctx, userID, &req)
	if err != nil {
		log.Printf("CreateTask Handler: Service error: %v", err)
		respondWithError(w, http.StatusBadRequest, "Invalid data")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Assignment created",
		"assignment": created,
	})
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	taskID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}

	var req task.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.taskService.UpdateTask(ctx, userID, taskID, &req)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			respondWithError(w, http.StatusNotFound, "Assignment not found or not yours")
			return
		}
		log.Printf("UpdateTask Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to update assignment")
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	taskID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid assignment id")
		return
	}

	deleted, err := h.taskService.DeleteTask(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			respondWithError(w, http.StatusNotFound, "Assignment not found")
			return
		}
		log.Printf("DeleteTask Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to delete assignment")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Assignment deleted",
		"deleted": deleted,
	})
}

func (h *TaskHandler) GetOverdueTasks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	tasks, err := h.taskService.GetOverdueTasks(ctx, userID)
	if err != nil {
		log.Printf("GetOverdueTasks Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to list overdue assignments")
		return
	}

	respondWithJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	dashboard, err := h.taskService.GetDashboardStats(ctx, userID)
	if err != nil {
		log.Printf("GetDashboard Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get dashboard stats")
		return
	}

	respondWithJSON(w, http.StatusOK, dashboard)
}

func (h *TaskHandler) GetStreakCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	calendarData, err := h.streakService.GetStreakCalendar(ctx, userID, time.Now())
	if err != nil {
		log.Printf("GetStreakCalendar Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to get streak calendar")
		return
	}

	respondWithJSON(w, http.StatusOK, calendarData)
}
