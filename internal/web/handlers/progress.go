package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kozaktomas/makeup-coach/internal/progress"
)

// ProgressHandler exposes the progression engine per user.
type ProgressHandler struct {
	tracker *progress.Tracker
	log     *zap.Logger
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(tracker *progress.Tracker, log *zap.Logger) *ProgressHandler {
	return &ProgressHandler{tracker: tracker, log: log}
}

// ExperienceRequest awards experience.
type ExperienceRequest struct {
	Amount *int `json:"amount" validate:"required,gte=0"`
}

// SkillRequest records one practice observation.
type SkillRequest struct {
	Accuracy *float64 `json:"accuracy" validate:"required,gte=0,lte=1"`
}

// UnlockResponse reports whether an unlock changed anything.
type UnlockResponse struct {
	Unlocked bool              `json:"unlocked"`
	Progress progress.Snapshot `json:"progress"`
}

// CompleteChallengeResponse reports whether a challenge was completed.
type CompleteChallengeResponse struct {
	Completed bool              `json:"completed"`
	Progress  progress.Snapshot `json:"progress"`
}

// respondProgressError maps progression errors to HTTP statuses.
func (h *ProgressHandler) respondProgressError(w http.ResponseWriter, userID string, err error) {
	switch {
	case errors.Is(err, progress.ErrInvalidUser):
		respondError(w, http.StatusBadRequest, "missing user ID")
	case errors.Is(err, progress.ErrUnknownSkill):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, progress.ErrNegativeAmount),
		errors.Is(err, progress.ErrAmountTooLarge),
		errors.Is(err, progress.ErrAccuracyOutOfRange),
		errors.Is(err, progress.ErrInvalidChallenge):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error("progress update failed", zap.String("user_id", sanitizeForLog(userID)), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to update progress")
	}
}

// Get returns the user's progression state.
func (h *ProgressHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	snap, err := h.tracker.Get(r.Context(), userID)
	if err != nil {
		h.respondProgressError(w, userID, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// AddExperience awards experience points.
func (h *ProgressHandler) AddExperience(w http.ResponseWriter, r *http.Request) {
	var req ExperienceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userID := userIDParam(r)
	snap, err := h.tracker.AddExperience(r.Context(), userID, *req.Amount)
	if err != nil {
		h.respondProgressError(w, userID, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// UpdateSkill records a practice observation for the {skill} parameter.
func (h *ProgressHandler) UpdateSkill(w http.ResponseWriter, r *http.Request) {
	var req SkillRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userID := userIDParam(r)
	snap, err := h.tracker.UpdateSkill(r.Context(), userID, chi.URLParam(r, "skill"), *req.Accuracy)
	if err != nil {
		h.respondProgressError(w, userID, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// RecordActivity updates the daily streak.
func (h *ProgressHandler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	snap, err := h.tracker.RecordActivity(r.Context(), userID)
	if err != nil {
		h.respondProgressError(w, userID, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// UnlockAchievement unlocks the {id} achievement.
func (h *ProgressHandler) UnlockAchievement(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	snap, unlocked, err := h.tracker.UnlockAchievement(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondProgressError(w, userID, err)
		return
	}
	respondJSON(w, http.StatusOK, UnlockResponse{Unlocked: unlocked, Progress: snap})
}

// AssignChallenge replaces the active daily challenge. A "completed" flag in
// the body is ignored.
func (h *ProgressHandler) AssignChallenge(w http.ResponseWriter, r *http.Request) {
	var req progress.DailyChallenge
	if !decodeJSON(w, r, &req) {
		return
	}
	userID := userIDParam(r)
	snap, err := h.tracker.AssignChallenge(r.Context(), userID, req)
	if err != nil {
		h.respondProgressError(w, userID, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// CompleteChallenge completes the active daily challenge.
func (h *ProgressHandler) CompleteChallenge(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	snap, completed, err := h.tracker.CompleteChallenge(r.Context(), userID)
	if err != nil {
		h.respondProgressError(w, userID, err)
		return
	}
	respondJSON(w, http.StatusOK, CompleteChallengeResponse{Completed: completed, Progress: snap})
}

// CompleteLook counts a finished look.
func (h *ProgressHandler) CompleteLook(w http.ResponseWriter, r *http.Request) {
	userID := userIDParam(r)
	snap, err := h.tracker.CompleteLook(r.Context(), userID)
	if err != nil {
		h.respondProgressError(w, userID, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}
