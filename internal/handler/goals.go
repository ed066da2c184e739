package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/nutrition-tracker/internal/service"
)

// GoalsHandler serves nutrition goals.
type GoalsHandler struct {
	goals  *service.GoalsService
	logger *slog.Logger
}

func NewGoalsHandler(goals *service.GoalsService, logger *slog.Logger) *GoalsHandler {
	return &GoalsHandler{goals: goals, logger: logger}
}

// HandleCreate handles POST /api/goals. The new goal becomes the user's
// active one.
func (h *GoalsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.CreateGoalsInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := authorize(r, in.UserID); err != nil {
		writeError(w, err)
		return
	}

	goals, err := h.goals.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, goals)
}

// HandleActive handles GET /api/users/{userID}/goals/active. The body is
// JSON null when the user has no active goal.
func (h *GoalsHandler) HandleActive(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := authorize(r, userID); err != nil {
		writeError(w, err)
		return
	}

	goals, err := h.goals.Active(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if goals == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("null\n"))
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// HandleHistory handles GET /api/users/{userID}/goals.
func (h *GoalsHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := authorize(r, userID); err != nil {
		writeError(w, err)
		return
	}

	history, err := h.goals.History(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// HandleUpdate handles PATCH /api/goals/{id}.
func (h *GoalsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var in service.UpdateGoalsInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	existing, err := h.goals.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := authorize(r, existing.UserID); err != nil {
		writeError(w, err)
		return
	}

	goals, err := h.goals.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}
