package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/service"
)

// FoodHandler serves the food catalogue and the food log.
type FoodHandler struct {
	food   *service.FoodService
	logger *slog.Logger
}

func NewFoodHandler(food *service.FoodService, logger *slog.Logger) *FoodHandler {
	return &FoodHandler{food: food, logger: logger}
}

// HandleCreateItem handles POST /api/food-items. When the request is
// authenticated, created_by_user_id defaults to the caller and may not name
// anyone else.
func (h *FoodHandler) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	var in service.CreateFoodItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	if caller, ok := callerID(r); ok {
		if in.CreatedByUserID == nil {
			in.CreatedByUserID = &caller
		}
		if err := authorize(r, *in.CreatedByUserID); err != nil {
			writeError(w, err)
			return
		}
	}

	item, err := h.food.CreateItem(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// HandleListItems handles GET /api/food-items.
func (h *FoodHandler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.food.ListItems(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleListItemsByUser handles GET /api/users/{userID}/food-items.
func (h *FoodHandler) HandleListItemsByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	items, err := h.food.ListItemsByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleLogFood handles POST /api/food-log.
func (h *FoodHandler) HandleLogFood(w http.ResponseWriter, r *http.Request) {
	var in service.CreateFoodLogEntryInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := authorize(r, in.UserID); err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.food.LogFood(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// HandleListLog handles GET /api/users/{userID}/food-log, optionally
// narrowed by ?start=&end=.
func (h *FoodHandler) HandleListLog(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := authorize(r, userID); err != nil {
		writeError(w, err)
		return
	}

	from, to, ranged, err := timeRange(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var entries []model.FoodLogEntry
	if ranged {
		entries, err = h.food.ListLogInRange(r.Context(), userID, from, to)
	} else {
		entries, err = h.food.ListLog(r.Context(), userID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
