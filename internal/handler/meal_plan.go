package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/service"
)

// MealPlanHandler serves meal plans and their items.
type MealPlanHandler struct {
	plans  *service.MealPlanService
	logger *slog.Logger
}

func NewMealPlanHandler(plans *service.MealPlanService, logger *slog.Logger) *MealPlanHandler {
	return &MealPlanHandler{plans: plans, logger: logger}
}

// HandleCreate handles POST /api/meal-plans.
func (h *MealPlanHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.CreateMealPlanInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := authorize(r, in.UserID); err != nil {
		writeError(w, err)
		return
	}

	plan, err := h.plans.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}

// HandleListByUser handles GET /api/users/{userID}/meal-plans, optionally
// narrowed to planned dates within ?start=&end=.
func (h *MealPlanHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := authorize(r, userID); err != nil {
		writeError(w, err)
		return
	}

	from, to, ranged, err := dateRange(r, false)
	if err != nil {
		writeError(w, err)
		return
	}

	var plans []model.MealPlan
	if ranged {
		plans, err = h.plans.ListByUserInRange(r.Context(), userID, from, to)
	} else {
		plans, err = h.plans.ListByUser(r.Context(), userID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// HandleAddItem handles POST /api/meal-plan-items.
func (h *MealPlanHandler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	var in service.CreateMealPlanItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	if in.MealPlanID > 0 {
		if err := h.authorizePlan(r, in.MealPlanID); err != nil {
			writeError(w, err)
			return
		}
	}

	item, err := h.plans.AddItem(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// HandleListItems handles GET /api/meal-plans/{planID}/items.
func (h *MealPlanHandler) HandleListItems(w http.ResponseWriter, r *http.Request) {
	planID, err := pathID(r, "planID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.authorizePlan(r, planID); err != nil {
		writeError(w, err)
		return
	}

	items, err := h.plans.ListItems(r.Context(), planID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// authorizePlan checks plan ownership. With auth off it is a no-op, so an
// unknown plan is reported by the service instead.
func (h *MealPlanHandler) authorizePlan(r *http.Request, planID int64) error {
	if _, ok := callerID(r); !ok {
		return nil
	}
	plan, err := h.plans.GetByID(r.Context(), planID)
	if err != nil {
		return err
	}
	return authorize(r, plan.UserID)
}
