package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/nutrition-tracker/internal/auth"
	"github.com/sakif/nutrition-tracker/internal/handler"
	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/repository/sqlstore"
	"github.com/sakif/nutrition-tracker/internal/service"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// newTestAPI mounts every entity handler on a chi router backed by an
// in-memory store. When caller is non-zero every request is treated as
// signed in as that user.
func newTestAPI(t *testing.T, caller int64) http.Handler {
	t.Helper()

	db, err := sqlstore.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := handler.NewUserHandler(service.NewUserService(db, testLogger), testLogger)
	food := handler.NewFoodHandler(service.NewFoodService(db, db, db, testLogger), testLogger)
	goals := handler.NewGoalsHandler(service.NewGoalsService(db, db, testLogger), testLogger)
	plans := handler.NewMealPlanHandler(service.NewMealPlanService(db, db, db, testLogger), testLogger)
	reports := handler.NewReportHandler(service.NewReportService(db, db, db, testLogger), testLogger)

	r := chi.NewRouter()
	if caller != 0 {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(auth.WithUserID(req.Context(), caller)))
			})
		})
	}
	r.Post("/api/users", users.HandleCreate)
	r.Get("/api/users", users.HandleList)
	r.Post("/api/food-items", food.HandleCreateItem)
	r.Get("/api/food-items", food.HandleListItems)
	r.Post("/api/food-log", food.HandleLogFood)
	r.Post("/api/goals", goals.HandleCreate)
	r.Patch("/api/goals/{id}", goals.HandleUpdate)
	r.Post("/api/meal-plans", plans.HandleCreate)
	r.Get("/api/meal-plans/{planID}/items", plans.HandleListItems)
	r.Post("/api/meal-plan-items", plans.HandleAddItem)
	r.Get("/api/users/{userID}/food-items", food.HandleListItemsByUser)
	r.Get("/api/users/{userID}/food-log", food.HandleListLog)
	r.Get("/api/users/{userID}/goals", goals.HandleHistory)
	r.Get("/api/users/{userID}/goals/active", goals.HandleActive)
	r.Get("/api/users/{userID}/meal-plans", plans.HandleListByUser)
	r.Get("/api/users/{userID}/progress", reports.HandleProgress)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body: %s", rr.Body.String())
	return v
}

func mustCreate[T any](t *testing.T, h http.Handler, path, body string) T {
	t.Helper()
	rr := do(t, h, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[T](t, rr)
}

func createUser(t *testing.T, h http.Handler, email string) model.User {
	return mustCreate[model.User](t, h, "/api/users", fmt.Sprintf(`{"email":%q,"name":"Test User"}`, email))
}

// createFood adds a food with 200 kcal, 10 g protein, 20 g carbs and 5 g fat
// per 30 g serving.
func createFood(t *testing.T, h http.Handler) model.FoodItem {
	return mustCreate[model.FoodItem](t, h, "/api/food-items", `{
		"name": "Oats", "serving_size": 30, "serving_unit": "g",
		"calories_per_serving": 200, "protein_per_serving": 10,
		"carbs_per_serving": 20, "fat_per_serving": 5
	}`)
}

func logFood(t *testing.T, h http.Handler, userID, foodID int64, servings float64, at string) model.FoodLogEntry {
	return mustCreate[model.FoodLogEntry](t, h, "/api/food-log", fmt.Sprintf(
		`{"user_id":%d,"food_item_id":%d,"serving_amount":%g,"meal_type":"breakfast","logged_at":%q}`,
		userID, foodID, servings, at,
	))
}

// ==========================================
// USERS
// ==========================================

func TestUserHandler(t *testing.T) {
	t.Run("create and list", func(t *testing.T) {
		api := newTestAPI(t, 0)

		rr := do(t, api, http.MethodGet, "/api/users", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())

		user := createUser(t, api, "ada@example.com")
		assert.NotZero(t, user.ID)
		assert.Equal(t, "ada@example.com", user.Email)

		rr = do(t, api, http.MethodGet, "/api/users", "")
		users := decode[[]model.User](t, rr)
		assert.Len(t, users, 1)
	})

	t.Run("invalid email names the field", func(t *testing.T) {
		api := newTestAPI(t, 0)

		rr := do(t, api, http.MethodPost, "/api/users", `{"email":"nope","name":"Ada"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)

		body := decode[handler.ErrorResponse](t, rr)
		assert.Equal(t, "validation_error", body.Error)
		assert.Equal(t, "email", body.Field)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		api := newTestAPI(t, 0)
		createUser(t, api, "ada@example.com")

		rr := do(t, api, http.MethodPost, "/api/users", `{"email":"ada@example.com","name":"Other"}`)
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, "conflict", decode[handler.ErrorResponse](t, rr).Error)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		api := newTestAPI(t, 0)

		rr := do(t, api, http.MethodPost, "/api/users", `{"email":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		api := newTestAPI(t, 0)

		rr := do(t, api, http.MethodPost, "/api/users", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "body", decode[handler.ErrorResponse](t, rr).Field)
	})
}

// ==========================================
// FOOD ITEMS AND FOOD LOG
// ==========================================

func TestFoodHandler(t *testing.T) {
	t.Run("food item defaults to custom", func(t *testing.T) {
		api := newTestAPI(t, 0)

		item := createFood(t, api)
		assert.True(t, item.IsCustom)
		assert.Nil(t, item.CreatedByUserID)

		rr := do(t, api, http.MethodGet, "/api/food-items", "")
		assert.Len(t, decode[[]model.FoodItem](t, rr), 1)
	})

	t.Run("food items by creator", func(t *testing.T) {
		api := newTestAPI(t, 0)
		user := createUser(t, api, "ada@example.com")
		mustCreate[model.FoodItem](t, api, "/api/food-items", fmt.Sprintf(`{
			"name": "Bread", "serving_size": 1, "serving_unit": "slice",
			"calories_per_serving": 80, "protein_per_serving": 3,
			"carbs_per_serving": 15, "fat_per_serving": 1,
			"is_custom": false, "created_by_user_id": %d
		}`, user.ID))
		createFood(t, api)

		rr := do(t, api, http.MethodGet, fmt.Sprintf("/api/users/%d/food-items", user.ID), "")
		items := decode[[]model.FoodItem](t, rr)
		require.Len(t, items, 1)
		assert.Equal(t, "Bread", items[0].Name)
		assert.False(t, items[0].IsCustom)
	})

	t.Run("negative macro rejected", func(t *testing.T) {
		api := newTestAPI(t, 0)

		rr := do(t, api, http.MethodPost, "/api/food-items", `{
			"name": "Bad", "serving_size": 1, "serving_unit": "g",
			"calories_per_serving": -1, "protein_per_serving": 0,
			"carbs_per_serving": 0, "fat_per_serving": 0
		}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "calories_per_serving", decode[handler.ErrorResponse](t, rr).Field)
	})

	t.Run("log for unknown user is not found", func(t *testing.T) {
		api := newTestAPI(t, 0)
		food := createFood(t, api)

		rr := do(t, api, http.MethodPost, "/api/food-log", fmt.Sprintf(
			`{"user_id":999,"food_item_id":%d,"serving_amount":1,"meal_type":"lunch"}`, food.ID))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("bad meal type", func(t *testing.T) {
		api := newTestAPI(t, 0)
		user := createUser(t, api, "ada@example.com")
		food := createFood(t, api)

		rr := do(t, api, http.MethodPost, "/api/food-log", fmt.Sprintf(
			`{"user_id":%d,"food_item_id":%d,"serving_amount":1,"meal_type":"brunch"}`, user.ID, food.ID))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "meal_type", decode[handler.ErrorResponse](t, rr).Field)
	})

	t.Run("log filtered by date range", func(t *testing.T) {
		api := newTestAPI(t, 0)
		user := createUser(t, api, "ada@example.com")
		food := createFood(t, api)
		logFood(t, api, user.ID, food.ID, 1, "2024-01-01T08:00:00Z")
		logFood(t, api, user.ID, food.ID, 1, "2024-01-02T23:30:00Z")
		logFood(t, api, user.ID, food.ID, 1, "2024-01-03T00:00:00Z")

		rr := do(t, api, http.MethodGet, fmt.Sprintf("/api/users/%d/food-log", user.ID), "")
		assert.Len(t, decode[[]model.FoodLogEntry](t, rr), 3)

		// A date-only end covers the whole day.
		rr = do(t, api, http.MethodGet, fmt.Sprintf("/api/users/%d/food-log?start=2024-01-01&end=2024-01-02", user.ID), "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Len(t, decode[[]model.FoodLogEntry](t, rr), 2)

		rr = do(t, api, http.MethodGet, fmt.Sprintf(
			"/api/users/%d/food-log?start=2024-01-02T23:30:00Z&end=2024-01-03T00:00:00Z", user.ID), "")
		assert.Len(t, decode[[]model.FoodLogEntry](t, rr), 2)
	})

	t.Run("range needs both ends", func(t *testing.T) {
		api := newTestAPI(t, 0)

		rr := do(t, api, http.MethodGet, "/api/users/1/food-log?start=2024-01-01", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("non-numeric user id", func(t *testing.T) {
		api := newTestAPI(t, 0)

		rr := do(t, api, http.MethodGet, "/api/users/abc/food-log", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "userID", decode[handler.ErrorResponse](t, rr).Field)
	})
}

// ==========================================
// NUTRITION GOALS
// ==========================================

func TestGoalsHandler(t *testing.T) {
	t.Run("active is null without goals", func(t *testing.T) {
		api := newTestAPI(t, 0)
		user := createUser(t, api, "ada@example.com")

		rr := do(t, api, http.MethodGet, fmt.Sprintf("/api/users/%d/goals/active", user.ID), "")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `null`, rr.Body.String())
	})

	t.Run("new goal replaces the active one", func(t *testing.T) {
		api := newTestAPI(t, 0)
		user := createUser(t, api, "ada@example.com")

		first := mustCreate[model.NutritionGoals](t, api, "/api/goals", fmt.Sprintf(
			`{"user_id":%d,"daily_calories":2000,"daily_protein":100,"daily_carbs":250,"daily_fat":70}`, user.ID))
		second := mustCreate[model.NutritionGoals](t, api, "/api/goals", fmt.Sprintf(
			`{"user_id":%d,"daily_calories":1800,"daily_protein":120,"daily_carbs":200,"daily_fat":60}`, user.ID))
		assert.True(t, second.IsActive)

		rr := do(t, api, http.MethodGet, fmt.Sprintf("/api/users/%d/goals/active", user.ID), "")
		active := decode[model.NutritionGoals](t, rr)
		assert.Equal(t, second.ID, active.ID)

		rr = do(t, api, http.MethodGet, fmt.Sprintf("/api/users/%d/goals", user.ID), "")
		history := decode[[]model.NutritionGoals](t, rr)
		require.Len(t, history, 2)
		for _, g := range history {
			assert.Equal(t, g.ID == second.ID, g.IsActive, "goal %d", g.ID)
		}
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("partial update", func(t *testing.T) {
		api := newTestAPI(t, 0)
		user := createUser(t, api, "ada@example.com")
		goals := mustCreate[model.NutritionGoals](t, api, "/api/goals", fmt.Sprintf(
			`{"user_id":%d,"daily_calories":2000,"daily_protein":100,"daily_carbs":250,"daily_fat":70}`, user.ID))

		rr := do(t, api, http.MethodPatch, fmt.Sprintf("/api/goals/%d", goals.ID), `{"daily_protein":140}`)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		updated := decode[model.NutritionGoals](t, rr)
		assert.Equal(t, 140.0, updated.DailyProtein)
		assert.Equal(t, 2000.0, updated.DailyCalories)
		assert.True(t, updated.IsActive)
	})

	t.Run("update unknown goal", func(t *testing.T) {
		api := newTestAPI(t, 0)

		rr := do(t, api, http.MethodPatch, "/api/goals/42", `{"daily_fat":50}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("zero calories rejected", func(t *testing.T) {
		api := newTestAPI(t, 0)
		user := createUser(t, api, "ada@example.com")

		rr := do(t, api, http.MethodPost, "/api/goals", fmt.Sprintf(
			`{"user_id":%d,"daily_calories":0,"daily_protein":0,"daily_carbs":0,"daily_fat":0}`, user.ID))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "daily_calories", decode[handler.ErrorResponse](t, rr).Field)
	})
}

// ==========================================
// MEAL PLANS
// ==========================================

func TestMealPlanHandler(t *testing.T) {
	api := newTestAPI(t, 0)
	user := createUser(t, api, "ada@example.com")
	food := createFood(t, api)

	mon := mustCreate[model.MealPlan](t, api, "/api/meal-plans", fmt.Sprintf(
		`{"user_id":%d,"name":"Monday breakfast","planned_date":"2024-01-01","meal_type":"breakfast"}`, user.ID))
	mustCreate[model.MealPlan](t, api, "/api/meal-plans", fmt.Sprintf(
		`{"user_id":%d,"name":"Friday dinner","planned_date":"2024-01-05","meal_type":"dinner"}`, user.ID))

	item := mustCreate[model.MealPlanItem](t, api, "/api/meal-plan-items", fmt.Sprintf(
		`{"meal_plan_id":%d,"food_item_id":%d,"serving_amount":1.5}`, mon.ID, food.ID))
	assert.Equal(t, mon.ID, item.MealPlanID)

	t.Run("list all", func(t *testing.T) {
		rr := do(t, api, http.MethodGet, fmt.Sprintf("/api/users/%d/meal-plans", user.ID), "")
		plans := decode[[]model.MealPlan](t, rr)
		require.Len(t, plans, 2)
		assert.Equal(t, "2024-01-01", plans[0].PlannedDate.String())
	})

	t.Run("list in range", func(t *testing.T) {
		rr := do(t, api, http.MethodGet, fmt.Sprintf("/api/users/%d/meal-plans?start=2024-01-02&end=2024-01-07", user.ID), "")
		plans := decode[[]model.MealPlan](t, rr)
		require.Len(t, plans, 1)
		assert.Equal(t, "Friday dinner", plans[0].Name)
	})

	t.Run("items", func(t *testing.T) {
		rr := do(t, api, http.MethodGet, fmt.Sprintf("/api/meal-plans/%d/items", mon.ID), "")
		items := decode[[]model.MealPlanItem](t, rr)
		require.Len(t, items, 1)
		assert.Equal(t, 1.5, items[0].ServingAmount)
	})

	t.Run("item for unknown plan", func(t *testing.T) {
		rr := do(t, api, http.MethodPost, "/api/meal-plan-items", fmt.Sprintf(
			`{"meal_plan_id":999,"food_item_id":%d,"serving_amount":1}`, food.ID))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("missing planned date", func(t *testing.T) {
		rr := do(t, api, http.MethodPost, "/api/meal-plans", fmt.Sprintf(
			`{"user_id":%d,"name":"Undated","meal_type":"lunch"}`, user.ID))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "planned_date", decode[handler.ErrorResponse](t, rr).Field)
	})
}

// ==========================================
// PROGRESS REPORT
// ==========================================

func TestReportHandler(t *testing.T) {
	t.Run("two day report against goals", func(t *testing.T) {
		api := newTestAPI(t, 0)
		user := createUser(t, api, "ada@example.com")
		food := createFood(t, api)
		logFood(t, api, user.ID, food.ID, 2, "2024-01-01T08:00:00Z")
		logFood(t, api, user.ID, food.ID, 1, "2024-01-02T19:00:00Z")
		mustCreate[model.NutritionGoals](t, api, "/api/goals", fmt.Sprintf(
			`{"user_id":%d,"daily_calories":600,"daily_protein":15,"daily_carbs":30,"daily_fat":10}`, user.ID))

		rr := do(t, api, http.MethodGet, fmt.Sprintf("/api/users/%d/progress?start=2024-01-01&end=2024-01-02", user.ID), "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		report := decode[model.ProgressReport](t, rr)
		assert.Equal(t, 2, report.Days)
		assert.InDelta(t, 600, report.Totals.Calories, 1e-9)
		assert.InDelta(t, 300, report.DailyAverages.Calories, 1e-9)
		require.NotNil(t, report.GoalsComparison)
		assert.InDelta(t, 50, report.GoalsComparison.CaloriesPercentage, 1e-9)
		assert.InDelta(t, 100, report.GoalsComparison.ProteinPercentage, 1e-9)
		assert.InDelta(t, 100, report.GoalsComparison.CarbsPercentage, 1e-9)
		assert.InDelta(t, 75, report.GoalsComparison.FatPercentage, 1e-9)
	})

	t.Run("no goals means no comparison", func(t *testing.T) {
		api := newTestAPI(t, 0)
		user := createUser(t, api, "ada@example.com")

		rr := do(t, api, http.MethodGet, fmt.Sprintf("/api/users/%d/progress?start=2024-01-01&end=2024-01-01", user.ID), "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"goals_comparison":null`)
	})

	t.Run("zero target with intake is unprocessable", func(t *testing.T) {
		api := newTestAPI(t, 0)
		user := createUser(t, api, "ada@example.com")
		food := createFood(t, api)
		logFood(t, api, user.ID, food.ID, 1, "2024-01-01T08:00:00Z")
		mustCreate[model.NutritionGoals](t, api, "/api/goals", fmt.Sprintf(
			`{"user_id":%d,"daily_calories":2000,"daily_protein":100,"daily_carbs":250,"daily_fat":0}`, user.ID))

		rr := do(t, api, http.MethodGet, fmt.Sprintf("/api/users/%d/progress?start=2024-01-01&end=2024-01-01", user.ID), "")
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		body := decode[handler.ErrorResponse](t, rr)
		assert.Equal(t, "division_undefined", body.Error)
		assert.Equal(t, "fat", body.Field)
	})

	t.Run("dates are required", func(t *testing.T) {
		api := newTestAPI(t, 0)

		rr := do(t, api, http.MethodGet, "/api/users/1/progress?start=2024-01-01", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "end", decode[handler.ErrorResponse](t, rr).Field)
	})

	t.Run("start after end", func(t *testing.T) {
		api := newTestAPI(t, 0)
		user := createUser(t, api, "ada@example.com")

		rr := do(t, api, http.MethodGet, fmt.Sprintf("/api/users/%d/progress?start=2024-01-05&end=2024-01-01", user.ID), "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		api := newTestAPI(t, 0)

		rr := do(t, api, http.MethodGet, "/api/users/77/progress?start=2024-01-01&end=2024-01-02", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

// ==========================================
// OWNERSHIP
// ==========================================

func TestOwnership(t *testing.T) {
	// The store numbers users from 1, so the caller is the first user created.
	api := newTestAPI(t, 1)
	me := createUser(t, api, "me@example.com")
	other := createUser(t, api, "other@example.com")
	require.Equal(t, int64(1), me.ID)

	t.Run("own data is allowed", func(t *testing.T) {
		rr := do(t, api, http.MethodGet, fmt.Sprintf("/api/users/%d/food-log", me.ID), "")
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("other user's data is forbidden", func(t *testing.T) {
		rr := do(t, api, http.MethodGet, fmt.Sprintf("/api/users/%d/food-log", other.ID), "")
		assert.Equal(t, http.StatusForbidden, rr.Code)
		assert.Equal(t, "forbidden", decode[handler.ErrorResponse](t, rr).Error)
	})

	t.Run("goals for another user are forbidden", func(t *testing.T) {
		rr := do(t, api, http.MethodPost, "/api/goals", fmt.Sprintf(
			`{"user_id":%d,"daily_calories":2000,"daily_protein":100,"daily_carbs":250,"daily_fat":70}`, other.ID))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("food item creator defaults to caller", func(t *testing.T) {
		item := createFood(t, api)
		require.NotNil(t, item.CreatedByUserID)
		assert.Equal(t, me.ID, *item.CreatedByUserID)
	})
}
