// Package repository declares the storage contracts the service layer
// depends on. internal/repository/sqlstore implements them.
package repository

import (
	"context"
	"time"

	"github.com/sakif/nutrition-tracker/internal/model"
)

// TimeRange is an inclusive [From, To] window.
type TimeRange struct {
	From time.Time
	To   time.Time
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

type FoodItemRepository interface {
	CreateFoodItem(ctx context.Context, item *model.FoodItem) error
	GetFoodItemByID(ctx context.Context, id int64) (*model.FoodItem, error)
	ListFoodItems(ctx context.Context) ([]model.FoodItem, error)
	ListFoodItemsByUser(ctx context.Context, userID int64) ([]model.FoodItem, error)
}

type FoodLogRepository interface {
	CreateFoodLogEntry(ctx context.Context, entry *model.FoodLogEntry) error
	ListFoodLogEntriesByUser(ctx context.Context, userID int64) ([]model.FoodLogEntry, error)
	ListFoodLogEntriesByUserInRange(ctx context.Context, userID int64, r TimeRange) ([]model.FoodLogEntry, error)
	// ListLoggedFoodInRange returns entries joined with their food item.
	ListLoggedFoodInRange(ctx context.Context, userID int64, r TimeRange) ([]model.LoggedFood, error)
}

// GoalsPatch carries the optional fields of a partial goals update.
type GoalsPatch struct {
	DailyCalories *float64
	DailyProtein  *float64
	DailyCarbs    *float64
	DailyFat      *float64
}

type NutritionGoalsRepository interface {
	// CreateActiveGoals deactivates the user's current goal and inserts goals
	// as the active one in a single transaction.
	CreateActiveGoals(ctx context.Context, goals *model.NutritionGoals) error
	GetGoalsByID(ctx context.Context, id int64) (*model.NutritionGoals, error)
	// GetActiveGoals returns (nil, nil) when the user has no active goal.
	GetActiveGoals(ctx context.Context, userID int64) (*model.NutritionGoals, error)
	UpdateGoals(ctx context.Context, goals *model.NutritionGoals) error
	ListGoalsByUser(ctx context.Context, userID int64) ([]model.NutritionGoals, error)
}

type MealPlanRepository interface {
	CreateMealPlan(ctx context.Context, plan *model.MealPlan) error
	GetMealPlanByID(ctx context.Context, id int64) (*model.MealPlan, error)
	ListMealPlansByUser(ctx context.Context, userID int64) ([]model.MealPlan, error)
	ListMealPlansByUserInRange(ctx context.Context, userID int64, from, to model.Date) ([]model.MealPlan, error)
	CreateMealPlanItem(ctx context.Context, item *model.MealPlanItem) error
	ListMealPlanItemsByPlan(ctx context.Context, planID int64) ([]model.MealPlanItem, error)
}

// Store bundles every repository; *sqlstore.DB satisfies it.
type Store interface {
	UserRepository
	FoodItemRepository
	FoodLogRepository
	NutritionGoalsRepository
	MealPlanRepository
	Ping(ctx context.Context) error
}
