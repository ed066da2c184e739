package model

import "time"

// MealPlan is a named, dated plan for one meal.
type MealPlan struct {
	ID          int64     `json:"id"           db:"id"`
	UserID      int64     `json:"user_id"      db:"user_id"`
	Name        string    `json:"name"         db:"name"`
	PlannedDate Date      `json:"planned_date" db:"planned_date"`
	MealType    MealType  `json:"meal_type"    db:"meal_type"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
}

// MealPlanItem is one food inside a meal plan.
type MealPlanItem struct {
	ID            int64     `json:"id"             db:"id"`
	MealPlanID    int64     `json:"meal_plan_id"   db:"meal_plan_id"`
	FoodItemID    int64     `json:"food_item_id"   db:"food_item_id"`
	ServingAmount float64   `json:"serving_amount" db:"serving_amount"`
	CreatedAt     time.Time `json:"created_at"     db:"created_at"`
}
