package model

import "time"

// NutritionGoals are a user's daily targets. At most one row per user has
// IsActive set; creating a new goal deactivates the previous one.
type NutritionGoals struct {
	ID            int64     `json:"id"             db:"id"`
	UserID        int64     `json:"user_id"        db:"user_id"`
	DailyCalories float64   `json:"daily_calories" db:"daily_calories"`
	DailyProtein  float64   `json:"daily_protein"  db:"daily_protein"`
	DailyCarbs    float64   `json:"daily_carbs"    db:"daily_carbs"`
	DailyFat      float64   `json:"daily_fat"      db:"daily_fat"`
	IsActive      bool      `json:"is_active"      db:"is_active"`
	CreatedAt     time.Time `json:"created_at"     db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"     db:"updated_at"`
}

// Targets returns the daily targets as Macros.
func (g NutritionGoals) Targets() Macros {
	return Macros{
		Calories: g.DailyCalories,
		Protein:  g.DailyProtein,
		Carbs:    g.DailyCarbs,
		Fat:      g.DailyFat,
	}
}
