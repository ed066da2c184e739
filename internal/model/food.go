package model

import "time"

// MealType tags a log entry or meal plan with the meal it belongs to.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

// MealTypes lists every accepted meal type in display order.
var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// Valid reports whether m is one of MealTypes.
func (m MealType) Valid() bool {
	for _, t := range MealTypes {
		if m == t {
			return true
		}
	}
	return false
}

// FoodItem describes one serving of a food. The four macro fields are per
// serving, where a serving is ServingSize of ServingUnit (e.g. 30 g).
//
// Brand and CreatedByUserID are nil for pre-populated catalogue items.
type FoodItem struct {
	ID                 int64     `json:"id"                   db:"id"`
	Name               string    `json:"name"                 db:"name"`
	Brand              *string   `json:"brand"                db:"brand"`
	ServingSize        float64   `json:"serving_size"         db:"serving_size"`
	ServingUnit        string    `json:"serving_unit"         db:"serving_unit"`
	CaloriesPerServing float64   `json:"calories_per_serving" db:"calories_per_serving"`
	ProteinPerServing  float64   `json:"protein_per_serving"  db:"protein_per_serving"`
	CarbsPerServing    float64   `json:"carbs_per_serving"    db:"carbs_per_serving"`
	FatPerServing      float64   `json:"fat_per_serving"      db:"fat_per_serving"`
	IsCustom           bool      `json:"is_custom"            db:"is_custom"`
	CreatedByUserID    *int64    `json:"created_by_user_id"   db:"created_by_user_id"`
	CreatedAt          time.Time `json:"created_at"           db:"created_at"`
}

// Macros returns the per-serving macro values of the item.
func (f FoodItem) Macros() Macros {
	return Macros{
		Calories: f.CaloriesPerServing,
		Protein:  f.ProteinPerServing,
		Carbs:    f.CarbsPerServing,
		Fat:      f.FatPerServing,
	}
}

// FoodLogEntry records that a user ate ServingAmount servings of a food item.
type FoodLogEntry struct {
	ID            int64     `json:"id"             db:"id"`
	UserID        int64     `json:"user_id"        db:"user_id"`
	FoodItemID    int64     `json:"food_item_id"   db:"food_item_id"`
	ServingAmount float64   `json:"serving_amount" db:"serving_amount"`
	MealType      MealType  `json:"meal_type"      db:"meal_type"`
	LoggedAt      time.Time `json:"logged_at"      db:"logged_at"`
	CreatedAt     time.Time `json:"created_at"     db:"created_at"`
}

// LoggedFood is a log entry joined with the food item it references.
// The progress report reads these.
type LoggedFood struct {
	Entry FoodLogEntry
	Food  FoodItem
}
