package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/repository"
)

var _ repository.MealPlanRepository = (*DB)(nil)

const (
	mealPlanColumns     = `id, user_id, name, planned_date, meal_type, created_at`
	mealPlanItemColumns = `id, meal_plan_id, food_item_id, serving_amount, created_at`
)

func (db *DB) CreateMealPlan(ctx context.Context, plan *model.MealPlan) error {
	plan.CreatedAt = time.Now().UTC()

	err := db.conn.QueryRowxContext(ctx, db.conn.Rebind(
		`INSERT INTO meal_plans (user_id, name, planned_date, meal_type, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id`),
		plan.UserID,
		plan.Name,
		plan.PlannedDate,
		plan.MealType,
		plan.CreatedAt,
	).Scan(&plan.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", plan.UserID)
		}
		return fmt.Errorf("sqlstore: creating meal plan: %w", err)
	}
	return nil
}

func (db *DB) GetMealPlanByID(ctx context.Context, id int64) (*model.MealPlan, error) {
	var p model.MealPlan
	err := db.conn.GetContext(ctx, &p, db.conn.Rebind(
		`SELECT `+mealPlanColumns+` FROM meal_plans WHERE id = ?`), id)
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("meal plan", id)
		}
		return nil, fmt.Errorf("sqlstore: getting meal plan %d: %w", id, err)
	}
	return &p, nil
}

func (db *DB) ListMealPlansByUser(ctx context.Context, userID int64) ([]model.MealPlan, error) {
	plans := []model.MealPlan{}
	err := db.conn.SelectContext(ctx, &plans, db.conn.Rebind(
		`SELECT `+mealPlanColumns+` FROM meal_plans
		 WHERE user_id = ?
		 ORDER BY planned_date, created_at, id`), userID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing meal plans for user %d: %w", userID, err)
	}
	return plans, nil
}

// ListMealPlansByUserInRange returns plans whose planned_date is within
// [from, to], both days inclusive.
func (db *DB) ListMealPlansByUserInRange(ctx context.Context, userID int64, from, to model.Date) ([]model.MealPlan, error) {
	plans := []model.MealPlan{}
	err := db.conn.SelectContext(ctx, &plans, db.conn.Rebind(
		`SELECT `+mealPlanColumns+` FROM meal_plans
		 WHERE user_id = ? AND planned_date >= ? AND planned_date <= ?
		 ORDER BY planned_date, created_at, id`),
		userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing meal plans for user %d in range: %w", userID, err)
	}
	return plans, nil
}

func (db *DB) CreateMealPlanItem(ctx context.Context, item *model.MealPlanItem) error {
	item.CreatedAt = time.Now().UTC()

	err := db.conn.QueryRowxContext(ctx, db.conn.Rebind(
		`INSERT INTO meal_plan_items (meal_plan_id, food_item_id, serving_amount, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`),
		item.MealPlanID,
		item.FoodItemID,
		item.ServingAmount,
		item.CreatedAt,
	).Scan(&item.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("meal plan or food item", fmt.Sprintf("%d/%d", item.MealPlanID, item.FoodItemID))
		}
		return fmt.Errorf("sqlstore: creating meal plan item: %w", err)
	}
	return nil
}

func (db *DB) ListMealPlanItemsByPlan(ctx context.Context, planID int64) ([]model.MealPlanItem, error) {
	items := []model.MealPlanItem{}
	err := db.conn.SelectContext(ctx, &items, db.conn.Rebind(
		`SELECT `+mealPlanItemColumns+` FROM meal_plan_items
		 WHERE meal_plan_id = ?
		 ORDER BY created_at, id`), planID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing items for meal plan %d: %w", planID, err)
	}
	return items, nil
}
