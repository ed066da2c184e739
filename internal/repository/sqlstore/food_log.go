package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/repository"
)

var _ repository.FoodLogRepository = (*DB)(nil)

const foodLogColumns = `id, user_id, food_item_id, serving_amount, meal_type, logged_at, created_at`

// CreateFoodLogEntry inserts entry. LoggedAt must already be set; it is
// stored in UTC.
func (db *DB) CreateFoodLogEntry(ctx context.Context, entry *model.FoodLogEntry) error {
	entry.CreatedAt = time.Now().UTC()
	entry.LoggedAt = entry.LoggedAt.UTC()

	err := db.conn.QueryRowxContext(ctx, db.conn.Rebind(
		`INSERT INTO food_log_entries (user_id, food_item_id, serving_amount, meal_type, logged_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		entry.UserID,
		entry.FoodItemID,
		entry.ServingAmount,
		entry.MealType,
		entry.LoggedAt,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user or food item", fmt.Sprintf("%d/%d", entry.UserID, entry.FoodItemID))
		}
		return fmt.Errorf("sqlstore: creating food log entry: %w", err)
	}
	return nil
}

// ListFoodLogEntriesByUser returns all of a user's entries in logged order.
func (db *DB) ListFoodLogEntriesByUser(ctx context.Context, userID int64) ([]model.FoodLogEntry, error) {
	entries := []model.FoodLogEntry{}
	err := db.conn.SelectContext(ctx, &entries, db.conn.Rebind(
		`SELECT `+foodLogColumns+` FROM food_log_entries
		 WHERE user_id = ?
		 ORDER BY logged_at, id`), userID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing food log for user %d: %w", userID, err)
	}
	return entries, nil
}

// ListFoodLogEntriesByUserInRange returns entries with logged_at inside r,
// both ends inclusive.
func (db *DB) ListFoodLogEntriesByUserInRange(ctx context.Context, userID int64, r repository.TimeRange) ([]model.FoodLogEntry, error) {
	entries := []model.FoodLogEntry{}
	err := db.conn.SelectContext(ctx, &entries, db.conn.Rebind(
		`SELECT `+foodLogColumns+` FROM food_log_entries
		 WHERE user_id = ? AND logged_at >= ? AND logged_at <= ?
		 ORDER BY logged_at, id`),
		userID, r.From.UTC(), r.To.UTC())
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing food log for user %d in range: %w", userID, err)
	}
	return entries, nil
}

// ListLoggedFoodInRange joins each entry in r to its food item.
func (db *DB) ListLoggedFoodInRange(ctx context.Context, userID int64, r repository.TimeRange) ([]model.LoggedFood, error) {
	rows, err := db.conn.QueryContext(ctx, db.conn.Rebind(
		`SELECT e.id, e.user_id, e.food_item_id, e.serving_amount, e.meal_type, e.logged_at, e.created_at,
		        f.id, f.name, f.brand, f.serving_size, f.serving_unit,
		        f.calories_per_serving, f.protein_per_serving, f.carbs_per_serving, f.fat_per_serving,
		        f.is_custom, f.created_by_user_id, f.created_at
		 FROM food_log_entries e
		 JOIN food_items f ON f.id = e.food_item_id
		 WHERE e.user_id = ? AND e.logged_at >= ? AND e.logged_at <= ?
		 ORDER BY e.logged_at, e.id`),
		userID, r.From.UTC(), r.To.UTC())
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing logged food for user %d: %w", userID, err)
	}
	defer rows.Close()

	var out []model.LoggedFood
	for rows.Next() {
		var lf model.LoggedFood
		e, f := &lf.Entry, &lf.Food
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.FoodItemID, &e.ServingAmount, &e.MealType, &e.LoggedAt, &e.CreatedAt,
			&f.ID, &f.Name, &f.Brand, &f.ServingSize, &f.ServingUnit,
			&f.CaloriesPerServing, &f.ProteinPerServing, &f.CarbsPerServing, &f.FatPerServing,
			&f.IsCustom, &f.CreatedByUserID, &f.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning logged food row: %w", err)
		}
		out = append(out, lf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating logged food: %w", err)
	}
	return out, nil
}
