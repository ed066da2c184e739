package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/repository"
)

var _ repository.FoodItemRepository = (*DB)(nil)

const foodItemColumns = `id, name, brand, serving_size, serving_unit,
	calories_per_serving, protein_per_serving, carbs_per_serving, fat_per_serving,
	is_custom, created_by_user_id, created_at`

// CreateFoodItem inserts item. A nil Brand or CreatedByUserID is stored as
// NULL.
func (db *DB) CreateFoodItem(ctx context.Context, item *model.FoodItem) error {
	item.CreatedAt = time.Now().UTC()

	err := db.conn.QueryRowxContext(ctx, db.conn.Rebind(
		`INSERT INTO food_items (name, brand, serving_size, serving_unit,
			calories_per_serving, protein_per_serving, carbs_per_serving, fat_per_serving,
			is_custom, created_by_user_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		item.Name,
		item.Brand,
		item.ServingSize,
		item.ServingUnit,
		item.CaloriesPerServing,
		item.ProteinPerServing,
		item.CarbsPerServing,
		item.FatPerServing,
		item.IsCustom,
		item.CreatedByUserID,
		item.CreatedAt,
	).Scan(&item.ID)
	if err != nil {
		if isForeignKeyViolation(err) && item.CreatedByUserID != nil {
			return apperror.NotFound("user", *item.CreatedByUserID)
		}
		return fmt.Errorf("sqlstore: creating food item: %w", err)
	}
	return nil
}

func (db *DB) GetFoodItemByID(ctx context.Context, id int64) (*model.FoodItem, error) {
	var item model.FoodItem
	err := db.conn.GetContext(ctx, &item, db.conn.Rebind(
		`SELECT `+foodItemColumns+` FROM food_items WHERE id = ?`), id)
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("food item", id)
		}
		return nil, fmt.Errorf("sqlstore: getting food item %d: %w", id, err)
	}
	return &item, nil
}

func (db *DB) ListFoodItems(ctx context.Context) ([]model.FoodItem, error) {
	items := []model.FoodItem{}
	err := db.conn.SelectContext(ctx, &items,
		`SELECT `+foodItemColumns+` FROM food_items ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing food items: %w", err)
	}
	return items, nil
}

// ListFoodItemsByUser returns the custom items created by userID.
func (db *DB) ListFoodItemsByUser(ctx context.Context, userID int64) ([]model.FoodItem, error) {
	items := []model.FoodItem{}
	err := db.conn.SelectContext(ctx, &items, db.conn.Rebind(
		`SELECT `+foodItemColumns+` FROM food_items
		 WHERE created_by_user_id = ?
		 ORDER BY created_at, id`), userID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing food items for user %d: %w", userID, err)
	}
	return items, nil
}
