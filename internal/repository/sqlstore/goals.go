package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/repository"
)

var _ repository.NutritionGoalsRepository = (*DB)(nil)

const goalsColumns = `id, user_id, daily_calories, daily_protein, daily_carbs, daily_fat,
	is_active, created_at, updated_at`

// CreateActiveGoals deactivates every active goal of goals.UserID and inserts
// goals as the new active row, atomically.
//
// The partial unique index ux_nutrition_goals_active backs this up: if a
// concurrent writer commits an active row first, the insert fails with a
// unique violation and the caller gets apperror.ErrConflict.
func (db *DB) CreateActiveGoals(ctx context.Context, goals *model.NutritionGoals) error {
	now := time.Now().UTC()
	goals.IsActive = true
	goals.CreatedAt = now
	goals.UpdatedAt = now

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: beginning goals transaction: %w", err)
	}
	defer tx.Rollback() // no-op after Commit

	if _, err := tx.ExecContext(ctx, tx.Rebind(
		`UPDATE nutrition_goals
		 SET is_active = ?, updated_at = ?
		 WHERE user_id = ? AND is_active = ?`),
		false, now, goals.UserID, true,
	); err != nil {
		return fmt.Errorf("sqlstore: deactivating goals for user %d: %w", goals.UserID, err)
	}

	err = tx.QueryRowxContext(ctx, tx.Rebind(
		`INSERT INTO nutrition_goals (user_id, daily_calories, daily_protein, daily_carbs, daily_fat,
			is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 RETURNING id`),
		goals.UserID,
		goals.DailyCalories,
		goals.DailyProtein,
		goals.DailyCarbs,
		goals.DailyFat,
		goals.IsActive,
		goals.CreatedAt,
		goals.UpdatedAt,
	).Scan(&goals.ID)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return apperror.Conflict("active nutrition goals for user", goals.UserID)
		case isForeignKeyViolation(err):
			return apperror.NotFound("user", goals.UserID)
		}
		return fmt.Errorf("sqlstore: inserting goals for user %d: %w", goals.UserID, err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("active nutrition goals for user", goals.UserID)
		}
		return fmt.Errorf("sqlstore: committing goals for user %d: %w", goals.UserID, err)
	}
	return nil
}

func (db *DB) GetGoalsByID(ctx context.Context, id int64) (*model.NutritionGoals, error) {
	var g model.NutritionGoals
	err := db.conn.GetContext(ctx, &g, db.conn.Rebind(
		`SELECT `+goalsColumns+` FROM nutrition_goals WHERE id = ?`), id)
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("nutrition goals", id)
		}
		return nil, fmt.Errorf("sqlstore: getting goals %d: %w", id, err)
	}
	return &g, nil
}

// GetActiveGoals returns (nil, nil) when userID has no active goal.
func (db *DB) GetActiveGoals(ctx context.Context, userID int64) (*model.NutritionGoals, error) {
	var g model.NutritionGoals
	err := db.conn.GetContext(ctx, &g, db.conn.Rebind(
		`SELECT `+goalsColumns+` FROM nutrition_goals
		 WHERE user_id = ? AND is_active = ?`), userID, true)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlstore: getting active goals for user %d: %w", userID, err)
	}
	return &g, nil
}

// UpdateGoals writes the four daily targets of goals and refreshes
// UpdatedAt. UserID and IsActive are never changed here.
func (db *DB) UpdateGoals(ctx context.Context, goals *model.NutritionGoals) error {
	goals.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx, db.conn.Rebind(
		`UPDATE nutrition_goals
		 SET daily_calories = ?, daily_protein = ?, daily_carbs = ?, daily_fat = ?, updated_at = ?
		 WHERE id = ?`),
		goals.DailyCalories,
		goals.DailyProtein,
		goals.DailyCarbs,
		goals.DailyFat,
		goals.UpdatedAt,
		goals.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlstore: updating goals %d: %w", goals.ID, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("nutrition goals", goals.ID)
	}
	return nil
}

// ListGoalsByUser returns the full goal history of a user, newest first.
func (db *DB) ListGoalsByUser(ctx context.Context, userID int64) ([]model.NutritionGoals, error) {
	goals := []model.NutritionGoals{}
	err := db.conn.SelectContext(ctx, &goals, db.conn.Rebind(
		`SELECT `+goalsColumns+` FROM nutrition_goals
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing goals for user %d: %w", userID, err)
	}
	return goals, nil
}
