package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/nutrition-tracker/internal/metrics"
	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/repository"
	"github.com/sakif/nutrition-tracker/internal/validate"
)

// CreateFoodItemInput describes one serving of a new food. Numeric fields are
// pointers so a missing value is told apart from zero.
type CreateFoodItemInput struct {
	Name               string   `json:"name"                 validate:"required,max=255"`
	Brand              *string  `json:"brand"                validate:"omitempty,max=255"`
	ServingSize        *float64 `json:"serving_size"         validate:"required,gt=0"`
	ServingUnit        string   `json:"serving_unit"         validate:"required,max=50"`
	CaloriesPerServing *float64 `json:"calories_per_serving" validate:"required,gte=0"`
	ProteinPerServing  *float64 `json:"protein_per_serving"  validate:"required,gte=0"`
	CarbsPerServing    *float64 `json:"carbs_per_serving"    validate:"required,gte=0"`
	FatPerServing      *float64 `json:"fat_per_serving"      validate:"required,gte=0"`
	IsCustom           *bool    `json:"is_custom"`
	CreatedByUserID    *int64   `json:"created_by_user_id"   validate:"omitempty,gt=0"`
}

// CreateFoodLogEntryInput records servings eaten. LoggedAt defaults to now.
type CreateFoodLogEntryInput struct {
	UserID        int64      `json:"user_id"        validate:"required,gt=0"`
	FoodItemID    int64      `json:"food_item_id"   validate:"required,gt=0"`
	ServingAmount *float64   `json:"serving_amount" validate:"required,gt=0"`
	MealType      string     `json:"meal_type"      validate:"required,oneof=breakfast lunch dinner snack"`
	LoggedAt      *time.Time `json:"logged_at"`
}

// FoodService owns the food catalogue and the food log.
type FoodService struct {
	users  repository.UserRepository
	items  repository.FoodItemRepository
	log    repository.FoodLogRepository
	now    Clock
	logger *slog.Logger
}

func NewFoodService(
	users repository.UserRepository,
	items repository.FoodItemRepository,
	log repository.FoodLogRepository,
	logger *slog.Logger,
) *FoodService {
	return &FoodService{users: users, items: items, log: log, now: utcNow, logger: logger}
}

// CreateItem validates in and stores the food item. is_custom defaults to
// true; a creator, when given, must exist.
func (s *FoodService) CreateItem(ctx context.Context, in CreateFoodItemInput) (*model.FoodItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.ServingUnit = strings.TrimSpace(in.ServingUnit)
	in.Brand = trimPtr(in.Brand)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	if in.CreatedByUserID != nil {
		if err := requireUser(ctx, s.users, *in.CreatedByUserID); err != nil {
			return nil, err
		}
	}

	isCustom := true
	if in.IsCustom != nil {
		isCustom = *in.IsCustom
	}

	item := &model.FoodItem{
		Name:               in.Name,
		Brand:              in.Brand,
		ServingSize:        *in.ServingSize,
		ServingUnit:        in.ServingUnit,
		CaloriesPerServing: *in.CaloriesPerServing,
		ProteinPerServing:  *in.ProteinPerServing,
		CarbsPerServing:    *in.CarbsPerServing,
		FatPerServing:      *in.FatPerServing,
		IsCustom:           isCustom,
		CreatedByUserID:    in.CreatedByUserID,
	}
	if err := s.items.CreateFoodItem(ctx, item); err != nil {
		logStoreError(s.logger, "failed to create food item", err, slog.String("name", in.Name))
		return nil, fmt.Errorf("creating food item: %w", err)
	}

	s.logger.Info("food item created", slog.Int64("id", item.ID), slog.String("name", item.Name))
	return item, nil
}

func (s *FoodService) ListItems(ctx context.Context) ([]model.FoodItem, error) {
	items, err := s.items.ListFoodItems(ctx)
	if err != nil {
		s.logger.Error("failed to list food items", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing food items: %w", err)
	}
	return items, nil
}

// ListItemsByUser returns the items userID created.
func (s *FoodService) ListItemsByUser(ctx context.Context, userID int64) ([]model.FoodItem, error) {
	items, err := s.items.ListFoodItemsByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list food items by user", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing food items for user %d: %w", userID, err)
	}
	return items, nil
}

// LogFood records a food log entry after checking the user and the food item
// exist.
func (s *FoodService) LogFood(ctx context.Context, in CreateFoodLogEntryInput) (*model.FoodLogEntry, error) {
	in.MealType = strings.TrimSpace(in.MealType)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	if err := requireUser(ctx, s.users, in.UserID); err != nil {
		return nil, err
	}
	if _, err := s.items.GetFoodItemByID(ctx, in.FoodItemID); err != nil {
		return nil, err
	}

	loggedAt := s.now()
	if in.LoggedAt != nil {
		loggedAt = in.LoggedAt.UTC()
	}

	entry := &model.FoodLogEntry{
		UserID:        in.UserID,
		FoodItemID:    in.FoodItemID,
		ServingAmount: *in.ServingAmount,
		MealType:      model.MealType(in.MealType),
		LoggedAt:      loggedAt,
	}
	if err := s.log.CreateFoodLogEntry(ctx, entry); err != nil {
		logStoreError(s.logger, "failed to create food log entry", err, slog.Int64("user_id", in.UserID))
		return nil, fmt.Errorf("creating food log entry: %w", err)
	}

	metrics.RecordFoodLogged(in.MealType)
	s.logger.Info("food logged",
		slog.Int64("id", entry.ID),
		slog.Int64("user_id", entry.UserID),
		slog.String("meal_type", in.MealType),
	)
	return entry, nil
}

func (s *FoodService) ListLog(ctx context.Context, userID int64) ([]model.FoodLogEntry, error) {
	entries, err := s.log.ListFoodLogEntriesByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list food log", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing food log for user %d: %w", userID, err)
	}
	return entries, nil
}

// ListLogInRange returns entries logged within [from, to], both inclusive.
func (s *FoodService) ListLogInRange(ctx context.Context, userID int64, from, to time.Time) ([]model.FoodLogEntry, error) {
	if err := validRange(from, to); err != nil {
		return nil, err
	}
	entries, err := s.log.ListFoodLogEntriesByUserInRange(ctx, userID, repository.TimeRange{From: from, To: to})
	if err != nil {
		s.logger.Error("failed to list food log in range", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing food log for user %d: %w", userID, err)
	}
	return entries, nil
}
