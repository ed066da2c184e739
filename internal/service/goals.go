package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/metrics"
	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/repository"
	"github.com/sakif/nutrition-tracker/internal/validate"
)

type CreateGoalsInput struct {
	UserID        int64    `json:"user_id"        validate:"required,gt=0"`
	DailyCalories *float64 `json:"daily_calories" validate:"required,gt=0"`
	DailyProtein  *float64 `json:"daily_protein"  validate:"required,gte=0"`
	DailyCarbs    *float64 `json:"daily_carbs"    validate:"required,gte=0"`
	DailyFat      *float64 `json:"daily_fat"      validate:"required,gte=0"`
}

// UpdateGoalsInput is a partial update: nil fields are left unchanged.
type UpdateGoalsInput struct {
	DailyCalories *float64 `json:"daily_calories" validate:"omitempty,gt=0"`
	DailyProtein  *float64 `json:"daily_protein"  validate:"omitempty,gte=0"`
	DailyCarbs    *float64 `json:"daily_carbs"    validate:"omitempty,gte=0"`
	DailyFat      *float64 `json:"daily_fat"      validate:"omitempty,gte=0"`
}

func (in UpdateGoalsInput) empty() bool {
	return in.DailyCalories == nil && in.DailyProtein == nil && in.DailyCarbs == nil && in.DailyFat == nil
}

// GoalsService manages daily nutrition targets. A user has at most one
// active goal; the store enforces it.
type GoalsService struct {
	users  repository.UserRepository
	goals  repository.NutritionGoalsRepository
	logger *slog.Logger
}

func NewGoalsService(users repository.UserRepository, goals repository.NutritionGoalsRepository, logger *slog.Logger) *GoalsService {
	return &GoalsService{users: users, goals: goals, logger: logger}
}

// Create makes in the user's active goal, deactivating the previous one.
// A concurrent create for the same user may fail with apperror.ErrConflict;
// the caller can retry.
func (s *GoalsService) Create(ctx context.Context, in CreateGoalsInput) (*model.NutritionGoals, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := requireUser(ctx, s.users, in.UserID); err != nil {
		return nil, err
	}

	goals := &model.NutritionGoals{
		UserID:        in.UserID,
		DailyCalories: *in.DailyCalories,
		DailyProtein:  *in.DailyProtein,
		DailyCarbs:    *in.DailyCarbs,
		DailyFat:      *in.DailyFat,
	}
	if err := s.goals.CreateActiveGoals(ctx, goals); err != nil {
		logStoreError(s.logger, "failed to create nutrition goals", err, slog.Int64("user_id", in.UserID))
		return nil, fmt.Errorf("creating nutrition goals: %w", err)
	}

	metrics.RecordGoalsCreated()
	s.logger.Info("nutrition goals created",
		slog.Int64("id", goals.ID),
		slog.Int64("user_id", goals.UserID),
		slog.Float64("daily_calories", goals.DailyCalories),
	)
	return goals, nil
}

// Active returns the user's active goal, or nil when there is none.
func (s *GoalsService) Active(ctx context.Context, userID int64) (*model.NutritionGoals, error) {
	g, err := s.goals.GetActiveGoals(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get active goals", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("getting active goals for user %d: %w", userID, err)
	}
	return g, nil
}

func (s *GoalsService) GetByID(ctx context.Context, id int64) (*model.NutritionGoals, error) {
	return s.goals.GetGoalsByID(ctx, id)
}

// Update applies the supplied targets to goal id. user_id and is_active are
// never changed.
func (s *GoalsService) Update(ctx context.Context, id int64, in UpdateGoalsInput) (*model.NutritionGoals, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.empty() {
		return nil, apperror.ValidationFailed("", "at least one target must be supplied")
	}

	goals, err := s.goals.GetGoalsByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.DailyCalories != nil {
		goals.DailyCalories = *in.DailyCalories
	}
	if in.DailyProtein != nil {
		goals.DailyProtein = *in.DailyProtein
	}
	if in.DailyCarbs != nil {
		goals.DailyCarbs = *in.DailyCarbs
	}
	if in.DailyFat != nil {
		goals.DailyFat = *in.DailyFat
	}

	if err := s.goals.UpdateGoals(ctx, goals); err != nil {
		logStoreError(s.logger, "failed to update nutrition goals", err, slog.Int64("id", id))
		return nil, fmt.Errorf("updating nutrition goals %d: %w", id, err)
	}

	s.logger.Info("nutrition goals updated", slog.Int64("id", id))
	return goals, nil
}

// History lists every goal the user has had, newest first.
func (s *GoalsService) History(ctx context.Context, userID int64) ([]model.NutritionGoals, error) {
	goals, err := s.goals.ListGoalsByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list goals", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing goals for user %d: %w", userID, err)
	}
	return goals, nil
}
