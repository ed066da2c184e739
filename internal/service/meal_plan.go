package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/repository"
	"github.com/sakif/nutrition-tracker/internal/validate"
)

type CreateMealPlanInput struct {
	UserID      int64       `json:"user_id"      validate:"required,gt=0"`
	Name        string      `json:"name"         validate:"required,max=255"`
	PlannedDate *model.Date `json:"planned_date" validate:"required"`
	MealType    string      `json:"meal_type"    validate:"required,oneof=breakfast lunch dinner snack"`
}

type CreateMealPlanItemInput struct {
	MealPlanID    int64    `json:"meal_plan_id"   validate:"required,gt=0"`
	FoodItemID    int64    `json:"food_item_id"   validate:"required,gt=0"`
	ServingAmount *float64 `json:"serving_amount" validate:"required,gt=0"`
}

// MealPlanService manages dated meal plans and the foods inside them.
type MealPlanService struct {
	users  repository.UserRepository
	items  repository.FoodItemRepository
	plans  repository.MealPlanRepository
	logger *slog.Logger
}

func NewMealPlanService(
	users repository.UserRepository,
	items repository.FoodItemRepository,
	plans repository.MealPlanRepository,
	logger *slog.Logger,
) *MealPlanService {
	return &MealPlanService{users: users, items: items, plans: plans, logger: logger}
}

func (s *MealPlanService) Create(ctx context.Context, in CreateMealPlanInput) (*model.MealPlan, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.MealType = strings.TrimSpace(in.MealType)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if err := requireUser(ctx, s.users, in.UserID); err != nil {
		return nil, err
	}

	plan := &model.MealPlan{
		UserID:      in.UserID,
		Name:        in.Name,
		PlannedDate: *in.PlannedDate,
		MealType:    model.MealType(in.MealType),
	}
	if err := s.plans.CreateMealPlan(ctx, plan); err != nil {
		logStoreError(s.logger, "failed to create meal plan", err, slog.Int64("user_id", in.UserID))
		return nil, fmt.Errorf("creating meal plan: %w", err)
	}

	s.logger.Info("meal plan created",
		slog.Int64("id", plan.ID),
		slog.Int64("user_id", plan.UserID),
		slog.String("planned_date", plan.PlannedDate.String()),
	)
	return plan, nil
}

func (s *MealPlanService) GetByID(ctx context.Context, id int64) (*model.MealPlan, error) {
	return s.plans.GetMealPlanByID(ctx, id)
}

func (s *MealPlanService) ListByUser(ctx context.Context, userID int64) ([]model.MealPlan, error) {
	plans, err := s.plans.ListMealPlansByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list meal plans", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing meal plans for user %d: %w", userID, err)
	}
	return plans, nil
}

// ListByUserInRange returns plans dated within [from, to], both inclusive.
func (s *MealPlanService) ListByUserInRange(ctx context.Context, userID int64, from, to model.Date) ([]model.MealPlan, error) {
	if from.After(to.Time) {
		return nil, apperror.ValidationFailed("start", "start must not be after end")
	}
	plans, err := s.plans.ListMealPlansByUserInRange(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("failed to list meal plans in range", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing meal plans for user %d: %w", userID, err)
	}
	return plans, nil
}

// AddItem puts a food into a plan after checking both exist.
func (s *MealPlanService) AddItem(ctx context.Context, in CreateMealPlanItemInput) (*model.MealPlanItem, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.plans.GetMealPlanByID(ctx, in.MealPlanID); err != nil {
		return nil, err
	}
	if _, err := s.items.GetFoodItemByID(ctx, in.FoodItemID); err != nil {
		return nil, err
	}

	item := &model.MealPlanItem{
		MealPlanID:    in.MealPlanID,
		FoodItemID:    in.FoodItemID,
		ServingAmount: *in.ServingAmount,
	}
	if err := s.plans.CreateMealPlanItem(ctx, item); err != nil {
		logStoreError(s.logger, "failed to create meal plan item", err, slog.Int64("meal_plan_id", in.MealPlanID))
		return nil, fmt.Errorf("creating meal plan item: %w", err)
	}

	s.logger.Info("meal plan item added", slog.Int64("id", item.ID), slog.Int64("meal_plan_id", item.MealPlanID))
	return item, nil
}

func (s *MealPlanService) ListItems(ctx context.Context, planID int64) ([]model.MealPlanItem, error) {
	items, err := s.plans.ListMealPlanItemsByPlan(ctx, planID)
	if err != nil {
		s.logger.Error("failed to list meal plan items", slog.Int64("meal_plan_id", planID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing items for meal plan %d: %w", planID, err)
	}
	return items, nil
}
