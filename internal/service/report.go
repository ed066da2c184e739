package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/metrics"
	"github.com/sakif/nutrition-tracker/internal/model"
	"github.com/sakif/nutrition-tracker/internal/repository"
)

// ReportService builds progress reports from the food log and active goal.
type ReportService struct {
	users  repository.UserRepository
	log    repository.FoodLogRepository
	goals  repository.NutritionGoalsRepository
	logger *slog.Logger
}

func NewReportService(
	users repository.UserRepository,
	log repository.FoodLogRepository,
	goals repository.NutritionGoalsRepository,
	logger *slog.Logger,
) *ReportService {
	return &ReportService{users: users, log: log, goals: goals, logger: logger}
}

// Progress summarises what userID ate from the start of start to the end of
// end (UTC calendar days, both inclusive).
//
// Each entry contributes serving_amount × the food's per-serving macros.
// Daily averages divide the totals by the number of days in the window,
// counting days with nothing logged. When the user has an active goal, each
// average is expressed as a percentage of its target.
func (s *ReportService) Progress(ctx context.Context, userID int64, start, end model.Date) (*model.ProgressReport, error) {
	report, err := s.progress(ctx, userID, start, end)
	metrics.RecordProgressReport(reportResult(report, err))
	return report, err
}

func (s *ReportService) progress(ctx context.Context, userID int64, start, end model.Date) (*model.ProgressReport, error) {
	if start.After(end.Time) {
		return nil, apperror.ValidationFailed("start_date", "start_date must not be after end_date")
	}
	if err := requireUser(ctx, s.users, userID); err != nil {
		return nil, err
	}

	window := repository.TimeRange{
		From: start.Time,
		To:   end.AddDate(0, 0, 1).Add(-time.Nanosecond),
	}
	logged, err := s.log.ListLoggedFoodInRange(ctx, userID, window)
	if err != nil {
		s.logger.Error("failed to load food log for report", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("loading food log for user %d: %w", userID, err)
	}

	var totals model.Macros
	for _, lf := range logged {
		totals = totals.Add(lf.Food.Macros().Scale(lf.Entry.ServingAmount))
	}

	days := DaySpan(start, end)
	report := &model.ProgressReport{
		Period:        model.ReportPeriod{StartDate: start, EndDate: end},
		Days:          days,
		Totals:        totals,
		DailyAverages: totals.Scale(1 / float64(days)),
	}

	goals, err := s.goals.GetActiveGoals(ctx, userID)
	if err != nil {
		s.logger.Error("failed to load active goals for report", slog.Int64("user_id", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("loading active goals for user %d: %w", userID, err)
	}
	if goals != nil {
		cmp, err := Compare(report.DailyAverages, goals.Targets())
		if err != nil {
			return nil, err
		}
		report.GoalsComparison = cmp
	}

	s.logger.Debug("progress report built",
		slog.Int64("user_id", userID),
		slog.Int("days", days),
		slog.Int("entries", len(logged)),
	)
	return report, nil
}

// DaySpan is the number of calendar days from start to end inclusive, at
// least 1.
func DaySpan(start, end model.Date) int {
	days := int(end.Sub(start.Time).Hours()/24) + 1
	if days < 1 {
		return 1
	}
	return days
}

// Compare expresses each average as a percentage of its target.
func Compare(avg, target model.Macros) (*model.GoalsComparison, error) {
	var (
		cmp model.GoalsComparison
		err error
	)
	if cmp.CaloriesPercentage, err = percentage("calories", avg.Calories, target.Calories); err != nil {
		return nil, err
	}
	if cmp.ProteinPercentage, err = percentage("protein", avg.Protein, target.Protein); err != nil {
		return nil, err
	}
	if cmp.CarbsPercentage, err = percentage("carbs", avg.Carbs, target.Carbs); err != nil {
		return nil, err
	}
	if cmp.FatPercentage, err = percentage("fat", avg.Fat, target.Fat); err != nil {
		return nil, err
	}
	return &cmp, nil
}

// percentage is 100 × value / target. A zero target met with zero intake is
// 0%; with any intake it has no finite value and is reported as an error.
func percentage(field string, value, target float64) (float64, error) {
	if target == 0 {
		if value == 0 {
			return 0, nil
		}
		return 0, apperror.DivisionUndefined(field)
	}
	return 100 * value / target, nil
}

func reportResult(r *model.ProgressReport, err error) string {
	switch {
	case err == nil && r.GoalsComparison == nil:
		return metrics.ReportNoGoals
	case err == nil:
		return metrics.ReportOK
	case errors.Is(err, apperror.ErrDivisionUndefined):
		return metrics.ReportUndefined
	case errors.Is(err, apperror.ErrValidation):
		return metrics.ReportInvalidSpan
	}
	return metrics.ReportError
}
