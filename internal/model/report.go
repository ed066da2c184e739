package model

// ReportPeriod is the inclusive date range a report covers.
type ReportPeriod struct {
	StartDate Date `json:"start_date"`
	EndDate   Date `json:"end_date"`
}

// GoalsComparison is the percentage of each daily target met on average.
type GoalsComparison struct {
	CaloriesPercentage float64 `json:"calories_percentage"`
	ProteinPercentage  float64 `json:"protein_percentage"`
	CarbsPercentage    float64 `json:"carbs_percentage"`
	FatPercentage      float64 `json:"fat_percentage"`
}

// ProgressReport summarises a user's intake over a period. GoalsComparison is
// nil when the user has no active goal.
type ProgressReport struct {
	Period          ReportPeriod     `json:"period"`
	Days            int              `json:"days"`
	Totals          Macros           `json:"totals"`
	DailyAverages   Macros           `json:"daily_averages"`
	GoalsComparison *GoalsComparison `json:"goals_comparison"`
}
