package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/nutrition-tracker/internal/service"
)

// ReportHandler serves progress reports.
type ReportHandler struct {
	reports *service.ReportService
	logger  *slog.Logger
}

func NewReportHandler(reports *service.ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

// HandleProgress handles GET /api/users/{userID}/progress?start=&end=.
// Both dates are required and the window covers them inclusively.
func (h *ReportHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := authorize(r, userID); err != nil {
		writeError(w, err)
		return
	}

	start, end, _, err := dateRange(r, true)
	if err != nil {
		writeError(w, err)
		return
	}

	report, err := h.reports.Progress(r.Context(), userID, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
