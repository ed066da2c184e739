// Package service contains the business rules of the tracker.
//
// Layers:
//
//	Handler (HTTP)     → decodes requests, writes JSON
//	Service (this pkg) → validates input, checks references, computes reports
//	Repository         → reads and writes rows
//
// Services depend on the repository interfaces, never on sqlstore, so tests
// run them against in-memory fakes. They return apperror values and know
// nothing about HTTP.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/repository"
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// logStoreError logs err at Error unless it is an expected domain outcome
// (not found, conflict), which the handler turns into a 4xx.
func logStoreError(logger *slog.Logger, msg string, err error, attrs ...slog.Attr) {
	if errors.Is(err, apperror.ErrNotFound) || errors.Is(err, apperror.ErrConflict) {
		return
	}
	args := make([]any, 0, len(attrs)+1)
	for _, a := range attrs {
		args = append(args, a)
	}
	args = append(args, slog.String("error", err.Error()))
	logger.Error(msg, args...)
}

// requireUser returns NotFound when userID does not exist.
func requireUser(ctx context.Context, users repository.UserRepository, userID int64) error {
	_, err := users.GetUserByID(ctx, userID)
	return err
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// validRange checks from <= to for a list or report window.
func validRange(from, to time.Time) error {
	if from.After(to) {
		return apperror.ValidationFailed("start", "start must not be after end")
	}
	return nil
}
