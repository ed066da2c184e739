package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/nutrition-tracker/internal/apperror"
	"github.com/sakif/nutrition-tracker/internal/auth"
	"github.com/sakif/nutrition-tracker/internal/model"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperror.ValidationFailed("body", "request body is required")
		case errors.As(err, &maxErr):
			return apperror.ValidationFailed("body", "request body is too large")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperror.ValidationFailed(typeErr.Field, fmt.Sprintf("%s has the wrong type", typeErr.Field))
		}
		return apperror.ValidationFailed("body", "invalid JSON: "+err.Error())
	}
	return nil
}

// pathID parses the chi URL parameter name as a positive int64.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.ValidationFailed(name, fmt.Sprintf("%s must be a positive integer", name))
	}
	return id, nil
}

// timeRange reads the start and end query parameters as instants. A
// date-only end covers that whole day. ok is false when neither is present.
func timeRange(r *http.Request) (from, to time.Time, ok bool, err error) {
	q := r.URL.Query()
	rawStart, rawEnd := strings.TrimSpace(q.Get("start")), strings.TrimSpace(q.Get("end"))
	if rawStart == "" && rawEnd == "" {
		return time.Time{}, time.Time{}, false, nil
	}
	if rawStart == "" || rawEnd == "" {
		return time.Time{}, time.Time{}, false, apperror.ValidationFailed("start", "start and end must be given together")
	}

	if from, err = parseInstant(rawStart, false); err != nil {
		return time.Time{}, time.Time{}, false, apperror.ValidationFailed("start", err.Error())
	}
	if to, err = parseInstant(rawEnd, true); err != nil {
		return time.Time{}, time.Time{}, false, apperror.ValidationFailed("end", err.Error())
	}
	return from, to, true, nil
}

func parseInstant(s string, endOfDay bool) (time.Time, error) {
	if d, err := time.Parse(model.DateLayout, s); err == nil {
		if endOfDay {
			return d.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
		}
		return d, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want YYYY-MM-DD or RFC 3339", s)
	}
	return t.UTC(), nil
}

// dateRange reads the start and end query parameters as calendar dates.
// Both are required when required is set.
func dateRange(r *http.Request, required bool) (from, to model.Date, ok bool, err error) {
	q := r.URL.Query()
	rawStart, rawEnd := strings.TrimSpace(q.Get("start")), strings.TrimSpace(q.Get("end"))
	if rawStart == "" && rawEnd == "" && !required {
		return model.Date{}, model.Date{}, false, nil
	}
	if rawStart == "" {
		return model.Date{}, model.Date{}, false, apperror.ValidationFailed("start", "start is required")
	}
	if rawEnd == "" {
		return model.Date{}, model.Date{}, false, apperror.ValidationFailed("end", "end is required")
	}
	if from, err = model.ParseDate(rawStart); err != nil {
		return model.Date{}, model.Date{}, false, apperror.ValidationFailed("start", err.Error())
	}
	if to, err = model.ParseDate(rawEnd); err != nil {
		return model.Date{}, model.Date{}, false, apperror.ValidationFailed("end", err.Error())
	}
	return from, to, true, nil
}

// authorize allows the request when auth is off or the signed-in user is
// userID.
func authorize(r *http.Request, userID int64) error {
	caller, ok := callerID(r)
	if !ok || caller == userID {
		return nil
	}
	return apperror.Forbidden("you can only access your own data")
}

func callerID(r *http.Request) (int64, bool) {
	return auth.UserIDFromContext(r.Context())
}
