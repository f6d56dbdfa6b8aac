package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// parseJSON decodes a JSON request body into the given request type.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, err
	}
	return req, nil
}

// parseDateRange reads the start_date and end_date query parameters.
// Both accept YYYY-MM-DD or RFC3339. A missing end_date defaults to today;
// a missing start_date defaults to thirty days before the end.
func parseDateRange(r *http.Request) (startDate, endDate time.Time, err error) {
	if raw := r.URL.Query().Get("end_date"); raw == "" {
		endDate = time.Now().UTC()
	} else {
		endDate, err = parseDateParam(raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to parse end_date: %w", err)
		}
	}

	if raw := r.URL.Query().Get("start_date"); raw == "" {
		startDate = endDate.AddDate(0, 0, -30)
	} else {
		startDate, err = parseDateParam(raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to parse start_date: %w", err)
		}
	}

	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date is after end_date")
	}
	return startDate, endDate, nil
}

func parseDateParam(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
