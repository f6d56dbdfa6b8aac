package validation

import (
	"strings"
	"time"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/api/request"
	"github.com/shopspring/decimal"
)

// ValidateCreateTransaction validates a transaction creation request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - positionId: Must be a valid UUID
//   - executedAt: Must be in YYYY-MM-DD or RFC3339 format
//   - quantity: Must be non-zero (positive for buys, negative for sells)
//   - price: Must be non-negative
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	if err := ValidateUUID(req.PositionID); err != nil {
		return err
	}

	errors := transactionFieldErrors(req.ExecutedAt, req.Quantity, req.Price)
	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateCorrectTransaction validates a transaction correction request.
// The correction replaces the mutable fields wholesale, so the same
// constraints apply as on creation.
func ValidateCorrectTransaction(req request.CorrectTransactionRequest) error {
	errors := transactionFieldErrors(req.ExecutedAt, req.Quantity, req.Price)
	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func transactionFieldErrors(executedAt string, quantity, price decimal.Decimal) map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(executedAt) == "" {
		errors["executedAt"] = "executedAt is required"
	} else if _, err := ParseExecutionTime(executedAt); err != nil {
		errors["executedAt"] = err.Error()
	}

	if quantity.IsZero() {
		errors["quantity"] = "quantity must be non-zero"
	}
	if price.IsNegative() {
		errors["price"] = "price must be non-negative"
	}

	return errors
}

// ParseExecutionTime parses an execution timestamp, accepting either a bare
// date or a full RFC3339 timestamp.
func ParseExecutionTime(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
