package validation

import (
	"strings"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/api/request"
)

// ValidateCreateAccount validates an account creation request.
//
// Required fields:
//   - nickname: Must be non-empty
//   - currency: Must be a 3-letter code
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateAccount(req request.CreateAccountRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Nickname) == "" {
		errors["nickname"] = "nickname is required"
	}
	if err := validateCurrencyCode(req.Currency); err != "" {
		errors["currency"] = err
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateOpenPosition validates a position creation request.
func ValidateOpenPosition(req request.OpenPositionRequest) error {
	if err := ValidateUUID(req.AccountID); err != nil {
		return err
	}
	return ValidateUUID(req.AssetID)
}

func validateCurrencyCode(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return "currency is required"
	}
	if len(trimmed) != 3 || trimmed != strings.ToUpper(trimmed) {
		return "currency must be a 3-letter uppercase code"
	}
	return ""
}
