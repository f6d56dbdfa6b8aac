package validation

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidUUID indicates an identifier that is not a valid UUID.
	ErrInvalidUUID = errors.New("invalid UUID format")
	// ErrNoIDs indicates a batch request without any identifiers.
	ErrNoIDs = errors.New("at least one id is required")
)

// ValidateUUID checks that id is a well-formed UUID.
func ValidateUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ValidateUUIDs checks a batch of identifiers, such as the body of a bulk
// transaction delete. The batch must be non-empty and every entry a UUID.
func ValidateUUIDs(ids []string) error {
	if len(ids) == 0 {
		return ErrNoIDs
	}
	for _, id := range ids {
		if err := ValidateUUID(id); err != nil {
			return err
		}
	}
	return nil
}
