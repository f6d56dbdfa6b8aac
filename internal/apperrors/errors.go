package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrAccountNotFound indicates that an account with the given ID does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrAssetNotFound indicates that an asset with the given ID does not exist.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrPositionNotFound indicates that a position with the given ID does not exist.
	ErrPositionNotFound = errors.New("position not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrLotNotFound indicates that a lot with the given ID does not exist.
	ErrLotNotFound = errors.New("lot not found")

	// ErrSettingNotFound indicates that a system setting with the given key does not exist.
	ErrSettingNotFound = errors.New("setting not found")

	// ErrExchangeRateNotFound indicates that no exchange rate data exists for a
	// currency pair, neither directly nor through an intermediate currency.
	// The system never guesses a rate.
	ErrExchangeRateNotFound = errors.New("exchange rate for currency pair not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrSoldBeforeBought indicates that a sell transaction would consume more
	// units than were ever bought up to its execution time. It signals either a
	// data-entry error or a transaction missing from the log, and is never
	// swallowed: the offending update is rejected as a whole.
	ErrSoldBeforeBought = errors.New("selling more than owned, transactions possibly recorded with wrong dates")

	// ErrHistoryWindowTooEarly indicates that a history query window ends before
	// the position's most recent transaction. The backward reconstruction has no
	// way to relate the current quantity to such a window.
	ErrHistoryWindowTooEarly = errors.New("history window ends before the latest transaction")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrZeroQuantity indicates that a transaction was submitted with a zero quantity.
	ErrZeroQuantity = errors.New("transaction quantity cannot be zero")

	// ErrDuplicateEntry indicates that an entity with the same unique constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. These indicate that an operation failed, but not due to
// missing entities or validation issues.
var (
	ErrFailedToRetrieveAccounts     = errors.New("failed to retrieve accounts")
	ErrFailedToRetrievePositions    = errors.New("failed to retrieve positions")
	ErrFailedToRetrieveTransactions = errors.New("failed to retrieve transactions")
	ErrFailedToRetrieveLots         = errors.New("failed to retrieve lots")
	ErrFailedToRetrievePrices       = errors.New("failed to retrieve prices")
	ErrFailedToGetHistory           = errors.New("failed to get position history")
	ErrFailedToImportPrices         = errors.New("failed to import prices")
)
