package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/repository"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/service"
)

// TestEncryptionKey is a fixed fernet key for tests. Generated once; not a
// production secret.
const TestEncryptionKey = "cFZCWlZZQkxnS2NYSFFNbUJlVUp6TXdLVlJkVXpFVUo="

// NewTestLotService creates a LotService wired against the test database.
func NewTestLotService(t *testing.T, db *sql.DB) *service.LotService {
	t.Helper()

	return service.NewLotService(
		db,
		repository.NewTransactionRepository(db),
		repository.NewLotRepository(db),
	)
}

// NewTestHistoryService creates a PositionHistoryService wired against the
// test database.
func NewTestHistoryService(t *testing.T, db *sql.DB) *service.PositionHistoryService {
	t.Helper()

	return service.NewPositionHistoryService(
		repository.NewPositionRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewAssetPriceRepository(db),
		repository.NewExchangeRateRepository(db),
	)
}

// NewTestTransactionService creates a TransactionService wired against the
// test database, including its lot and history dependencies.
func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()

	return service.NewTransactionService(
		db,
		repository.NewTransactionRepository(db),
		repository.NewPositionRepository(db),
		repository.NewAccountRepository(db),
		repository.NewExchangeRateRepository(db),
		repository.NewLotRepository(db),
		NewTestLotService(t, db),
		NewTestHistoryService(t, db),
	)
}

// NewTestAccountService creates an AccountService wired against the test database.
func NewTestAccountService(t *testing.T, db *sql.DB) *service.AccountService {
	t.Helper()

	return service.NewAccountService(
		repository.NewAccountRepository(db),
		repository.NewPositionRepository(db),
	)
}

// NewTestSettingService creates a SettingService with the fixed test key.
func NewTestSettingService(t *testing.T, db *sql.DB) *service.SettingService {
	t.Helper()

	settingService, err := service.NewSettingService(repository.NewSettingRepository(db), TestEncryptionKey)
	if err != nil {
		t.Fatalf("Failed to create setting service: %v", err)
	}
	return settingService
}

// MakeID generates a UUID string for use in tests.
//
// Example:
//
//	id := testutil.MakeID()
func MakeID() string {
	return uuid.New().String()
}

// MakeName appends a random suffix to a base name so unique constraints
// never collide across tests.
func MakeName(base string) string {
	if base == "" {
		base = "Test"
	}
	return base + " " + randomAlphanumeric(6)
}

// MakeSymbol generates a random ticker-like symbol.
func MakeSymbol() string {
	return randomUpper(4)
}

// MakeISIN generates a random ISIN-shaped identifier.
func MakeISIN() string {
	return "US" + randomDigits(10)
}

const (
	alphanumericCharset = "abcdefghijklmnopqrstuvwxyz0123456789"
	upperCharset        = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitCharset        = "0123456789"
)

func randomAlphanumeric(n int) string {
	return randomFrom(alphanumericCharset, n)
}

func randomUpper(n int) string {
	return randomFrom(upperCharset, n)
}

func randomDigits(n int) string {
	return randomFrom(digitCharset, n)
}

func randomFrom(charset string, n int) string {
	result := make([]byte, n)
	for i := range result {
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
