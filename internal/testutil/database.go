package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the embedded migrations.
//
//nolint:funlen // Database schema DDL
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Account table
		CREATE TABLE account (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			nickname VARCHAR(100) NOT NULL,
			description TEXT,
			currency VARCHAR(3) NOT NULL,
			balance TEXT NOT NULL DEFAULT '0'
		);

		-- Asset table
		CREATE TABLE asset (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			isin VARCHAR(12) UNIQUE,
			symbol VARCHAR(10) NOT NULL,
			name VARCHAR(255) NOT NULL,
			currency VARCHAR(3) NOT NULL,
			exchange VARCHAR(50),
			asset_type VARCHAR(10) NOT NULL
		);

		-- Position table
		CREATE TABLE position (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			asset_id VARCHAR(36) NOT NULL,
			quantity TEXT NOT NULL DEFAULT '0',
			realized_gain TEXT NOT NULL DEFAULT '0',
			cost_basis TEXT NOT NULL DEFAULT '0',
			FOREIGN KEY(account_id) REFERENCES account(id) ON DELETE CASCADE,
			FOREIGN KEY(asset_id) REFERENCES asset(id),
			CONSTRAINT unique_account_asset UNIQUE (account_id, asset_id)
		);

		-- Transaction table (quoted because transaction is a reserved keyword)
		CREATE TABLE "transaction" (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			position_id VARCHAR(36) NOT NULL,
			executed_at DATETIME NOT NULL,
			quantity TEXT NOT NULL,
			price TEXT NOT NULL,
			transaction_costs TEXT NOT NULL DEFAULT '0',
			local_value TEXT NOT NULL,
			value_account_currency TEXT NOT NULL,
			total_account_currency TEXT NOT NULL,
			order_id VARCHAR(100),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(position_id) REFERENCES position(id) ON DELETE CASCADE
		);

		-- Lot table
		CREATE TABLE lot (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			position_id VARCHAR(36) NOT NULL,
			quantity TEXT NOT NULL,
			buy_date DATE NOT NULL,
			buy_price TEXT NOT NULL,
			cost_basis TEXT NOT NULL,
			buy_transaction_id VARCHAR(36) NOT NULL,
			sell_date DATE,
			sell_price TEXT,
			sell_basis TEXT,
			realized_gain TEXT,
			sell_transaction_id VARCHAR(36),
			FOREIGN KEY(position_id) REFERENCES position(id) ON DELETE CASCADE,
			FOREIGN KEY(buy_transaction_id) REFERENCES "transaction"(id) ON DELETE CASCADE,
			FOREIGN KEY(sell_transaction_id) REFERENCES "transaction"(id) ON DELETE CASCADE
		);

		-- Asset price table
		CREATE TABLE asset_price (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			asset_id VARCHAR(36) NOT NULL,
			date DATE NOT NULL,
			price TEXT NOT NULL,
			FOREIGN KEY(asset_id) REFERENCES asset(id),
			CONSTRAINT unique_asset_price UNIQUE (asset_id, date)
		);

		-- Exchange rate table
		CREATE TABLE exchange_rate (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			from_currency VARCHAR(3) NOT NULL,
			to_currency VARCHAR(3) NOT NULL,
			date DATE NOT NULL,
			rate TEXT NOT NULL,
			CONSTRAINT unique_exchange_rate UNIQUE (from_currency, to_currency, date)
		);

		-- System setting table
		CREATE TABLE system_setting (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			"key" VARCHAR(50) NOT NULL UNIQUE,
			value VARCHAR(500) NOT NULL,
			updated_at DATETIME
		);

		-- Indexes for performance
		CREATE INDEX ix_position_account_id ON position(account_id);
		CREATE INDEX ix_transaction_position_id ON "transaction"(position_id);
		CREATE INDEX ix_transaction_executed_at ON "transaction"(executed_at);
		CREATE INDEX ix_transaction_position_id_executed_at ON "transaction"(position_id, executed_at);
		CREATE INDEX ix_lot_position_id ON lot(position_id);
		CREATE INDEX ix_lot_position_id_buy_date ON lot(position_id, buy_date);
		CREATE INDEX ix_asset_price_asset_id_date ON asset_price(asset_id, date);
		CREATE INDEX ix_exchange_rate_date ON exchange_rate(date);
	`

	_, err := db.Exec(schema)
	return err
}

// CleanDatabase truncates all tables in dependency order.
// Useful for reusing the same database across multiple tests.
func CleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	// Order matters: delete children before parents due to foreign keys
	tables := []string{
		"lot",
		"transaction",
		"asset_price",
		"position",
		"asset",
		"account",
		"exchange_rate",
		"system_setting",
	}

	for _, table := range tables {
		//nolint:gosec // G202: Table names are from hardcoded slice, no SQL injection risk
		query := `DELETE FROM "` + table + `"`
		if _, err := db.Exec(query); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in a table.
// Useful for assertions in tests.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	query := `SELECT COUNT(*) FROM "` + table + `"`
	err := db.QueryRow(query).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}

	return count
}

// AssertRowCount asserts that a table has the expected number of rows.
//
// Example usage:
//
//	testutil.AssertRowCount(t, db, "lot", 2)
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	actual := CountRows(t, db, table)
	if actual != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, actual)
	}
}
