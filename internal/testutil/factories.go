package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
)

// AccountBuilder provides a fluent interface for creating test accounts.
//
// Example usage:
//
//	// Simple creation with defaults
//	account := testutil.NewAccount().Build(t, db)
//
//	// Customized account
//	account := testutil.NewAccount().
//	    WithNickname("Degiro").
//	    WithCurrency("EUR").
//	    Build(t, db)
type AccountBuilder struct {
	ID          string
	Nickname    string
	Description string
	Currency    string
	Balance     decimal.Decimal
}

// NewAccount creates an AccountBuilder with sensible defaults.
func NewAccount() *AccountBuilder {
	return &AccountBuilder{
		ID:          MakeID(),
		Nickname:    MakeName("Test Account"),
		Description: "Test description",
		Currency:    "EUR",
		Balance:     decimal.Zero,
	}
}

// WithID sets a custom ID.
func (b *AccountBuilder) WithID(id string) *AccountBuilder {
	b.ID = id
	return b
}

// WithNickname sets a custom nickname.
func (b *AccountBuilder) WithNickname(nickname string) *AccountBuilder {
	b.Nickname = nickname
	return b
}

// WithCurrency sets the settlement currency.
func (b *AccountBuilder) WithCurrency(currency string) *AccountBuilder {
	b.Currency = currency
	return b
}

// WithBalance sets the starting balance.
func (b *AccountBuilder) WithBalance(balance decimal.Decimal) *AccountBuilder {
	b.Balance = balance
	return b
}

// Build inserts the account and returns the model.
func (b *AccountBuilder) Build(t *testing.T, db *sql.DB) model.Account {
	t.Helper()

	query := `
		INSERT INTO account (id, nickname, description, currency, balance)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Nickname, b.Description, b.Currency, b.Balance.String())
	if err != nil {
		t.Fatalf("Failed to create test account: %v", err)
	}

	return model.Account{
		ID:          b.ID,
		Nickname:    b.Nickname,
		Description: b.Description,
		Currency:    b.Currency,
		Balance:     b.Balance,
	}
}

// AssetBuilder provides a fluent interface for creating test assets.
type AssetBuilder struct {
	ID        string
	Isin      string
	Symbol    string
	Name      string
	Currency  string
	Exchange  string
	AssetType string
}

// NewAsset creates an AssetBuilder with sensible defaults.
func NewAsset() *AssetBuilder {
	return &AssetBuilder{
		ID:        MakeID(),
		Isin:      MakeISIN(),
		Symbol:    MakeSymbol(),
		Name:      MakeName("Test Asset"),
		Currency:  "USD",
		Exchange:  "US",
		AssetType: model.AssetTypeStock,
	}
}

// WithID sets a custom ID.
func (b *AssetBuilder) WithID(id string) *AssetBuilder {
	b.ID = id
	return b
}

// WithSymbol sets a custom ticker symbol.
func (b *AssetBuilder) WithSymbol(symbol string) *AssetBuilder {
	b.Symbol = symbol
	return b
}

// WithCurrency sets the pricing currency.
func (b *AssetBuilder) WithCurrency(currency string) *AssetBuilder {
	b.Currency = currency
	return b
}

// WithExchange sets the listing exchange.
func (b *AssetBuilder) WithExchange(exchange string) *AssetBuilder {
	b.Exchange = exchange
	return b
}

// Crypto marks the asset as a crypto asset.
func (b *AssetBuilder) Crypto() *AssetBuilder {
	b.AssetType = model.AssetTypeCrypto
	return b
}

// Build inserts the asset and returns the model.
func (b *AssetBuilder) Build(t *testing.T, db *sql.DB) model.Asset {
	t.Helper()

	query := `
		INSERT INTO asset (id, isin, symbol, name, currency, exchange, asset_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Isin, b.Symbol, b.Name, b.Currency, b.Exchange, b.AssetType)
	if err != nil {
		t.Fatalf("Failed to create test asset: %v", err)
	}

	return model.Asset{
		ID:        b.ID,
		Isin:      b.Isin,
		Symbol:    b.Symbol,
		Name:      b.Name,
		Currency:  b.Currency,
		Exchange:  b.Exchange,
		AssetType: b.AssetType,
	}
}

// PositionBuilder provides a fluent interface for creating test positions.
// Account and asset must exist; use NewAccount and NewAsset first.
type PositionBuilder struct {
	ID           string
	AccountID    string
	AssetID      string
	Quantity     decimal.Decimal
	RealizedGain decimal.Decimal
	CostBasis    decimal.Decimal
}

// NewPosition creates a PositionBuilder for the given account and asset.
func NewPosition(accountID, assetID string) *PositionBuilder {
	return &PositionBuilder{
		ID:           MakeID(),
		AccountID:    accountID,
		AssetID:      assetID,
		Quantity:     decimal.Zero,
		RealizedGain: decimal.Zero,
		CostBasis:    decimal.Zero,
	}
}

// WithID sets a custom ID.
func (b *PositionBuilder) WithID(id string) *PositionBuilder {
	b.ID = id
	return b
}

// WithQuantity sets the current quantity.
func (b *PositionBuilder) WithQuantity(quantity decimal.Decimal) *PositionBuilder {
	b.Quantity = quantity
	return b
}

// Build inserts the position and returns the model.
func (b *PositionBuilder) Build(t *testing.T, db *sql.DB) model.Position {
	t.Helper()

	query := `
		INSERT INTO position (id, account_id, asset_id, quantity, realized_gain, cost_basis)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID, b.AccountID, b.AssetID,
		b.Quantity.String(), b.RealizedGain.String(), b.CostBasis.String(),
	)
	if err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}

	return model.Position{
		ID:           b.ID,
		AccountID:    b.AccountID,
		AssetID:      b.AssetID,
		Quantity:     b.Quantity,
		RealizedGain: b.RealizedGain,
		CostBasis:    b.CostBasis,
	}
}

// TransactionBuilder provides a fluent interface for creating test
// transactions. Quantity is positive for buys and negative for sells; the
// money amounts are derived from quantity and price unless overridden.
//
// Example usage:
//
//	buy := testutil.NewTransaction(position.ID).
//	    WithExecutedAt(day("2024-01-02")).
//	    WithQuantity(decimal.NewFromInt(10)).
//	    WithPrice(decimal.NewFromFloat(1.22)).
//	    Build(t, db)
type TransactionBuilder struct {
	ID                     string
	PositionID             string
	ExecutedAt             time.Time
	Quantity               decimal.Decimal
	Price                  decimal.Decimal
	TransactionCosts       decimal.Decimal
	LocalValue             decimal.Decimal
	ValueInAccountCurrency decimal.Decimal
	TotalInAccountCurrency decimal.Decimal
	OrderID                string

	totalOverridden bool
}

// NewTransaction creates a TransactionBuilder for the given position.
func NewTransaction(positionID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:         MakeID(),
		PositionID: positionID,
		ExecutedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Quantity:   decimal.NewFromInt(10),
		Price:      decimal.NewFromInt(100),
	}
}

// WithID sets a custom ID.
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	b.ID = id
	return b
}

// WithExecutedAt sets the execution timestamp.
func (b *TransactionBuilder) WithExecutedAt(executedAt time.Time) *TransactionBuilder {
	b.ExecutedAt = executedAt
	return b
}

// WithQuantity sets the signed quantity.
func (b *TransactionBuilder) WithQuantity(quantity decimal.Decimal) *TransactionBuilder {
	b.Quantity = quantity
	return b
}

// WithPrice sets the per-unit price.
func (b *TransactionBuilder) WithPrice(price decimal.Decimal) *TransactionBuilder {
	b.Price = price
	return b
}

// WithTotal overrides the derived settlement amount.
func (b *TransactionBuilder) WithTotal(total decimal.Decimal) *TransactionBuilder {
	b.TotalInAccountCurrency = total
	b.totalOverridden = true
	return b
}

// WithOrderID links the transaction to a broker order.
func (b *TransactionBuilder) WithOrderID(orderID string) *TransactionBuilder {
	b.OrderID = orderID
	return b
}

// Model returns the transaction without inserting it.
func (b *TransactionBuilder) Model() model.Transaction {
	localValue := b.Quantity.Mul(b.Price)
	total := b.TotalInAccountCurrency
	if !b.totalOverridden {
		// Settlement cash flow is the negated trade value: buys cost
		// money, sells yield it.
		total = localValue.Neg().Sub(b.TransactionCosts)
	}

	return model.Transaction{
		ID:                     b.ID,
		PositionID:             b.PositionID,
		ExecutedAt:             b.ExecutedAt,
		Quantity:               b.Quantity,
		Price:                  b.Price,
		TransactionCosts:       b.TransactionCosts,
		LocalValue:             localValue,
		ValueInAccountCurrency: localValue,
		TotalInAccountCurrency: total,
		OrderID:                b.OrderID,
		CreatedAt:              time.Now().UTC(),
	}
}

// Build inserts the transaction and returns the model.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	transaction := b.Model()

	query := `
		INSERT INTO "transaction" (id, position_id, executed_at, quantity, price,
			transaction_costs, local_value, value_account_currency, total_account_currency,
			order_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		transaction.ID,
		transaction.PositionID,
		transaction.ExecutedAt.UTC().Format(time.RFC3339),
		transaction.Quantity.String(),
		transaction.Price.String(),
		transaction.TransactionCosts.String(),
		transaction.LocalValue.String(),
		transaction.ValueInAccountCurrency.String(),
		transaction.TotalInAccountCurrency.String(),
		transaction.OrderID,
		transaction.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return transaction
}

// AssetPriceBuilder provides a fluent interface for creating test prices.
type AssetPriceBuilder struct {
	ID      string
	AssetID string
	Date    time.Time
	Price   decimal.Decimal
}

// NewAssetPrice creates an AssetPriceBuilder for the given asset.
func NewAssetPrice(assetID string, date time.Time, price decimal.Decimal) *AssetPriceBuilder {
	return &AssetPriceBuilder{
		ID:      MakeID(),
		AssetID: assetID,
		Date:    date,
		Price:   price,
	}
}

// Build inserts the price and returns the model.
func (b *AssetPriceBuilder) Build(t *testing.T, db *sql.DB) model.AssetPrice {
	t.Helper()

	query := `
		INSERT INTO asset_price (id, asset_id, date, price)
		VALUES (?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.AssetID, b.Date.UTC().Format("2006-01-02"), b.Price.String())
	if err != nil {
		t.Fatalf("Failed to create test asset price: %v", err)
	}

	return model.AssetPrice{
		ID:      b.ID,
		AssetID: b.AssetID,
		Date:    b.Date,
		Price:   b.Price,
	}
}

// ExchangeRateBuilder provides a fluent interface for creating test rates.
type ExchangeRateBuilder struct {
	ID           string
	FromCurrency string
	ToCurrency   string
	Date         time.Time
	Rate         decimal.Decimal
}

// NewExchangeRate creates an ExchangeRateBuilder for the given pair.
func NewExchangeRate(fromCurrency, toCurrency string, date time.Time, rate decimal.Decimal) *ExchangeRateBuilder {
	return &ExchangeRateBuilder{
		ID:           MakeID(),
		FromCurrency: fromCurrency,
		ToCurrency:   toCurrency,
		Date:         date,
		Rate:         rate,
	}
}

// Build inserts the rate and returns the model.
func (b *ExchangeRateBuilder) Build(t *testing.T, db *sql.DB) model.ExchangeRate {
	t.Helper()

	query := `
		INSERT INTO exchange_rate (id, from_currency, to_currency, date, rate)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID, b.FromCurrency, b.ToCurrency,
		b.Date.UTC().Format("2006-01-02"), b.Rate.String(),
	)
	if err != nil {
		t.Fatalf("Failed to create test exchange rate: %v", err)
	}

	return model.ExchangeRate{
		ID:           b.ID,
		FromCurrency: b.FromCurrency,
		ToCurrency:   b.ToCurrency,
		Date:         b.Date,
		Rate:         b.Rate,
	}
}
