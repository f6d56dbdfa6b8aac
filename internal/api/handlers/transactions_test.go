package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avdwerf/Holdings-Tracker-Backend/internal/model"
	"github.com/avdwerf/Holdings-Tracker-Backend/internal/testutil"
)

func setupTransactionHandler(t *testing.T) (*TransactionHandler, *sql.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return NewTransactionHandler(testutil.NewTestTransactionService(t, db)), db
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("records a buy successfully", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)

		account := testutil.NewAccount().Build(t, db)
		asset := testutil.NewAsset().Build(t, db)
		position := testutil.NewPosition(account.ID, asset.ID).Build(t, db)

		body, _ := json.Marshal(map[string]any{
			"positionId":             position.ID,
			"executedAt":             "2024-01-02",
			"quantity":               "10",
			"price":                  "100",
			"localValue":             "1000",
			"valueInAccountCurrency": "1000",
			"totalInAccountCurrency": "-1000",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/transaction", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var response model.Transaction
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.ID == "" {
			t.Error("Expected a generated transaction ID")
		}

		testutil.AssertRowCount(t, db, "transaction", 1)
		testutil.AssertRowCount(t, db, "lot", 1)
	})

	t.Run("returns 400 for zero quantity", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)

		account := testutil.NewAccount().Build(t, db)
		asset := testutil.NewAsset().Build(t, db)
		position := testutil.NewPosition(account.ID, asset.ID).Build(t, db)

		body, _ := json.Marshal(map[string]any{
			"positionId": position.ID,
			"executedAt": "2024-01-02",
			"quantity":   "0",
			"price":      "100",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/transaction", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
		testutil.AssertRowCount(t, db, "transaction", 0)
	})

	t.Run("returns 400 when the sell exceeds the held quantity", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)

		account := testutil.NewAccount().Build(t, db)
		asset := testutil.NewAsset().Build(t, db)
		position := testutil.NewPosition(account.ID, asset.ID).Build(t, db)

		body, _ := json.Marshal(map[string]any{
			"positionId":             position.ID,
			"executedAt":             "2024-01-02",
			"quantity":               "-5",
			"price":                  "100",
			"localValue":             "-500",
			"valueInAccountCurrency": "-500",
			"totalInAccountCurrency": "500",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/transaction", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
		testutil.AssertRowCount(t, db, "transaction", 0)
	})

	t.Run("returns 404 for unknown position", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)

		body, _ := json.Marshal(map[string]any{
			"positionId": testutil.MakeID(),
			"executedAt": "2024-01-02",
			"quantity":   "10",
			"price":      "100",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/transaction", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 on malformed body", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/transaction", bytes.NewBufferString(`{"quantity":`))
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTransactionHandler_CorrectTransaction(t *testing.T) {
	t.Run("corrects an existing record", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		svc := testutil.NewTestTransactionService(t, db)

		account := testutil.NewAccount().Build(t, db)
		asset := testutil.NewAsset().Build(t, db)
		position := testutil.NewPosition(account.ID, asset.ID).Build(t, db)

		buy := testutil.NewTransaction(position.ID).
			WithExecutedAt(date(t, "2024-01-02")).
			Model()
		if err := svc.CreateTransaction(context.Background(), &buy); err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}

		body, _ := json.Marshal(map[string]any{
			"executedAt":             "2024-01-02",
			"quantity":               "8",
			"price":                  "100",
			"localValue":             "800",
			"valueInAccountCurrency": "800",
			"totalInAccountCurrency": "-800",
		})
		req := withURLParam(
			httptest.NewRequest(http.MethodPut, "/api/transaction/"+buy.ID, bytes.NewReader(body)),
			"uuid", buy.ID,
		)
		w := httptest.NewRecorder()

		handler.CorrectTransaction(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		transactions, err := svc.GetTransactionsForPosition(position.ID)
		if err != nil {
			t.Fatalf("GetTransactionsForPosition() returned unexpected error: %v", err)
		}
		if len(transactions) != 1 || transactions[0].Quantity.String() != "8" {
			t.Errorf("Expected the stored quantity restated to 8, got %+v", transactions)
		}
	})

	t.Run("returns 404 for unknown transaction", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)

		id := testutil.MakeID()
		body, _ := json.Marshal(map[string]any{
			"executedAt": "2024-01-02",
			"quantity":   "8",
			"price":      "100",
		})
		req := withURLParam(
			httptest.NewRequest(http.MethodPut, "/api/transaction/"+id, bytes.NewReader(body)),
			"uuid", id,
		)
		w := httptest.NewRecorder()

		handler.CorrectTransaction(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	t.Run("deletes a record successfully", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		svc := testutil.NewTestTransactionService(t, db)

		account := testutil.NewAccount().Build(t, db)
		asset := testutil.NewAsset().Build(t, db)
		position := testutil.NewPosition(account.ID, asset.ID).Build(t, db)

		buy := testutil.NewTransaction(position.ID).
			WithExecutedAt(date(t, "2024-01-02")).
			Model()
		if err := svc.CreateTransaction(context.Background(), &buy); err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}

		req := testutil.NewRequestWithURLParams(
			http.MethodDelete,
			"/api/transaction/"+buy.ID,
			map[string]string{"uuid": buy.ID},
		)
		w := httptest.NewRecorder()

		handler.DeleteTransaction(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
		testutil.AssertRowCount(t, db, "transaction", 0)
		testutil.AssertRowCount(t, db, "lot", 0)
	})

	t.Run("returns 404 for unknown transaction", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)

		id := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(
			http.MethodDelete,
			"/api/transaction/"+id,
			map[string]string{"uuid": id},
		)
		w := httptest.NewRecorder()

		handler.DeleteTransaction(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTransactionHandler_DeleteTransactions(t *testing.T) {
	t.Run("returns 400 for malformed IDs", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)

		body := bytes.NewBufferString(`{"ids":["not-a-uuid"]}`)
		req := httptest.NewRequest(http.MethodDelete, "/api/transaction", body)
		w := httptest.NewRecorder()

		handler.DeleteTransactions(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("deletes a batch successfully", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		svc := testutil.NewTestTransactionService(t, db)

		account := testutil.NewAccount().Build(t, db)
		asset := testutil.NewAsset().Build(t, db)
		position := testutil.NewPosition(account.ID, asset.ID).Build(t, db)

		first := testutil.NewTransaction(position.ID).
			WithExecutedAt(date(t, "2024-01-02")).
			Model()
		if err := svc.CreateTransaction(context.Background(), &first); err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}
		second := testutil.NewTransaction(position.ID).
			WithExecutedAt(date(t, "2024-01-03")).
			Model()
		if err := svc.CreateTransaction(context.Background(), &second); err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}

		body, _ := json.Marshal(map[string][]string{"ids": {first.ID, second.ID}})
		req := httptest.NewRequest(http.MethodDelete, "/api/transaction", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.DeleteTransactions(w, req)

		if w.Code != http.StatusNoContent {
			t.Fatalf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
		testutil.AssertRowCount(t, db, "transaction", 0)
	})
}
