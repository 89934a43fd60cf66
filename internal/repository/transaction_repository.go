package repository

import (
	"context"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

// TransactionRepository loads raw consumption transactions, the input to
// demand-history backfill.
type TransactionRepository interface {
	// InsertTransactions stores a batch, skipping rows whose source
	// reference was already loaded. Returns the number of rows inserted.
	InsertTransactions(ctx context.Context, txns []domain.InventoryTransaction) (int64, error)
}
