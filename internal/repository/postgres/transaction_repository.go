package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

type transactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *transactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) InsertTransactions(ctx context.Context, txns []domain.InventoryTransaction) (int64, error) {
	if len(txns) == 0 {
		return 0, nil
	}

	var inserted int64
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO inventory_transactions (
				tenant_id, facility_id, material_id, transaction_type,
				quantity, unit_of_measure, occurred_at, source_ref,
				sales_order_id, production_order_id, transfer_order_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (tenant_id, source_ref) DO NOTHING`)
		if err != nil {
			return fmt.Errorf("failed to prepare transaction insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range txns {
			res, err := stmt.ExecContext(ctx,
				t.TenantID, t.FacilityID, t.MaterialID, t.TransactionType,
				t.Quantity, t.UnitOfMeasure, t.OccurredAt, t.SourceRef,
				t.SalesOrderID, t.ProductionOrderID, t.TransferOrderID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert transaction %s: %w", t.SourceRef, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to count inserted transactions: %w", err)
			}
			inserted += n
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}
