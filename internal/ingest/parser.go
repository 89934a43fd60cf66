package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/toddjhayden/agogsaas-planning/internal/domain"
)

// Column headers expected in a transaction export. Matching is
// case-insensitive; column order is free.
const (
	colSourceRef       = "source_ref"
	colMaterialID      = "material_id"
	colTransactionType = "transaction_type"
	colQuantity        = "quantity"
	colUnitOfMeasure   = "unit_of_measure"
	colOccurredAt      = "occurred_at"
	colSalesOrder      = "sales_order_id"
	colProductionOrder = "production_order_id"
	colTransferOrder   = "transfer_order_id"
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTransactions reads a transaction CSV export. Rows that cannot be
// parsed are logged and skipped; a malformed file never aborts the batch
// halfway with partial state.
func ParseTransactions(r io.Reader, tenantID, facilityID string) ([]domain.InventoryTransaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colSourceRef, colMaterialID, colTransactionType, colQuantity, colOccurredAt} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("transaction export missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var txns []domain.InventoryTransaction
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("skipping unreadable transaction row")
			continue
		}

		qty, err := strconv.ParseFloat(field(row, colQuantity), 64)
		if err != nil {
			log.Warn().Int("line", line).Str("quantity", field(row, colQuantity)).
				Msg("skipping transaction row with bad quantity")
			continue
		}

		occurredAt, err := parseTimestamp(field(row, colOccurredAt))
		if err != nil {
			log.Warn().Int("line", line).Str("occurred_at", field(row, colOccurredAt)).
				Msg("skipping transaction row with bad timestamp")
			continue
		}

		txn := domain.InventoryTransaction{
			TenantID:        tenantID,
			FacilityID:      facilityID,
			MaterialID:      field(row, colMaterialID),
			TransactionType: strings.ToUpper(field(row, colTransactionType)),
			Quantity:        qty,
			UnitOfMeasure:   field(row, colUnitOfMeasure),
			OccurredAt:      occurredAt,
			SourceRef:       field(row, colSourceRef),
		}
		if txn.MaterialID == "" || txn.SourceRef == "" {
			log.Warn().Int("line", line).Msg("skipping transaction row without material or source reference")
			continue
		}

		if v := field(row, colSalesOrder); v != "" {
			txn.SalesOrderID = &v
		}
		if v := field(row, colProductionOrder); v != "" {
			txn.ProductionOrderID = &v
		}
		if v := field(row, colTransferOrder); v != "" {
			txn.TransferOrderID = &v
		}

		txns = append(txns, txn)
	}

	return txns, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}
