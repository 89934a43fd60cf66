package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactions(t *testing.T) {
	input := strings.Join([]string{
		"source_ref,material_id,transaction_type,quantity,unit_of_measure,occurred_at,sales_order_id",
		"TXN-001,MAT-1,issue,-4.5,EA,2026-02-05 14:30:00,SO-99",
		"TXN-002,MAT-1,SCRAP,-1,EA,2026-02-05,",
		"TXN-003,MAT-2,RECEIPT,25,EA,2026-02-06T08:00:00Z,",
	}, "\n")

	txns, err := ParseTransactions(strings.NewReader(input), "t1", "f1")
	require.NoError(t, err)
	require.Len(t, txns, 3)

	assert.Equal(t, "TXN-001", txns[0].SourceRef)
	assert.Equal(t, "t1", txns[0].TenantID)
	assert.Equal(t, "f1", txns[0].FacilityID)
	assert.Equal(t, "ISSUE", txns[0].TransactionType)
	assert.Equal(t, -4.5, txns[0].Quantity)
	require.NotNil(t, txns[0].SalesOrderID)
	assert.Equal(t, "SO-99", *txns[0].SalesOrderID)
	assert.Equal(t, time.Date(2026, 2, 5, 14, 30, 0, 0, time.UTC), txns[0].OccurredAt)

	assert.Equal(t, time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC), txns[1].OccurredAt)
	assert.Nil(t, txns[1].SalesOrderID)

	assert.Equal(t, time.Date(2026, 2, 6, 8, 0, 0, 0, time.UTC), txns[2].OccurredAt)
}

func TestParseTransactionsSkipsBadRows(t *testing.T) {
	input := strings.Join([]string{
		"source_ref,material_id,transaction_type,quantity,occurred_at",
		"TXN-001,MAT-1,ISSUE,not-a-number,2026-02-05",
		"TXN-002,MAT-1,ISSUE,-3,bad-date",
		",MAT-1,ISSUE,-3,2026-02-05",
		"TXN-004,MAT-1,ISSUE,-3,2026-02-05",
	}, "\n")

	txns, err := ParseTransactions(strings.NewReader(input), "t1", "f1")
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "TXN-004", txns[0].SourceRef)
}

func TestParseTransactionsRequiresColumns(t *testing.T) {
	input := "material_id,quantity\nMAT-1,-3\n"

	_, err := ParseTransactions(strings.NewReader(input), "t1", "f1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source_ref")
}
