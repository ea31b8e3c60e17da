// Package export defines the outbound port for mirroring imported
// transactions to an external spreadsheet.
package export

import (
	"context"

	"financas/internal/core"
)

// LedgerWriter appends transactions to an external ledger mirror.
type LedgerWriter interface {
	AppendTransactions(ctx context.Context, txs []core.Transaction) error
}
