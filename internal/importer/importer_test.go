package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financas/internal/core"
)

// sinkRecorder implements TransactionSink for testing.
type sinkRecorder struct {
	saved []core.Transaction
	err   error
}

func (s *sinkRecorder) SaveTransaction(_ context.Context, tx core.Transaction) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.saved = append(s.saved, tx)
	return int64(len(s.saved)), nil
}

func TestImport(t *testing.T) {
	entries := []core.StatementEntry{
		{Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Description: "Salário Fevereiro", Amount: decimal.NewFromInt(5000)},
		{Date: time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), Description: "Supermercado Extra", Amount: decimal.NewFromFloat(-230.45)},
		{Date: time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC), Description: "", Amount: decimal.NewFromInt(10)},
		{Date: time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC), Description: "Saldo do dia", Amount: decimal.Zero},
	}

	sink := &sinkRecorder{}
	res, err := Import(context.Background(), sink, 7, entries)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 2, res.Skipped)
	require.Len(t, sink.saved, 2)

	salary := sink.saved[0]
	assert.Equal(t, int64(7), salary.UserID)
	assert.Equal(t, core.Income, salary.Kind)
	assert.Equal(t, "Receita", salary.Category)
	assert.True(t, salary.Amount.Equal(decimal.NewFromInt(5000)))

	market := sink.saved[1]
	assert.Equal(t, core.Expense, market.Kind)
	assert.Equal(t, "Mercado", market.Category)
	// Stored amounts are positive; the sign only selects the ledger side.
	assert.True(t, market.Amount.Equal(decimal.NewFromFloat(230.45)))
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	require.NotNil(t, r.Get("csv"))
	require.NotNil(t, r.Get("CSV"))
	assert.Nil(t, r.Get("ofx"))

	assert.Panics(t, func() { r.Register(&CSVParser{}) })
}

func TestCSVParser(t *testing.T) {
	input := strings.Join([]string{
		"Data,Descricao,Valor",
		"01/02/2025,Salário Fevereiro,5000.00",
		`03/02/2025,"Supermercado Extra","-230,45"`,
	}, "\n")

	entries, err := (&CSVParser{}).Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), entries[0].Date)
	assert.Equal(t, "Salário Fevereiro", entries[0].Description)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(5000)))
	assert.True(t, entries[1].Amount.IsNegative())
}

func TestCSVParser_BadRow(t *testing.T) {
	input := "Data,Descricao,Valor\n2025-02-01,Salário,5000.00\n"
	_, err := (&CSVParser{}).Parse(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestCSVParser_HeaderOnly(t *testing.T) {
	entries, err := (&CSVParser{}).Parse(strings.NewReader("Data,Descricao,Valor\n"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
