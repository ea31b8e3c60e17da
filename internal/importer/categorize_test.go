package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        string
	}{
		{"salary", "Pagamento de Salário - Empresa X", "Receita"},
		{"pix received", "PIX recebido de João", "Receita"},
		{"restaurant", "RESTAURANTE DO ZE", "Alimentação"},
		{"delivery", "IFOOD *PEDIDO 1234", "Alimentação"},
		{"supermarket", "Compra no Supermercado Extra", "Mercado"},
		{"market without accent", "MERCADO SAO JOSE", "Mercado"},
		{"ride", "Uber *TRIP", "Transporte"},
		{"99 app", "99POP VIAGEM", "Transporte"},
		{"electricity", "Conta de luz CEMIG", "Contas Fixas"},
		{"telecom", "VIVO FIBRA MENSALIDADE", "Contas Fixas"},
		{"pharmacy with accent", "Farmácia Pague Menos", "Saúde"},
		{"rent", "Pagamento de aluguel", "Moradia"},
		{"unmatched", "Transferência XYZ", "Outros"},
		{"empty", "", "Outros"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.description))
		})
	}
}

func TestCategorize_EarlierRuleWins(t *testing.T) {
	// Both "mercado" and "aluguel" match; the mercado group comes first in
	// the rule order, so it wins regardless of keyword position in the text.
	assert.Equal(t, "Mercado", Categorize("Pagamento de ALUGUEL e mercado"))

	// Accent folding happens before matching, so "SALÁRIO" hits "salario".
	assert.Equal(t, "Receita", Categorize("Crédito de SALÁRIO mensal"))
}
