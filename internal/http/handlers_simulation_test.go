package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"financas/internal/currency"
	"financas/internal/importer"
	"financas/internal/simulation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s := NewServer(":0", Deps{
		Registry: importer.DefaultRegistry(),
		Money:    currency.BRL(),
	})
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
	})
	return s
}

func postJSON(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestInvestmentAPI(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s, "/api/simulador/investimento",
		`{"investimento_inicial": 1000, "aporte_mensal": 0, "taxa_anual": 12, "prazo_meses": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result simulation.InvestmentResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Monthly, 1)
	assert.InDelta(t, 1010.0, result.Monthly[0].GrossBalance, 1e-9)
	assert.InDelta(t, 1007.75, result.Monthly[0].NetBalance, 1e-9)
	assert.InDelta(t, 1007.75, result.Summary.FinalNet, 1e-9)
}

func TestInvestmentAPIRejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{`, http.StatusBadRequest},
		{"zero term", `{"investimento_inicial": 1000, "taxa_anual": 12, "prazo_meses": 0}`, http.StatusUnprocessableEntity},
		{"negative term", `{"investimento_inicial": 1000, "taxa_anual": 12, "prazo_meses": -3}`, http.StatusUnprocessableEntity},
		{"negative initial", `{"investimento_inicial": -1, "taxa_anual": 12, "prazo_meses": 12}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, s, "/api/simulador/investimento", tc.body)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestLoanAPI(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s, "/api/simulador/financiamento",
		`{"valor_total": 300000, "valor_entrada": 60000, "taxa_juros_anual": 10, "prazo_meses": 360}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result simulation.LoanResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Monthly, 360)
	assert.InDelta(t, 240000.0, result.Summary.FinancedAmount, 1e-9)
	assert.InDelta(t, result.Summary.Installment*360+60000, result.Summary.TotalPaid, 1e-9)
	assert.Zero(t, result.Monthly[359].RemainingBalance)
}

func TestLoanAPIZeroRateReturnsNull(t *testing.T) {
	s := newTestServer(t)

	rec := postJSON(t, s, "/api/simulador/financiamento",
		`{"valor_total": 1000, "valor_entrada": 0, "taxa_juros_anual": 0, "prazo_meses": 12}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestLoanAPIRejectsBadInput(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `not json`, http.StatusBadRequest},
		{"down payment equals total", `{"valor_total": 1000, "valor_entrada": 1000, "taxa_juros_anual": 10, "prazo_meses": 12}`, http.StatusUnprocessableEntity},
		{"down payment above total", `{"valor_total": 1000, "valor_entrada": 2000, "taxa_juros_anual": 10, "prazo_meses": 12}`, http.StatusUnprocessableEntity},
		{"zero term", `{"valor_total": 1000, "valor_entrada": 0, "taxa_juros_anual": 10, "prazo_meses": 0}`, http.StatusUnprocessableEntity},
		{"zero total", `{"valor_total": 0, "valor_entrada": 0, "taxa_juros_anual": 10, "prazo_meses": 12}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, s, "/api/simulador/financiamento", tc.body)
			assert.Equal(t, tc.code, rec.Code)

			var apiErr apiError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
			assert.NotEmpty(t, apiErr.Error)
		})
	}
}

func TestSimulatorAPIMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/simulador/investimento", "/api/simulador/financiamento"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, path)
	}
}
