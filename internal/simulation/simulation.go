// Package simulation implements the financial simulation engine: monthly
// compounding of investments with tenure-based withholding tax, and
// fixed-payment loan amortization.
//
// Both simulators are pure functions over their inputs. They keep no state
// between calls and are safe to invoke concurrently. All monetary values are
// plain float64 and carry no currency; formatting for display is the job of
// the currency package.
package simulation

import "errors"

// ErrInvalidTerm is returned when a simulation is requested for fewer than
// one month.
var ErrInvalidTerm = errors.New("term must be at least one month")

// InvestmentInput describes an investment projection request.
type InvestmentInput struct {
	Initial             float64 `json:"investimento_inicial"`
	MonthlyContribution float64 `json:"aporte_mensal"`
	AnnualRatePercent   float64 `json:"taxa_anual"`
	TermMonths          int     `json:"prazo_meses"`
}

// InvestmentMonth is one row of the projection trace. The trace is
// append-only and ordered by month.
type InvestmentMonth struct {
	Month         int     `json:"mes"`
	TotalInvested float64 `json:"total_investido"`
	GrossBalance  float64 `json:"montante_bruto"`
	GrossProfit   float64 `json:"lucro_bruto"`
	TaxDue        float64 `json:"imposto_devido"`
	NetBalance    float64 `json:"montante_liquido"`
}

// InvestmentSummary condenses the projection; every field comes from the
// last monthly row.
type InvestmentSummary struct {
	FinalGross    float64 `json:"valor_final_bruto"`
	FinalNet      float64 `json:"valor_final_liquido"`
	TotalInvested float64 `json:"total_investido"`
	TotalProfit   float64 `json:"total_ganho_bruto"`
	TotalTax      float64 `json:"total_imposto"`
}

// InvestmentResult is the full outcome of ProjectInvestment.
type InvestmentResult struct {
	Monthly []InvestmentMonth `json:"mensal"`
	Summary InvestmentSummary `json:"resumo"`
}

// LoanInput describes a loan amortization request. DownPayment must be
// strictly less than TotalPrice; that is checked by the caller at the
// request boundary, not here.
type LoanInput struct {
	TotalPrice        float64 `json:"valor_total"`
	DownPayment       float64 `json:"valor_entrada"`
	AnnualRatePercent float64 `json:"taxa_juros_anual"`
	TermMonths        int     `json:"prazo_meses"`
}

// LoanMonth is one row of the amortization schedule.
type LoanMonth struct {
	Month            int     `json:"mes"`
	Installment      float64 `json:"parcela"`
	Interest         float64 `json:"juros"`
	Principal        float64 `json:"amortizacao"`
	RemainingBalance float64 `json:"saldo_devedor"`
}

// LoanSummary condenses the schedule.
type LoanSummary struct {
	Installment    float64 `json:"valor_parcela"`
	FinancedAmount float64 `json:"valor_financiado"`
	TotalInterest  float64 `json:"total_juros"`
	TotalPaid      float64 `json:"total_pago"`
}

// LoanResult is the full outcome of AmortizeLoan.
type LoanResult struct {
	Monthly []LoanMonth `json:"mensal"`
	Summary LoanSummary `json:"resumo"`
}

// monthlyRate converts an annual percentage rate to a monthly fraction by
// simple division. This is intentionally not a compounded-root conversion;
// the output contract depends on it.
func monthlyRate(annualRatePercent float64) float64 {
	return (annualRatePercent / 100) / 12
}
