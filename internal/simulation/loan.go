package simulation

import "math"

// AmortizeLoan simulates fixed-payment amortization of the financed amount
// (total price minus down payment) over TermMonths.
//
// The installment comes from the standard amortized-payment formula. A zero
// effective monthly rate makes that formula undefined; in that case the
// simulation returns (nil, nil) — an absent result the caller must handle,
// not an error.
//
// The last month's remaining balance is forced to exactly zero to absorb
// floating-point drift. Returns ErrInvalidTerm when TermMonths < 1.
func AmortizeLoan(in LoanInput) (*LoanResult, error) {
	if in.TermMonths < 1 {
		return nil, ErrInvalidTerm
	}

	financed := in.TotalPrice - in.DownPayment
	rate := monthlyRate(in.AnnualRatePercent)
	if rate == 0 {
		return nil, nil
	}

	n := float64(in.TermMonths)
	factor := math.Pow(1+rate, n)
	installment := financed * (rate * factor) / (factor - 1)

	monthly := make([]LoanMonth, 0, in.TermMonths)
	balance := financed
	totalInterest := 0.0

	for m := 1; m <= in.TermMonths; m++ {
		interest := balance * rate
		principal := installment - interest
		balance -= principal
		totalInterest += interest

		if m == in.TermMonths {
			balance = 0
		}

		monthly = append(monthly, LoanMonth{
			Month:            m,
			Installment:      installment,
			Interest:         interest,
			Principal:        principal,
			RemainingBalance: balance,
		})
	}

	return &LoanResult{
		Monthly: monthly,
		Summary: LoanSummary{
			Installment:    installment,
			FinancedAmount: financed,
			TotalInterest:  totalInterest,
			TotalPaid:      installment*n + in.DownPayment,
		},
	}, nil
}
