package simulation

// Withholding tax tiers by elapsed tenure in days, approximated as 30 days
// per month. This mirrors the simplified Brazilian fixed-income IR schedule:
// the first bracket whose upper bound covers the elapsed days wins.
var taxTiers = []struct {
	maxDays int // inclusive upper bound; 0 means no bound
	rate    float64
}{
	{180, 0.225},
	{360, 0.20},
	{720, 0.175},
	{0, 0.15},
}

// taxRateForMonth returns the withholding rate applicable after month m.
func taxRateForMonth(m int) float64 {
	days := m * 30
	for _, tier := range taxTiers {
		if tier.maxDays == 0 || days <= tier.maxDays {
			return tier.rate
		}
	}
	return taxTiers[len(taxTiers)-1].rate
}

// ProjectInvestment simulates monthly compounding of an initial balance plus
// recurring contributions and applies tenure-based withholding tax on the
// accrued gains.
//
// Month 1 uses the initial balance as-is; the monthly contribution is added
// from month 2 onward, before that month's yield. Tax each month is computed
// on the cumulative profit to date, not on the incremental monthly profit,
// so tax due is not additive across months. Both behaviors are part of the
// output contract.
//
// Returns ErrInvalidTerm when TermMonths < 1.
func ProjectInvestment(in InvestmentInput) (*InvestmentResult, error) {
	if in.TermMonths < 1 {
		return nil, ErrInvalidTerm
	}

	rate := monthlyRate(in.AnnualRatePercent)

	gross := in.Initial
	invested := in.Initial
	monthly := make([]InvestmentMonth, 0, in.TermMonths)

	for m := 1; m <= in.TermMonths; m++ {
		if m > 1 {
			gross += in.MonthlyContribution
			invested += in.MonthlyContribution
		}

		gross += gross * rate
		profit := gross - invested
		tax := profit * taxRateForMonth(m)

		monthly = append(monthly, InvestmentMonth{
			Month:         m,
			TotalInvested: invested,
			GrossBalance:  gross,
			GrossProfit:   profit,
			TaxDue:        tax,
			NetBalance:    gross - tax,
		})
	}

	last := monthly[len(monthly)-1]
	return &InvestmentResult{
		Monthly: monthly,
		Summary: InvestmentSummary{
			FinalGross:    last.GrossBalance,
			FinalNet:      last.NetBalance,
			TotalInvested: last.TotalInvested,
			TotalProfit:   last.GrossProfit,
			TotalTax:      last.TaxDue,
		},
	}, nil
}
