package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectInvestment_SingleMonth(t *testing.T) {
	// 1000 at 12% a.a. (1% a.m.), no contributions, one month:
	// gross 1010, profit 10, 22.5% tier, tax 2.25, net 1007.75.
	res, err := ProjectInvestment(InvestmentInput{
		Initial:           1000,
		AnnualRatePercent: 12,
		TermMonths:        1,
	})
	require.NoError(t, err)
	require.Len(t, res.Monthly, 1)

	m := res.Monthly[0]
	assert.Equal(t, 1, m.Month)
	assert.InDelta(t, 1000, m.TotalInvested, 1e-9)
	assert.InDelta(t, 1010, m.GrossBalance, 1e-9)
	assert.InDelta(t, 10, m.GrossProfit, 1e-9)
	assert.InDelta(t, 2.25, m.TaxDue, 1e-9)
	assert.InDelta(t, 1007.75, m.NetBalance, 1e-9)
}

func TestProjectInvestment_InvalidTerm(t *testing.T) {
	for _, term := range []int{0, -1, -12} {
		_, err := ProjectInvestment(InvestmentInput{Initial: 1000, TermMonths: term})
		assert.ErrorIs(t, err, ErrInvalidTerm, "term %d", term)
	}
}

func TestProjectInvestment_FirstMonthSkipsContribution(t *testing.T) {
	// The contribution is only added from month 2 onward, so the invested
	// total at month m is initial + (m-1)*contribution.
	res, err := ProjectInvestment(InvestmentInput{
		Initial:             500,
		MonthlyContribution: 100,
		AnnualRatePercent:   6,
		TermMonths:          24,
	})
	require.NoError(t, err)
	require.Len(t, res.Monthly, 24)

	for _, m := range res.Monthly {
		want := 500 + float64(m.Month-1)*100
		assert.InDelta(t, want, m.TotalInvested, 1e-9, "month %d", m.Month)
	}
}

func TestProjectInvestment_NetIsGrossMinusTax(t *testing.T) {
	res, err := ProjectInvestment(InvestmentInput{
		Initial:             2500,
		MonthlyContribution: 300,
		AnnualRatePercent:   13.65,
		TermMonths:          36,
	})
	require.NoError(t, err)

	for _, m := range res.Monthly {
		assert.InDelta(t, m.GrossBalance-m.TaxDue, m.NetBalance, 1e-9, "month %d", m.Month)
		assert.InDelta(t, m.GrossBalance-m.TotalInvested, m.GrossProfit, 1e-9, "month %d", m.Month)
	}
}

func TestProjectInvestment_SummaryFromLastMonth(t *testing.T) {
	res, err := ProjectInvestment(InvestmentInput{
		Initial:             1000,
		MonthlyContribution: 50,
		AnnualRatePercent:   10,
		TermMonths:          18,
	})
	require.NoError(t, err)

	last := res.Monthly[len(res.Monthly)-1]
	assert.Equal(t, last.GrossBalance, res.Summary.FinalGross)
	assert.Equal(t, last.NetBalance, res.Summary.FinalNet)
	assert.Equal(t, last.TotalInvested, res.Summary.TotalInvested)
	assert.Equal(t, last.GrossProfit, res.Summary.TotalProfit)
	assert.Equal(t, last.TaxDue, res.Summary.TotalTax)
}

func TestTaxRateForMonth_TierBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		month int // days = month * 30
		want  float64
	}{
		{"day 180 still in first tier", 6, 0.225},
		{"day 210 drops to 20%", 7, 0.20},
		{"day 360 still 20%", 12, 0.20},
		{"day 390 drops to 17.5%", 13, 0.175},
		{"day 720 still 17.5%", 24, 0.175},
		{"day 750 drops to 15%", 25, 0.15},
		{"long tenure stays 15%", 120, 0.15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, taxRateForMonth(tt.month))
		})
	}
}

func TestProjectInvestment_TaxTierAppliedToCumulativeProfit(t *testing.T) {
	// At month 7 (210 days) the rate switches from 22.5% to 20% and is
	// applied to the whole cumulative profit, not just the month's gain.
	res, err := ProjectInvestment(InvestmentInput{
		Initial:           10000,
		AnnualRatePercent: 12,
		TermMonths:        7,
	})
	require.NoError(t, err)

	m6, m7 := res.Monthly[5], res.Monthly[6]
	assert.InDelta(t, m6.GrossProfit*0.225, m6.TaxDue, 1e-9)
	assert.InDelta(t, m7.GrossProfit*0.20, m7.TaxDue, 1e-9)
}
