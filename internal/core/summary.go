package core

import "github.com/shopspring/decimal"

// CategoryAmount is an amount aggregated by category label.
type CategoryAmount struct {
	Category string
	Amount   decimal.Decimal
}

// DashboardSummary is the per-user overview shown on the dashboard:
// ledger totals, current balance, goal progress and the expense
// breakdown by category.
type DashboardSummary struct {
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Balance       decimal.Decimal
	Goals         []Goal
	ByCategory    []CategoryAmount
}
