package reports

import (
	"time"

	"caixa/internal/core"
)

// Dashboard is the at-a-glance view: today's sales, this month's expenses,
// all-time profit, and the latest transactions.
type Dashboard struct {
	SalesToday        SalesSummary   `json:"sales_today"`
	ProductCount      int            `json:"product_count"`
	ExpensesThisMonth ExpenseSummary `json:"expenses_this_month"`
	Profit            core.Money     `json:"profit"`
	Recent            []Transaction  `json:"recent"`
}

// BuildDashboard computes the dashboard figures for the given instant.
func BuildDashboard(state core.AppState, now time.Time) Dashboard {
	return Dashboard{
		SalesToday:        SummarizeSales(state, Today(now)),
		ProductCount:      len(state.Products),
		ExpensesThisMonth: SummarizeExpenses(state, MonthOf(now)),
		Profit:            AllTimeProfit(state),
		Recent:            RecentTransactions(state, 5),
	}
}

// MonthlyReport is the full report for one calendar month, with growth
// figures against the previous month.
type MonthlyReport struct {
	Month         string         `json:"month"` // YYYY-MM
	Sales         SalesSummary   `json:"sales"`
	Expenses      ExpenseSummary `json:"expenses"`
	Profit        core.Money     `json:"profit"`
	SalesGrowth   float64        `json:"sales_growth_pct"`
	ExpenseGrowth float64        `json:"expense_growth_pct"`
	TopProducts   []ProductSales `json:"top_products"`
	ByTag         []TagTotal     `json:"expenses_by_tag"`
	Daily         []DayTotal     `json:"daily_sales"`
}

// BuildMonthlyReport computes the report for the month offset months back
// from now (0 = current month).
func BuildMonthlyReport(state core.AppState, now time.Time, offset int) MonthlyReport {
	period := MonthOffset(now, offset)
	previous := period.Previous()

	sales := SummarizeSales(state, period)
	expenses := SummarizeExpenses(state, period)
	prevSales := SummarizeSales(state, previous)
	prevExpenses := SummarizeExpenses(state, previous)

	return MonthlyReport{
		Month:         period.Start.Format("2006-01"),
		Sales:         sales,
		Expenses:      expenses,
		Profit:        core.Money{Cents: sales.Total.Cents - expenses.Total.Cents},
		SalesGrowth:   GrowthPercent(prevSales.Total.Cents, sales.Total.Cents),
		ExpenseGrowth: GrowthPercent(prevExpenses.Total.Cents, expenses.Total.Cents),
		TopProducts:   TopProducts(state, period, 10),
		ByTag:         ExpensesByTag(state, period),
		Daily:         DailySales(state, period),
	}
}
