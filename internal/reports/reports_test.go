package reports

import (
	"testing"
	"time"

	"caixa/internal/core"
)

func date(day, hour int) time.Time {
	return time.Date(2026, 4, day, hour, 0, 0, 0, time.UTC)
}

func fixtureState() core.AppState {
	state := core.NewAppState()
	state.Products = []core.Product{
		{ID: "p1", Name: "Coxinha", Price: core.Money{Cents: 500}},
		{ID: "p2", Name: "Refrigerante", Price: core.Money{Cents: 300}},
	}
	state.Sales = []core.Sale{
		{ID: "s1", Date: date(10, 9), Total: core.Money{Cents: 1300}, PaymentMethod: "cash",
			Items: []core.LineItem{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}}},
		{ID: "s2", Date: date(10, 15), Total: core.Money{Cents: 500}, PaymentMethod: "pix",
			Items: []core.LineItem{{ProductID: "p1", Quantity: 1}}},
		{ID: "s3", Date: date(2, 12), Total: core.Money{Cents: 300}, PaymentMethod: "cash",
			Items: []core.LineItem{{ProductID: "p2", Quantity: 1}}},
	}
	state.Expenses = []core.Expense{
		{ID: "e1", Description: "aluguel", Amount: core.Money{Cents: 100000},
			Category: core.CategoryFixed, Date: date(1, 8), Tags: []string{"rent"}},
		{ID: "e2", Description: "gelo", Amount: core.Money{Cents: 2000},
			Category: core.CategoryVariable, Date: date(10, 7)},
	}
	return state
}

func TestSummarizeSalesToday(t *testing.T) {
	state := fixtureState()
	now := date(10, 18)

	got := SummarizeSales(state, Today(now))
	if got.Total.Cents != 1800 {
		t.Errorf("expected 1800 cents today, got %d", got.Total.Cents)
	}
	if got.Count != 2 {
		t.Errorf("expected 2 sales today, got %d", got.Count)
	}
	if len(got.ByPaymentMethod) != 2 || got.ByPaymentMethod[0].Method != "cash" {
		t.Errorf("unexpected breakdown: %+v", got.ByPaymentMethod)
	}
}

func TestSummarizeEmptySnapshot(t *testing.T) {
	got := SummarizeSales(core.NewAppState(), Today(date(10, 0)))
	if got.Total.Cents != 0 || got.Count != 0 {
		t.Errorf("empty snapshot must yield zeros, got %+v", got)
	}
	if got.ByPaymentMethod == nil || len(got.ByPaymentMethod) != 0 {
		t.Errorf("breakdown must be an empty list, got %v", got.ByPaymentMethod)
	}
}

func TestExpensesByTagUsesUntaggedBucket(t *testing.T) {
	state := fixtureState()

	got := ExpensesByTag(state, MonthOf(date(10, 0)))
	if len(got) != 2 {
		t.Fatalf("expected 2 buckets, got %+v", got)
	}
	if got[0].Tag != "rent" || got[0].Total.Cents != 100000 {
		t.Errorf("unexpected first bucket: %+v", got[0])
	}
	if got[1].Tag != UntaggedBucket || got[1].Total.Cents != 2000 {
		t.Errorf("untagged expenses must land in %q: %+v", UntaggedBucket, got[1])
	}
}

func TestTopProductsRankedByQuantity(t *testing.T) {
	state := fixtureState()

	got := TopProducts(state, MonthOf(date(10, 0)), 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 products, got %+v", got)
	}
	if got[0].ProductID != "p1" || got[0].Quantity != 3 {
		t.Errorf("expected p1 ranked first with 3 units, got %+v", got[0])
	}
	if got[0].Total.Cents != 1500 {
		t.Errorf("expected p1 total 1500, got %d", got[0].Total.Cents)
	}
}

func TestTopProductsToleratesDeletedProduct(t *testing.T) {
	state := fixtureState()
	state.Products = state.Products[:1] // p2 deleted

	got := TopProducts(state, MonthOf(date(10, 0)), 10)
	var placeholder *ProductSales
	for i := range got {
		if got[i].Name == PlaceholderProduct {
			placeholder = &got[i]
		}
	}
	if placeholder == nil {
		t.Fatalf("expected a placeholder entry, got %+v", got)
	}
	if placeholder.Quantity != 2 || placeholder.Total.Cents != 0 {
		t.Errorf("placeholder must count units at zero value: %+v", placeholder)
	}
}

func TestDailySalesCoversWholeMonth(t *testing.T) {
	state := fixtureState()

	got := DailySales(state, MonthOf(date(10, 0)))
	if len(got) != 30 { // April
		t.Fatalf("expected 30 days, got %d", len(got))
	}
	if got[9].Total.Cents != 1800 {
		t.Errorf("expected day 10 total 1800, got %d", got[9].Total.Cents)
	}
	if got[1].Total.Cents != 300 {
		t.Errorf("expected day 2 total 300, got %d", got[1].Total.Cents)
	}
	if got[0].Total.Cents != 0 {
		t.Errorf("days without sales stay zero, got %d", got[0].Total.Cents)
	}
}

func TestDailySalesArbitraryWindow(t *testing.T) {
	state := fixtureState()

	got := DailySales(state, Period{Start: date(5, 0), End: date(14, 23)})
	if len(got) != 10 {
		t.Fatalf("expected 10 days, got %d", len(got))
	}
	if got[0].Day != 5 || got[9].Day != 14 {
		t.Errorf("day labels run %d..%d, want 5..14", got[0].Day, got[9].Day)
	}
	if got[5].Total.Cents != 1800 {
		t.Errorf("expected April 10 total 1800, got %d", got[5].Total.Cents)
	}
	if got[0].Total.Cents != 0 {
		t.Errorf("day 5 has no sales, got %d", got[0].Total.Cents)
	}
}

func TestGrowthPercent(t *testing.T) {
	tests := []struct {
		name     string
		prev     int64
		cur      int64
		expected float64
	}{
		{"both zero", 0, 0, 0},
		{"prior zero current nonzero", 0, 500, 100},
		{"doubled", 100, 200, 100},
		{"halved", 200, 100, -50},
		{"unchanged", 100, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GrowthPercent(tt.prev, tt.cur); got != tt.expected {
				t.Errorf("GrowthPercent(%d, %d) = %v, want %v", tt.prev, tt.cur, got, tt.expected)
			}
		})
	}
}

func TestRecentTransactionsNewestFirst(t *testing.T) {
	state := fixtureState()

	got := RecentTransactions(state, 5)
	if len(got) != 5 {
		t.Fatalf("expected 5 transactions, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Date.After(got[i-1].Date) {
			t.Errorf("transactions out of order at %d: %v after %v", i, got[i].Date, got[i-1].Date)
		}
	}
	if got[0].Kind != "sale" || got[0].Description != "Venda" {
		t.Errorf("expected newest to be the 15h sale, got %+v", got[0])
	}
}

func TestBuildDashboard(t *testing.T) {
	state := fixtureState()
	now := date(10, 20)

	d := BuildDashboard(state, now)
	if d.SalesToday.Total.Cents != 1800 {
		t.Errorf("sales today = %d, want 1800", d.SalesToday.Total.Cents)
	}
	if d.ProductCount != 2 {
		t.Errorf("product count = %d, want 2", d.ProductCount)
	}
	if d.ExpensesThisMonth.Total.Cents != 102000 {
		t.Errorf("month expenses = %d, want 102000", d.ExpensesThisMonth.Total.Cents)
	}
	if d.Profit.Cents != 2100-102000 {
		t.Errorf("profit = %d, want %d", d.Profit.Cents, 2100-102000)
	}
}

func TestBuildMonthlyReportGrowth(t *testing.T) {
	state := fixtureState()
	// One sale last month makes April's growth computable.
	state.Sales = append(state.Sales, core.Sale{
		ID: "s0", Date: time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC),
		Total: core.Money{Cents: 1050}, PaymentMethod: "cash",
	})

	r := BuildMonthlyReport(state, date(15, 12), 0)
	if r.Month != "2026-04" {
		t.Errorf("month = %q, want 2026-04", r.Month)
	}
	if r.Sales.Total.Cents != 2100 {
		t.Errorf("sales total = %d, want 2100", r.Sales.Total.Cents)
	}
	if r.SalesGrowth != 100 {
		t.Errorf("sales growth = %v, want 100 (1050 -> 2100)", r.SalesGrowth)
	}
	if r.ExpenseGrowth != 100 {
		t.Errorf("expense growth = %v, want 100 (zero prior month)", r.ExpenseGrowth)
	}
}

func TestPeriodPrevious(t *testing.T) {
	april := MonthOf(date(15, 0))
	march := april.Previous()
	if march.Start.Month() != time.March || march.Start.Day() != 1 {
		t.Errorf("previous month start = %v", march.Start)
	}
	if march.End.Month() != time.March || march.End.Day() != 31 {
		t.Errorf("previous month end = %v", march.End)
	}

	day := Today(date(10, 12))
	prev := day.Previous()
	if prev.Start.Day() != 9 || prev.End.Day() != 9 {
		t.Errorf("previous day window = %+v", prev)
	}
}
