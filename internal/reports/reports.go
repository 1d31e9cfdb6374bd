package reports

import (
	"sort"
	"time"

	"caixa/internal/core"
)

// PlaceholderProduct names line items whose product was deleted.
const PlaceholderProduct = "(produto removido)"

// UntaggedBucket groups expenses that carry no tags.
const UntaggedBucket = "sem tag"

type (
	MethodTotal struct {
		Method string     `json:"method"`
		Total  core.Money `json:"total"`
		Count  int        `json:"count"`
	}

	SalesSummary struct {
		Total           core.Money    `json:"total"`
		Count           int           `json:"count"`
		ByPaymentMethod []MethodTotal `json:"by_payment_method"`
	}

	ExpenseSummary struct {
		Total core.Money `json:"total"`
		Count int        `json:"count"`
	}

	TagTotal struct {
		Tag   string     `json:"tag"`
		Total core.Money `json:"total"`
	}

	ProductSales struct {
		ProductID string     `json:"product_id"`
		Name      string     `json:"name"`
		Quantity  int        `json:"quantity"`
		Total     core.Money `json:"total"`
	}

	DayTotal struct {
		Day   int        `json:"day"`
		Total core.Money `json:"total"`
	}

	Transaction struct {
		ID          string     `json:"id"`
		Kind        string     `json:"kind"` // "sale" or "expense"
		Description string     `json:"description"`
		Amount      core.Money `json:"amount"`
		Date        time.Time  `json:"date"`
	}
)

// SummarizeSales totals the sales inside the window, broken down by payment
// method with the largest totals first.
func SummarizeSales(state core.AppState, p Period) SalesSummary {
	summary := SalesSummary{ByPaymentMethod: []MethodTotal{}}
	byMethod := map[string]*MethodTotal{}
	for _, sale := range state.Sales {
		if !p.Contains(sale.Date) {
			continue
		}
		summary.Total.Cents += sale.Total.Cents
		summary.Count++
		mt, ok := byMethod[sale.PaymentMethod]
		if !ok {
			mt = &MethodTotal{Method: sale.PaymentMethod}
			byMethod[sale.PaymentMethod] = mt
		}
		mt.Total.Cents += sale.Total.Cents
		mt.Count++
	}
	for _, mt := range byMethod {
		summary.ByPaymentMethod = append(summary.ByPaymentMethod, *mt)
	}
	sort.Slice(summary.ByPaymentMethod, func(i, j int) bool {
		a, b := summary.ByPaymentMethod[i], summary.ByPaymentMethod[j]
		if a.Total.Cents != b.Total.Cents {
			return a.Total.Cents > b.Total.Cents
		}
		return a.Method < b.Method
	})
	return summary
}

// SummarizeExpenses totals the expenses inside the window.
func SummarizeExpenses(state core.AppState, p Period) ExpenseSummary {
	var summary ExpenseSummary
	for _, exp := range state.Expenses {
		if !p.Contains(exp.Date) {
			continue
		}
		summary.Total.Cents += exp.Amount.Cents
		summary.Count++
	}
	return summary
}

// ExpensesByTag groups window expenses by tag, largest totals first. An
// expense with several tags counts fully toward each; untagged expenses
// fall into the "sem tag" bucket.
func ExpensesByTag(state core.AppState, p Period) []TagTotal {
	totals := map[string]int64{}
	for _, exp := range state.Expenses {
		if !p.Contains(exp.Date) {
			continue
		}
		if len(exp.Tags) == 0 {
			totals[UntaggedBucket] += exp.Amount.Cents
			continue
		}
		for _, tag := range exp.Tags {
			totals[tag] += exp.Amount.Cents
		}
	}
	out := make([]TagTotal, 0, len(totals))
	for tag, cents := range totals {
		out = append(out, TagTotal{Tag: tag, Total: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].Tag < out[j].Tag
	})
	return out
}

// Profit is window sales minus window expenses.
func Profit(state core.AppState, p Period) core.Money {
	sales := SummarizeSales(state, p)
	expenses := SummarizeExpenses(state, p)
	return core.Money{Cents: sales.Total.Cents - expenses.Total.Cents}
}

// AllTimeProfit is total sales minus total expenses over the entire
// snapshot, the figure the dashboard shows "desde o início".
func AllTimeProfit(state core.AppState) core.Money {
	var cents int64
	for _, sale := range state.Sales {
		cents += sale.Total.Cents
	}
	for _, exp := range state.Expenses {
		cents -= exp.Amount.Cents
	}
	return core.Money{Cents: cents}
}

// TopProducts ranks window sales by units sold, most first. Line items whose
// product was deleted are grouped under a placeholder name with a zero
// amount, since no current price exists to value them.
func TopProducts(state core.AppState, p Period, limit int) []ProductSales {
	byProduct := map[string]*ProductSales{}
	for _, sale := range state.Sales {
		if !p.Contains(sale.Date) {
			continue
		}
		for _, item := range sale.Items {
			product, ok := state.ProductByID(item.ProductID)
			key, name := item.ProductID, product.Name
			if !ok {
				key, name = PlaceholderProduct, PlaceholderProduct
			}
			ps, found := byProduct[key]
			if !found {
				ps = &ProductSales{ProductID: key, Name: name}
				byProduct[key] = ps
			}
			ps.Quantity += item.Quantity
			if ok {
				ps.Total.Cents += product.Price.Cents * int64(item.Quantity)
			}
		}
	}
	out := make([]ProductSales, 0, len(byProduct))
	for _, ps := range byProduct {
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DailySales buckets window sales per calendar day, one entry per day of
// the window, zeros included. Each entry carries its day of month.
func DailySales(state core.AppState, p Period) []DayTotal {
	days := p.Days()
	out := make([]DayTotal, days)
	for i := range out {
		out[i].Day = p.Start.AddDate(0, 0, i).Day()
	}
	for _, sale := range state.Sales {
		if !p.Contains(sale.Date) {
			continue
		}
		i := dayIndex(p.Start, sale.Date)
		if i >= 0 && i < days {
			out[i].Total.Cents += sale.Total.Cents
		}
	}
	return out
}

// dayIndex counts whole calendar days from start's day to t's day.
func dayIndex(start, t time.Time) int {
	sy, sm, sd := start.Date()
	ty, tm, td := t.Date()
	s := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	u := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(u.Sub(s).Hours() / 24)
}

// GrowthPercent expresses current against previous as a signed percentage.
// Both zero means 0%; a zero previous with a non-zero current means 100%.
func GrowthPercent(previous, current int64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return float64(current-previous) / float64(previous) * 100
}

// RecentTransactions interleaves sales and expenses, newest first. Sales
// carry the fixed description "Venda".
func RecentTransactions(state core.AppState, limit int) []Transaction {
	out := make([]Transaction, 0, len(state.Sales)+len(state.Expenses))
	for _, sale := range state.Sales {
		out = append(out, Transaction{
			ID:          sale.ID,
			Kind:        "sale",
			Description: "Venda",
			Amount:      sale.Total,
			Date:        sale.Date,
		})
	}
	for _, exp := range state.Expenses {
		out = append(out, Transaction{
			ID:          exp.ID,
			Kind:        "expense",
			Description: exp.Description,
			Amount:      exp.Amount,
			Date:        exp.Date,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
