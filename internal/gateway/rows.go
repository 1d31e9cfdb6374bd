package gateway

import (
	"fmt"
	"time"

	"caixa/internal/core"
)

// Row shapes as the backend persists them. Amounts travel as decimal
// strings; the normalization functions below coerce them into cents.
type (
	ProductRow struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		Description string    `json:"description"`
		Price       string    `json:"price"`
		CreatedAt   time.Time `json:"created_at"`
		UpdatedAt   time.Time `json:"updated_at"`
		UserID      string    `json:"user_id"`
	}

	SaleRow struct {
		ID            string    `json:"id"`
		Total         string    `json:"total"`
		PaymentMethod string    `json:"payment_method"`
		Date          time.Time `json:"date"`
		UserID        string    `json:"user_id"`
	}

	SaleLineItemRow struct {
		SaleID    string `json:"sale_id"`
		ProductID string `json:"product_id"`
		Quantity  int64  `json:"quantity"`
	}

	ExpenseRow struct {
		ID            string    `json:"id"`
		Description   string    `json:"description"`
		Amount        string    `json:"amount"`
		Category      string    `json:"category"`
		Date          time.Time `json:"date"`
		IsRecurring   bool      `json:"is_recurring"`
		RecurrenceDay int64     `json:"recurrence_day"`
		UserID        string    `json:"user_id"`
	}

	ExpenseTagRow struct {
		ExpenseID string `json:"expense_id"`
		Tag       string `json:"tag"`
	}

	// TokenRow backs both user_payment_methods and user_expense_tags.
	TokenRow struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
		Name   string `json:"name"`
	}
)

// ProductFromRow normalizes a persisted product row into the entity shape.
func ProductFromRow(row ProductRow) (core.Product, error) {
	cents, err := core.ParsePriceToCents(row.Price)
	if err != nil {
		return core.Product{}, fmt.Errorf("product %s: price %q: %w", row.ID, row.Price, err)
	}
	return core.Product{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Price:       core.Money{Cents: cents},
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		UserID:      row.UserID,
	}, nil
}

// ProductToRow is the inverse mapping used on writes.
func ProductToRow(p core.Product) ProductRow {
	return ProductRow{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       core.FormatCents(p.Price.Cents),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		UserID:      p.UserID,
	}
}

// SaleFromRow normalizes a sale header plus its per-parent line-item rows.
func SaleFromRow(row SaleRow, items []SaleLineItemRow) (core.Sale, error) {
	cents, err := core.ParsePriceToCents(row.Total)
	if err != nil {
		return core.Sale{}, fmt.Errorf("sale %s: total %q: %w", row.ID, row.Total, err)
	}
	sale := core.Sale{
		ID:            row.ID,
		Total:         core.Money{Cents: cents},
		PaymentMethod: row.PaymentMethod,
		Date:          row.Date,
		UserID:        row.UserID,
		Items:         make([]core.LineItem, 0, len(items)),
	}
	for _, item := range items {
		sale.Items = append(sale.Items, core.LineItem{
			ProductID: item.ProductID,
			Quantity:  int(item.Quantity),
		})
	}
	return sale, nil
}

// SaleToRows splits a sale into its header and line-item rows.
func SaleToRows(s core.Sale) (SaleRow, []SaleLineItemRow) {
	row := SaleRow{
		ID:            s.ID,
		Total:         core.FormatCents(s.Total.Cents),
		PaymentMethod: s.PaymentMethod,
		Date:          s.Date,
		UserID:        s.UserID,
	}
	items := make([]SaleLineItemRow, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, SaleLineItemRow{
			SaleID:    s.ID,
			ProductID: item.ProductID,
			Quantity:  int64(item.Quantity),
		})
	}
	return row, items
}

// ExpenseFromRow normalizes an expense row and its per-parent tag rows.
func ExpenseFromRow(row ExpenseRow, tags []ExpenseTagRow) (core.Expense, error) {
	cents, err := core.ParseDecimalToCents(row.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: amount %q: %w", row.ID, row.Amount, err)
	}
	exp := core.Expense{
		ID:            row.ID,
		Description:   row.Description,
		Amount:        core.Money{Cents: cents},
		Category:      core.ExpenseCategory(row.Category),
		Date:          row.Date,
		IsRecurring:   row.IsRecurring,
		RecurrenceDay: int(row.RecurrenceDay),
		UserID:        row.UserID,
		Tags:          make([]string, 0, len(tags)),
	}
	for _, tag := range tags {
		exp.Tags = append(exp.Tags, tag.Tag)
	}
	return exp, nil
}

// ExpenseToRows splits an expense into its row and tag join rows.
func ExpenseToRows(e core.Expense) (ExpenseRow, []ExpenseTagRow) {
	row := ExpenseRow{
		ID:            e.ID,
		Description:   e.Description,
		Amount:        core.FormatCents(e.Amount.Cents),
		Category:      string(e.Category),
		Date:          e.Date,
		IsRecurring:   e.IsRecurring,
		RecurrenceDay: int64(e.RecurrenceDay),
		UserID:        e.UserID,
	}
	tags := make([]ExpenseTagRow, 0, len(e.Tags))
	for _, tag := range e.Tags {
		tags = append(tags, ExpenseTagRow{ExpenseID: e.ID, Tag: tag})
	}
	return row, tags
}

// TokenNames extracts the name column from token rows, preserving order.
func TokenNames(rows []TokenRow) []string {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	return names
}
