package gateway

import (
	"testing"
	"time"

	"caixa/internal/core"
)

func TestProductFromRow(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	row := ProductRow{
		ID:        "p1",
		Name:      "Coxinha",
		Price:     "4.50",
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    "u1",
	}

	p, err := ProductFromRow(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Price.Cents != 450 {
		t.Errorf("expected 450 cents, got %d", p.Price.Cents)
	}
	if p.ID != "p1" || p.UserID != "u1" {
		t.Errorf("identity fields not carried over: %+v", p)
	}

	back := ProductToRow(p)
	if back.Price != "4.50" {
		t.Errorf("expected price formatted back to 4.50, got %q", back.Price)
	}
}

func TestProductFromRowBadPrice(t *testing.T) {
	_, err := ProductFromRow(ProductRow{ID: "p1", Price: "abc"})
	if err == nil {
		t.Fatal("expected error for non-numeric price")
	}
}

func TestSaleFromRowAttachesItems(t *testing.T) {
	row := SaleRow{ID: "s1", Total: "12.00", PaymentMethod: "pix", UserID: "u1"}
	items := []SaleLineItemRow{
		{SaleID: "s1", ProductID: "p1", Quantity: 2},
		{SaleID: "s1", ProductID: "p2", Quantity: 1},
	}

	sale, err := SaleFromRow(row, items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sale.Total.Cents != 1200 {
		t.Errorf("expected total 1200 cents, got %d", sale.Total.Cents)
	}
	if len(sale.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(sale.Items))
	}
	if sale.Items[0].ProductID != "p1" || sale.Items[0].Quantity != 2 {
		t.Errorf("first item mismatch: %+v", sale.Items[0])
	}
}

func TestSaleToRowsSetsSaleID(t *testing.T) {
	sale := core.Sale{
		ID:            "s7",
		Total:         core.Money{Cents: 300},
		PaymentMethod: "cash",
		Items:         []core.LineItem{{ProductID: "p1", Quantity: 3}},
	}

	row, items := SaleToRows(sale)
	if row.Total != "3.00" {
		t.Errorf("expected total 3.00, got %q", row.Total)
	}
	if len(items) != 1 || items[0].SaleID != "s7" {
		t.Errorf("line item rows must carry the sale ID: %+v", items)
	}
}

func TestExpenseRoundTrip(t *testing.T) {
	exp := core.Expense{
		ID:            "e1",
		Description:   "aluguel",
		Amount:        core.Money{Cents: 150000},
		Category:      core.CategoryFixed,
		IsRecurring:   true,
		RecurrenceDay: 5,
		Tags:          []string{"rent"},
		UserID:        "u1",
	}

	row, tags := ExpenseToRows(exp)
	if row.Amount != "1500.00" {
		t.Errorf("expected amount 1500.00, got %q", row.Amount)
	}
	if len(tags) != 1 || tags[0].ExpenseID != "e1" || tags[0].Tag != "rent" {
		t.Errorf("tag rows mismatch: %+v", tags)
	}

	back, err := ExpenseFromRow(row, tags)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.Amount.Cents != exp.Amount.Cents {
		t.Errorf("amount changed through round trip: %d", back.Amount.Cents)
	}
	if back.RecurrenceDay != 5 || !back.IsRecurring {
		t.Errorf("recurrence fields lost: %+v", back)
	}
	if len(back.Tags) != 1 || back.Tags[0] != "rent" {
		t.Errorf("tags lost: %v", back.Tags)
	}
}

func TestExpenseFromRowRejectsZeroAmount(t *testing.T) {
	_, err := ExpenseFromRow(ExpenseRow{ID: "e1", Amount: "0"}, nil)
	if err == nil {
		t.Fatal("expected error for zero amount")
	}
}

func TestTokenNames(t *testing.T) {
	rows := []TokenRow{
		{ID: "t1", Name: "boleto"},
		{ID: "t2", Name: "fiado"},
	}
	names := TokenNames(rows)
	if len(names) != 2 || names[0] != "boleto" || names[1] != "fiado" {
		t.Errorf("unexpected names: %v", names)
	}
}
