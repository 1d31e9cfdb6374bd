package core

import (
	"errors"
	"testing"
	"time"
)

func TestProductValidate(t *testing.T) {
	valid := Product{ID: "p1", Name: "Coxinha", Price: Money{Cents: 500}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid product rejected: %v", err)
	}

	if err := (Product{Name: "  "}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Errorf("blank name: got %v, want ErrEmptyName", err)
	}
	if err := (Product{Name: "x", Price: Money{Cents: -1}}).Validate(); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("negative price: got %v, want ErrInvalidPrice", err)
	}
	if err := (Product{Name: "x", Price: Money{Cents: 0}}).Validate(); err != nil {
		t.Errorf("zero price should be allowed: %v", err)
	}
}

func TestLineItemValidate(t *testing.T) {
	if err := (LineItem{ProductID: "p1", Quantity: 1}).Validate(); err != nil {
		t.Fatalf("valid item rejected: %v", err)
	}
	if err := (LineItem{ProductID: "", Quantity: 1}).Validate(); !errors.Is(err, ErrUnknownProduct) {
		t.Errorf("missing product id: got %v", err)
	}
	if err := (LineItem{ProductID: "p1", Quantity: 0}).Validate(); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("zero quantity: got %v", err)
	}
}

func TestExpenseValidate(t *testing.T) {
	valid := Expense{Description: "aluguel", Amount: Money{Cents: 120000}, Category: CategoryFixed}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid expense rejected: %v", err)
	}

	cases := []struct {
		name string
		e    Expense
		want error
	}{
		{"empty description", Expense{Amount: Money{Cents: 100}, Category: CategoryVariable}, ErrEmptyDescription},
		{"zero amount", Expense{Description: "x", Category: CategoryVariable}, ErrInvalidAmount},
		{"bad category", Expense{Description: "x", Amount: Money{Cents: 100}, Category: "weekly"}, ErrInvalidCategory},
		{"recurring day out of range", Expense{Description: "x", Amount: Money{Cents: 100}, Category: CategoryFixed, IsRecurring: true, RecurrenceDay: 32}, ErrInvalidRecurrenceDay},
	}
	for _, tc := range cases {
		if err := tc.e.Validate(); !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}

	// RecurrenceDay only matters for fixed recurring expenses.
	e := Expense{Description: "x", Amount: Money{Cents: 100}, Category: CategoryVariable, IsRecurring: true, RecurrenceDay: 0}
	if err := e.Validate(); err != nil {
		t.Errorf("recurrence day should be ignored for variable expenses: %v", err)
	}
}

func TestSaleTotal(t *testing.T) {
	state := AppState{
		Products: []Product{
			{ID: "p1", Name: "Coxinha", Price: Money{Cents: 1000}},
			{ID: "p2", Name: "Refrigerante", Price: Money{Cents: 500}},
		},
	}
	total := state.SaleTotal([]LineItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
	})
	if total.Cents != 2500 {
		t.Fatalf("expected 2500 cents, got %d", total.Cents)
	}

	// A deleted product counts as zero rather than failing.
	total = state.SaleTotal([]LineItem{{ProductID: "gone", Quantity: 3}, {ProductID: "p2", Quantity: 1}})
	if total.Cents != 500 {
		t.Fatalf("expected 500 cents with unknown product, got %d", total.Cents)
	}
}

func TestIsDefaultPaymentMethod(t *testing.T) {
	for _, m := range []string{"cash", "credit", "debit", "pix", "other"} {
		if !IsDefaultPaymentMethod(m) {
			t.Errorf("%s should be a protected default", m)
		}
	}
	if IsDefaultPaymentMethod("Cash") {
		t.Error("matching must be case-sensitive")
	}
	if IsDefaultPaymentMethod("voucher") {
		t.Error("voucher is not a default")
	}
}

func TestAppStateClone(t *testing.T) {
	state := NewAppState()
	state.Sales = append(state.Sales, Sale{
		ID:    "s1",
		Items: []LineItem{{ProductID: "p1", Quantity: 1}},
		Date:  time.Now(),
	})
	state.Expenses = append(state.Expenses, Expense{ID: "e1", Tags: []string{"rent"}})

	clone := state.Clone()
	clone.Sales[0].Items[0].Quantity = 99
	clone.Expenses[0].Tags[0] = "changed"
	clone.PaymentMethods[0] = "changed"

	if state.Sales[0].Items[0].Quantity != 1 {
		t.Error("clone shares sale line items with the original")
	}
	if state.Expenses[0].Tags[0] != "rent" {
		t.Error("clone shares expense tags with the original")
	}
	if state.PaymentMethods[0] != "cash" {
		t.Error("clone shares payment methods with the original")
	}
}
