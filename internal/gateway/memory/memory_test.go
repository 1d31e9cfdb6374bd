package memory

import (
	"context"
	"testing"

	"caixa/internal/gateway"
)

func TestRenamePaymentMethodCascadesToSales(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.InsertPaymentMethod(ctx, gateway.TokenRow{ID: "t1", UserID: "u1", Name: "boleto"}); err != nil {
		t.Fatalf("insert method: %v", err)
	}
	if err := s.InsertSale(ctx, gateway.SaleRow{ID: "s1", Total: "1.00", PaymentMethod: "boleto", UserID: "u1"}, nil); err != nil {
		t.Fatalf("insert sale: %v", err)
	}
	if err := s.InsertSale(ctx, gateway.SaleRow{ID: "s2", Total: "1.00", PaymentMethod: "boleto", UserID: "u2"}, nil); err != nil {
		t.Fatalf("insert sale: %v", err)
	}

	if err := s.RenamePaymentMethod(ctx, "u1", "boleto", "fiado"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	sales, _ := s.ListSales(ctx, "u1")
	if sales[0].PaymentMethod != "fiado" {
		t.Errorf("expected u1 sale renamed, got %q", sales[0].PaymentMethod)
	}
	other, _ := s.ListSales(ctx, "u2")
	if other[0].PaymentMethod != "boleto" {
		t.Errorf("rename must not leak across users, got %q", other[0].PaymentMethod)
	}
}

func TestRenameWithoutRemoteRowRegistersNewName(t *testing.T) {
	// Seeded defaults exist locally without a remote row; renaming one
	// must register the new name rather than fail.
	s := New()
	if err := s.RenamePaymentMethod(context.Background(), "u1", "pix", "px"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	rows, _ := s.ListPaymentMethods(context.Background(), "u1")
	if len(rows) != 1 || rows[0].Name != "px" {
		t.Errorf("expected new name registered, got %+v", rows)
	}
}

func TestDeleteExpenseTagTokenCascades(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.InsertExpenseTagToken(ctx, gateway.TokenRow{ID: "t1", UserID: "u1", Name: "food"}); err != nil {
		t.Fatalf("insert token: %v", err)
	}
	err := s.InsertExpense(ctx,
		gateway.ExpenseRow{ID: "e1", Description: "lanche", Amount: "5.00", Category: "variable", UserID: "u1"},
		[]gateway.ExpenseTagRow{{ExpenseID: "e1", Tag: "food"}, {ExpenseID: "e1", Tag: "other"}},
	)
	if err != nil {
		t.Fatalf("insert expense: %v", err)
	}

	if err := s.DeleteExpenseTagToken(ctx, "u1", "food"); err != nil {
		t.Fatalf("delete token: %v", err)
	}

	tags, _ := s.ListExpenseTags(ctx, "e1")
	if len(tags) != 1 || tags[0].Tag != "other" {
		t.Errorf("expected only 'other' to survive, got %+v", tags)
	}
}

func TestDeleteSaleRemovesLineItems(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.InsertSale(ctx,
		gateway.SaleRow{ID: "s1", Total: "2.00", PaymentMethod: "cash", UserID: "u1"},
		[]gateway.SaleLineItemRow{{SaleID: "s1", ProductID: "p1", Quantity: 2}},
	)
	if err != nil {
		t.Fatalf("insert sale: %v", err)
	}

	if err := s.DeleteSale(ctx, "u1", "s1"); err != nil {
		t.Fatalf("delete sale: %v", err)
	}

	items, _ := s.ListSaleLineItems(ctx, "s1")
	if len(items) != 0 {
		t.Errorf("expected line items gone, got %+v", items)
	}
	// Deleting again is a no-op.
	if err := s.DeleteSale(ctx, "u1", "s1"); err != nil {
		t.Errorf("repeat delete should be idempotent, got %v", err)
	}
}

func TestLookupSession(t *testing.T) {
	s := New()
	s.GrantSession("tok", "u1")

	userID, err := s.LookupSession(context.Background(), "tok")
	if err != nil || userID != "u1" {
		t.Fatalf("expected u1, got %q err=%v", userID, err)
	}
	userID, err = s.LookupSession(context.Background(), "unknown")
	if err != nil || userID != "" {
		t.Fatalf("expected empty user for unknown token, got %q err=%v", userID, err)
	}
}
