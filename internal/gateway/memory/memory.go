// Package memory provides an in-process gateway used in development and
// tests. It mimics the remote backend's row shapes and cascade behavior,
// including rename cascades over denormalized sale and expense rows.
package memory

import (
	"context"
	"slices"
	"sync"

	"caixa/internal/gateway"
)

type Store struct {
	mu sync.Mutex

	products  []gateway.ProductRow
	sales     []gateway.SaleRow
	saleItems []gateway.SaleLineItemRow
	expenses  []gateway.ExpenseRow
	expTags   []gateway.ExpenseTagRow
	methods   []gateway.TokenRow
	tagTokens []gateway.TokenRow

	// sessions maps bearer tokens to user IDs.
	sessions map[string]string
}

var _ gateway.Gateway = (*Store)(nil)

func New() *Store {
	return &Store{sessions: map[string]string{}}
}

// GrantSession registers a token so LookupSession resolves it to userID.
func (s *Store) GrantSession(token, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = userID
}

func (s *Store) LookupSession(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[token], nil
}

func (s *Store) ListProducts(_ context.Context, userID string) ([]gateway.ProductRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []gateway.ProductRow
	for _, row := range s.products {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *Store) InsertProduct(_ context.Context, row gateway.ProductRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, row)
	return nil
}

func (s *Store) UpdateProduct(_ context.Context, row gateway.ProductRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == row.ID && p.UserID == row.UserID {
			s.products[i] = row
			return nil
		}
	}
	return gateway.ErrNotFound
}

func (s *Store) DeleteProduct(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = slices.DeleteFunc(s.products, func(p gateway.ProductRow) bool {
		return p.ID == id && p.UserID == userID
	})
	return nil
}

func (s *Store) ListSales(_ context.Context, userID string) ([]gateway.SaleRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []gateway.SaleRow
	for _, row := range s.sales {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *Store) ListSaleLineItems(_ context.Context, saleID string) ([]gateway.SaleLineItemRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []gateway.SaleLineItemRow
	for _, item := range s.saleItems {
		if item.SaleID == saleID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *Store) InsertSale(_ context.Context, row gateway.SaleRow, items []gateway.SaleLineItemRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = append(s.sales, row)
	s.saleItems = append(s.saleItems, items...)
	return nil
}

func (s *Store) UpdateSale(_ context.Context, row gateway.SaleRow, items []gateway.SaleLineItemRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sale := range s.sales {
		if sale.ID == row.ID && sale.UserID == row.UserID {
			s.sales[i] = row
			s.saleItems = slices.DeleteFunc(s.saleItems, func(it gateway.SaleLineItemRow) bool {
				return it.SaleID == row.ID
			})
			s.saleItems = append(s.saleItems, items...)
			return nil
		}
	}
	return gateway.ErrNotFound
}

func (s *Store) DeleteSale(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = slices.DeleteFunc(s.sales, func(sale gateway.SaleRow) bool {
		return sale.ID == id && sale.UserID == userID
	})
	s.saleItems = slices.DeleteFunc(s.saleItems, func(it gateway.SaleLineItemRow) bool {
		return it.SaleID == id
	})
	return nil
}

func (s *Store) ListExpenses(_ context.Context, userID string) ([]gateway.ExpenseRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []gateway.ExpenseRow
	for _, row := range s.expenses {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *Store) ListExpenseTags(_ context.Context, expenseID string) ([]gateway.ExpenseTagRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []gateway.ExpenseTagRow
	for _, tag := range s.expTags {
		if tag.ExpenseID == expenseID {
			out = append(out, tag)
		}
	}
	return out, nil
}

func (s *Store) InsertExpense(_ context.Context, row gateway.ExpenseRow, tags []gateway.ExpenseTagRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, row)
	s.expTags = append(s.expTags, tags...)
	return nil
}

func (s *Store) UpdateExpense(_ context.Context, row gateway.ExpenseRow, tags []gateway.ExpenseTagRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, exp := range s.expenses {
		if exp.ID == row.ID && exp.UserID == row.UserID {
			s.expenses[i] = row
			s.expTags = slices.DeleteFunc(s.expTags, func(t gateway.ExpenseTagRow) bool {
				return t.ExpenseID == row.ID
			})
			s.expTags = append(s.expTags, tags...)
			return nil
		}
	}
	return gateway.ErrNotFound
}

func (s *Store) DeleteExpense(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = slices.DeleteFunc(s.expenses, func(exp gateway.ExpenseRow) bool {
		return exp.ID == id && exp.UserID == userID
	})
	s.expTags = slices.DeleteFunc(s.expTags, func(t gateway.ExpenseTagRow) bool {
		return t.ExpenseID == id
	})
	return nil
}

func (s *Store) ListPaymentMethods(_ context.Context, userID string) ([]gateway.TokenRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterTokens(s.methods, userID), nil
}

func (s *Store) InsertPaymentMethod(_ context.Context, row gateway.TokenRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods = append(s.methods, row)
	return nil
}

// RenamePaymentMethod renames the token and rewrites the method recorded on
// the user's sales, mirroring the remote backend's cascade. Seeded defaults
// have no remote row; renaming one registers the new name instead.
func (s *Store) RenamePaymentMethod(_ context.Context, userID, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !renameToken(s.methods, userID, oldName, newName) {
		s.methods = append(s.methods, gateway.TokenRow{ID: newName, UserID: userID, Name: newName})
	}
	for i, sale := range s.sales {
		if sale.UserID == userID && sale.PaymentMethod == oldName {
			s.sales[i].PaymentMethod = newName
		}
	}
	return nil
}

func (s *Store) DeletePaymentMethod(_ context.Context, userID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.methods = deleteToken(s.methods, userID, name)
	return nil
}

func (s *Store) ListExpenseTagTokens(_ context.Context, userID string) ([]gateway.TokenRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterTokens(s.tagTokens, userID), nil
}

func (s *Store) InsertExpenseTagToken(_ context.Context, row gateway.TokenRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tagTokens = append(s.tagTokens, row)
	return nil
}

// RenameExpenseTagToken renames the token and rewrites it on every tag row
// belonging to the user's expenses.
func (s *Store) RenameExpenseTagToken(_ context.Context, userID, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !renameToken(s.tagTokens, userID, oldName, newName) {
		s.tagTokens = append(s.tagTokens, gateway.TokenRow{ID: newName, UserID: userID, Name: newName})
	}
	owned := map[string]bool{}
	for _, exp := range s.expenses {
		if exp.UserID == userID {
			owned[exp.ID] = true
		}
	}
	for i, tag := range s.expTags {
		if owned[tag.ExpenseID] && tag.Tag == oldName {
			s.expTags[i].Tag = newName
		}
	}
	return nil
}

func (s *Store) DeleteExpenseTagToken(_ context.Context, userID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tagTokens = deleteToken(s.tagTokens, userID, name)
	owned := map[string]bool{}
	for _, exp := range s.expenses {
		if exp.UserID == userID {
			owned[exp.ID] = true
		}
	}
	s.expTags = slices.DeleteFunc(s.expTags, func(t gateway.ExpenseTagRow) bool {
		return owned[t.ExpenseID] && t.Tag == name
	})
	return nil
}

func filterTokens(rows []gateway.TokenRow, userID string) []gateway.TokenRow {
	var out []gateway.TokenRow
	for _, row := range rows {
		if row.UserID == userID {
			out = append(out, row)
		}
	}
	return out
}

func renameToken(rows []gateway.TokenRow, userID, oldName, newName string) bool {
	for i, row := range rows {
		if row.UserID == userID && row.Name == oldName {
			rows[i].Name = newName
			return true
		}
	}
	return false
}

func deleteToken(rows []gateway.TokenRow, userID, name string) []gateway.TokenRow {
	return slices.DeleteFunc(rows, func(row gateway.TokenRow) bool {
		return row.UserID == userID && row.Name == name
	})
}
