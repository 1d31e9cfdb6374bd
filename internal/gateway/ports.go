// Package gateway defines the ports to the hosted data backend and the row
// shapes it persists. Rows keep the remote representation (snake_case
// fields, decimal amounts as strings); normalization into core entities
// lives next to the row definitions.
package gateway

import (
	"context"
	"errors"
)

// ErrNotFound indicates the addressed row does not exist. Deletes never
// return it; the backend treats them as idempotent.
var ErrNotFound = errors.New("record not found")

// Ports for the remote collections. Implementations: postgres, memory.
type (
	Products interface {
		ListProducts(ctx context.Context, userID string) ([]ProductRow, error)
		InsertProduct(ctx context.Context, row ProductRow) error
		UpdateProduct(ctx context.Context, row ProductRow) error
		DeleteProduct(ctx context.Context, userID, id string) error
	}

	// Sales covers both the sale headers and their line-item rows. The
	// line items of a sale are fetched per parent and written together
	// with the header.
	Sales interface {
		ListSales(ctx context.Context, userID string) ([]SaleRow, error)
		ListSaleLineItems(ctx context.Context, saleID string) ([]SaleLineItemRow, error)
		InsertSale(ctx context.Context, row SaleRow, items []SaleLineItemRow) error
		UpdateSale(ctx context.Context, row SaleRow, items []SaleLineItemRow) error
		DeleteSale(ctx context.Context, userID, id string) error
	}

	Expenses interface {
		ListExpenses(ctx context.Context, userID string) ([]ExpenseRow, error)
		ListExpenseTags(ctx context.Context, expenseID string) ([]ExpenseTagRow, error)
		InsertExpense(ctx context.Context, row ExpenseRow, tags []ExpenseTagRow) error
		UpdateExpense(ctx context.Context, row ExpenseRow, tags []ExpenseTagRow) error
		DeleteExpense(ctx context.Context, userID, id string) error
	}

	// PaymentMethods manages the user's custom method tokens. Renames
	// cascade into referencing sale rows on the backend as well.
	PaymentMethods interface {
		ListPaymentMethods(ctx context.Context, userID string) ([]TokenRow, error)
		InsertPaymentMethod(ctx context.Context, row TokenRow) error
		RenamePaymentMethod(ctx context.Context, userID, oldName, newName string) error
		DeletePaymentMethod(ctx context.Context, userID, name string) error
	}

	// ExpenseTags manages the user's tag tokens. Renames and deletes
	// cascade into the expense_tags join rows.
	ExpenseTagTokens interface {
		ListExpenseTagTokens(ctx context.Context, userID string) ([]TokenRow, error)
		InsertExpenseTagToken(ctx context.Context, row TokenRow) error
		RenameExpenseTagToken(ctx context.Context, userID, oldName, newName string) error
		DeleteExpenseTagToken(ctx context.Context, userID, name string) error
	}

	// Sessions resolves an access token to an optional user id. An empty
	// id with a nil error means "no session".
	Sessions interface {
		LookupSession(ctx context.Context, token string) (userID string, err error)
	}
)

// Gateway is the full remote surface the synchronized store consumes.
type Gateway interface {
	Products
	Sales
	Expenses
	PaymentMethods
	ExpenseTagTokens
	Sessions
}
