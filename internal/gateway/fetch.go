package gateway

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"caixa/internal/core"
)

// FetchAppState pulls every collection for the user and normalizes it into
// a fresh snapshot, one fetch per collection running concurrently. Custom
// payment methods are appended after the protected defaults; the expense
// tag list is taken wholesale from the remote rows, so renames and removals
// of seeded tags survive a refetch. Nested rows (sale line items, expense
// tags) are fetched per parent and attached.
func FetchAppState(ctx context.Context, g Gateway, userID string) (core.AppState, error) {
	state := core.NewAppState()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		rows, err := g.ListProducts(ctx, userID)
		if err != nil {
			return fmt.Errorf("fetch products: %w", err)
		}
		products := make([]core.Product, 0, len(rows))
		for _, row := range rows {
			p, err := ProductFromRow(row)
			if err != nil {
				return err
			}
			products = append(products, p)
		}
		state.Products = products
		return nil
	})

	eg.Go(func() error {
		rows, err := g.ListSales(ctx, userID)
		if err != nil {
			return fmt.Errorf("fetch sales: %w", err)
		}
		sales := make([]core.Sale, 0, len(rows))
		for _, row := range rows {
			items, err := g.ListSaleLineItems(ctx, row.ID)
			if err != nil {
				return fmt.Errorf("fetch sale items for %s: %w", row.ID, err)
			}
			sale, err := SaleFromRow(row, items)
			if err != nil {
				return err
			}
			sales = append(sales, sale)
		}
		state.Sales = sales
		return nil
	})

	eg.Go(func() error {
		rows, err := g.ListExpenses(ctx, userID)
		if err != nil {
			return fmt.Errorf("fetch expenses: %w", err)
		}
		expenses := make([]core.Expense, 0, len(rows))
		for _, row := range rows {
			tags, err := g.ListExpenseTags(ctx, row.ID)
			if err != nil {
				return fmt.Errorf("fetch expense tags for %s: %w", row.ID, err)
			}
			exp, err := ExpenseFromRow(row, tags)
			if err != nil {
				return err
			}
			expenses = append(expenses, exp)
		}
		state.Expenses = expenses
		return nil
	})

	eg.Go(func() error {
		rows, err := g.ListPaymentMethods(ctx, userID)
		if err != nil {
			return fmt.Errorf("fetch payment methods: %w", err)
		}
		for _, name := range TokenNames(rows) {
			if !slices.Contains(state.PaymentMethods, name) {
				state.PaymentMethods = append(state.PaymentMethods, name)
			}
		}
		return nil
	})

	eg.Go(func() error {
		rows, err := g.ListExpenseTagTokens(ctx, userID)
		if err != nil {
			return fmt.Errorf("fetch expense tags: %w", err)
		}
		state.ExpenseTags = TokenNames(rows)
		return nil
	})

	if err := eg.Wait(); err != nil {
		return core.AppState{}, err
	}
	return state, nil
}
