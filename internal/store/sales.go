package store

import (
	"context"
	"fmt"
	"slices"
	"time"

	"caixa/internal/amqp"
	"caixa/internal/core"
	"caixa/internal/gateway"
)

// SalePatch carries the fields an edit may replace. Replacing Items also
// recomputes the total from current product prices.
type SalePatch struct {
	Items         *[]core.LineItem
	PaymentMethod *string
	Date          *time.Time
}

// AddSale records a sale dated now. The total is computed from current
// product prices; every line item must reference a known product.
func (s *Store) AddSale(ctx context.Context, items []core.LineItem, paymentMethod string) (core.Sale, error) {
	return s.addSale(ctx, items, paymentMethod, s.now())
}

// AddRetroactiveSale records a sale at an explicit past date. The total is
// still computed from current prices, not historical ones.
func (s *Store) AddRetroactiveSale(ctx context.Context, items []core.LineItem, paymentMethod string, date time.Time) (core.Sale, error) {
	return s.addSale(ctx, items, paymentMethod, date)
}

func (s *Store) addSale(ctx context.Context, items []core.LineItem, paymentMethod string, date time.Time) (core.Sale, error) {
	userID, err := s.user(ctx)
	if err != nil {
		return core.Sale{}, err
	}

	s.mu.RLock()
	total, err := s.validatedTotal(items)
	s.mu.RUnlock()
	if err != nil {
		return core.Sale{}, s.fail(ctx, "itens da venda inválidos", fmt.Errorf("%w: %w", ErrValidation, err))
	}

	sale := core.Sale{
		ID:            s.newID(),
		Items:         slices.Clone(items),
		Total:         total,
		PaymentMethod: paymentMethod,
		Date:          date,
		UserID:        userID,
	}

	row, itemRows := gateway.SaleToRows(sale)
	if err := s.gw.InsertSale(ctx, row, itemRows); err != nil {
		return core.Sale{}, s.fail(ctx, "não foi possível registrar a venda", err)
	}

	s.apply(ctx, userID, amqp.NewChangeEvent("sales", amqp.OpCreate, sale.ID, userID), func(st *core.AppState) {
		st.Sales = append(st.Sales, sale)
	})
	return sale, nil
}

// EditSale replaces the patched fields on the matching sale. When items are
// replaced the total is recomputed against current prices.
func (s *Store) EditSale(ctx context.Context, id string, patch SalePatch) (Result, error) {
	userID, err := s.user(ctx)
	if err != nil {
		return Result{}, err
	}

	s.mu.RLock()
	idx := slices.IndexFunc(s.state.Sales, func(sale core.Sale) bool { return sale.ID == id })
	var updated core.Sale
	if idx >= 0 {
		updated = s.state.Sales[idx]
		updated.Items = slices.Clone(updated.Items)
	}
	var totalErr error
	if idx >= 0 && patch.Items != nil {
		updated.Items = slices.Clone(*patch.Items)
		updated.Total, totalErr = s.validatedTotal(updated.Items)
	}
	s.mu.RUnlock()

	if idx < 0 {
		return noMatch(), nil
	}
	if totalErr != nil {
		return Result{}, s.fail(ctx, "itens da venda inválidos", fmt.Errorf("%w: %w", ErrValidation, totalErr))
	}
	if patch.PaymentMethod != nil {
		updated.PaymentMethod = *patch.PaymentMethod
	}
	if patch.Date != nil {
		updated.Date = *patch.Date
	}

	row, itemRows := gateway.SaleToRows(updated)
	if err := s.gw.UpdateSale(ctx, row, itemRows); err != nil {
		return Result{}, s.fail(ctx, "não foi possível atualizar a venda", err)
	}

	s.apply(ctx, userID, amqp.NewChangeEvent("sales", amqp.OpUpdate, id, userID), func(st *core.AppState) {
		for i := range st.Sales {
			if st.Sales[i].ID == id {
				st.Sales[i] = updated
				return
			}
		}
	})
	return applied(), nil
}

// DeleteSale removes the sale and its line items. No cascading effects.
func (s *Store) DeleteSale(ctx context.Context, id string) (Result, error) {
	userID, err := s.user(ctx)
	if err != nil {
		return Result{}, err
	}

	s.mu.RLock()
	exists := slices.ContainsFunc(s.state.Sales, func(sale core.Sale) bool { return sale.ID == id })
	s.mu.RUnlock()
	if !exists {
		return noMatch(), nil
	}

	if err := s.gw.DeleteSale(ctx, userID, id); err != nil {
		return Result{}, s.fail(ctx, "não foi possível remover a venda", err)
	}

	s.apply(ctx, userID, amqp.NewChangeEvent("sales", amqp.OpDelete, id, userID), func(st *core.AppState) {
		st.Sales = slices.DeleteFunc(st.Sales, func(sale core.Sale) bool {
			return sale.ID == id
		})
	})
	return applied(), nil
}

// validatedTotal checks every line item and sums quantity × current price.
// Callers must hold at least the read lock.
func (s *Store) validatedTotal(items []core.LineItem) (core.Money, error) {
	if len(items) == 0 {
		return core.Money{}, fmt.Errorf("sale needs at least one item")
	}
	var cents int64
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return core.Money{}, err
		}
		product, ok := s.state.ProductByID(item.ProductID)
		if !ok {
			return core.Money{}, fmt.Errorf("%w: %s", core.ErrUnknownProduct, item.ProductID)
		}
		cents += product.Price.Cents * int64(item.Quantity)
	}
	return core.Money{Cents: cents}, nil
}
