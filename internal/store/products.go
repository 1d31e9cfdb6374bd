package store

import (
	"context"
	"fmt"
	"slices"

	"caixa/internal/amqp"
	"caixa/internal/core"
	"caixa/internal/gateway"
)

// ProductPatch carries the fields an update may replace. Nil fields keep
// their current value.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *core.Money
}

// AddProduct validates, writes the product remotely, and appends it to the
// snapshot with a fresh ID and current timestamps.
func (s *Store) AddProduct(ctx context.Context, name, description string, price core.Money) (core.Product, error) {
	userID, err := s.user(ctx)
	if err != nil {
		return core.Product{}, err
	}

	now := s.now()
	product := core.Product{
		ID:          s.newID(),
		Name:        name,
		Description: description,
		Price:       price,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      userID,
	}
	if err := product.Validate(); err != nil {
		return core.Product{}, s.fail(ctx, "dados do produto inválidos", fmt.Errorf("%w: %w", ErrValidation, err))
	}

	if err := s.gw.InsertProduct(ctx, gateway.ProductToRow(product)); err != nil {
		return core.Product{}, s.fail(ctx, "não foi possível salvar o produto", err)
	}

	s.apply(ctx, userID, amqp.NewChangeEvent("products", amqp.OpCreate, product.ID, userID), func(st *core.AppState) {
		st.Products = append(st.Products, product)
	})
	return product, nil
}

// UpdateProduct merges the patch into the matching product and refreshes
// its updated-at. A missing ID resolves to NotFound without a remote call.
func (s *Store) UpdateProduct(ctx context.Context, id string, patch ProductPatch) (Result, error) {
	userID, err := s.user(ctx)
	if err != nil {
		return Result{}, err
	}

	s.mu.RLock()
	current, ok := s.state.ProductByID(id)
	s.mu.RUnlock()
	if !ok {
		return noMatch(), nil
	}

	updated := current
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.Price != nil {
		updated.Price = *patch.Price
	}
	updated.UpdatedAt = s.now()

	if err := updated.Validate(); err != nil {
		return Result{}, s.fail(ctx, "dados do produto inválidos", fmt.Errorf("%w: %w", ErrValidation, err))
	}

	if err := s.gw.UpdateProduct(ctx, gateway.ProductToRow(updated)); err != nil {
		return Result{}, s.fail(ctx, "não foi possível atualizar o produto", err)
	}

	s.apply(ctx, userID, amqp.NewChangeEvent("products", amqp.OpUpdate, id, userID), func(st *core.AppState) {
		for i := range st.Products {
			if st.Products[i].ID == id {
				st.Products[i] = updated
				return
			}
		}
	})
	return applied(), nil
}

// DeleteProduct removes the product. Historical sales keep their line items
// pointing at the now-missing product; readers render a placeholder.
func (s *Store) DeleteProduct(ctx context.Context, id string) (Result, error) {
	userID, err := s.user(ctx)
	if err != nil {
		return Result{}, err
	}

	s.mu.RLock()
	_, ok := s.state.ProductByID(id)
	s.mu.RUnlock()
	if !ok {
		return noMatch(), nil
	}

	if err := s.gw.DeleteProduct(ctx, userID, id); err != nil {
		return Result{}, s.fail(ctx, "não foi possível remover o produto", err)
	}

	s.apply(ctx, userID, amqp.NewChangeEvent("products", amqp.OpDelete, id, userID), func(st *core.AppState) {
		st.Products = slices.DeleteFunc(st.Products, func(p core.Product) bool {
			return p.ID == id
		})
	})
	return applied(), nil
}
