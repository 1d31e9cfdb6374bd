package store

import (
	"context"
	"slices"
	"strings"

	"caixa/internal/amqp"
	"caixa/internal/core"
	"caixa/internal/gateway"
	"caixa/internal/notify"
)

// AddPaymentMethod registers a custom payment method. Adding a name that
// already exists (case-sensitive) is an idempotent success.
func (s *Store) AddPaymentMethod(ctx context.Context, name string) (Result, error) {
	return s.addToken(ctx, name, tokenKindPaymentMethod)
}

// UpdatePaymentMethod renames a custom method and rewrites it on every sale
// that used the old name. Protected defaults and name collisions reject.
func (s *Store) UpdatePaymentMethod(ctx context.Context, oldName, newName string) (Result, error) {
	userID, err := s.user(ctx)
	if err != nil {
		return Result{}, err
	}
	if oldName == newName {
		return applied(), nil
	}
	if core.IsDefaultPaymentMethod(oldName) {
		return rejected("método de pagamento padrão não pode ser renomeado"), nil
	}

	s.mu.RLock()
	exists := slices.Contains(s.state.PaymentMethods, oldName)
	collides := slices.Contains(s.state.PaymentMethods, newName)
	s.mu.RUnlock()
	if !exists {
		return noMatch(), nil
	}
	if collides {
		return rejected("já existe um método de pagamento com esse nome"), nil
	}

	if err := s.gw.RenamePaymentMethod(ctx, userID, oldName, newName); err != nil {
		return Result{}, s.fail(ctx, "não foi possível renomear o método de pagamento", err)
	}

	s.apply(ctx, userID, amqp.NewChangeEvent("payment_methods", amqp.OpUpdate, newName, userID), func(st *core.AppState) {
		for i, name := range st.PaymentMethods {
			if name == oldName {
				st.PaymentMethods[i] = newName
			}
		}
		for i := range st.Sales {
			if st.Sales[i].PaymentMethod == oldName {
				st.Sales[i].PaymentMethod = newName
			}
		}
	})
	return applied(), nil
}

// RemovePaymentMethod deletes a custom method. Sales that referenced it are
// left untouched; the name simply stops being offered.
func (s *Store) RemovePaymentMethod(ctx context.Context, name string) (Result, error) {
	userID, err := s.user(ctx)
	if err != nil {
		return Result{}, err
	}
	if core.IsDefaultPaymentMethod(name) {
		return rejected("método de pagamento padrão não pode ser removido"), nil
	}

	s.mu.RLock()
	exists := slices.Contains(s.state.PaymentMethods, name)
	s.mu.RUnlock()
	if !exists {
		return noMatch(), nil
	}

	if err := s.gw.DeletePaymentMethod(ctx, userID, name); err != nil {
		return Result{}, s.fail(ctx, "não foi possível remover o método de pagamento", err)
	}

	s.apply(ctx, userID, amqp.NewChangeEvent("payment_methods", amqp.OpDelete, name, userID), func(st *core.AppState) {
		st.PaymentMethods = slices.DeleteFunc(st.PaymentMethods, func(n string) bool {
			return n == name
		})
	})
	return applied(), nil
}

// AddTag registers an expense tag; idempotent on duplicates.
func (s *Store) AddTag(ctx context.Context, name string) (Result, error) {
	return s.addToken(ctx, name, tokenKindExpenseTag)
}

// UpdateTag renames a tag everywhere, including inside each expense's tag
// set. There are no protected tags.
func (s *Store) UpdateTag(ctx context.Context, oldName, newName string) (Result, error) {
	userID, err := s.user(ctx)
	if err != nil {
		return Result{}, err
	}
	if oldName == newName {
		return applied(), nil
	}

	s.mu.RLock()
	exists := slices.Contains(s.state.ExpenseTags, oldName)
	collides := slices.Contains(s.state.ExpenseTags, newName)
	s.mu.RUnlock()
	if !exists {
		return noMatch(), nil
	}
	if collides {
		return rejected("já existe uma tag com esse nome"), nil
	}

	if err := s.gw.RenameExpenseTagToken(ctx, userID, oldName, newName); err != nil {
		return Result{}, s.fail(ctx, "não foi possível renomear a tag", err)
	}

	s.apply(ctx, userID, amqp.NewChangeEvent("expense_tags", amqp.OpUpdate, newName, userID), func(st *core.AppState) {
		for i, name := range st.ExpenseTags {
			if name == oldName {
				st.ExpenseTags[i] = newName
			}
		}
		for i := range st.Expenses {
			for j, tag := range st.Expenses[i].Tags {
				if tag == oldName {
					st.Expenses[i].Tags[j] = newName
				}
			}
		}
	})
	return applied(), nil
}

// RemoveTag deletes a tag and strips it from every expense's tag set.
func (s *Store) RemoveTag(ctx context.Context, name string) (Result, error) {
	userID, err := s.user(ctx)
	if err != nil {
		return Result{}, err
	}

	s.mu.RLock()
	exists := slices.Contains(s.state.ExpenseTags, name)
	s.mu.RUnlock()
	if !exists {
		return noMatch(), nil
	}

	if err := s.gw.DeleteExpenseTagToken(ctx, userID, name); err != nil {
		return Result{}, s.fail(ctx, "não foi possível remover a tag", err)
	}

	s.apply(ctx, userID, amqp.NewChangeEvent("expense_tags", amqp.OpDelete, name, userID), func(st *core.AppState) {
		st.ExpenseTags = slices.DeleteFunc(st.ExpenseTags, func(n string) bool {
			return n == name
		})
		for i := range st.Expenses {
			st.Expenses[i].Tags = slices.DeleteFunc(st.Expenses[i].Tags, func(t string) bool {
				return t == name
			})
		}
	})
	return applied(), nil
}

type tokenKind int

const (
	tokenKindPaymentMethod tokenKind = iota
	tokenKindExpenseTag
)

func (s *Store) addToken(ctx context.Context, name string, kind tokenKind) (Result, error) {
	userID, err := s.user(ctx)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(name) == "" {
		s.notifier.Notify(ctx, notify.Notice{Kind: notify.KindError, Message: "informe um nome"})
		return rejected("nome vazio"), nil
	}

	s.mu.RLock()
	var exists bool
	if kind == tokenKindPaymentMethod {
		exists = slices.Contains(s.state.PaymentMethods, name)
	} else {
		exists = slices.Contains(s.state.ExpenseTags, name)
	}
	s.mu.RUnlock()
	if exists {
		// Idempotent: adding an existing token changes nothing.
		return applied(), nil
	}

	row := gateway.TokenRow{ID: s.newID(), UserID: userID, Name: name}
	var (
		collection string
		insertErr  error
	)
	if kind == tokenKindPaymentMethod {
		collection = "payment_methods"
		insertErr = s.gw.InsertPaymentMethod(ctx, row)
	} else {
		collection = "expense_tags"
		insertErr = s.gw.InsertExpenseTagToken(ctx, row)
	}
	if insertErr != nil {
		return Result{}, s.fail(ctx, "não foi possível salvar", insertErr)
	}

	s.apply(ctx, userID, amqp.NewChangeEvent(collection, amqp.OpCreate, name, userID), func(st *core.AppState) {
		if kind == tokenKindPaymentMethod {
			st.PaymentMethods = append(st.PaymentMethods, name)
		} else {
			st.ExpenseTags = append(st.ExpenseTags, name)
		}
	})
	return applied(), nil
}
