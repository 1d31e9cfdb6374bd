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

// ExpenseInput carries the caller-supplied fields for a new expense.
type ExpenseInput struct {
	Description   string
	Amount        core.Money
	Category      core.ExpenseCategory
	IsRecurring   bool
	RecurrenceDay int
	Tags          []string
}

// ExpensePatch carries the fields an update may replace.
type ExpensePatch struct {
	Description   *string
	Amount        *core.Money
	Category      *core.ExpenseCategory
	Date          *time.Time
	IsRecurring   *bool
	RecurrenceDay *int
	Tags          *[]string
}

// AddExpense records an expense dated now.
func (s *Store) AddExpense(ctx context.Context, in ExpenseInput) (core.Expense, error) {
	return s.addExpense(ctx, in, s.now())
}

// AddRetroactiveExpense records an expense at an explicit past date.
func (s *Store) AddRetroactiveExpense(ctx context.Context, in ExpenseInput, date time.Time) (core.Expense, error) {
	return s.addExpense(ctx, in, date)
}

func (s *Store) addExpense(ctx context.Context, in ExpenseInput, date time.Time) (core.Expense, error) {
	userID, err := s.user(ctx)
	if err != nil {
		return core.Expense{}, err
	}

	expense := core.Expense{
		ID:            s.newID(),
		Description:   in.Description,
		Amount:        in.Amount,
		Category:      in.Category,
		Date:          date,
		IsRecurring:   in.IsRecurring,
		RecurrenceDay: in.RecurrenceDay,
		Tags:          slices.Clone(in.Tags),
		UserID:        userID,
	}
	if err := expense.Validate(); err != nil {
		return core.Expense{}, s.fail(ctx, "dados da despesa inválidos", fmt.Errorf("%w: %w", ErrValidation, err))
	}

	row, tagRows := gateway.ExpenseToRows(expense)
	if err := s.gw.InsertExpense(ctx, row, tagRows); err != nil {
		return core.Expense{}, s.fail(ctx, "não foi possível salvar a despesa", err)
	}

	s.apply(ctx, userID, amqp.NewChangeEvent("expenses", amqp.OpCreate, expense.ID, userID), func(st *core.AppState) {
		st.Expenses = append(st.Expenses, expense)
	})
	return expense, nil
}

// UpdateExpense merges the patch into the matching expense.
func (s *Store) UpdateExpense(ctx context.Context, id string, patch ExpensePatch) (Result, error) {
	userID, err := s.user(ctx)
	if err != nil {
		return Result{}, err
	}

	s.mu.RLock()
	idx := slices.IndexFunc(s.state.Expenses, func(e core.Expense) bool { return e.ID == id })
	var updated core.Expense
	if idx >= 0 {
		updated = s.state.Expenses[idx]
		updated.Tags = slices.Clone(updated.Tags)
	}
	s.mu.RUnlock()

	if idx < 0 {
		return noMatch(), nil
	}

	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.Amount != nil {
		updated.Amount = *patch.Amount
	}
	if patch.Category != nil {
		updated.Category = *patch.Category
	}
	if patch.Date != nil {
		updated.Date = *patch.Date
	}
	if patch.IsRecurring != nil {
		updated.IsRecurring = *patch.IsRecurring
	}
	if patch.RecurrenceDay != nil {
		updated.RecurrenceDay = *patch.RecurrenceDay
	}
	if patch.Tags != nil {
		updated.Tags = slices.Clone(*patch.Tags)
	}

	if err := updated.Validate(); err != nil {
		return Result{}, s.fail(ctx, "dados da despesa inválidos", fmt.Errorf("%w: %w", ErrValidation, err))
	}

	row, tagRows := gateway.ExpenseToRows(updated)
	if err := s.gw.UpdateExpense(ctx, row, tagRows); err != nil {
		return Result{}, s.fail(ctx, "não foi possível atualizar a despesa", err)
	}

	s.apply(ctx, userID, amqp.NewChangeEvent("expenses", amqp.OpUpdate, id, userID), func(st *core.AppState) {
		for i := range st.Expenses {
			if st.Expenses[i].ID == id {
				st.Expenses[i] = updated
				return
			}
		}
	})
	return applied(), nil
}

// DeleteExpense removes the expense and its tag associations.
func (s *Store) DeleteExpense(ctx context.Context, id string) (Result, error) {
	userID, err := s.user(ctx)
	if err != nil {
		return Result{}, err
	}

	s.mu.RLock()
	exists := slices.ContainsFunc(s.state.Expenses, func(e core.Expense) bool { return e.ID == id })
	s.mu.RUnlock()
	if !exists {
		return noMatch(), nil
	}

	if err := s.gw.DeleteExpense(ctx, userID, id); err != nil {
		return Result{}, s.fail(ctx, "não foi possível remover a despesa", err)
	}

	s.apply(ctx, userID, amqp.NewChangeEvent("expenses", amqp.OpDelete, id, userID), func(st *core.AppState) {
		st.Expenses = slices.DeleteFunc(st.Expenses, func(e core.Expense) bool {
			return e.ID == id
		})
	})
	return applied(), nil
}
