package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"caixa/internal/gateway"
)

func (s *Store) ListExpenses(ctx context.Context, userID string) ([]gateway.ExpenseRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, description, amount::text, category, date, is_recurring, recurrence_day, user_id
		   FROM expenses
		  WHERE user_id = $1
		  ORDER BY date`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list expenses: %w", err)
	}
	defer rows.Close()

	var out []gateway.ExpenseRow
	for rows.Next() {
		var row gateway.ExpenseRow
		if err := rows.Scan(&row.ID, &row.Description, &row.Amount, &row.Category, &row.Date, &row.IsRecurring, &row.RecurrenceDay, &row.UserID); err != nil {
			return nil, fmt.Errorf("postgres: scan expense: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) ListExpenseTags(ctx context.Context, expenseID string) ([]gateway.ExpenseTagRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT expense_id, tag FROM expense_tags WHERE expense_id = $1`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list expense tags: %w", err)
	}
	defer rows.Close()

	var out []gateway.ExpenseTagRow
	for rows.Next() {
		var row gateway.ExpenseTagRow
		if err := rows.Scan(&row.ExpenseID, &row.Tag); err != nil {
			return nil, fmt.Errorf("postgres: scan expense tag: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) InsertExpense(ctx context.Context, row gateway.ExpenseRow, tags []gateway.ExpenseTagRow) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO expenses (id, description, amount, category, date, is_recurring, recurrence_day, user_id)
			 VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8)`,
			row.ID, row.Description, row.Amount, row.Category, row.Date, row.IsRecurring, row.RecurrenceDay, row.UserID,
		)
		if err != nil {
			return fmt.Errorf("postgres: insert expense: %w", err)
		}
		return insertExpenseTags(ctx, tx, tags)
	})
}

func (s *Store) UpdateExpense(ctx context.Context, row gateway.ExpenseRow, tags []gateway.ExpenseTagRow) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE expenses
			    SET description = $1, amount = $2::numeric, category = $3, date = $4,
			        is_recurring = $5, recurrence_day = $6
			  WHERE id = $7 AND user_id = $8`,
			row.Description, row.Amount, row.Category, row.Date, row.IsRecurring, row.RecurrenceDay, row.ID, row.UserID,
		)
		if err != nil {
			return fmt.Errorf("postgres: update expense: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return gateway.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM expense_tags WHERE expense_id = $1`, row.ID); err != nil {
			return fmt.Errorf("postgres: clear expense tags: %w", err)
		}
		return insertExpenseTags(ctx, tx, tags)
	})
}

func (s *Store) DeleteExpense(ctx context.Context, userID, id string) error {
	// Tag rows go via ON DELETE CASCADE.
	_, err := s.pool.Exec(ctx,
		`DELETE FROM expenses WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("postgres: delete expense: %w", err)
	}
	return nil
}

func insertExpenseTags(ctx context.Context, tx pgx.Tx, tags []gateway.ExpenseTagRow) error {
	for _, t := range tags {
		_, err := tx.Exec(ctx,
			`INSERT INTO expense_tags (expense_id, tag) VALUES ($1, $2)`,
			t.ExpenseID, t.Tag,
		)
		if err != nil {
			return fmt.Errorf("postgres: insert expense tag: %w", err)
		}
	}
	return nil
}
