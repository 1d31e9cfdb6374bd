package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"caixa/internal/gateway"
)

func (s *Store) ListPaymentMethods(ctx context.Context, userID string) ([]gateway.TokenRow, error) {
	return s.listTokens(ctx, "payment_methods", userID)
}

func (s *Store) InsertPaymentMethod(ctx context.Context, row gateway.TokenRow) error {
	return s.insertToken(ctx, "payment_methods", row)
}

// RenamePaymentMethod renames the token and rewrites the method on every
// sale that referenced the old name, in one transaction. Defaults have no
// stored row; renaming one registers the new name instead.
func (s *Store) RenamePaymentMethod(ctx context.Context, userID, oldName, newName string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE payment_methods SET name = $1 WHERE user_id = $2 AND name = $3`,
			newName, userID, oldName,
		)
		if err != nil {
			return fmt.Errorf("postgres: rename payment method: %w", err)
		}
		if tag.RowsAffected() == 0 {
			_, err = tx.Exec(ctx,
				`INSERT INTO payment_methods (id, user_id, name)
				 VALUES (gen_random_uuid()::text, $1, $2)
				 ON CONFLICT (user_id, name) DO NOTHING`,
				userID, newName,
			)
			if err != nil {
				return fmt.Errorf("postgres: register renamed payment method: %w", err)
			}
		}
		_, err = tx.Exec(ctx,
			`UPDATE sales SET payment_method = $1 WHERE user_id = $2 AND payment_method = $3`,
			newName, userID, oldName,
		)
		if err != nil {
			return fmt.Errorf("postgres: cascade payment method rename: %w", err)
		}
		return nil
	})
}

func (s *Store) DeletePaymentMethod(ctx context.Context, userID, name string) error {
	return s.deleteToken(ctx, "payment_methods", userID, name)
}

func (s *Store) ListExpenseTagTokens(ctx context.Context, userID string) ([]gateway.TokenRow, error) {
	return s.listTokens(ctx, "expense_tag_tokens", userID)
}

func (s *Store) InsertExpenseTagToken(ctx context.Context, row gateway.TokenRow) error {
	return s.insertToken(ctx, "expense_tag_tokens", row)
}

// RenameExpenseTagToken renames the token and rewrites it on every tag row
// attached to the user's expenses.
func (s *Store) RenameExpenseTagToken(ctx context.Context, userID, oldName, newName string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE expense_tag_tokens SET name = $1 WHERE user_id = $2 AND name = $3`,
			newName, userID, oldName,
		)
		if err != nil {
			return fmt.Errorf("postgres: rename expense tag: %w", err)
		}
		if tag.RowsAffected() == 0 {
			_, err = tx.Exec(ctx,
				`INSERT INTO expense_tag_tokens (id, user_id, name)
				 VALUES (gen_random_uuid()::text, $1, $2)
				 ON CONFLICT (user_id, name) DO NOTHING`,
				userID, newName,
			)
			if err != nil {
				return fmt.Errorf("postgres: register renamed expense tag: %w", err)
			}
		}
		_, err = tx.Exec(ctx,
			`UPDATE expense_tags
			    SET tag = $1
			  WHERE tag = $2
			    AND expense_id IN (SELECT id FROM expenses WHERE user_id = $3)`,
			newName, oldName, userID,
		)
		if err != nil {
			return fmt.Errorf("postgres: cascade expense tag rename: %w", err)
		}
		return nil
	})
}

// DeleteExpenseTagToken removes the token and strips the tag from the
// user's expenses.
func (s *Store) DeleteExpenseTagToken(ctx context.Context, userID, name string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`DELETE FROM expense_tag_tokens WHERE user_id = $1 AND name = $2`,
			userID, name,
		)
		if err != nil {
			return fmt.Errorf("postgres: delete expense tag: %w", err)
		}
		_, err = tx.Exec(ctx,
			`DELETE FROM expense_tags
			  WHERE tag = $1
			    AND expense_id IN (SELECT id FROM expenses WHERE user_id = $2)`,
			name, userID,
		)
		if err != nil {
			return fmt.Errorf("postgres: cascade expense tag delete: %w", err)
		}
		return nil
	})
}

func (s *Store) listTokens(ctx context.Context, table, userID string) ([]gateway.TokenRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name FROM `+table+` WHERE user_id = $1 ORDER BY name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list %s: %w", table, err)
	}
	defer rows.Close()

	var out []gateway.TokenRow
	for rows.Next() {
		var row gateway.TokenRow
		if err := rows.Scan(&row.ID, &row.UserID, &row.Name); err != nil {
			return nil, fmt.Errorf("postgres: scan %s: %w", table, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) insertToken(ctx context.Context, table string, row gateway.TokenRow) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+table+` (id, user_id, name) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, name) DO NOTHING`,
		row.ID, row.UserID, row.Name,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert into %s: %w", table, err)
	}
	return nil
}

func (s *Store) deleteToken(ctx context.Context, table, userID, name string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM `+table+` WHERE user_id = $1 AND name = $2`,
		userID, name,
	)
	if err != nil {
		return fmt.Errorf("postgres: delete from %s: %w", table, err)
	}
	return nil
}
