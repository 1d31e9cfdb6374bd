package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"caixa/internal/gateway"
)

func (s *Store) ListSales(ctx context.Context, userID string) ([]gateway.SaleRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, total::text, payment_method, date, user_id
		   FROM sales
		  WHERE user_id = $1
		  ORDER BY date`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list sales: %w", err)
	}
	defer rows.Close()

	var out []gateway.SaleRow
	for rows.Next() {
		var row gateway.SaleRow
		if err := rows.Scan(&row.ID, &row.Total, &row.PaymentMethod, &row.Date, &row.UserID); err != nil {
			return nil, fmt.Errorf("postgres: scan sale: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) ListSaleLineItems(ctx context.Context, saleID string) ([]gateway.SaleLineItemRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT sale_id, product_id, quantity FROM sale_line_items WHERE sale_id = $1`,
		saleID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list sale items: %w", err)
	}
	defer rows.Close()

	var out []gateway.SaleLineItemRow
	for rows.Next() {
		var row gateway.SaleLineItemRow
		if err := rows.Scan(&row.SaleID, &row.ProductID, &row.Quantity); err != nil {
			return nil, fmt.Errorf("postgres: scan sale item: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) InsertSale(ctx context.Context, row gateway.SaleRow, items []gateway.SaleLineItemRow) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO sales (id, total, payment_method, date, user_id)
			 VALUES ($1, $2::numeric, $3, $4, $5)`,
			row.ID, row.Total, row.PaymentMethod, row.Date, row.UserID,
		)
		if err != nil {
			return fmt.Errorf("postgres: insert sale: %w", err)
		}
		return insertSaleItems(ctx, tx, items)
	})
}

func (s *Store) UpdateSale(ctx context.Context, row gateway.SaleRow, items []gateway.SaleLineItemRow) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE sales
			    SET total = $1::numeric, payment_method = $2, date = $3
			  WHERE id = $4 AND user_id = $5`,
			row.Total, row.PaymentMethod, row.Date, row.ID, row.UserID,
		)
		if err != nil {
			return fmt.Errorf("postgres: update sale: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return gateway.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM sale_line_items WHERE sale_id = $1`, row.ID); err != nil {
			return fmt.Errorf("postgres: clear sale items: %w", err)
		}
		return insertSaleItems(ctx, tx, items)
	})
}

func (s *Store) DeleteSale(ctx context.Context, userID, id string) error {
	// Line items go via ON DELETE CASCADE.
	_, err := s.pool.Exec(ctx,
		`DELETE FROM sales WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("postgres: delete sale: %w", err)
	}
	return nil
}

func insertSaleItems(ctx context.Context, tx pgx.Tx, items []gateway.SaleLineItemRow) error {
	for _, item := range items {
		_, err := tx.Exec(ctx,
			`INSERT INTO sale_line_items (sale_id, product_id, quantity) VALUES ($1, $2, $3)`,
			item.SaleID, item.ProductID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("postgres: insert sale item: %w", err)
		}
	}
	return nil
}
