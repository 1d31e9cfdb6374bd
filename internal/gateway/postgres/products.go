package postgres

import (
	"context"
	"fmt"

	"caixa/internal/gateway"
)

func (s *Store) ListProducts(ctx context.Context, userID string) ([]gateway.ProductRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, price::text, created_at, updated_at, user_id
		   FROM products
		  WHERE user_id = $1
		  ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: list products: %w", err)
	}
	defer rows.Close()

	var out []gateway.ProductRow
	for rows.Next() {
		var row gateway.ProductRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Description, &row.Price, &row.CreatedAt, &row.UpdatedAt, &row.UserID); err != nil {
			return nil, fmt.Errorf("postgres: scan product: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) InsertProduct(ctx context.Context, row gateway.ProductRow) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO products (id, name, description, price, created_at, updated_at, user_id)
		 VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)`,
		row.ID, row.Name, row.Description, row.Price, row.CreatedAt, row.UpdatedAt, row.UserID,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert product: %w", err)
	}
	return nil
}

func (s *Store) UpdateProduct(ctx context.Context, row gateway.ProductRow) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE products
		    SET name = $1, description = $2, price = $3::numeric, updated_at = $4
		  WHERE id = $5 AND user_id = $6`,
		row.Name, row.Description, row.Price, row.UpdatedAt, row.ID, row.UserID,
	)
	if err != nil {
		return fmt.Errorf("postgres: update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return gateway.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, userID, id string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM products WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("postgres: delete product: %w", err)
	}
	return nil
}
