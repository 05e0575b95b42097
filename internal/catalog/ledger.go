package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Ledger struct{ DB *pgxpool.Pool }

// Reserve decrements available quantity by qty in a single conditional
// update. The qty >= $2 guard makes concurrent reservations against the same
// product serialize at the storage layer; there is no read-then-write window
// to lose updates in.
func (l *Ledger) Reserve(ctx context.Context, productID string, qty int) error {
	ct, err := l.DB.Exec(ctx, `
		UPDATE products SET qty = qty - $2, updated_at = now()
		WHERE id = $1 AND qty >= $2`, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	// Zero rows: either the product is missing or stock ran short.
	var available int
	err = l.DB.QueryRow(ctx, `SELECT qty FROM products WHERE id = $1`, productID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return &ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return err
	}
	return &OutOfStockError{ProductID: productID, Requested: qty, Available: available}
}

// Restore reverses a reservation, adding qty back to available stock. Used
// as the compensation step when a later item in the same placement fails.
func (l *Ledger) Restore(ctx context.Context, productID string, qty int) error {
	ct, err := l.DB.Exec(ctx, `
		UPDATE products SET qty = qty + $2, updated_at = now()
		WHERE id = $1`, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return &ProductNotFoundError{ProductID: productID}
	}
	return nil
}

func (l *Ledger) Get(ctx context.Context, productID string) (Product, error) {
	var p Product
	err := l.DB.QueryRow(ctx, `
		SELECT id, name, price_cents, qty, created_at, updated_at
		FROM products WHERE id = $1`, productID).
		Scan(&p.ID, &p.Name, &p.Price, &p.Qty, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, &ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

func (l *Ledger) List(ctx context.Context) ([]Product, error) {
	rows, err := l.DB.Query(ctx, `
		SELECT id, name, price_cents, qty, created_at, updated_at
		FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Qty, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Upsert is a seeding/admin helper; it does not take part in placement.
func (l *Ledger) Upsert(ctx context.Context, p Product) error {
	_, err := l.DB.Exec(ctx, `
		INSERT INTO products (id, name, price_cents, qty)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, price_cents = EXCLUDED.price_cents,
		    qty = EXCLUDED.qty, updated_at = now()`,
		p.ID, p.Name, p.Price, p.Qty)
	return err
}
