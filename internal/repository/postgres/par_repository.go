package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
	"github.com/andresuchdata/salescrm/backend-go/internal/repository"
)

type parRepository struct {
	db *DB
}

func NewPARRepository(db *DB) repository.PARRepository {
	return &parRepository{db: db}
}

func (r *parRepository) ListPARs(ctx context.Context, customerID int64, brand string) ([]domain.PAR, error) {
	query := `
		SELECT cp.customer_id, cp.product_id, p.sku, cp.quantity, cp.updated_at
		FROM customer_pars cp
		JOIN products p ON p.id = cp.product_id
		WHERE cp.customer_id = $1 AND ($2 = '' OR p.brand = $2)
		ORDER BY p.sku
	`

	var pars []domain.PAR
	if err := r.db.SelectContext(ctx, &pars, query, customerID, brand); err != nil {
		return nil, errors.Wrap(err, "failed to list pars")
	}
	return pars, nil
}

// UpsertPAR creates the PAR or overwrites the quantity of an existing one.
func (r *parRepository) UpsertPAR(ctx context.Context, par domain.PAR) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO customer_pars (customer_id, product_id, quantity, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (customer_id, product_id)
			DO UPDATE SET
				quantity = EXCLUDED.quantity,
				updated_at = NOW()
		`
		if _, err := tx.ExecContext(ctx, query, par.CustomerID, par.ProductID, par.Quantity); err != nil {
			return errors.Wrap(err, "failed to upsert par")
		}
		return nil
	})
}

func (r *parRepository) ProductIDBySKU(ctx context.Context, sku string) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, `SELECT id FROM products WHERE sku = $1`, sku)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errors.Wrapf(domain.ErrNotFound, "product %q", sku)
		}
		return 0, errors.Wrap(err, "failed to look up product")
	}
	return id, nil
}
