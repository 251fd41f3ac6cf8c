package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
	"github.com/andresuchdata/salescrm/backend-go/internal/repository"
)

type salesHistoryRepository struct {
	db *DB
}

func NewSalesHistoryRepository(db *DB) repository.SalesHistoryRepository {
	return &salesHistoryRepository{db: db}
}

// CustomerBrandUnits returns every product of the brand the customer bought,
// had refunded, or holds a PAR for. Products without movement come back with
// zero units so their saved PAR can still be reviewed.
func (r *salesHistoryRepository) CustomerBrandUnits(ctx context.Context, customerID int64, brand string, start, end time.Time) ([]domain.ProductUnits, error) {
	query := `
		SELECT
			p.id AS product_id,
			p.sku,
			p.title,
			p.brand,
			COALESCE(p.pack_size, 1) AS pack_size,
			COALESCE(p.unit_cost, 0) AS unit_cost,
			COALESCE(s.units_sold, 0) AS units_sold,
			COALESCE(rf.units_refunded, 0) AS units_refunded
		FROM products p
		LEFT JOIN (
			SELECT ol.product_id, SUM(ol.quantity) AS units_sold
			FROM order_lines ol
			JOIN orders o ON o.id = ol.order_id
			WHERE o.customer_id = $1
				AND o.cancelled_at IS NULL
				AND o.created_at >= $3 AND o.created_at < $4
			GROUP BY ol.product_id
		) s ON s.product_id = p.id
		LEFT JOIN (
			SELECT ol.product_id, SUM(r.quantity) AS units_refunded
			FROM refunds r
			JOIN order_lines ol ON ol.id = r.order_line_id
			JOIN orders o ON o.id = ol.order_id
			WHERE o.customer_id = $1
				AND r.created_at >= $3 AND r.created_at < $4
			GROUP BY ol.product_id
		) rf ON rf.product_id = p.id
		WHERE p.brand = $2
			AND (
				s.units_sold IS NOT NULL
				OR rf.units_refunded IS NOT NULL
				OR EXISTS (
					SELECT 1 FROM customer_pars cp
					WHERE cp.customer_id = $1 AND cp.product_id = p.id
				)
			)
		ORDER BY p.sku
	`

	var units []domain.ProductUnits
	if err := r.db.SelectContext(ctx, &units, query, customerID, brand, start, end); err != nil {
		return nil, errors.Wrap(err, "failed to get customer brand units")
	}
	return units, nil
}

// SKUUnits sums net units per SKU across all customers. An empty locationID
// means every location.
func (r *salesHistoryRepository) SKUUnits(ctx context.Context, skus []string, locationID string, start, end time.Time) ([]domain.SKUUnits, error) {
	if len(skus) == 0 {
		return nil, nil
	}

	args := []interface{}{start, end}
	skuClause := inClause(len(args)+1, len(skus))
	for _, sku := range skus {
		args = append(args, sku)
	}

	orderLocation, refundLocation := "", ""
	if locationID != "" {
		args = append(args, locationID)
		orderLocation = fmt.Sprintf(" AND o.location_id = $%d", len(args))
		refundLocation = fmt.Sprintf(" AND ro.location_id = $%d", len(args))
	}

	query := fmt.Sprintf(`
		SELECT
			p.sku,
			COALESCE(SUM(ol.quantity) FILTER (
				WHERE o.created_at >= $1 AND o.created_at < $2
			), 0) AS units_sold,
			COALESCE((
				SELECT SUM(r.quantity)
				FROM refunds r
				JOIN order_lines rol ON rol.id = r.order_line_id
				JOIN orders ro ON ro.id = rol.order_id
				WHERE rol.product_id = p.id
					AND r.created_at >= $1 AND r.created_at < $2%s
			), 0) AS units_refunded
		FROM products p
		LEFT JOIN order_lines ol ON ol.product_id = p.id
		LEFT JOIN orders o ON o.id = ol.order_id AND o.cancelled_at IS NULL%s
		WHERE p.sku IN (%s)
		GROUP BY p.id, p.sku
		ORDER BY p.sku
	`, refundLocation, orderLocation, skuClause)

	var units []domain.SKUUnits
	if err := r.db.SelectContext(ctx, &units, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to get sku units")
	}
	return units, nil
}

func (r *salesHistoryRepository) Brands(ctx context.Context, customerID int64) ([]string, error) {
	query := `
		SELECT DISTINCT p.brand
		FROM order_lines ol
		JOIN orders o ON o.id = ol.order_id
		JOIN products p ON p.id = ol.product_id
		WHERE o.customer_id = $1 AND p.brand <> ''
		ORDER BY p.brand
	`

	var brands []string
	if err := r.db.SelectContext(ctx, &brands, query, customerID); err != nil {
		return nil, errors.Wrap(err, "failed to get brands")
	}
	return brands, nil
}

func (r *salesHistoryRepository) GetCustomer(ctx context.Context, customerID int64) (*domain.Customer, error) {
	query := `
		SELECT c.id, c.name, c.rep_id, COALESCE(rp.name, '') AS rep_name
		FROM customers c
		LEFT JOIN reps rp ON rp.id = c.rep_id
		WHERE c.id = $1
	`

	var customer domain.Customer
	if err := r.db.GetContext(ctx, &customer, query, customerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(domain.ErrNotFound, "customer %d", customerID)
		}
		return nil, errors.Wrap(err, "failed to get customer")
	}
	return &customer, nil
}

// inClause renders n positional placeholders starting at $start.
func inClause(start, n int) string {
	placeholders := make([]string, n)
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(placeholders, ",")
}
