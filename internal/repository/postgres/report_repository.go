package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
	"github.com/andresuchdata/salescrm/backend-go/internal/repository"
)

type reportRepository struct {
	db *DB
}

func NewReportRepository(db *DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

const (
	inCurrent  = "s.at >= $1 AND s.at < $2"
	inPrevious = "s.at >= $3 AND s.at < $4"
)

func (r *reportRepository) SalesByCustomer(ctx context.Context, filter domain.ReportFilter) ([]domain.SalesByCustomerRow, error) {
	cte, args := salesCTE(filter)
	query := cte + `
		SELECT
			c.id AS customer_id,
			c.name AS customer_name,
			COALESCE(rp.name, '') AS rep_name,
			COUNT(DISTINCT s.order_id) AS orders,
			COALESCE(SUM(s.net), 0) AS net,
			COALESCE(SUM(s.margin), 0) AS margin
		FROM sales s
		JOIN customers c ON c.id = s.customer_id
		LEFT JOIN reps rp ON rp.id = c.rep_id
		WHERE ` + inCurrent + `
		GROUP BY c.id, c.name, rp.name
		ORDER BY net DESC, c.name
	`

	var rows []domain.SalesByCustomerRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to get sales by customer")
	}
	return rows, nil
}

func (r *reportRepository) Gap(ctx context.Context, filter domain.ReportFilter) ([]domain.GapRow, error) {
	cte, args := salesCTE(filter)
	query := cte + `
		SELECT
			c.id AS customer_id,
			c.name AS customer_name,
			s.brand,
			COALESCE(SUM(s.net) FILTER (WHERE ` + inCurrent + `), 0) AS current_net,
			COALESCE(SUM(s.net) FILTER (WHERE ` + inPrevious + `), 0) AS previous_net
		FROM sales s
		JOIN customers c ON c.id = s.customer_id
		WHERE (` + inCurrent + `) OR (` + inPrevious + `)
		GROUP BY c.id, c.name, s.brand
		ORDER BY c.name, s.brand
	`

	var rows []domain.GapRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to get gap analysis")
	}
	return rows, nil
}

// RepScorecard lists every rep, including reps with no sales in the period.
// Targets are summed over the target periods starting inside the window.
func (r *reportRepository) RepScorecard(ctx context.Context, filter domain.ReportFilter) ([]domain.RepScorecardRow, error) {
	cte, args := salesCTE(filter)
	repClause := ""
	if filter.RepID != nil {
		args = append(args, *filter.RepID)
		repClause = fmt.Sprintf("WHERE rp.id = $%d", len(args))
	}

	query := cte + fmt.Sprintf(`
		SELECT
			rp.id AS rep_id,
			rp.name AS rep_name,
			COUNT(DISTINCT s.order_id) FILTER (WHERE %[1]s) AS orders,
			COUNT(DISTINCT s.customer_id) FILTER (WHERE %[1]s AND s.order_id IS NOT NULL) AS active_customers,
			COALESCE(SUM(s.net) FILTER (WHERE %[1]s), 0) AS actual,
			COALESCE((
				SELECT SUM(t.target)
				FROM rep_targets t
				WHERE t.rep_id = rp.id AND t.period_start >= $1 AND t.period_start < $2
			), 0) AS target,
			COALESCE(SUM(s.net) FILTER (WHERE %[2]s), 0) AS previous_net
		FROM reps rp
		LEFT JOIN sales s ON s.rep_id = rp.id
		%[3]s
		GROUP BY rp.id, rp.name
		ORDER BY actual DESC, rp.name
	`, inCurrent, inPrevious, repClause)

	var rows []domain.RepScorecardRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to get rep scorecard")
	}
	return rows, nil
}

// Dropoff returns customers who ordered inside the window but whose last
// order is older than cutoff.
func (r *reportRepository) Dropoff(ctx context.Context, filter domain.ReportFilter, cutoff time.Time) ([]domain.DropoffRow, error) {
	cte, args := salesCTE(filter)
	args = append(args, cutoff)
	cutoffArg := len(args)

	query := cte + fmt.Sprintf(`
		SELECT
			c.id AS customer_id,
			c.name AS customer_name,
			COALESCE(rp.name, '') AS rep_name,
			MAX(s.at) FILTER (WHERE s.order_id IS NOT NULL) AS last_order_at,
			COUNT(DISTINCT s.order_id) FILTER (WHERE %[1]s) AS orders,
			COALESCE(SUM(s.net) FILTER (WHERE %[1]s), 0) AS net
		FROM sales s
		JOIN customers c ON c.id = s.customer_id
		LEFT JOIN reps rp ON rp.id = c.rep_id
		GROUP BY c.id, c.name, rp.name
		HAVING COUNT(s.order_id) FILTER (WHERE %[1]s) > 0
			AND MAX(s.at) FILTER (WHERE s.order_id IS NOT NULL) < $%[2]d
		ORDER BY last_order_at ASC, c.name
	`, inCurrent, cutoffArg)

	var rows []domain.DropoffRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to get drop-off customers")
	}
	return rows, nil
}

func (r *reportRepository) VendorScorecard(ctx context.Context, filter domain.ReportFilter) ([]domain.VendorScorecardRow, error) {
	cte, args := salesCTE(filter)
	query := cte + `
		SELECT
			s.brand,
			COALESCE(SUM(s.units) FILTER (WHERE ` + inCurrent + `), 0) AS units,
			COALESCE(SUM(s.net) FILTER (WHERE ` + inCurrent + `), 0) AS net,
			COALESCE(SUM(s.margin) FILTER (WHERE ` + inCurrent + `), 0) AS margin,
			COALESCE(SUM(s.net) FILTER (WHERE ` + inPrevious + `), 0) AS previous_net
		FROM sales s
		WHERE (` + inCurrent + `) OR (` + inPrevious + `)
		GROUP BY s.brand
		ORDER BY net DESC, s.brand
	`

	var rows []domain.VendorScorecardRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "failed to get vendor scorecard")
	}
	return rows, nil
}
