package postgres

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
)

// Positional arguments shared by every report query: $1/$2 bound the current
// period and $3/$4 the comparison period. Filter arguments follow.
const reportPeriodArgs = 4

// buildReportFilterClause constructs the optional rep, customer and brand
// conditions. Aliases: c = customers, p = products.
func buildReportFilterClause(filter domain.ReportFilter, startIndex int) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	idx := startIndex

	if filter.RepID != nil {
		clauses = append(clauses, fmt.Sprintf("c.rep_id = $%d", idx))
		args = append(args, *filter.RepID)
		idx++
	}

	if filter.CustomerID != nil {
		clauses = append(clauses, fmt.Sprintf("c.id = $%d", idx))
		args = append(args, *filter.CustomerID)
		idx++
	}

	if filter.Brand != "" {
		clauses = append(clauses, fmt.Sprintf("p.brand = $%d", idx))
		args = append(args, filter.Brand)
	}

	if len(clauses) == 0 {
		return "", nil
	}

	return " AND " + strings.Join(clauses, " AND "), args
}

// salesCTE renders the "sales" common table expression: one row per order
// line and one negative row per refund, each stamped with the date that
// places it in a period. Refunds count in the period they were issued. Rows
// outside both periods are pruned here.
func salesCTE(filter domain.ReportFilter) (string, []interface{}) {
	where, filterArgs := buildReportFilterClause(filter, reportPeriodArgs+1)

	cte := fmt.Sprintf(`
		WITH sales AS (
			SELECT
				o.customer_id,
				c.rep_id,
				p.brand,
				o.id AS order_id,
				o.created_at AS at,
				ol.quantity::numeric AS units,
				(ol.quantity * ol.price)::numeric AS net,
				(ol.quantity * (ol.price - COALESCE(ol.cost, 0)))::numeric AS margin
			FROM orders o
			JOIN order_lines ol ON ol.order_id = o.id
			JOIN products p ON p.id = ol.product_id
			JOIN customers c ON c.id = o.customer_id
			WHERE o.cancelled_at IS NULL
				AND o.created_at >= LEAST($1::timestamptz, $3::timestamptz)
				AND o.created_at < GREATEST($2::timestamptz, $4::timestamptz)%s
			UNION ALL
			SELECT
				o.customer_id,
				c.rep_id,
				p.brand,
				NULL AS order_id,
				r.created_at AS at,
				-r.quantity::numeric AS units,
				-r.amount::numeric AS net,
				-(r.amount - r.quantity * COALESCE(ol.cost, 0))::numeric AS margin
			FROM refunds r
			JOIN order_lines ol ON ol.id = r.order_line_id
			JOIN orders o ON o.id = ol.order_id
			JOIN products p ON p.id = ol.product_id
			JOIN customers c ON c.id = o.customer_id
			WHERE r.created_at >= LEAST($1::timestamptz, $3::timestamptz)
				AND r.created_at < GREATEST($2::timestamptz, $4::timestamptz)%s
		)`, where, where)

	args := []interface{}{filter.Start, filter.End, filter.CompareStart, filter.CompareEnd}
	return cte, append(args, filterArgs...)
}
