package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/salescrm/backend-go/internal/domain"
	"github.com/andresuchdata/salescrm/backend-go/internal/forecast"
)

const (
	defaultTimeframe = forecast.LastMonth
	dateLayout       = "2006-01-02"
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// queryInt64 parses an optional integer; ok is false when the parameter is
// absent.
func queryInt64(c *gin.Context, name string) (v int64, ok bool, err error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, invalid("%s must be an integer", name)
	}
	return v, true, nil
}

func queryInt(c *gin.Context, name string) (int, error) {
	v, _, err := queryInt64(c, name)
	return int(v), err
}

// queryFloat returns nil when the parameter is absent so the service default
// applies.
func queryFloat(c *gin.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, invalid("%s must be a number", name)
	}
	return &v, nil
}

// selectionFromQuery reads timeframe, months and lookback_days. An absent
// timeframe means last month.
func selectionFromQuery(c *gin.Context) (forecast.Selection, error) {
	sel := forecast.Selection{Timeframe: defaultTimeframe}
	if token := c.Query("timeframe"); strings.TrimSpace(token) != "" {
		tf, err := forecast.ParseTimeframe(token)
		if err != nil {
			return sel, err
		}
		sel.Timeframe = tf
	}

	months, err := queryInt(c, "months")
	if err != nil {
		return sel, err
	}
	days, err := queryInt(c, "lookback_days")
	if err != nil {
		return sel, err
	}
	if months < 0 || days < 0 {
		return sel, invalid("months and lookback_days must not be negative")
	}
	sel.Months = months
	sel.Days = days
	return sel, nil
}

// sortFromQuery reads sort_field and sort_direction ("asc" or "desc").
func sortFromQuery(c *gin.Context) (string, bool, error) {
	field := strings.TrimSpace(c.Query("sort_field"))
	if field != "" && !forecast.IsSortField(field) {
		return "", false, invalid("unknown sort_field %q", field)
	}
	switch strings.ToLower(strings.TrimSpace(c.DefaultQuery("sort_direction", "asc"))) {
	case "asc", "":
		return field, false, nil
	case "desc":
		return field, true, nil
	}
	return "", false, invalid("sort_direction must be asc or desc")
}

// skusFromQuery accepts repeated skus parameters and comma separated lists.
func skusFromQuery(c *gin.Context) []string {
	var skus []string
	for _, v := range c.QueryArray("skus") {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				skus = append(skus, part)
			}
		}
	}
	return skus
}

func wantsCSV(c *gin.Context) bool {
	return strings.EqualFold(strings.TrimSpace(c.Query("format")), "csv")
}

// writeCSV streams rows as an attachment.
func writeCSV(c *gin.Context, filename string, rows []forecast.Row) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := forecast.WriteCSV(c.Writer, rows); err != nil {
		_ = c.Error(err)
	}
}

// queryDate parses a YYYY-MM-DD date at midnight in loc. inclusiveEnd moves
// the result to the following midnight so that end dates include the day.
func queryDate(c *gin.Context, name string, loc *time.Location, inclusiveEnd bool) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, invalid("%s must be a date (YYYY-MM-DD)", name)
	}
	if inclusiveEnd {
		t = t.AddDate(0, 0, 1)
	}
	return t, nil
}
