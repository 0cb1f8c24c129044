package pg

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/datetime"
	"github.com/DjordjeVuckovic/content-query/internal/query"
	"github.com/DjordjeVuckovic/content-query/internal/schema"
)

// columnValue converts a filter or save value to the Go type pgx encodes for
// the column, so comparisons happen on the column's own type.
func columnValue(ct *schema.ContentType, column string, v any, now time.Time) (any, error) {
	ft, _ := ct.ColumnType(column)

	if v == nil {
		return nil, nil
	}

	switch ft {
	case schema.FieldInteger:
		return toInt64(column, v)
	case schema.FieldFloat:
		return toFloat64(column, v)
	case schema.FieldCheckbox:
		return toBool(v), nil
	case schema.FieldDate, schema.FieldDatetime:
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		if s == "" {
			return nil, nil
		}
		t, err := datetime.Parse(s, now)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a date: %q: %w", query.ErrInvalidParameter, column, s, err)
		}
		return t, nil
	default:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(v), nil
	}
}

func toInt64(column string, v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		return int64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	}
	i, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(v)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not an integer: %q", query.ErrInvalidParameter, column, fmt.Sprint(v))
	}
	return i, nil
}

func toFloat64(column string, v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(fmt.Sprint(v)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a number: %q", query.ErrInvalidParameter, column, fmt.Sprint(v))
	}
	return f, nil
}

func toBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case int:
		return b != 0
	case int64:
		return b != 0
	case float64:
		return b != 0
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(fmt.Sprint(v)))
	return err == nil && parsed
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}

func idString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
