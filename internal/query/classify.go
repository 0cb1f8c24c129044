package query

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

var metaKeys = map[string]bool{
	"page":         true,
	"limit":        true,
	"offset":       true,
	"returnsingle": true,
	"printquery":   true,
	"paging":       true,
	"order":        true,
}

// Classified is a raw parameter mapping split into meta parameters, call
// options and per-type filter parameters.
type Classified struct {
	Meta Meta
	// ReturnSingle is set only when the caller passed "returnsingle".
	ReturnSingle *bool
	Filters      Params
	Hydrate      bool
	LogNotFound  bool
}

func Classify(params Params) (Classified, error) {
	c := Classified{Filters: Params{}, Hydrate: true}

	for key, value := range params {
		switch key {
		case "hydrate":
			c.Hydrate = toBool(value)
			continue
		case "log_not_found":
			c.LogNotFound = toBool(value)
			continue
		}

		if !metaKeys[key] {
			c.Filters[key] = value
			continue
		}

		var err error
		switch key {
		case "page":
			c.Meta.Page, err = toInt(key, value)
		case "limit":
			c.Meta.Limit, err = toInt(key, value)
		case "offset":
			c.Meta.Offset, err = toInt(key, value)
		case "returnsingle":
			single := toBool(value)
			c.ReturnSingle = &single
		case "printquery":
			c.Meta.PrintQuery = toBool(value)
		case "paging":
			c.Meta.Paging = toBool(value)
		case "order":
			c.Meta.Order, _ = toString(value)
			c.Meta.Order = strings.TrimSpace(c.Meta.Order)
		}
		if err != nil {
			return Classified{}, err
		}
	}

	return c, nil
}

func toInt(key string, v any) (int, error) {
	var n int
	switch t := v.(type) {
	case nil:
		return 0, nil
	case int:
		n = t
	case int64:
		if t > math.MaxInt || t < math.MinInt {
			return 0, fmt.Errorf("%w: %s is out of range: %d", ErrInvalidParameter, key, t)
		}
		n = int(t)
	case float64:
		if t != math.Trunc(t) || math.Abs(t) > 1<<53 {
			return 0, fmt.Errorf("%w: %s must be a whole number in range, got %v", ErrInvalidParameter, key, t)
		}
		n = int(t)
	default:
		s, _ := toString(v)
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		parsed, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be a non-negative number, got %q", ErrInvalidParameter, key, s)
		}
		n = parsed
	}

	if n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative number, got %d", ErrInvalidParameter, key, n)
	}
	return n, nil
}

func toBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	s, _ := toString(v)
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

// toString renders scalars; slices are joined as an OR list.
func toString(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string:
		return s, true
	case []string:
		return strings.Join(s, orSeparator), true
	case []any:
		parts := make([]string, 0, len(s))
		for _, p := range s {
			if ps, ok := toString(p); ok {
				parts = append(parts, ps)
			}
		}
		return strings.Join(parts, orSeparator), true
	case Params, map[string]any:
		return "", false
	default:
		return fmt.Sprint(s), true
	}
}

func isEmpty(v any) bool {
	s, ok := toString(v)
	return !ok || strings.TrimSpace(s) == ""
}
