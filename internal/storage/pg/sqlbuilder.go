package pg

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/datetime"
	"github.com/DjordjeVuckovic/content-query/internal/query"
	"github.com/DjordjeVuckovic/content-query/internal/types/operator"
	"github.com/jackc/pgx/v5"
)

// sqlBuilder compiles a plan into parameterized SQL. Values never end up in
// the statement text; identifiers are quoted with pgx.Identifier.
type sqlBuilder struct {
	plan          *query.QueryPlan
	taxonomyTable string
	now           time.Time
	args          []any
}

func newSQLBuilder(plan *query.QueryPlan, taxonomyTable string, now time.Time) *sqlBuilder {
	return &sqlBuilder{plan: plan, taxonomyTable: taxonomyTable, now: now}
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

// Select returns the bounded fetch of the plan.
func (b *sqlBuilder) Select() (string, []any, error) {
	b.args = nil

	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(ident(b.plan.Collection))

	where, err := b.where()
	if err != nil {
		return "", nil, err
	}
	sb.WriteString(where)

	if order := b.orderBy(); order != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(order)
	}
	if b.plan.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(b.arg(b.plan.Limit))
	}
	if b.plan.Offset > 0 {
		sb.WriteString(" OFFSET ")
		sb.WriteString(b.arg(b.plan.Offset))
	}

	return sb.String(), b.args, nil
}

// Count returns the total number of records matching the plan's filters.
func (b *sqlBuilder) Count() (string, []any, error) {
	b.args = nil

	where, err := b.where()
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) AS total FROM " + ident(b.plan.Collection) + where, b.args, nil
}

func (b *sqlBuilder) where() (string, error) {
	var conds []string

	if b.plan.ResourceID != "" {
		id, err := columnValue(b.plan.ContentType, "id", b.plan.ResourceID, b.now)
		if err != nil {
			return "", err
		}
		conds = append(conds, ident("id")+" = "+b.arg(id))
	}

	for _, tok := range b.plan.Filters {
		cond, err := b.condition(tok)
		if err != nil {
			return "", err
		}
		if cond != "" {
			conds = append(conds, cond)
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), nil
}

func (b *sqlBuilder) condition(tok query.FilterToken) (string, error) {
	switch tok.Kind {
	case query.KindField:
		return b.fieldCondition(tok)

	case query.KindAnyOf, query.KindSearch:
		var parts []string
		for _, sub := range tok.Any {
			cond, err := b.condition(sub)
			if err != nil {
				return "", err
			}
			if cond != "" {
				parts = append(parts, cond)
			}
		}
		if len(parts) == 0 {
			if tok.Kind == query.KindSearch {
				return "FALSE", nil
			}
			return "", nil
		}
		return "(" + strings.Join(parts, " OR ") + ")", nil

	case query.KindTaxonomy:
		in := " IN "
		if tok.Negate {
			in = " NOT IN "
		}
		return fmt.Sprintf("%s%s(SELECT content_id FROM %s WHERE contenttype = %s AND taxonomytype = %s AND slug = ANY(%s))",
			ident("id"), in, ident(b.taxonomyTable),
			b.arg(b.plan.ContentType.Slug), b.arg(tok.Taxonomy), b.arg(tok.Terms)), nil

	default:
		return "", fmt.Errorf("unknown filter token kind %d", tok.Kind)
	}
}

func (b *sqlBuilder) fieldCondition(tok query.FilterToken) (string, error) {
	col := ident(tok.Field)

	if tok.Operator == operator.Match {
		return "CAST(" + col + " AS TEXT) ILIKE " + b.arg("%"+tok.Value+"%"), nil
	}

	v, err := columnValue(b.plan.ContentType, tok.Field, tok.Value, b.now)
	if errors.Is(err, datetime.ErrUnparsable) {
		slog.Debug("ignoring date filter that does not parse", "field", tok.Field, "value", tok.Value)
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if v == nil {
		if tok.Operator == operator.Ne {
			return col + " IS NOT NULL", nil
		}
		return col + " IS NULL", nil
	}

	return col + " " + tok.Operator.SQL() + " " + b.arg(v), nil
}

func (b *sqlBuilder) orderBy() string {
	parts := make([]string, 0, len(b.plan.Order))
	for _, o := range b.plan.Order {
		switch {
		case o.Random:
			parts = append(parts, "RANDOM()")
		case o.Desc:
			parts = append(parts, ident(o.Field)+" DESC")
		default:
			parts = append(parts, ident(o.Field)+" ASC")
		}
	}
	return strings.Join(parts, ", ")
}
