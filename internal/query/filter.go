package query

import (
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/DjordjeVuckovic/content-query/internal/datetime"
	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/DjordjeVuckovic/content-query/internal/types/operator"
)

const (
	orSeparator        = " || "
	andSeparator       = " && "
	compositeSeparator = "|||"
)

// FilterCompiler turns the per-type parameters of one content type into filter tokens.
type FilterCompiler struct {
	ct      *schema.ContentType
	dialect Dialect
	now     time.Time
}

func NewFilterCompiler(ct *schema.ContentType, dialect Dialect, now time.Time) *FilterCompiler {
	return &FilterCompiler{ct: ct, dialect: dialect, now: now}
}

// Compile handles every parameter that names a column, a taxonomy, a composite
// OR or the free-text "filter". Other keys are ignored.
func (c *FilterCompiler) Compile(params Params) []FilterToken {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var tokens []FilterToken
	for _, key := range keys {
		value := params[key]

		switch {
		case key == "filter":
			if t, ok := c.Search(value); ok {
				tokens = append(tokens, t)
			}
		case strings.Contains(key, compositeSeparator):
			if t, ok := c.CompositeOr(key, value); ok {
				tokens = append(tokens, t)
			}
		case c.ct.IsColumn(key, false):
			tokens = append(tokens, c.Field(key, value)...)
		default:
			if _, ok := c.ct.Taxonomy(key); ok {
				if t, ok := c.Taxonomy(key, value); ok {
					tokens = append(tokens, t)
				}
			}
		}
	}

	return tokens
}

// Field compiles a column filter. Values joined by " || " become an OR group and
// values joined by " && " become separate tokens; the remote dialect skips both.
func (c *FilterCompiler) Field(column string, raw any) []FilterToken {
	v, ok := toString(raw)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)

	if strings.Contains(v, orSeparator) || strings.Contains(v, andSeparator) {
		if c.dialect == Remote {
			slog.Debug("value lists are not supported by the remote dialect", "contenttype", c.ct.Slug, "field", column)
			return nil
		}
	}

	if strings.Contains(v, orSeparator) {
		var group []FilterToken
		for _, part := range strings.Split(v, orSeparator) {
			group = append(group, c.single(column, part))
		}
		return []FilterToken{AnyOf(group...)}
	}

	if strings.Contains(v, andSeparator) {
		var all []FilterToken
		for _, part := range strings.Split(v, andSeparator) {
			all = append(all, c.single(column, part))
		}
		return all
	}

	return []FilterToken{c.single(column, v)}
}

func (c *FilterCompiler) single(column, raw string) FilterToken {
	op, v := operator.Split(raw)

	if ft, _ := c.ct.ColumnType(column); ft.IsDate() && op != operator.Match {
		v = datetime.Normalize(v, c.now)
	}

	return FieldToken(column, op, v)
}

// CompositeOr compiles "a ||| b" keys paired with "x ||| y" values into one OR
// group. A single value is reused for every key.
func (c *FilterCompiler) CompositeOr(key string, raw any) (FilterToken, bool) {
	if c.dialect == Remote {
		slog.Debug("composite OR filters are not supported by the remote dialect", "contenttype", c.ct.Slug, "key", key)
		return FilterToken{}, false
	}

	v, ok := toString(raw)
	if !ok {
		return FilterToken{}, false
	}
	keys := splitTrim(key, compositeSeparator)
	values := splitTrim(v, compositeSeparator)

	var group []FilterToken
	for i, k := range keys {
		if !c.ct.IsColumn(k, false) {
			continue
		}
		switch {
		case i < len(values):
			group = append(group, c.single(k, values[i]))
		case len(values) == 1:
			group = append(group, c.single(k, values[0]))
		}
	}

	if len(group) == 0 {
		return FilterToken{}, false
	}
	return AnyOf(group...), true
}

// Taxonomy compiles a membership filter. "!a || b" excludes records tagged a or b.
func (c *FilterCompiler) Taxonomy(name string, raw any) (FilterToken, bool) {
	if c.dialect == Remote {
		slog.Debug("taxonomy filters are not supported by the remote dialect", "contenttype", c.ct.Slug, "taxonomy", name)
		return FilterToken{}, false
	}

	v, ok := toString(raw)
	if !ok {
		return FilterToken{}, false
	}
	v = strings.TrimSpace(v)
	negate := strings.HasPrefix(v, "!")
	v = strings.TrimPrefix(v, "!")

	var terms []string
	for _, part := range splitTrim(v, strings.TrimSpace(orSeparator)) {
		terms = append(terms, splitTrim(part, ",")...)
	}
	if len(terms) == 0 {
		return FilterToken{}, false
	}

	return FilterToken{Kind: KindTaxonomy, Taxonomy: name, Terms: terms, Negate: negate}, true
}

// Search compiles the free-text filter into a substring match of every word
// over every searchable field.
func (c *FilterCompiler) Search(raw any) (FilterToken, bool) {
	q, ok := toString(raw)
	if !ok {
		return FilterToken{}, false
	}
	words := SearchWords(q)
	if len(words) == 0 {
		return FilterToken{}, false
	}

	t := FilterToken{Kind: KindSearch, Value: strings.TrimSpace(q), Words: words}
	for _, f := range c.ct.SearchableFields() {
		for _, w := range words {
			t.Any = append(t.Any, FieldToken(f.Name, operator.Match, w))
		}
	}
	return t, true
}

// SearchWords lower-cases the whitespace separated words of q and drops words
// shorter than two characters.
func SearchWords(q string) []string {
	var words []string
	for _, w := range strings.Fields(q) {
		w = strings.ToLower(w)
		if utf8.RuneCountInString(w) >= 2 {
			words = append(words, w)
		}
	}
	return words
}

func splitTrim(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
