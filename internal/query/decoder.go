package query

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/DjordjeVuckovic/content-query/internal/textquery"
	"github.com/DjordjeVuckovic/content-query/internal/types/operator"
	"github.com/DjordjeVuckovic/content-query/pkg/slug"
)

type Options struct {
	// Strict turns unresolvable content types in a list into an error instead of dropping them.
	Strict      bool
	TablePrefix string
	Now         func() time.Time
}

type Option func(*Options)

func WithStrict(strict bool) Option {
	return func(o *Options) { o.Strict = strict }
}

func WithTablePrefix(prefix string) Option {
	return func(o *Options) { o.TablePrefix = prefix }
}

func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

// Request is one content request: a textquery plus its parameters.
type Request struct {
	TextQuery string
	Params    Params
	// Frontend requests only see published records unless they filter on status.
	Frontend bool
}

// Decoder turns requests into a DecodedQuery with one plan per resolved content type.
type Decoder struct {
	source schema.Source
	opts   Options
}

func NewDecoder(source schema.Source, opts ...Option) *Decoder {
	o := Options{Now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Decoder{source: source, opts: o}
}

func (d *Decoder) Decode(req Request) (*DecodedQuery, error) {
	c, err := Classify(req.Params)
	if err != nil {
		return nil, err
	}

	parsed, err := textquery.Parse(req.TextQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	types, resolved, err := d.resolveSubject(parsed)
	if err != nil {
		return nil, err
	}

	dq := &DecodedQuery{
		TextQuery:     req.TextQuery,
		ContentTypes:  types,
		SelfPaginated: true,
		Meta:          c.Meta,
		Hydrate:       c.Hydrate,
		LogNotFound:   c.LogNotFound,
	}
	filters := c.Filters

	switch parsed.Rule {
	case textquery.RuleByID:
		dq.ReturnSingle = true
		filters["id"] = parsed.ID
	case textquery.RuleSearch:
		dq.Strategy = OrderSearchWeight
		if parsed.Limit > 0 {
			dq.Meta.Limit = parsed.Limit
		}
	case textquery.RuleBySlug:
		dq.ReturnSingle = true
		filters["slug"] = parsed.Slug
	case textquery.RuleLatest, textquery.RuleFirst:
		if dq.Meta.Order == "" {
			dq.Meta.Order = schema.Recency
			if parsed.Rule == textquery.RuleLatest {
				dq.Meta.Order = "-" + schema.Recency
			}
		}
		if dq.Meta.Limit == 0 {
			dq.Meta.Limit = parsed.Limit
		}
	case textquery.RuleRandom:
		ct := resolved[types[0]]
		if DialectFor(ct.Mode) == Remote {
			return nil, fmt.Errorf("%w: random on %q: %w", ErrInvalidQuery, ct.Slug, ErrUnsupported)
		}
		if dq.Meta.Order == "" {
			dq.Meta.Order = "RANDOM"
		}
		if dq.Meta.Limit == 0 {
			dq.Meta.Limit = parsed.Limit
		}
	case textquery.RuleList:
		if !isEmpty(filters["id"]) {
			dq.ReturnSingle = true
		}
	}

	if req.Frontend && isEmpty(filters["status"]) {
		filters["status"] = "published"
	}

	if c.ReturnSingle != nil {
		dq.ReturnSingle = *c.ReturnSingle
	}

	perType := Distribute(types, d.canonicalKeys(types, filters))
	if len(types) > 1 {
		dq.SelfPaginated = false
	}

	if dq.Meta.Order == "" && dq.Strategy == OrderNone && len(types) == 1 {
		if _, ok := resolved[types[0]].Grouping(); ok {
			dq.Strategy = OrderGrouping
		}
	}
	if strings.EqualFold(dq.Meta.Order, "RANDOM") && len(types) > 1 && dq.Strategy == OrderNone {
		dq.Strategy = OrderRandom
	}
	if dq.ReturnSingle || dq.Strategy != OrderNone {
		dq.SelfPaginated = false
	}

	switch {
	case dq.ReturnSingle:
		dq.Meta.Limit = 1
	case dq.Meta.Limit == 0:
		dq.Meta.Limit = DefaultLimit
	}
	if dq.Meta.Page > 0 {
		dq.Meta.Offset = 0
	} else {
		dq.Meta.Page = 1
	}
	if err := checkWindow(dq.Meta); err != nil {
		return nil, err
	}

	for _, name := range types {
		ct, ok := resolved[name]
		if !ok {
			if d.opts.Strict {
				return nil, fmt.Errorf("%w: %q", schema.ErrContentTypeNotFound, name)
			}
			slog.Debug("dropping unresolved content type", "contenttype", name, "textquery", req.TextQuery)
			continue
		}
		dq.Plans = append(dq.Plans, d.buildPlan(ct, perType[name], dq))
	}

	return dq, nil
}

// resolveSubject slugifies the subject members. A single subject must resolve;
// in a list it is enough that one member does.
func (d *Decoder) resolveSubject(parsed textquery.Parsed) ([]string, map[string]*schema.ContentType, error) {
	resolved := make(map[string]*schema.ContentType)
	seen := make(map[string]bool)
	var types []string

	for _, member := range parsed.Types {
		name := slug.Make(member)
		ct, err := d.source.Lookup(member)
		switch {
		case err == nil:
			name = ct.Slug
			resolved[name] = ct
		case !errors.Is(err, schema.ErrContentTypeNotFound):
			return nil, nil, fmt.Errorf("failed to look up content type %q: %w", member, err)
		case !parsed.List:
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}

		if name != "" && !seen[name] {
			seen[name] = true
			types = append(types, name)
		}
	}

	if len(resolved) == 0 {
		return nil, nil, fmt.Errorf("%w: no content type in %q resolves", ErrInvalidQuery, parsed.Subject)
	}
	return types, resolved, nil
}

// canonicalKeys renames nested per-type keys written with a singular slug or
// name to the slug used in types.
func (d *Decoder) canonicalKeys(types []string, filters Params) Params {
	if len(types) < 2 {
		return filters
	}

	requested := make(map[string]bool, len(types))
	for _, t := range types {
		requested[t] = true
	}

	out := make(Params, len(filters))
	for key, value := range filters {
		if nested(value) != nil && !requested[key] {
			if ct, err := d.source.Lookup(key); err == nil && requested[ct.Slug] {
				key = ct.Slug
			}
		}
		out[key] = value
	}
	return out
}

func (d *Decoder) buildPlan(ct *schema.ContentType, params Params, dq *DecodedQuery) *QueryPlan {
	dialect := DialectFor(ct.Mode)
	plan := &QueryPlan{ContentType: ct, Dialect: dialect}

	if dialect == Remote {
		plan.Collection = ct.RemoteCollection()
	} else {
		plan.Collection = ct.TableName(d.opts.TablePrefix)
	}

	filters := copyParams(params)
	var typeOrder string
	if v, ok := filters["order"]; ok {
		typeOrder, _ = toString(v)
		delete(filters, "order")
	}
	if v, ok := filters["id"]; ok {
		if id, direct := directID(v); direct {
			plan.ResourceID = id
			delete(filters, "id")
		}
	}

	plan.Filters = NewFilterCompiler(ct, dialect, d.opts.Now()).Compile(filters)
	for _, t := range plan.Filters {
		if t.Kind == KindSearch {
			plan.SearchWords = t.Words
		}
	}

	plan.Order = CompileOrder(ct, dialect, dq.Strategy, dq.Meta.Order, typeOrder)

	limit := dq.Meta.Limit
	switch {
	case dq.SelfPaginated:
		plan.Limit = limit
		plan.Offset = dq.StartOffset()
		plan.Count = true
	case dq.ReturnSingle:
		plan.Limit = 1
	case dq.Strategy != OrderNone:
		plan.Limit = DefaultLimit
		plan.Count = true
	default:
		plan.Limit = dq.StartOffset() + limit
		plan.Count = true
	}

	return plan
}

// checkWindow rejects pages whose bounds do not fit in an int. Limit is
// already defaulted to a positive value.
func checkWindow(m Meta) error {
	if m.Page-1 > math.MaxInt/m.Limit {
		return fmt.Errorf("%w: page %d with limit %d is out of range", ErrInvalidParameter, m.Page, m.Limit)
	}
	start := m.Offset
	if start == 0 {
		start = (m.Page - 1) * m.Limit
	}
	if start > math.MaxInt-m.Limit {
		return fmt.Errorf("%w: offset %d with limit %d is out of range", ErrInvalidParameter, start, m.Limit)
	}
	return nil
}

// directID reports whether an id parameter addresses one record, i.e. carries
// no operator marker and no value list.
func directID(v any) (string, bool) {
	s, ok := toString(v)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, orSeparator) || strings.Contains(s, andSeparator) {
		return "", false
	}
	if op, stripped := operator.Split(s); op != operator.Eq || stripped != s {
		return "", false
	}
	return s, true
}
