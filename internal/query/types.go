package query

import (
	"errors"
	"strings"

	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/DjordjeVuckovic/content-query/internal/types/operator"
)

var (
	ErrInvalidQuery     = errors.New("invalid query")
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrUnsupported marks constructs a dialect cannot express.
	ErrUnsupported = errors.New("unsupported by dialect")
)

// DefaultLimit caps the number of records fetched when no limit was requested.
const DefaultLimit = 9999

// Params is the raw parameter mapping of a content request. Values are scalars,
// slices of scalars, or nested Params keyed by content type.
type Params map[string]any

// Dialect selects the backend executing a plan.
type Dialect int

const (
	Relational Dialect = iota
	Remote
)

// DialectFor maps a storage mode to the dialect that reads it. Sync records
// are read from their local copy.
func DialectFor(mode schema.StorageMode) Dialect {
	if mode == schema.ModeRemote {
		return Remote
	}
	return Relational
}

func (d Dialect) String() string {
	switch d {
	case Relational:
		return "relational"
	case Remote:
		return "remote"
	default:
		return "unknown"
	}
}

// OrderStrategy is an ordering applied after all plans ran and were merged.
type OrderStrategy int

const (
	OrderNone OrderStrategy = iota
	OrderRandom
	OrderSearchWeight
	OrderGrouping
)

func (s OrderStrategy) String() string {
	switch s {
	case OrderRandom:
		return "random"
	case OrderSearchWeight:
		return "search-weight"
	case OrderGrouping:
		return "grouping"
	default:
		return "none"
	}
}

type TokenKind int

const (
	KindField TokenKind = iota
	// KindAnyOf matches when any of the nested tokens matches.
	KindAnyOf
	KindTaxonomy
	// KindSearch is a free-text search; Any holds its substring expansion.
	KindSearch
)

// FilterToken is a backend neutral filter. Field always names the local column.
type FilterToken struct {
	Kind     TokenKind
	Field    string
	Operator operator.Operator
	Value    string

	Any []FilterToken

	Taxonomy string
	Terms    []string
	Negate   bool

	Words []string
}

func FieldToken(field string, op operator.Operator, value string) FilterToken {
	return FilterToken{Kind: KindField, Field: field, Operator: op, Value: value}
}

func AnyOf(tokens ...FilterToken) FilterToken {
	return FilterToken{Kind: KindAnyOf, Any: tokens}
}

type OrderToken struct {
	Field  string
	Desc   bool
	Random bool
}

// String renders the token as "{-|+}field", or RANDOM.
func (o OrderToken) String() string {
	if o.Random {
		return "RANDOM"
	}
	if o.Desc {
		return "-" + o.Field
	}
	return "+" + o.Field
}

// QueryPlan is everything a dialect needs to fetch the records of one content type.
type QueryPlan struct {
	ContentType *schema.ContentType
	Dialect     Dialect
	// Collection is the table name or the remote endpoint.
	Collection string
	Filters    []FilterToken
	Order      []OrderToken
	// ResourceID addresses a single record directly.
	ResourceID  string
	SearchWords []string
	Limit       int
	Offset      int
	// Count asks the executor for the total number of matches.
	Count bool
}

func (p *QueryPlan) Slug() string {
	return p.ContentType.Slug
}

type Meta struct {
	Page       int
	Limit      int
	Offset     int
	Paging     bool
	PrintQuery bool
	Order      string
}

// DecodedQuery is built fresh for every content request.
type DecodedQuery struct {
	TextQuery     string
	ContentTypes  []string
	ReturnSingle  bool
	SelfPaginated bool
	Strategy      OrderStrategy
	Plans         []*QueryPlan
	Meta          Meta
	Hydrate       bool
	LogNotFound   bool
}

// PagerName identifies the result set, e.g. "entries_pages".
func (q *DecodedQuery) PagerName() string {
	return strings.Join(q.ContentTypes, "_")
}

// StartOffset is the position of the first record of the requested page. An
// explicit offset only survives decoding when no page was given.
func (q *DecodedQuery) StartOffset() int {
	if q.Meta.Offset > 0 {
		return q.Meta.Offset
	}
	return (q.Meta.Page - 1) * q.Meta.Limit
}

// SliceBounds is the [from, to) window of the requested page in a merged sequence.
func (q *DecodedQuery) SliceBounds() (int, int) {
	from := q.StartOffset()
	return from, from + q.Meta.Limit
}
