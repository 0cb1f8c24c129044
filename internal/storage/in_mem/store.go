// Package in_mem keeps records of local content types in process memory. It
// understands the relational dialect and backs tests and schema-only setups
// without a database.
package in_mem

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/datetime"
	"github.com/DjordjeVuckovic/content-query/internal/query"
	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/DjordjeVuckovic/content-query/internal/storage"
	"github.com/DjordjeVuckovic/content-query/internal/types/operator"
)

type Store struct {
	storageLock sync.RWMutex
	records     map[string]map[int64]storage.Row
	taxonomies  map[string]map[int64][]storage.TaxonomyTerm
	nextID      map[string]int64

	now  func() time.Time
	rand *rand.Rand
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRand fixes the source used for RANDOM ordering.
func WithRand(r *rand.Rand) Option {
	return func(s *Store) { s.rand = r }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		records:    make(map[string]map[int64]storage.Row),
		taxonomies: make(map[string]map[int64][]storage.TaxonomyTerm),
		nextID:     make(map[string]int64),
		now:        time.Now,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id is not an integer: %q", query.ErrInvalidParameter, id)
	}
	return n, nil
}

func copyRow(r storage.Row) storage.Row {
	out := make(storage.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (s *Store) Insert(ctx context.Context, ct *schema.ContentType, values storage.Row) (string, error) {
	s.storageLock.Lock()
	defer s.storageLock.Unlock()

	s.nextID[ct.Slug]++
	id := s.nextID[ct.Slug]

	row := storage.Row{}
	for k, v := range values {
		if _, ok := ct.ColumnType(k); ok {
			row[k] = v
		}
	}
	now := s.now()
	for _, col := range []string{"datecreated", "datechanged"} {
		if row[col] == nil {
			row[col] = now
		}
	}
	row["id"] = id

	if s.records[ct.Slug] == nil {
		s.records[ct.Slug] = make(map[int64]storage.Row)
	}
	s.records[ct.Slug][id] = row

	slog.Debug("record stored in memory", "contenttype", ct.Slug, "id", id)
	return strconv.FormatInt(id, 10), nil
}

func (s *Store) Update(ctx context.Context, ct *schema.ContentType, id string, values storage.Row) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}

	s.storageLock.Lock()
	defer s.storageLock.Unlock()

	row, ok := s.records[ct.Slug][key]
	if !ok {
		return fmt.Errorf("%s %s: %w", ct.Slug, id, storage.ErrRecordNotFound)
	}
	for k, v := range values {
		if _, ok := ct.ColumnType(k); ok && k != "id" {
			row[k] = v
		}
	}
	row["datechanged"] = s.now()
	return nil
}

func (s *Store) Delete(ctx context.Context, ct *schema.ContentType, id string) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}

	s.storageLock.Lock()
	defer s.storageLock.Unlock()

	if _, ok := s.records[ct.Slug][key]; !ok {
		return fmt.Errorf("%s %s: %w", ct.Slug, id, storage.ErrRecordNotFound)
	}
	delete(s.records[ct.Slug], key)
	delete(s.taxonomies[ct.Slug], key)
	return nil
}

func (s *Store) Find(ctx context.Context, ct *schema.ContentType, id string) (storage.Row, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}

	s.storageLock.RLock()
	defer s.storageLock.RUnlock()

	row, ok := s.records[ct.Slug][key]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", ct.Slug, id, storage.ErrRecordNotFound)
	}
	return copyRow(row), nil
}

// SetTaxonomies replaces the taxonomy assignments of a record.
func (s *Store) SetTaxonomies(ctx context.Context, ct *schema.ContentType, id string, terms []storage.TaxonomyTerm) error {
	key, err := parseID(id)
	if err != nil {
		return err
	}

	s.storageLock.Lock()
	defer s.storageLock.Unlock()

	if s.taxonomies[ct.Slug] == nil {
		s.taxonomies[ct.Slug] = make(map[int64][]storage.TaxonomyTerm)
	}
	s.taxonomies[ct.Slug][key] = append([]storage.TaxonomyTerm(nil), terms...)
	return nil
}

func (s *Store) Taxonomies(ctx context.Context, ct *schema.ContentType, ids []string) (map[string][]storage.TaxonomyTerm, error) {
	s.storageLock.RLock()
	defer s.storageLock.RUnlock()

	out := make(map[string][]storage.TaxonomyTerm, len(ids))
	for _, id := range ids {
		key, err := parseID(id)
		if err != nil {
			continue
		}
		if terms := s.taxonomies[ct.Slug][key]; len(terms) > 0 {
			out[id] = append([]storage.TaxonomyTerm(nil), terms...)
		}
	}
	return out, nil
}

// Execute evaluates a relational plan against the stored records.
func (s *Store) Execute(ctx context.Context, plan *query.QueryPlan, dq *query.DecodedQuery) (*storage.ExecuteResult, error) {
	// Exclusive: RANDOM ordering draws from the shared source.
	s.storageLock.Lock()
	defer s.storageLock.Unlock()

	ct := plan.ContentType
	now := s.now()

	filters := pruneDates(ct, plan.Filters, now)

	keys := make([]int64, 0, len(s.records[ct.Slug]))
	for key := range s.records[ct.Slug] {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var matched []storage.Row
	for _, key := range keys {
		row := s.records[ct.Slug][key]
		if plan.ResourceID != "" && strconv.FormatInt(key, 10) != plan.ResourceID {
			continue
		}
		ok, err := s.matchAll(ct, key, row, filters, now)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, copyRow(row))
		}
	}

	s.order(matched, plan.Order)

	total := len(matched)
	from := min(max(plan.Offset, 0), total)
	to := total
	if plan.Limit > 0 && plan.Limit < total-from {
		to = from + plan.Limit
	}
	hits := matched[from:to]
	if hits == nil {
		hits = []storage.Row{}
	}

	if dq != nil && dq.Meta.PrintQuery {
		slog.Info("memory query", "contenttype", ct.Slug, "filters", len(plan.Filters), "order", plan.Order, "matched", total)
	}

	return &storage.ExecuteResult{TotalHits: total, Hits: hits}, nil
}

// pruneDates drops date comparisons whose value does not parse. A group left
// empty is dropped too, except a search group, which then matches nothing.
func pruneDates(ct *schema.ContentType, tokens []query.FilterToken, now time.Time) []query.FilterToken {
	out := make([]query.FilterToken, 0, len(tokens))
	for _, tok := range tokens {
		switch tok.Kind {
		case query.KindField:
			ft, _ := ct.ColumnType(tok.Field)
			if ft.IsDate() && tok.Operator != operator.Match && strings.TrimSpace(tok.Value) != "" {
				if _, err := datetime.Parse(tok.Value, now); err != nil {
					slog.Debug("ignoring date filter that does not parse", "field", tok.Field, "value", tok.Value)
					continue
				}
			}
		case query.KindAnyOf, query.KindSearch:
			tok.Any = pruneDates(ct, tok.Any, now)
			if tok.Kind == query.KindAnyOf && len(tok.Any) == 0 {
				continue
			}
		}
		out = append(out, tok)
	}
	return out
}

func (s *Store) matchAll(ct *schema.ContentType, key int64, row storage.Row, tokens []query.FilterToken, now time.Time) (bool, error) {
	for _, tok := range tokens {
		ok, err := s.match(ct, key, row, tok, now)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (s *Store) match(ct *schema.ContentType, key int64, row storage.Row, tok query.FilterToken, now time.Time) (bool, error) {
	switch tok.Kind {
	case query.KindAnyOf, query.KindSearch:
		for _, sub := range tok.Any {
			ok, err := s.match(ct, key, row, sub, now)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return tok.Kind == query.KindAnyOf && len(tok.Any) == 0, nil

	case query.KindTaxonomy:
		found := false
		for _, term := range s.taxonomies[ct.Slug][key] {
			if term.Taxonomy != tok.Taxonomy {
				continue
			}
			for _, want := range tok.Terms {
				if term.Slug == want {
					found = true
				}
			}
		}
		return found != tok.Negate, nil

	default:
		return compareField(ct, row[tok.Field], tok, now)
	}
}

func compareField(ct *schema.ContentType, have any, tok query.FilterToken, now time.Time) (bool, error) {
	if tok.Operator == operator.Match {
		if have == nil {
			return false, nil
		}
		return strings.Contains(strings.ToLower(fmt.Sprint(have)), strings.ToLower(tok.Value)), nil
	}
	if have == nil {
		return tok.Operator == operator.Ne, nil
	}

	cmp, err := compare(ct, tok.Field, have, tok.Value, now)
	if err != nil {
		return false, err
	}

	switch tok.Operator {
	case operator.Ne:
		return cmp != 0, nil
	case operator.Lt:
		return cmp < 0, nil
	case operator.Lte:
		return cmp <= 0, nil
	case operator.Gt:
		return cmp > 0, nil
	case operator.Gte:
		return cmp >= 0, nil
	default:
		return cmp == 0, nil
	}
}

func compare(ct *schema.ContentType, field string, have any, want string, now time.Time) (int, error) {
	ft, _ := ct.ColumnType(field)

	switch {
	case ft == schema.FieldInteger || ft == schema.FieldFloat:
		a, errA := strconv.ParseFloat(fmt.Sprint(have), 64)
		b, errB := strconv.ParseFloat(strings.TrimSpace(want), 64)
		if errB != nil {
			return 0, fmt.Errorf("%w: %s is not a number: %q", query.ErrInvalidParameter, field, want)
		}
		if errA != nil {
			return strings.Compare(fmt.Sprint(have), want), nil
		}
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		}
		return 0, nil

	case ft.IsDate():
		b, err := datetime.Parse(want, now)
		if err != nil {
			return 0, fmt.Errorf("%w: %s is not a date: %q: %w", query.ErrInvalidParameter, field, want, err)
		}
		a, ok := asTime(have, now)
		if !ok {
			return -1, nil
		}
		return a.Compare(b), nil

	case ft == schema.FieldCheckbox:
		a := truthy(fmt.Sprint(have))
		b := truthy(want)
		if a == b {
			return 0, nil
		}
		if !a {
			return -1, nil
		}
		return 1, nil

	default:
		return strings.Compare(fmt.Sprint(have), want), nil
	}
}

func truthy(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

func asTime(v any, now time.Time) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, true
	}
	t, err := datetime.Parse(fmt.Sprint(v), now)
	return t, err == nil
}

func (s *Store) order(rows []storage.Row, order []query.OrderToken) {
	for _, o := range order {
		if o.Random {
			s.rand.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
			return
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range order {
			c := compareAny(rows[i][o.Field], rows[j][o.Field])
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

// compareAny orders nil first, then by the natural order of the value type.
func compareAny(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	fa, errA := strconv.ParseFloat(fmt.Sprint(a), 64)
	fb, errB := strconv.ParseFloat(fmt.Sprint(b), 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(strings.ToLower(fmt.Sprint(a)), strings.ToLower(fmt.Sprint(b)))
}

var (
	_ storage.Storer   = (*Store)(nil)
	_ storage.Executor = (*Store)(nil)
	_ storage.Enricher = (*Store)(nil)
)
