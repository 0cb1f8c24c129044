package content

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/datetime"
	"github.com/DjordjeVuckovic/content-query/internal/query"
	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/DjordjeVuckovic/content-query/pkg/pagination"
)

// PostProcessor applies the deferred order and the manual page slice to the
// merged records of all plans.
type PostProcessor struct {
	mu   sync.Mutex
	rand *rand.Rand
}

func NewPostProcessor(r *rand.Rand) *PostProcessor {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &PostProcessor{rand: r}
}

func (p *PostProcessor) Apply(dq *query.DecodedQuery, records []*Record) []*Record {
	switch dq.Strategy {
	case query.OrderRandom:
		p.shuffle(records)
	case query.OrderSearchWeight:
		sort.SliceStable(records, func(i, j int) bool {
			return compareSearchWeight(records[i], records[j]) < 0
		})
	case query.OrderGrouping:
		secondary := secondaryOrder(dq)
		sort.SliceStable(records, func(i, j int) bool {
			return compareGrouping(records[i], records[j], secondary) < 0
		})
	}

	if dq.SelfPaginated || dq.ReturnSingle {
		return records
	}
	from, to := dq.SliceBounds()
	return pagination.Slice(records, from, to-from)
}

func (p *PostProcessor) shuffle(records []*Record) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rand.Shuffle(len(records), func(i, j int) { records[i], records[j] = records[j], records[i] })
}

// compareSearchWeight orders by weight descending, then recency descending,
// then title ascending ignoring case.
func compareSearchWeight(a, b *Record) int {
	switch {
	case a.Weight > b.Weight:
		return -1
	case a.Weight < b.Weight:
		return 1
	}
	if c := compareValues(a.Get(schema.Recency), b.Get(schema.Recency)); c != 0 {
		return -c
	}
	return strings.Compare(
		strings.ToLower(stringValue(a.Get("title"))),
		strings.ToLower(stringValue(b.Get("title"))))
}

// secondaryOrder is the field order used inside a group.
func secondaryOrder(dq *query.DecodedQuery) *query.OrderToken {
	for _, plan := range dq.Plans {
		for _, o := range plan.Order {
			if !o.Random {
				o := o
				return &o
			}
		}
	}
	return nil
}

// compareGrouping orders by group position with ungrouped records last, then
// by explicit sort order, then by the secondary field order.
func compareGrouping(a, b *Record, secondary *query.OrderToken) int {
	switch {
	case a.Group != nil && b.Group == nil:
		return -1
	case a.Group == nil && b.Group != nil:
		return 1
	case a.Group != nil && b.Group != nil && a.Group.Index != b.Group.Index:
		if a.Group.Index < b.Group.Index {
			return -1
		}
		return 1
	}

	if a.SortOrder != nil && b.SortOrder != nil && *a.SortOrder != *b.SortOrder {
		if *a.SortOrder < *b.SortOrder {
			return -1
		}
		return 1
	}

	if secondary == nil {
		return 0
	}
	c := compareValues(a.Get(secondary.Field), b.Get(secondary.Field))
	if secondary.Desc {
		return -c
	}
	return c
}

// compareValues orders nil first, then times, numbers and finally strings.
func compareValues(a, b any) int {
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

	fa, errA := strconv.ParseFloat(stringValue(a), 64)
	fb, errB := strconv.ParseFloat(stringValue(b), 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}

	return strings.Compare(stringValue(a), stringValue(b))
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case time.Time:
		return s.Format(datetime.Layout)
	default:
		return fmt.Sprint(v)
	}
}
