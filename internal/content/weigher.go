package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/DjordjeVuckovic/content-query/internal/schema"
)

const (
	WeigherText  = "text"
	WeigherIndex = "elasticsearch"
)

// Weigher assigns a search relevance weight to already fetched records.
type Weigher interface {
	Weigh(ctx context.Context, ct *schema.ContentType, words []string, records []*Record) error
}

// WeigherRegistry selects the weigher a content type declared by name.
type WeigherRegistry struct {
	mu       sync.RWMutex
	weighers map[string]Weigher
}

func NewWeigherRegistry() *WeigherRegistry {
	return &WeigherRegistry{
		weighers: map[string]Weigher{WeigherText: TextWeigher{}},
	}
}

func (r *WeigherRegistry) Register(name string, w Weigher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.weighers[name] = w
}

// For falls back to the text weigher when the declared one is not registered.
func (r *WeigherRegistry) For(ct *schema.ContentType) Weigher {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if w, ok := r.weighers[ct.Weigher]; ok {
		return w
	}
	if ct.Weigher != "" {
		slog.Debug("unknown weigher, using text", "contenttype", ct.Slug, "weigher", ct.Weigher)
	}
	return r.weighers[WeigherText]
}

const (
	titleWeight    = 100
	textWeight     = 50
	taxonomyWeight = 75
)

// TextWeigher counts word occurrences, weighted by the kind of field they occur in.
type TextWeigher struct{}

func fieldWeight(name string) float64 {
	switch name {
	case "title", "name", "slug":
		return titleWeight
	default:
		return textWeight
	}
}

func (TextWeigher) Weigh(_ context.Context, ct *schema.ContentType, words []string, records []*Record) error {
	fields := ct.SearchableFields()

	for _, r := range records {
		var w float64
		for _, f := range fields {
			v, ok := r.Values[f.Name]
			if !ok || v == nil {
				continue
			}
			text := strings.ToLower(fmt.Sprint(v))
			for _, word := range words {
				w += float64(strings.Count(text, word)) * fieldWeight(f.Name)
			}
		}
		for _, terms := range r.Taxonomies {
			for _, t := range terms {
				term := strings.ToLower(t.Slug + " " + t.Name)
				for _, word := range words {
					if strings.Contains(term, word) {
						w += taxonomyWeight
					}
				}
			}
		}
		r.Weight = w
	}
	return nil
}

// ScoreSource rates records by id against search words, e.g. a search index.
type ScoreSource interface {
	Scores(ctx context.Context, ct *schema.ContentType, ids []string, words []string) (map[string]float64, error)
}

// IndexWeigher takes weights from a ScoreSource. Records the source does not
// score keep a zero weight.
type IndexWeigher struct {
	source ScoreSource
}

func NewIndexWeigher(source ScoreSource) *IndexWeigher {
	return &IndexWeigher{source: source}
}

func (w *IndexWeigher) Weigh(ctx context.Context, ct *schema.ContentType, words []string, records []*Record) error {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}

	scores, err := w.source.Scores(ctx, ct, ids, words)
	if err != nil {
		return err
	}
	for _, r := range records {
		r.Weight = scores[r.ID]
	}
	return nil
}
