// Package content answers textquery requests across local and remote content
// types and runs the write path that keeps them, and their sync copies, current.
package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/metrics"
	"github.com/DjordjeVuckovic/content-query/internal/query"
	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/DjordjeVuckovic/content-query/internal/storage"
	"github.com/DjordjeVuckovic/content-query/pkg/pagination"
)

var (
	// ErrBackendUnavailable is returned when a content type lives in a backend
	// that was not configured.
	ErrBackendUnavailable = errors.New("content backend not configured")
	ErrNotSyncable        = errors.New("content type is not in sync mode")
)

// TaxonomySetter is implemented by storers that keep taxonomy assignments.
type TaxonomySetter interface {
	SetTaxonomies(ctx context.Context, ct *schema.ContentType, id string, terms []storage.TaxonomyTerm) error
}

// Backend bundles the collaborators of one dialect. Enricher may be nil.
type Backend struct {
	Executor storage.Executor
	Storer   storage.Storer
	Enricher storage.Enricher
}

type Result struct {
	Records []*Record         `json:"records,omitempty"`
	Single  *Record           `json:"record,omitempty"`
	Pager   *pagination.Pager `json:"pager,omitempty"`

	Query *query.DecodedQuery `json:"-"`
}

type Service struct {
	source     schema.Source
	decoder    *query.Decoder
	relational *Backend
	remote     *Backend
	indexer    storage.Indexer
	weighers   *WeigherRegistry
	post       *PostProcessor
	changes    *ChangeLog
	now        func() time.Time
}

type Option func(*Service)

func WithRelational(b Backend) Option {
	return func(s *Service) { s.relational = &b }
}

func WithRemote(b Backend) Option {
	return func(s *Service) { s.remote = &b }
}

func WithIndexer(idx storage.Indexer) Option {
	return func(s *Service) { s.indexer = idx }
}

func WithWeighers(r *WeigherRegistry) Option {
	return func(s *Service) { s.weighers = r }
}

func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.post = NewPostProcessor(r) }
}

func WithChangeLog(c *ChangeLog) Option {
	return func(s *Service) { s.changes = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(source schema.Source, decoder *query.Decoder, opts ...Option) *Service {
	s := &Service{
		source:   source,
		decoder:  decoder,
		weighers: NewWeigherRegistry(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.post == nil {
		s.post = NewPostProcessor(nil)
	}
	if s.changes == nil {
		s.changes = NewChangeLog(nil)
	}
	return s
}

func (s *Service) backend(d query.Dialect) (*Backend, error) {
	var b *Backend
	switch d {
	case query.Relational:
		b = s.relational
	case query.Remote:
		b = s.remote
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, d)
	}
	return b, nil
}

// GetContent decodes the request, runs its plans one after another and
// returns the merged, ordered page. Any failing plan fails the whole call.
func (s *Service) GetContent(ctx context.Context, req query.Request) (res *Result, err error) {
	start := time.Now()
	defer func() { metrics.ObserveQuery(start, err) }()

	dq, err := s.decoder.Decode(req)
	if err != nil {
		slog.Warn("failed to decode content query", "textquery", req.TextQuery, "error", err)
		return nil, err
	}

	var (
		records []*Record
		total   int
	)
	for _, plan := range dq.Plans {
		b, err := s.backend(plan.Dialect)
		if err != nil {
			return nil, err
		}

		raw, err := b.Executor.Execute(ctx, plan, dq)
		if err != nil {
			slog.Error("content plan failed", "contenttype", plan.Slug(), "dialect", plan.Dialect, "error", err)
			return nil, err
		}

		batch := hydrate(plan.ContentType, raw.Hits)
		if dq.Hydrate && plan.Dialect == query.Relational {
			enrich(ctx, b.Enricher, batch)
		}
		if dq.Strategy == query.OrderSearchWeight {
			s.weigh(ctx, plan, batch)
		}

		total += raw.TotalHits
		records = append(records, batch.Records...)
	}

	records = s.post.Apply(dq, records)

	if dq.ReturnSingle {
		if len(records) == 0 {
			if dq.LogNotFound {
				slog.Warn("content not found", "textquery", dq.TextQuery)
			}
			return nil, fmt.Errorf("%s: %w", dq.TextQuery, storage.ErrRecordNotFound)
		}
		return &Result{Single: records[0], Query: dq}, nil
	}

	pager := pagination.NewPagerAt(dq.PagerName(), total, dq.StartOffset(), dq.Meta.Limit, len(records))
	if records == nil {
		records = []*Record{}
	}
	return &Result{Records: records, Pager: &pager, Query: dq}, nil
}

func (s *Service) weigh(ctx context.Context, plan *query.QueryPlan, b *Batch) {
	if len(b.Records) == 0 {
		return
	}
	w := s.weighers.For(plan.ContentType)
	if err := w.Weigh(ctx, plan.ContentType, plan.SearchWords, b.Records); err != nil {
		slog.Warn("failed to weigh search results", "contenttype", plan.Slug(), "error", err)
	}
}

// Save inserts a record when values carry no id and updates it otherwise.
// It returns the id of the stored record.
func (s *Service) Save(ctx context.Context, contentType string, values storage.Row) (id string, err error) {
	ct, err := s.source.Lookup(contentType)
	if err != nil {
		return "", err
	}
	defer func() { metrics.ObserveWrite("save", string(ct.Mode), err) }()

	dialect := query.DialectFor(ct.Mode)
	b, err := s.backend(dialect)
	if err != nil {
		return "", err
	}

	data := sanitize(ct, values, dialect)
	id = idOf(values)

	if id == "" {
		return s.insert(ctx, ct, b, data)
	}

	old, err := b.Storer.Find(ctx, ct, id)
	switch {
	case errors.Is(err, storage.ErrRecordNotFound) && ct.Mode == schema.ModeSync:
		slog.Info("sync record missing, inserting instead", "contenttype", ct.Slug, "id", id)
		return s.insert(ctx, ct, b, data)
	case err != nil:
		return "", err
	}

	if err := b.Storer.Update(ctx, ct, id, data.values); err != nil {
		return "", err
	}
	s.afterWrite(ctx, ct, b, id, data)
	s.changes.Entry(ctx, ActionUpdate, ct.Slug, id, old, data.values)
	return id, nil
}

func (s *Service) insert(ctx context.Context, ct *schema.ContentType, b *Backend, data saveData) (string, error) {
	id, err := b.Storer.Insert(ctx, ct, data.values)
	if err != nil {
		return "", err
	}
	s.afterWrite(ctx, ct, b, id, data)
	s.changes.Entry(ctx, ActionInsert, ct.Slug, id, nil, data.values)
	return id, nil
}

// afterWrite stores taxonomies and refreshes the search index. Both are best effort.
func (s *Service) afterWrite(ctx context.Context, ct *schema.ContentType, b *Backend, id string, data saveData) {
	if data.taxonomies != nil {
		if setter, ok := b.Storer.(TaxonomySetter); ok {
			if err := setter.SetTaxonomies(ctx, ct, id, data.taxonomies); err != nil {
				slog.Warn("failed to store taxonomies", "contenttype", ct.Slug, "id", id, "error", err)
			}
		}
	}
	if s.indexer == nil {
		return
	}
	row, err := b.Storer.Find(ctx, ct, id)
	if err != nil {
		row = data.values
	}
	if err := s.indexer.Index(ctx, ct, id, row); err != nil {
		slog.Warn("failed to index record", "contenttype", ct.Slug, "id", id, "error", err)
	}
}

// Delete removes a record. For sync types the remote copy goes first; a
// remote copy that is already gone is not an error.
func (s *Service) Delete(ctx context.Context, contentType, id string) (err error) {
	ct, err := s.source.Lookup(contentType)
	if err != nil {
		return err
	}
	defer func() { metrics.ObserveWrite("delete", string(ct.Mode), err) }()

	b, err := s.backend(query.DialectFor(ct.Mode))
	if err != nil {
		return err
	}

	old, err := b.Storer.Find(ctx, ct, id)
	if err != nil {
		return err
	}

	if ct.Mode == schema.ModeSync {
		if remoteID := idOf(storage.Row{"id": old[schema.RemoteIDColumn]}); remoteID != "" {
			rb, err := s.backend(query.Remote)
			if err != nil {
				return err
			}
			err = rb.Storer.Delete(ctx, ct, remoteID)
			if err != nil && !errors.Is(err, storage.ErrRecordNotFound) {
				return err
			}
		}
	}

	if err := b.Storer.Delete(ctx, ct, id); err != nil {
		return err
	}
	if s.indexer != nil {
		if err := s.indexer.Remove(ctx, ct, id); err != nil {
			slog.Warn("failed to remove record from index", "contenttype", ct.Slug, "id", id, "error", err)
		}
	}
	s.changes.Entry(ctx, ActionDelete, ct.Slug, id, old, nil)
	return nil
}

// Publish copies a local sync record to its remote collection and marks the
// local record published. It returns the remote id.
func (s *Service) Publish(ctx context.Context, contentType, id string) (remoteID string, err error) {
	ct, err := s.source.Lookup(contentType)
	if err != nil {
		return "", err
	}
	if ct.Mode != schema.ModeSync {
		return "", fmt.Errorf("%w: %s", ErrNotSyncable, ct.Slug)
	}
	defer func() { metrics.ObserveWrite("publish", string(ct.Mode), err) }()

	local, err := s.backend(query.Relational)
	if err != nil {
		return "", err
	}
	remote, err := s.backend(query.Remote)
	if err != nil {
		return "", err
	}

	row, err := local.Storer.Find(ctx, ct, id)
	if err != nil {
		return "", err
	}

	payload := sanitize(ct, row, query.Remote).values
	delete(payload, schema.RemoteIDColumn)
	payload["status"] = "published"
	if payload[schema.Recency] == nil {
		payload[schema.Recency] = s.now()
	}

	remoteID = idOf(storage.Row{"id": row[schema.RemoteIDColumn]})
	if remoteID != "" {
		err = remote.Storer.Update(ctx, ct, remoteID, payload)
		if errors.Is(err, storage.ErrRecordNotFound) {
			slog.Info("remote copy missing, inserting instead", "contenttype", ct.Slug, "id", id, "remote_id", remoteID)
			remoteID = ""
			err = nil
		}
		if err != nil {
			return "", err
		}
	}
	if remoteID == "" {
		remoteID, err = remote.Storer.Insert(ctx, ct, payload)
		if err != nil {
			return "", err
		}
	}

	update := storage.Row{
		"status":              "published",
		schema.RemoteIDColumn: remoteID,
		schema.Recency:        payload[schema.Recency],
	}
	if err := local.Storer.Update(ctx, ct, id, update); err != nil {
		return "", err
	}

	s.changes.Entry(ctx, ActionPublish, ct.Slug, id, row, update)
	return remoteID, nil
}

func idOf(values storage.Row) string {
	v, ok := values["id"]
	if !ok || v == nil {
		return ""
	}
	s := fmt.Sprint(v)
	if s == "0" {
		return ""
	}
	return s
}
