package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/ingest/reader"
	"github.com/DjordjeVuckovic/content-query/internal/storage"
)

const defaultWorkers = 4

// Saver is the write path the pipeline feeds, satisfied by content.Service.
type Saver interface {
	Save(ctx context.Context, contentType string, values storage.Row) (string, error)
}

// Source streams decoded rows.
type Source interface {
	Stream(ctx context.Context, workerCount int) (<-chan reader.Result, error)
}

// LineError records why a line was not imported.
type LineError struct {
	Line int
	Err  error
}

type Report struct {
	Saved    int
	Failed   []LineError
	Duration time.Duration
}

type Pipeline struct {
	source      Source
	saver       Saver
	contentType string
	workers     int
}

type Option func(*Pipeline)

func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

func NewPipeline(source Source, saver Saver, contentType string, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:      source,
		saver:       saver,
		contentType: contentType,
		workers:     defaultWorkers,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run saves every decoded row as a new record. A bad line is reported and
// skipped; only a failure to start reading or a cancelled context aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report := &Report{}

	results, err := p.source.Stream(ctx, p.workers)
	if err != nil {
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			slog.Info("import cancelled", "contenttype", p.contentType, "saved", report.Saved)
			report.Duration = time.Since(start)
			return report, err
		}

		select {
		case <-ctx.Done():
			continue
		case res, ok := <-results:
			if !ok {
				report.Duration = time.Since(start)
				slog.Info("import completed",
					"contenttype", p.contentType,
					"saved", report.Saved,
					"failed", len(report.Failed),
					"duration", report.Duration)
				return report, nil
			}
			if res.Err != nil {
				report.Failed = append(report.Failed, LineError{Line: res.Line, Err: res.Err})
				continue
			}

			// Imports always insert.
			delete(res.Row, "id")
			id, err := p.saver.Save(ctx, p.contentType, res.Row)
			if err != nil {
				slog.Warn("failed to import line", "line", res.Line, "error", err)
				report.Failed = append(report.Failed, LineError{Line: res.Line, Err: err})
				continue
			}
			slog.Debug("record imported", "line", res.Line, "id", id)
			report.Saved++
		}
	}
}
