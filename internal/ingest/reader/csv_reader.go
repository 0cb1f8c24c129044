package reader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

var ErrColumnCount = errors.New("wrong number of columns")

// Result is one decoded CSV line. Line is 1-based and counts the header.
type Result struct {
	Line int
	Row  map[string]any
	Err  error
}

type CSVReader struct {
	reader io.Reader
	comma  rune
}

type Option func(*CSVReader)

// WithComma sets the field delimiter.
func WithComma(r rune) Option {
	return func(cr *CSVReader) { cr.comma = r }
}

func NewCSVReader(reader io.Reader, opts ...Option) *CSVReader {
	cr := &CSVReader{reader: reader, comma: ','}
	for _, opt := range opts {
		opt(cr)
	}
	return cr
}

func (cr *CSVReader) newCSV() (*csv.Reader, []string, error) {
	r := csv.NewReader(cr.reader)
	r.Comma = cr.comma
	r.FieldsPerRecord = -1

	headers, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, h := range headers {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return r, headers, nil
}

// ReadAll decodes every line in order and stops at the first malformed one.
func (cr *CSVReader) ReadAll() ([]map[string]any, error) {
	r, headers, err := cr.newCSV()
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	for line := 2; ; line++ {
		fields, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		row, err := toRow(headers, fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
}

type job struct {
	line   int
	fields []string
}

// Stream decodes lines with workerCount goroutines. Results arrive out of
// order; the channel closes once the input is drained or ctx is done.
func (cr *CSVReader) Stream(ctx context.Context, workerCount int) (<-chan Result, error) {
	if workerCount < 1 {
		workerCount = 1
	}
	r, headers, err := cr.newCSV()
	if err != nil {
		return nil, err
	}

	out := make(chan Result)
	jobs := make(chan job, workerCount*2)
	var wg sync.WaitGroup

	send := func(res Result) bool {
		select {
		case out <- res:
			return true
		case <-ctx.Done():
			return false
		}
	}

	wg.Add(workerCount)
	for range workerCount {
		go func() {
			defer wg.Done()
			for j := range jobs {
				row, err := toRow(headers, j.fields)
				if !send(Result{Line: j.line, Row: row, Err: err}) {
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)

		for line := 2; ; line++ {
			fields, err := r.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				slog.Error("failed to read csv line", "line", line, "error", err)
				if !send(Result{Line: line, Err: err}) {
					return
				}
				continue
			}
			select {
			case jobs <- job{line: line, fields: fields}:
			case <-ctx.Done():
				slog.Info("context cancelled, stopping csv read")
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out, nil
}

// toRow pairs fields with headers. Empty cells are left out so they do not
// overwrite column defaults.
func toRow(headers, fields []string) (map[string]any, error) {
	if len(fields) != len(headers) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrColumnCount, len(fields), len(headers))
	}
	row := make(map[string]any, len(headers))
	for i, h := range headers {
		if h == "" || strings.TrimSpace(fields[i]) == "" {
			continue
		}
		row[h] = fields[i]
	}
	return row, nil
}
