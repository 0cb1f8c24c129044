package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/metrics"
	"github.com/DjordjeVuckovic/content-query/internal/query"
	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/DjordjeVuckovic/content-query/internal/storage"
	"github.com/DjordjeVuckovic/content-query/internal/types/operator"
)

// Executor runs remote query plans, one GET per plan.
type Executor struct {
	client *Client
}

func NewExecutor(client *Client) *Executor {
	return &Executor{client: client}
}

type listData struct {
	Elements []map[string]any `json:"elements"`
	Count    int              `json:"count"`
}

func (e *Executor) Execute(ctx context.Context, plan *query.QueryPlan, dq *query.DecodedQuery) (*storage.ExecuteResult, error) {
	start := time.Now()
	res, err := e.execute(ctx, plan, dq)
	metrics.ObservePlan(query.Remote.String(), start, err)
	return res, err
}

func (e *Executor) execute(ctx context.Context, plan *query.QueryPlan, dq *query.DecodedQuery) (*storage.ExecuteResult, error) {
	ct := plan.ContentType
	path, params := Request(plan)

	level := slog.LevelDebug
	if dq != nil && dq.Meta.PrintQuery {
		level = slog.LevelInfo
	}
	slog.Log(ctx, level, "remote query", "contenttype", plan.Slug(), "uri", e.client.URL(path, params))

	resp, err := e.client.Do(ctx, http.MethodGet, path, params, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &storage.RemoteStatusError{Method: http.MethodGet, URI: path, Status: resp.StatusCode}
	}

	if plan.ResourceID != "" {
		record, err := decodeObject(resp.Envelope.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s %s: %w", ct.Slug, plan.ResourceID, err)
		}
		if len(record) == 0 {
			return &storage.ExecuteResult{Hits: []map[string]interface{}{}}, nil
		}
		return &storage.ExecuteResult{TotalHits: 1, Hits: []map[string]interface{}{localRow(ct, record)}}, nil
	}

	var data listData
	if len(resp.Envelope.Data) > 0 {
		dec := json.NewDecoder(bytes.NewReader(resp.Envelope.Data))
		dec.UseNumber()
		if err := dec.Decode(&data); err != nil {
			return nil, fmt.Errorf("failed to decode %s list: %w", ct.Slug, err)
		}
	}

	hits := make([]map[string]interface{}, 0, len(data.Elements))
	for _, el := range data.Elements {
		hits = append(hits, localRow(ct, el))
	}
	total := data.Count
	if total < len(hits) {
		total = len(hits)
	}

	return &storage.ExecuteResult{TotalHits: total, Hits: hits}, nil
}

// Request builds the endpoint and query parameters of a plan. A direct
// resource lookup ignores filters, order and bounds.
func Request(plan *query.QueryPlan) (string, url.Values) {
	ct := plan.ContentType
	params := url.Values{}

	if plan.ResourceID != "" {
		return strings.TrimRight(plan.Collection, "/") + "/" + url.PathEscape(plan.ResourceID), params
	}

	for _, tok := range plan.Filters {
		switch tok.Kind {
		case query.KindField:
			params.Add(ct.RemoteName(tok.Field), filterValue(tok))
		case query.KindSearch:
			if tok.Value != "" {
				params.Set("search", tok.Value)
			}
		default:
			slog.Debug("remote dialect ignores filter", "contenttype", ct.Slug, "kind", tok.Kind)
		}
	}

	if plan.Limit > 0 {
		params.Set("limit", strconv.Itoa(plan.Limit))
	}
	if plan.Offset > 0 {
		params.Set("offset", strconv.Itoa(plan.Offset))
	}

	var order []string
	for _, o := range plan.Order {
		if o.Random {
			continue
		}
		o.Field = ct.RemoteName(o.Field)
		order = append(order, o.String())
	}
	if len(order) > 0 {
		params.Set("orderBy", strings.Join(order, ","))
	}

	return plan.Collection, params
}

func filterValue(tok query.FilterToken) string {
	if tok.Operator == operator.Match {
		return tok.Operator.RemotePrefix() + tok.Value + "/i"
	}
	return tok.Operator.RemotePrefix() + tok.Value
}

func decodeObject(raw json.RawMessage) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil, nil
	}
	var out map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// localRow renames remote fields to their local columns.
func localRow(ct *schema.ContentType, remote map[string]any) map[string]interface{} {
	row := make(map[string]interface{}, len(remote))
	for k, v := range remote {
		row[ct.LocalName(k)] = v
	}
	return row
}

var _ storage.Executor = (*Executor)(nil)
