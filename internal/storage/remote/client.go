// Package remote reads and writes content records kept in an HTTP collection
// backend that answers with a {status, data} envelope.
package remote

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/metrics"
	"golang.org/x/oauth2"
)

const defaultUserAgent = "contentq"

type Config struct {
	BaseURL      string
	AccessToken  string
	TokenType    string
	ClientSecret string
	UserAgent    string
	Language     string
	// Timeout bounds each request when positive; zero keeps the transport default.
	Timeout time.Duration
	// UseETags sends If-None-Match for GETs answered with an ETag before.
	UseETags bool
}

// Envelope is the body every remote endpoint answers with.
type Envelope struct {
	Status any             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

type Response struct {
	StatusCode int
	Header     http.Header
	Envelope   Envelope
}

type cachedBody struct {
	etag        string
	contentType string
	body        []byte
}

type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	language  string
	proof     string
	useETags  bool

	mu    sync.Mutex
	etags map[string]cachedBody
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid remote base url: %w", err)
	}

	httpClient := &http.Client{}
	if cfg.AccessToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.AccessToken,
			TokenType:   cfg.TokenType,
		})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	httpClient.Timeout = cfg.Timeout

	c := &Client{
		base:      base,
		http:      httpClient,
		userAgent: cfg.UserAgent,
		language:  cfg.Language,
		useETags:  cfg.UseETags,
		etags:     make(map[string]cachedBody),
	}
	if c.userAgent == "" {
		c.userAgent = defaultUserAgent
	}
	if cfg.AccessToken != "" && cfg.ClientSecret != "" {
		c.proof = authorizationProof(cfg.AccessToken, cfg.ClientSecret)
	}

	return c, nil
}

// authorizationProof signs the access token with the client secret.
func authorizationProof(token, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// URL resolves path against the base URL. Query parameters already present in
// path are kept and merged with params.
func (c *Client) URL(path string, params url.Values) string {
	u := *c.base
	raw := path
	if i := strings.IndexByte(path, '?'); i >= 0 {
		raw = path[:i]
		existing, err := url.ParseQuery(path[i+1:])
		if err == nil {
			merged := url.Values{}
			for k, vs := range existing {
				merged[k] = append(merged[k], vs...)
			}
			for k, vs := range params {
				merged[k] = append(merged[k], vs...)
			}
			params = merged
		}
	}
	if raw != "" && !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	u.Path = strings.TrimRight(u.Path, "/") + raw
	u.RawQuery = params.Encode()
	return u.String()
}

// Do sends one request. Non-2xx answers are not errors at this level; the
// caller decides which statuses it accepts.
func (c *Client) Do(ctx context.Context, method, path string, params url.Values, payload any) (*Response, error) {
	uri := c.URL(path, params)

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode payload: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}
	if c.proof != "" {
		req.Header.Set("Authorization-Proof", c.proof)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	cached, hasCached := c.cached(method, uri)
	if hasCached {
		req.Header.Set("If-None-Match", cached.etag)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, uri, err)
	}
	defer resp.Body.Close()

	metrics.ObserveRemote(method, resp.StatusCode)
	slog.Debug("remote request", "method", method, "uri", uri, "status", resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response of %s %s: %w", method, uri, err)
	}

	status := resp.StatusCode
	contentType := resp.Header.Get("Content-Type")
	switch {
	case status == http.StatusNotModified && hasCached:
		status = http.StatusOK
		raw = cached.body
		contentType = cached.contentType
	case status == http.StatusOK:
		c.remember(method, uri, resp.Header.Get("ETag"), contentType, raw)
	}

	out := &Response{StatusCode: status, Header: resp.Header}
	if err := decodeEnvelope(contentType, raw, &out.Envelope); err != nil {
		// An undecodable error page should still surface its status.
		if status >= 200 && status < 300 {
			return nil, fmt.Errorf("failed to decode response of %s %s: %w", method, uri, err)
		}
		slog.Debug("undecodable remote response", "uri", uri, "error", err)
	}

	return out, nil
}

func (c *Client) cached(method, uri string) (cachedBody, bool) {
	if !c.useETags || method != http.MethodGet {
		return cachedBody{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cb, ok := c.etags[uri]
	return cb, ok
}

func (c *Client) remember(method, uri, etag, contentType string, body []byte) {
	if !c.useETags || method != http.MethodGet || etag == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.etags[uri] = cachedBody{etag: etag, contentType: contentType, body: body}
}

// decodeEnvelope understands JSON bodies and url-encoded form bodies.
func decodeEnvelope(contentType string, raw []byte, env *Envelope) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType != "application/x-www-form-urlencoded" {
		return json.Unmarshal(raw, env)
	}

	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return err
	}
	data := make(map[string]any, len(values))
	for k, vs := range values {
		if k == "status" {
			env.Status = values.Get(k)
			continue
		}
		if len(vs) == 1 {
			data[k] = vs[0]
		} else {
			data[k] = vs
		}
	}
	env.Data, err = json.Marshal(data)
	return err
}
