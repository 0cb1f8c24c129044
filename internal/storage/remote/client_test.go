package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg Config) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL + "/api"
	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}

func TestClient_URL(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "https://backend.test/api/"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		params url.Values
		want   string
	}{
		{"plain", "/v1/events", nil, "https://backend.test/api/v1/events"},
		{"missing slash", "events", url.Values{"limit": {"3"}}, "https://backend.test/api/events?limit=3"},
		{"merges query", "/events?lang=en", url.Values{"limit": {"3"}}, "https://backend.test/api/events?lang=en&limit=3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.URL(tt.path, tt.params))
		})
	}
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","data":{}}`))
	}, Config{
		AccessToken:  "tok",
		TokenType:    "bearer",
		ClientSecret: "secret",
		UserAgent:    "contentq-test",
		Language:     "nl",
	})

	resp, err := c.Do(context.Background(), http.MethodGet, "/events", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
	assert.Equal(t, authorizationProof("tok", "secret"), got.Get("Authorization-Proof"))
	assert.Equal(t, "contentq-test", got.Get("User-Agent"))
	assert.Equal(t, "nl", got.Get("Accept-Language"))
}

func TestClient_NoTokenNoAuthorization(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}, Config{})

	_, err := c.Do(context.Background(), http.MethodGet, "/events", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got.Get("Authorization"))
	assert.Empty(t, got.Get("Authorization-Proof"))
	assert.Equal(t, defaultUserAgent, got.Get("User-Agent"))
}

func TestAuthorizationProof(t *testing.T) {
	// HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog")
	assert.Equal(t,
		"f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8",
		authorizationProof("The quick brown fox jumps over the lazy dog", "key"))
}

func TestClient_ETag(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","data":{"id":7}}`))
	}, Config{UseETags: true})

	first, err := c.Do(context.Background(), http.MethodGet, "/events/7", nil, nil)
	require.NoError(t, err)
	second, err := c.Do(context.Background(), http.MethodGet, "/events/7", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, http.StatusOK, second.StatusCode)
	assert.JSONEq(t, string(first.Envelope.Data), string(second.Envelope.Data))
}

func TestClient_FormResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
		_, _ = w.Write([]byte("status=ok&id=12&title=Hello"))
	}, Config{})

	resp, err := c.Do(context.Background(), http.MethodGet, "/events/12", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Envelope.Status)
	assert.JSONEq(t, `{"id":"12","title":"Hello"}`, string(resp.Envelope.Data))
}

func TestClient_ErrorStatusIsNotAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}, Config{})

	resp, err := c.Do(context.Background(), http.MethodGet, "/events", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
