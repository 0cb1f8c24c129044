package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgserver "github.com/DjordjeVuckovic/content-query/pkg/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticHealth bool

func (h staticHealth) Healthy(context.Context) bool { return bool(h) }

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    *Config
		wantErr bool
	}{
		{
			name: "defaults",
			env:  map[string]string{"PORT": "", "USE_HTTP2": "", "CORS_ORIGINS": "", "SHUTDOWN_TIMEOUT": ""},
			want: &Config{Port: "8080", CorsOrigins: []string{"*"}, ShutdownTimeout: 10 * time.Second},
		},
		{
			name: "explicit",
			env:  map[string]string{"PORT": "9000", "USE_HTTP2": "true", "CORS_ORIGINS": "https://a.example, ,https://b.example", "SHUTDOWN_TIMEOUT": "3s"},
			want: &Config{Port: "9000", UseHttp2: true, CorsOrigins: []string{"https://a.example", "https://b.example"}, ShutdownTimeout: 3 * time.Second},
		},
		{
			name:    "port out of range",
			env:     map[string]string{"PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "port not a number",
			env:     map[string]string{"PORT": "http"},
			wantErr: true,
		},
		{
			name:    "bad shutdown timeout",
			env:     map[string]string{"PORT": "", "SHUTDOWN_TIMEOUT": "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestServer_Endpoints(t *testing.T) {
	tests := []struct {
		name       string
		healthy    bool
		path       string
		wantStatus int
		wantBody   string
	}{
		{name: "healthy", healthy: true, path: "/health", wantStatus: http.StatusOK, wantBody: "healthy"},
		{name: "unhealthy", healthy: false, path: "/health", wantStatus: http.StatusServiceUnavailable, wantBody: "unhealthy"},
		{name: "metrics", healthy: true, path: "/metrics", wantStatus: http.StatusOK, wantBody: "go_goroutines"},
		{name: "unknown route", healthy: true, path: "/nope", wantStatus: http.StatusNotFound, wantBody: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(&Config{Port: "0", CorsOrigins: []string{"*"}}, staticHealth(tt.healthy)).
				SetupMiddlewares().
				SetupErrorHandler().
				SetupHealthChecks("/health").
				SetupMetrics("/metrics")

			rec := httptest.NewRecorder()
			s.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
		})
	}
}

func TestServer_HealthListsFailingChecks(t *testing.T) {
	health := pkgserver.NewCompositeHealthChecker().
		Add("postgres", staticHealth(true)).
		Add("elasticsearch", staticHealth(false))

	s := New(&Config{Port: "0", CorsOrigins: []string{"*"}}, health).
		SetupErrorHandler().
		SetupHealthChecks("/health")

	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unhealthy","failing":["elasticsearch"]}`, rec.Body.String())
}
