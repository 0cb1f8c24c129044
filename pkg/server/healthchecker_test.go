package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticCheck bool

func (s staticCheck) Healthy(context.Context) bool { return bool(s) }

func TestCompositeHealthChecker(t *testing.T) {
	tests := []struct {
		name        string
		checks      map[string]bool
		wantHealthy bool
		wantFailing []string
	}{
		{name: "no checks", checks: nil, wantHealthy: true},
		{name: "all healthy", checks: map[string]bool{"pg": true, "es": true}, wantHealthy: true},
		{name: "one failing", checks: map[string]bool{"pg": true, "es": false}, wantHealthy: false, wantFailing: []string{"es"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewCompositeHealthChecker()
			for _, name := range []string{"pg", "es"} {
				if ok, exists := tt.checks[name]; exists {
					hc.Add(name, staticCheck(ok))
				}
			}

			assert.Equal(t, tt.wantHealthy, hc.Healthy(context.Background()))
			assert.Equal(t, tt.wantFailing, hc.Failing(context.Background()))
		})
	}
}

func TestOkHealthChecker(t *testing.T) {
	assert.True(t, NewOkHealthChecker().Healthy(context.Background()))
}

func TestCompositeHealthChecker_Nested(t *testing.T) {
	backends := NewCompositeHealthChecker().
		Add("postgres", staticCheck(true)).
		Add("elasticsearch", staticCheck(false))
	hc := NewCompositeHealthChecker().Add("backends", backends)

	assert.False(t, hc.Healthy(context.Background()))
	assert.Equal(t, []string{"backends.elasticsearch"}, hc.Failing(context.Background()))
}
