package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("CONTENTQ_TEST_VALUE=from-file\n"), 0o600))

	t.Setenv("ENV_PATH", "")
	t.Setenv("CONTENTQ_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("CONTENTQ_TEST_VALUE"))

	require.NoError(t, LoadDotEnv("local", path))
	assert.Equal(t, "from-file", os.Getenv("CONTENTQ_TEST_VALUE"))
}

func TestLoadDotEnv_Missing(t *testing.T) {
	t.Setenv("ENV_PATH", "")
	missing := filepath.Join(t.TempDir(), "nope.env")

	tests := []struct {
		name    string
		appEnv  string
		wantErr bool
	}{
		{name: "local requires the file", appEnv: "local", wantErr: true},
		{name: "unset requires the file", appEnv: "", wantErr: true},
		{name: "production skips it", appEnv: "production", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := LoadDotEnv(tt.appEnv, missing)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetters(t *testing.T) {
	t.Setenv("CONTENTQ_TEST_STR", "  value ")
	t.Setenv("CONTENTQ_TEST_BLANK", "  ")
	t.Setenv("CONTENTQ_TEST_BOOL", "TRUE")

	assert.Equal(t, "value", GetOr("CONTENTQ_TEST_STR", "def"))
	assert.Equal(t, "def", GetOr("CONTENTQ_TEST_BLANK", "def"))
	assert.True(t, GetBool("CONTENTQ_TEST_BOOL"))
	assert.False(t, GetBool("CONTENTQ_TEST_BLANK"))
}
