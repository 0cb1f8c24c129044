package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/DjordjeVuckovic/content-query/internal/content"
	"github.com/DjordjeVuckovic/content-query/internal/storage"
	"github.com/DjordjeVuckovic/content-query/internal/storage/factory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackends(t *testing.T) *factory.Backends {
	t.Helper()

	b, err := factory.New(context.Background(), &factory.Config{
		SchemaPath: "../schema/testdata/contenttypes.yml",
		Type:       storage.InMem,
	})
	require.NoError(t, err)

	for _, row := range []storage.Row{
		{"title": "First", "status": "published", "datepublish": "2024-01-01 09:00:00"},
		{"title": "Second", "status": "draft", "datepublish": "2024-02-01 09:00:00"},
		{"title": "Third", "status": "published", "datepublish": "2024-03-01 09:00:00"},
	} {
		_, err := b.Service.Save(context.Background(), "entries", row)
		require.NoError(t, err)
	}
	return b
}

func run(t *testing.T, b *factory.Backends, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommandWith(&RootOptions{
		Open: func(context.Context, *RootOptions) (*factory.Backends, error) { return b, nil },
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestQueryCommand(t *testing.T) {
	b := newBackends(t)

	tests := []struct {
		name     string
		args     []string
		contains []string
		excludes []string
	}{
		{
			name:     "latest",
			args:     []string{"query", "entries/latest/2"},
			contains: []string{"entries/3\tThird", "entries/2\tSecond", "-- entries: showing 1-2 of 3"},
			excludes: []string{"First"},
		},
		{
			name:     "frontend hides drafts",
			args:     []string{"query", "entries", "--frontend"},
			contains: []string{"Third", "First", "of 2"},
			excludes: []string{"Second"},
		},
		{
			name:     "params",
			args:     []string{"query", "entries", "-p", "status=draft"},
			contains: []string{"entries/2\tSecond"},
			excludes: []string{"Third"},
		},
		{
			name:     "single",
			args:     []string{"query", "entry/1"},
			contains: []string{"entries/1\tFirst"},
			excludes: []string{"--"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, b, tt.args...)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestQueryCommand_JSON(t *testing.T) {
	b := newBackends(t)

	out, err := run(t, b, "query", "entries", "--format", "json", "-p", "limit=1", "-p", "order=title")
	require.NoError(t, err)

	var res content.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Records, 1)
	assert.Equal(t, "First", res.Records[0].Values["title"])
	assert.Equal(t, 3, res.Pager.Count)
}

func TestQueryCommand_Errors(t *testing.T) {
	b := newBackends(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "bad param", args: []string{"query", "entries", "-p", "novalue"}},
		{name: "bad format", args: []string{"query", "entries", "--format", "xml"}},
		{name: "unknown type", args: []string{"query", "widgets"}},
		{name: "missing argument", args: []string{"query"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, b, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestTypesCommand(t *testing.T) {
	b := newBackends(t)

	out, err := run(t, b, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "SLUG")
	assert.Contains(t, out, "/v1/events")
	assert.Contains(t, out, "News Items")

	out, err = run(t, b, "types", "--format", "json")
	require.NoError(t, err)
	var summaries []typeSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	assert.Len(t, summaries, 4)
	assert.Equal(t, "entries", summaries[0].Slug)
}

func TestReindexCommand_RequiresIndex(t *testing.T) {
	b := newBackends(t)

	_, err := run(t, b, "reindex", "entries")
	assert.ErrorIs(t, err, ErrNoIndex)
}

func TestImportCommand(t *testing.T) {
	b := newBackends(t)

	path := filepath.Join(t.TempDir(), "entries.csv")
	data := "title;status;tags\nImported one;published;jazz\nImported two;draft\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	out, err := run(t, b, "import", "entry", path, "-d", ";", "-w", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "line 3:")
	assert.Contains(t, out, "imported 1 entries records, 1 failed")

	out, err = run(t, b, "query", "entries", "-p", "filter=Imported")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported one")
	assert.Contains(t, out, "of 1")
}

func TestImportCommand_Errors(t *testing.T) {
	b := newBackends(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing file", args: []string{"import", "entries", filepath.Join(t.TempDir(), "nope.csv")}},
		{name: "unknown type", args: []string{"import", "widgets", "x.csv"}},
		{name: "bad delimiter", args: []string{"import", "entries", "x.csv", "-d", ";;"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, b, tt.args...)
			assert.Error(t, err)
		})
	}
}
