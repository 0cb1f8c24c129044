package reader

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entriesCSV = `Title,Teaser,Tags,Status
Jazz festival,Three days of music,"jazz,music",published
Weekly notes,,notes,draft
Another note,Short one,,published`

func TestCSVReader_ReadAll(t *testing.T) {
	rows, err := NewCSVReader(strings.NewReader(entriesCSV)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, map[string]any{
		"title":  "Jazz festival",
		"teaser": "Three days of music",
		"tags":   "jazz,music",
		"status": "published",
	}, rows[0])
	assert.Equal(t, map[string]any{
		"title":  "Weekly notes",
		"tags":   "notes",
		"status": "draft",
	}, rows[1])
}

func TestCSVReader_ReadAll_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "empty input", data: "", want: "failed to read header"},
		{name: "short line", data: "title,status\nonly title", want: "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCSVReader(strings.NewReader(tt.data)).ReadAll()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCSVReader_WithComma(t *testing.T) {
	rows, err := NewCSVReader(strings.NewReader("title;status\nHello;draft"), WithComma(';')).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"title": "Hello", "status": "draft"}}, rows)
}

func TestCSVReader_Stream(t *testing.T) {
	data := entriesCSV + "\nbroken"

	results, err := NewCSVReader(strings.NewReader(data)).Stream(t.Context(), 2)
	require.NoError(t, err)

	var titles []any
	var failed []int
	for res := range results {
		if res.Err != nil {
			assert.ErrorIs(t, res.Err, ErrColumnCount)
			failed = append(failed, res.Line)
			continue
		}
		titles = append(titles, res.Row["title"])
	}

	assert.ElementsMatch(t, []any{"Jazz festival", "Weekly notes", "Another note"}, titles)
	assert.Equal(t, []int{5}, failed)
}

func TestCSVReader_Stream_CancelEarly(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	results, err := NewCSVReader(strings.NewReader(entriesCSV)).Stream(ctx, 2)
	require.NoError(t, err)

	var got int
	for res := range results {
		require.NoError(t, res.Err)
		got++
		cancel()
		break
	}
	assert.Equal(t, 1, got)
}
