package query

import (
	"testing"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.May, 15, 12, 0, 0, 0, time.UTC)

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()

	r, err := schema.NewRegistry(
		&schema.ContentType{
			Slug:         "entries",
			SingularSlug: "entry",
			Sort:         "-datepublish",
			Fields: []schema.Field{
				{Name: "title", Type: schema.FieldText},
				{Name: "body", Type: schema.FieldHTML},
				{Name: "rating", Type: schema.FieldInteger},
				{Name: "eventdate", Type: schema.FieldDate},
			},
			Taxonomies: []schema.Taxonomy{{Slug: "tags", Behavior: schema.BehaviorTags}},
		},
		&schema.ContentType{
			Slug:         "pages",
			SingularSlug: "page",
			Sort:         "title",
			Fields: []schema.Field{
				{Name: "title", Type: schema.FieldText},
				{Name: "sortorder", Type: schema.FieldInteger},
			},
			Taxonomies: []schema.Taxonomy{{Slug: "chapters", Behavior: schema.BehaviorGrouping, Options: []string{"intro", "main"}}},
		},
		&schema.ContentType{
			Slug:         "events",
			SingularSlug: "event",
			Mode:         schema.ModeRemote,
			Collection:   "/v1/events",
			Fields: []schema.Field{
				{Name: "title", Type: schema.FieldText, RemoteField: "name"},
				{Name: "startdate", Type: schema.FieldDatetime},
			},
			Taxonomies: []schema.Taxonomy{{Slug: "tags"}},
		},
	)
	require.NoError(t, err)
	return r
}

func newTestDecoder(t *testing.T, opts ...Option) *Decoder {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewDecoder(testRegistry(t), opts...)
}
