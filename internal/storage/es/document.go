package es

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/DjordjeVuckovic/content-query/internal/storage"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

const contentAnalyzer = "content_analyzer"

// ContentDocument is the indexed form of a record. Title holds the title-like
// fields, Body every other searchable field.
type ContentDocument struct {
	ContentType string    `json:"contenttype"`
	RecordID    string    `json:"record_id"`
	Slug        string    `json:"slug,omitempty"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Status      string    `json:"status,omitempty"`
	IndexedAt   time.Time `json:"indexed_at"`
}

func isTitleField(name string) bool {
	switch name {
	case "title", "name", "slug":
		return true
	default:
		return false
	}
}

func toDocument(ct *schema.ContentType, id string, values storage.Row, now time.Time) ContentDocument {
	doc := ContentDocument{
		ContentType: ct.Slug,
		RecordID:    id,
		IndexedAt:   now,
	}
	if v, ok := values["slug"]; ok && v != nil {
		doc.Slug = fmt.Sprint(v)
	}
	if v, ok := values["status"]; ok && v != nil {
		doc.Status = fmt.Sprint(v)
	}

	var titles, bodies []string
	fields := ct.SearchableFields()
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	for _, f := range fields {
		v, ok := values[f.Name]
		if !ok || v == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		if s == "" {
			continue
		}
		if isTitleField(f.Name) {
			titles = append(titles, s)
		} else {
			bodies = append(bodies, s)
		}
	}
	doc.Title = strings.Join(titles, " ")
	doc.Body = strings.Join(bodies, "\n")

	return doc
}

func buildSettings() types.IndexSettings {
	return types.IndexSettings{
		Analysis: &types.IndexSettingsAnalysis{
			Analyzer: map[string]types.Analyzer{
				contentAnalyzer: types.StandardAnalyzer{
					Stopwords: []string{"_none_"},
				},
			},
		},
	}
}

func buildMapping() types.TypeMapping {
	return types.TypeMapping{
		Properties: map[string]types.Property{
			"contenttype": types.NewKeywordProperty(),
			"record_id":   types.NewKeywordProperty(),
			"slug":        types.NewKeywordProperty(),
			"status":      types.NewKeywordProperty(),
			"title":       textProperty(true),
			"body":        textProperty(false),
			"indexed_at":  types.NewDateProperty(),
		},
	}
}

func textProperty(withKeyword bool) types.Property {
	analyzer := contentAnalyzer
	prop := types.NewTextProperty()
	prop.Analyzer = &analyzer
	if withKeyword {
		prop.Fields = map[string]types.Property{
			"keyword": types.NewKeywordProperty(),
		}
	}
	return prop
}
