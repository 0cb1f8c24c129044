package schema

import (
	"errors"
	"strings"
)

var ErrContentTypeNotFound = errors.New("content type not found")

// StorageMode tells where the records of a content type live.
type StorageMode string

const (
	ModeLocal  StorageMode = "local"
	ModeRemote StorageMode = "remote"
	// ModeSync records are stored locally and mirrored to the remote collection on publish.
	ModeSync StorageMode = "sync"
)

func (m StorageMode) Valid() bool {
	switch m {
	case ModeLocal, ModeRemote, ModeSync:
		return true
	default:
		return false
	}
}

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldHTML     FieldType = "html"
	FieldMarkdown FieldType = "markdown"
	FieldSlug     FieldType = "slug"
	FieldSelect   FieldType = "select"
	FieldInteger  FieldType = "integer"
	FieldFloat    FieldType = "float"
	FieldCheckbox FieldType = "checkbox"
	FieldDate     FieldType = "date"
	FieldDatetime FieldType = "datetime"
)

// Searchable reports whether free-text search should look into fields of this type.
func (t FieldType) Searchable() bool {
	switch t {
	case FieldText, FieldTextarea, FieldHTML, FieldMarkdown:
		return true
	default:
		return false
	}
}

func (t FieldType) IsDate() bool {
	return t == FieldDate || t == FieldDatetime
}

type Field struct {
	Name string
	Type FieldType `yaml:"type"`
	// RemoteField is the name the remote collection uses for this field, if it differs.
	RemoteField string `yaml:"remote_field"`
}

type TaxonomyBehavior string

const (
	BehaviorTags       TaxonomyBehavior = "tags"
	BehaviorCategories TaxonomyBehavior = "categories"
	BehaviorGrouping   TaxonomyBehavior = "grouping"
)

type Taxonomy struct {
	Slug     string           `yaml:"slug"`
	Behavior TaxonomyBehavior `yaml:"behaves_like"`
	// Options lists the allowed terms. For grouping taxonomies the position of a
	// term decides the order of the groups.
	Options []string `yaml:"options"`
}

// OptionIndex returns the position of term in the taxonomy options, or -1.
func (t Taxonomy) OptionIndex(term string) int {
	for i, o := range t.Options {
		if o == term {
			return i
		}
	}
	return -1
}

// Recency is the column used for latest/first queries and as the last-resort order.
const Recency = "datepublish"

// RemoteIDColumn keeps the remote identifier of a sync record in the local table.
const RemoteIDColumn = "remote_id"

var baseColumns = map[string]FieldType{
	"id":            FieldInteger,
	"slug":          FieldSlug,
	"datecreated":   FieldDatetime,
	"datechanged":   FieldDatetime,
	"datepublish":   FieldDatetime,
	"datedepublish": FieldDatetime,
	"ownerid":       FieldInteger,
	"status":        FieldText,
}

// BaseColumns returns the columns every content type carries regardless of its fields.
func BaseColumns() []string {
	return []string{"id", "slug", "datecreated", "datechanged", "datepublish", "datedepublish", "ownerid", "status"}
}

type ContentType struct {
	Slug         string
	Name         string
	SingularSlug string
	Fields       []Field
	Taxonomies   []Taxonomy
	// Sort is the default order, e.g. "-datepublish" or "title".
	Sort       string
	Mode       StorageMode
	Collection string
	// Weigher names the search weighting used for this type.
	Weigher string
}

func (ct *ContentType) Field(name string) (Field, bool) {
	for _, f := range ct.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ColumnType resolves the type of a declared field or a base column.
func (ct *ContentType) ColumnType(name string) (FieldType, bool) {
	if f, ok := ct.Field(name); ok {
		return f.Type, true
	}
	if t, ok := baseColumns[name]; ok {
		return t, true
	}
	if name == RemoteIDColumn && ct.Mode == ModeSync {
		return FieldText, true
	}
	return "", false
}

// IsColumn reports whether name can be used in queries. With allowVariants a
// leading "-" (descending order) is accepted.
func (ct *ContentType) IsColumn(name string, allowVariants bool) bool {
	if allowVariants {
		name = strings.TrimPrefix(name, "-")
	}
	_, ok := ct.ColumnType(name)
	return ok
}

func (ct *ContentType) Taxonomy(slug string) (Taxonomy, bool) {
	for _, t := range ct.Taxonomies {
		if t.Slug == slug {
			return t, true
		}
	}
	return Taxonomy{}, false
}

// Grouping returns the first taxonomy that behaves like a grouping.
func (ct *ContentType) Grouping() (Taxonomy, bool) {
	for _, t := range ct.Taxonomies {
		if t.Behavior == BehaviorGrouping {
			return t, true
		}
	}
	return Taxonomy{}, false
}

func (ct *ContentType) SearchableFields() []Field {
	var fields []Field
	for _, f := range ct.Fields {
		if f.Type.Searchable() {
			fields = append(fields, f)
		}
	}
	return fields
}

// RemoteName maps a local column to the remote collection's field name.
func (ct *ContentType) RemoteName(column string) string {
	if f, ok := ct.Field(column); ok && f.RemoteField != "" {
		return f.RemoteField
	}
	return column
}

// LocalName is the inverse of RemoteName.
func (ct *ContentType) LocalName(remote string) string {
	for _, f := range ct.Fields {
		if f.RemoteField == remote {
			return f.Name
		}
	}
	return remote
}

// RemoteCollection is the endpoint of the remote collection, "/{slug}" unless overridden.
func (ct *ContentType) RemoteCollection() string {
	if ct.Collection != "" {
		return ct.Collection
	}
	return "/" + ct.Slug
}

// TableName is the relational table backing the content type.
func (ct *ContentType) TableName(prefix string) string {
	return prefix + strings.ReplaceAll(ct.Slug, "-", "_")
}

// Source resolves content types by slug, singular slug or name.
type Source interface {
	Lookup(name string) (*ContentType, error)
}
