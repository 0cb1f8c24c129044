package schema

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads content type definitions from a YAML file.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load decodes a YAML document mapping content type slugs to their definitions.
// The order of content types, fields and taxonomies is kept as written.
//
//	entries:
//	  name: Entries
//	  singular_slug: entry
//	  mode: sync
//	  sort: -datepublish
//	  fields:
//	    title: { type: text }
//	    body: { type: html, remote_field: content }
//	  taxonomies:
//	    chapters: { behaves_like: grouping, options: [intro, main] }
func Load(r io.Reader) (*Registry, error) {
	var doc yamlDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode schema: %w", err)
	}

	return NewRegistry(doc...)
}

type yamlDocument []*ContentType

func (d *yamlDocument) UnmarshalYAML(value *yaml.Node) error {
	return eachPair(value, func(key string, node *yaml.Node) error {
		var def yamlContentType
		if err := node.Decode(&def); err != nil {
			return fmt.Errorf("content type %q: %w", key, err)
		}

		*d = append(*d, &ContentType{
			Slug:         key,
			Name:         def.Name,
			SingularSlug: def.SingularSlug,
			Fields:       def.Fields,
			Taxonomies:   def.Taxonomies,
			Sort:         def.Sort,
			Mode:         def.Mode,
			Collection:   def.Collection,
			Weigher:      def.Weigher,
		})
		return nil
	})
}

type yamlContentType struct {
	Name         string            `yaml:"name"`
	SingularSlug string            `yaml:"singular_slug"`
	Sort         string            `yaml:"sort"`
	Mode         StorageMode       `yaml:"mode"`
	Collection   string            `yaml:"collection"`
	Weigher      string            `yaml:"weigher"`
	Fields       orderedFields     `yaml:"fields"`
	Taxonomies   orderedTaxonomies `yaml:"taxonomies"`
}

type orderedFields []Field

func (o *orderedFields) UnmarshalYAML(value *yaml.Node) error {
	return eachPair(value, func(key string, node *yaml.Node) error {
		f := Field{Name: key}
		if err := node.Decode(&f); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		if f.Type == "" {
			f.Type = FieldText
		}
		*o = append(*o, f)
		return nil
	})
}

type orderedTaxonomies []Taxonomy

func (o *orderedTaxonomies) UnmarshalYAML(value *yaml.Node) error {
	return eachPair(value, func(key string, node *yaml.Node) error {
		t := Taxonomy{Slug: key}
		if err := node.Decode(&t); err != nil {
			return fmt.Errorf("taxonomy %q: %w", key, err)
		}
		if t.Slug == "" {
			t.Slug = key
		}
		*o = append(*o, t)
		return nil
	})
}

func eachPair(value *yaml.Node, fn func(key string, node *yaml.Node) error) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		if err := fn(value.Content[i].Value, value.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}
