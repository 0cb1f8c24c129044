package schema

import (
	"fmt"

	"github.com/DjordjeVuckovic/content-query/pkg/slug"
)

// Registry is an in-memory Source over a fixed set of content types.
type Registry struct {
	types  []*ContentType
	lookup map[string]*ContentType
}

func NewRegistry(types ...*ContentType) (*Registry, error) {
	r := &Registry{lookup: make(map[string]*ContentType)}

	for _, ct := range types {
		if err := normalize(ct); err != nil {
			return nil, err
		}
		if _, dup := r.lookup[ct.Slug]; dup {
			return nil, fmt.Errorf("duplicate content type %q", ct.Slug)
		}
		r.types = append(r.types, ct)
	}

	// Slugs win over singular slugs and names when they collide.
	for _, ct := range r.types {
		r.lookup[ct.Slug] = ct
	}
	for _, ct := range r.types {
		for _, alias := range []string{ct.SingularSlug, slug.Make(ct.Name)} {
			if _, taken := r.lookup[alias]; alias != "" && !taken {
				r.lookup[alias] = ct
			}
		}
	}

	return r, nil
}

func normalize(ct *ContentType) error {
	if ct.Slug == "" {
		ct.Slug = slug.Make(ct.Name)
	}
	if ct.Slug == "" {
		return fmt.Errorf("content type without slug or name")
	}
	if ct.Name == "" {
		ct.Name = ct.Slug
	}
	if ct.Mode == "" {
		ct.Mode = ModeLocal
	}
	if !ct.Mode.Valid() {
		return fmt.Errorf("content type %q: invalid mode %q", ct.Slug, ct.Mode)
	}
	if ct.Weigher == "" {
		ct.Weigher = "text"
	}
	for i := range ct.Taxonomies {
		if ct.Taxonomies[i].Behavior == "" {
			ct.Taxonomies[i].Behavior = BehaviorTags
		}
	}

	return nil
}

func (r *Registry) Lookup(name string) (*ContentType, error) {
	if ct, ok := r.lookup[name]; ok {
		return ct, nil
	}
	if ct, ok := r.lookup[slug.Make(name)]; ok {
		return ct, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrContentTypeNotFound, name)
}

// All returns the content types in declaration order.
func (r *Registry) All() []*ContentType {
	return r.types
}

var _ Source = (*Registry)(nil)
