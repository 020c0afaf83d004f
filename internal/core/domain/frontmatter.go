package domain

import "strings"

// Well-known front matter keys. Anything else is a custom field.
const (
	FieldTitle         = "title"
	FieldSlug          = "slug"
	FieldDate          = "date"
	FieldStatus        = "status"
	FieldAuthor        = "author"
	FieldExcerpt       = "excerpt"
	FieldModified      = "modified"
	FieldCategories    = "categories"
	FieldTags          = "tags"
	FieldFeaturedImage = "featured_image"
)

// IsKnownField reports whether key has a dedicated VirtualPost field.
func IsKnownField(key string) bool {
	switch key {
	case FieldTitle, FieldSlug, FieldDate, FieldStatus, FieldAuthor, FieldExcerpt,
		FieldModified, FieldCategories, FieldTags, FieldFeaturedImage:
		return true
	}
	return false
}

// FrontMatterValue is either a scalar string or an ordered list of strings.
type FrontMatterValue struct {
	Scalar string
	List   []string
	IsList bool
}

// FrontMatter is an insertion-ordered mapping of keys to values.
// The zero value is ready to use.
type FrontMatter struct {
	keys   []string
	values map[string]FrontMatterValue
}

// NewFrontMatter returns an empty FrontMatter.
func NewFrontMatter() FrontMatter {
	return FrontMatter{values: make(map[string]FrontMatterValue)}
}

func (f *FrontMatter) put(key string, v FrontMatterValue) {
	if f.values == nil {
		f.values = make(map[string]FrontMatterValue)
	}
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = v
}

// Set stores a scalar value, replacing any previous value for key.
func (f *FrontMatter) Set(key, value string) {
	f.put(key, FrontMatterValue{Scalar: value})
}

// SetList stores a list value, replacing any previous value for key.
func (f *FrontMatter) SetList(key string, items []string) {
	list := make([]string, len(items))
	copy(list, items)
	f.put(key, FrontMatterValue{List: list, IsList: true})
}

// Append adds an item to the list stored under key, converting a scalar
// or missing value into a list.
func (f *FrontMatter) Append(key, item string) {
	v := f.values[key]
	if !v.IsList {
		v = FrontMatterValue{IsList: true}
	}
	v.List = append(v.List, item)
	f.put(key, v)
}

// Get returns the raw value for key.
func (f FrontMatter) Get(key string) (FrontMatterValue, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Has reports whether key is present.
func (f FrontMatter) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// GetString returns the scalar value for key. Lists are joined with ", ".
func (f FrontMatter) GetString(key string) string {
	v, ok := f.values[key]
	if !ok {
		return ""
	}
	if v.IsList {
		return strings.Join(v.List, ", ")
	}
	return v.Scalar
}

// List returns the list value for key. A non-empty scalar becomes a
// single-item list.
func (f FrontMatter) List(key string) []string {
	v, ok := f.values[key]
	if !ok {
		return nil
	}
	if v.IsList {
		return v.List
	}
	if v.Scalar == "" {
		return nil
	}
	return []string{v.Scalar}
}

// Keys returns keys in first-insertion order.
func (f FrontMatter) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Len returns the number of keys.
func (f FrontMatter) Len() int {
	return len(f.keys)
}

// Custom returns every non-standard key as a map. List values are joined.
func (f FrontMatter) Custom() map[string]string {
	out := make(map[string]string)
	for _, k := range f.keys {
		if !IsKnownField(k) {
			out[k] = f.GetString(k)
		}
	}
	return out
}
