package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrontMatter_InsertionOrder(t *testing.T) {
	var fm FrontMatter
	fm.Set("title", "A")
	fm.SetList("tags", []string{"x"})
	fm.Set("layout", "wide")
	fm.Set("title", "B")

	assert.Equal(t, []string{"title", "tags", "layout"}, fm.Keys())
	assert.Equal(t, "B", fm.GetString("title"))
	assert.Equal(t, 3, fm.Len())
}

func TestFrontMatter_Append(t *testing.T) {
	fm := NewFrontMatter()
	fm.Set("tags", "scalar")
	fm.Append("tags", "one")
	fm.Append("tags", "two")

	assert.Equal(t, []string{"one", "two"}, fm.List("tags"))
	assert.Equal(t, "one, two", fm.GetString("tags"))
}

func TestFrontMatter_ListOfScalar(t *testing.T) {
	fm := NewFrontMatter()
	fm.Set("categories", "news")
	fm.Set("empty", "")

	assert.Equal(t, []string{"news"}, fm.List("categories"))
	assert.Nil(t, fm.List("empty"))
	assert.Nil(t, fm.List("missing"))
}

func TestFrontMatter_Custom(t *testing.T) {
	fm := NewFrontMatter()
	fm.Set("title", "A")
	fm.Set("slug", "a")
	fm.Set("layout", "wide")
	fm.SetList("related", []string{"b", "c"})

	assert.Equal(t, map[string]string{"layout": "wide", "related": "b, c"}, fm.Custom())
}
