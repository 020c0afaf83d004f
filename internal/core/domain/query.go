package domain

import (
	"sort"
	"strconv"
)

// QueryMode tells the read path who is asking. Only display queries
// may be answered from content files.
type QueryMode int

const (
	// ModeDisplay is a public content listing or single-post read.
	ModeDisplay QueryMode = iota
	// ModeAdmin covers destructive or administrative operations.
	ModeAdmin
	// ModeExport is bulk export traversal of stored posts.
	ModeExport
)

func (m QueryMode) String() string {
	switch m {
	case ModeDisplay:
		return "display"
	case ModeAdmin:
		return "admin"
	case ModeExport:
		return "export"
	default:
		return "unknown"
	}
}

// AllPages requests every matching post in one page.
const AllPages = -1

// DefaultPageSize applies when a query leaves PageSize at zero.
const DefaultPageSize = 10

// Query is a listing request for a single content type.
type Query struct {
	Type     string
	Page     int
	PageSize int
	Search   string
	Status   string
	Slug     string
	// Main marks the primary listing of a request, the one that falls back
	// to the default type when Type is empty.
	Main bool
	Mode QueryMode
	// Exclude drops stored posts with these slugs. It is a store filter
	// only and not part of the cache shape.
	Exclude []string
}

// Normalize fills defaults: page 1, DefaultPageSize, status publish.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize < AllPages {
		q.PageSize = AllPages
	}
	if q.Status == "" {
		q.Status = StatusPublish
	}
	return q
}

// Params returns the normalised query shape as sorted key/value pairs,
// used to derive cache keys. Type and Mode are not part of the shape.
func (q Query) Params() [][2]string {
	n := q.Normalize()
	m := map[string]string{
		"page":     strconv.Itoa(n.Page),
		"per_page": strconv.Itoa(n.PageSize),
		"s":        n.Search,
		"status":   n.Status,
		"slug":     n.Slug,
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, m[k]})
	}
	return out
}

// PostList is one page of a listing plus totals over the filtered set.
type PostList struct {
	Posts      []Post `json:"posts"`
	FoundCount int    `json:"found_count"`
	PageCount  int    `json:"page_count"`
}

// PageCountFor returns ceil(found/pageSize), or 1 when pageSize means all.
func PageCountFor(found, pageSize int) int {
	if found == 0 {
		return 0
	}
	if pageSize <= 0 {
		return 1
	}
	return (found + pageSize - 1) / pageSize
}
