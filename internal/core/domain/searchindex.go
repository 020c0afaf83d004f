package domain

import "time"

// SearchIndexVersion is written into every index metadata file.
const SearchIndexVersion = "1.0"

// IndexEntry is one element of a search index file.
type IndexEntry struct {
	File       string            `json:"file"`
	Title      string            `json:"title"`
	Slug       string            `json:"slug"`
	Date       string            `json:"date"`
	Status     string            `json:"status"`
	Author     string            `json:"author"`
	Excerpt    string            `json:"excerpt"`
	Modified   string            `json:"modified"`
	Categories []string          `json:"categories"`
	Tags       []string          `json:"tags"`
	Custom     map[string]string `json:"custom"`
}

// IndexMetadata is the sibling metadata file of a search index.
type IndexMetadata struct {
	GeneratedAt      time.Time `json:"generated_at"`
	PostType         string    `json:"post_type"`
	TotalPosts       int       `json:"total_posts"`
	BuildTimeSeconds float64   `json:"build_time_seconds"`
	IndexVersion     string    `json:"index_version"`
}
