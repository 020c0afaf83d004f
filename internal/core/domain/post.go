package domain

import (
	"hash/crc32"
	"strings"
	"time"
)

// VirtualIDBase offsets synthetic identities away from stored post IDs.
const VirtualIDBase int64 = 1_000_000_000

// Post statuses.
const (
	StatusPublish = "publish"
	StatusDraft   = "draft"
	StatusPrivate = "private"
	StatusAny     = "any"
)

// DefaultPostType is used when neither configuration nor query names one.
const DefaultPostType = "posts"

// VirtualPostID derives a post identity from its slug alone, so the same
// file maps to the same ID in every process.
func VirtualPostID(slug string) int64 {
	return VirtualIDBase + int64(crc32.ChecksumIEEE([]byte(slug)))
}

// IsVirtualID reports whether id falls in the synthetic identity range.
func IsVirtualID(id int64) bool {
	return id >= VirtualIDBase
}

// PostMeta carries side-channel data needed for rendering and edit round trips.
type PostMeta struct {
	Categories    []string          `json:"categories,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	FeaturedImage string            `json:"featured_image,omitempty"`
	Custom        map[string]string `json:"custom,omitempty"`
	FilePath      string            `json:"file_path,omitempty"`
	AuthorLogin   string            `json:"author_login,omitempty"`
}

// VirtualPost is a post synthesised from a content file.
type VirtualPost struct {
	ID       int64     `json:"id"`
	Type     string    `json:"type"`
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	Content  string    `json:"content"`
	Markdown string    `json:"markdown"`
	Excerpt  string    `json:"excerpt,omitempty"`
	Status   string    `json:"status"`
	AuthorID int64     `json:"author_id"`
	Date     time.Time `json:"date"`
	Modified time.Time `json:"modified"`
	Meta     PostMeta  `json:"meta"`
}

// EffectiveDate is the date used for sorting: Date, else Modified.
func (p *VirtualPost) EffectiveDate() time.Time {
	if !p.Date.IsZero() {
		return p.Date
	}
	return p.Modified
}

// ToPost converts the virtual record into the display shape.
func (p *VirtualPost) ToPost() Post {
	return Post{
		ID:            p.ID,
		Type:          p.Type,
		Title:         p.Title,
		Slug:          p.Slug,
		Content:       p.Content,
		Markdown:      p.Markdown,
		Excerpt:       p.Excerpt,
		Status:        p.Status,
		AuthorID:      p.AuthorID,
		Date:          p.Date,
		Modified:      p.Modified,
		Categories:    p.Meta.Categories,
		Tags:          p.Meta.Tags,
		FeaturedImage: p.Meta.FeaturedImage,
		Custom:        p.Meta.Custom,
		Source:        SourceFile,
		FilePath:      p.Meta.FilePath,
	}
}

// PostSource records where a display post came from.
type PostSource string

// Post sources.
const (
	SourceDatabase PostSource = "database"
	SourceFile     PostSource = "file"
)

// Post is the display shape shared by stored and file-backed posts.
// Stored posts also use it as their row shape.
type Post struct {
	ID            int64             `json:"id"`
	Type          string            `json:"type"`
	Title         string            `json:"title"`
	Slug          string            `json:"slug"`
	Content       string            `json:"content"`
	Markdown      string            `json:"markdown,omitempty"`
	Excerpt       string            `json:"excerpt,omitempty"`
	Status        string            `json:"status"`
	AuthorID      int64             `json:"author_id"`
	Date          time.Time         `json:"date"`
	Modified      time.Time         `json:"modified"`
	Categories    []string          `json:"categories,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	FeaturedImage string            `json:"featured_image,omitempty"`
	Custom        map[string]string `json:"custom,omitempty"`
	Source        PostSource        `json:"source"`
	FilePath      string            `json:"file_path,omitempty"`
}

// SourceText is the authored body: the markdown of a file post, or the
// stored content of a database post.
func (p *Post) SourceText() string {
	if p.Source == SourceFile {
		return p.Markdown
	}
	return p.Content
}

// Published reports whether the post may be shown to anonymous readers.
func (p *Post) Published() bool {
	return p.Status == StatusPublish
}

// IsVirtual reports whether the post was synthesised from a file.
func (p *Post) IsVirtual() bool {
	return p.Source == SourceFile
}

// Author is a user that posts can be attributed to.
type Author struct {
	ID          int64  `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

// MatchesSearch reports whether term appears in title or body, ignoring case.
func MatchesSearch(title, body, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(title+" "+body), strings.ToLower(term))
}
