package domain

import (
	"fmt"
	"hash/crc32"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// ContentFile is a Markdown file directly inside a type directory.
// It is never held between requests; loaders re-read it on cache miss.
type ContentFile struct {
	Path    string
	Type    string
	ModTime time.Time
}

// Freshness summarises a type directory for cache keys as
// "{newest mtime ns}.{file count}.{crc32 of sorted names}". Editing, adding
// or removing any file changes it, including files older than the newest.
// An empty directory is "0".
func Freshness(files []ContentFile) string {
	if len(files) == 0 {
		return "0"
	}
	var newest int64
	names := make([]string, 0, len(files))
	for _, f := range files {
		newest = max(newest, f.ModTime.UnixNano())
		names = append(names, filepath.Base(f.Path))
	}
	slices.Sort(names)
	sum := crc32.ChecksumIEEE([]byte(strings.Join(names, "\n")))
	return fmt.Sprintf("%d.%d.%08x", newest, len(files), sum)
}
