// Package export writes stored posts and search indexes to disk.
//
// Every file is replaced atomically, so readers of the content root never
// observe a partially written post or index.
package export
