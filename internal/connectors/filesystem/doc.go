// Package filesystem reads the content root from local disk and watches it
// for edits.
//
// The content root holds one directory per content type; each directory
// holds Markdown files with optional front matter. Hidden entries are ignored.
package filesystem
