// Package domain holds Folio's entities and the rules that need no I/O:
// virtual posts parsed from markdown files, the post shape shared with
// stored posts, listing queries and pages, export job cursors, commits and
// pull requests, settings, and scheduled tasks.
//
// Everything else in the module imports domain. Domain imports only the
// standard library.
package domain
