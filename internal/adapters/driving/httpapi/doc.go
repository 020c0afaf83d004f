// Package httpapi serves Folio over HTTP: public post listings, export job
// status and the signed repository webhook.
package httpapi
