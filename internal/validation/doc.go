// Package validation holds the pure checks and text transforms shared by the
// entity and endpoint layers: ISO 639-1 language codes, phone numbers,
// multilingual length limits, and HTML cleaning to plain text or markdown.
package validation
