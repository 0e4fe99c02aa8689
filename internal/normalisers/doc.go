// Package normalisers converts downloaded office documents into plain text.
// Each normaliser knows how to read specific MIME types; the Registry picks
// the highest priority normaliser for a MIME type and falls back to the
// next one when conversion fails.
//
// Normalisers are registered with the Registry at startup.
package normalisers
