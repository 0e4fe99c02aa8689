// Package extraction turns free-form document text into structured fields.
//
// Fields are found by an ordered rule table: for each field the rules are
// tried in priority order and the first non-empty capture wins. The table
// is data, so it can be inspected and tested apart from the matching loop.
package extraction
