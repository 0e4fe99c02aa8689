// Package drive implements the folder traverser and document fetcher over
// the Google Drive v3 API.
//
// Google Docs are exported as text/plain. Uploaded office files (DOCX, ODT,
// RTF) are downloaded with alt=media and converted by the normaliser registry.
// Every API call goes through the shared google.RateLimiter.
package drive
