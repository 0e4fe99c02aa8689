// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - FolderTraverser: Lists the children of a folder in the document store
//   - DocumentFetcher: Retrieves the plain text of a document
//   - FieldExtractor: Pulls semantic fields out of free text
//   - RecordStore: Registry persistence (rooms and patients)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SyncMetrics: Records sync outcomes. Without it, nothing is recorded.
//   - NormaliserRegistry: Converts office files to text. Without it, office files fail to fetch.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
