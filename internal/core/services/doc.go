// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// SyncOrchestrator runs the ingestion pass, RecordMerger applies the merge
// policy on every upsert, and RegistryService and FolderService back the
// read-only CLI and MCP surfaces.
package services
