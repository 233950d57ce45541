// Package document defines the StateDocument, the single aggregate holding all
// project data, together with the operations the client performs on it.
//
// A Document is always persisted and transferred whole. Nothing in this package
// merges two documents: replacing one with another is the only way state moves
// between the local store and the remote service.
//
// Persisted documents carry a semantic schemaVersion. Migrate upgrades older
// documents (including the legacy browser format, which has no version at all)
// and rejects documents written by a newer schema. ParseImport additionally
// validates the result against the embedded JSON Schema.
package document
