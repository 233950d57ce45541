// Package store owns the live state document of the client.
//
// A Store wraps a localstore.KV and keeps exactly one Document in memory.
// Every mutation goes through Mutate, which runs under the store lock and
// persists the whole document afterwards. Persistence is whole-value
// last-writer-wins; nothing is ever merged.
//
// Autosave periodically stamps meta.lastSaved and writes the document, using
// the interval held in the document's own settings. Changing that setting
// through Mutate or Replace reschedules the running autosave job.
package store
