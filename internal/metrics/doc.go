// Package metrics provides the observability hooks of the state service and the
// client state store.
//
// # Design Philosophy
//
// The package implements the Null Object pattern so components can record
// metrics without nil checks. By default every component uses NoopRecorder,
// whose methods do nothing.
//
// # Usage Pattern
//
// Components receive a Recorder through dependency injection:
//
//	s := store.New(kv, store.WithRecorder(recorder))
//
// The server activates PrometheusRecorder when metrics are enabled in the
// configuration and exposes the registry through HTTPHandler on /metrics.
package metrics
