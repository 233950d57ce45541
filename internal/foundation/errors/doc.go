// Package errors provides the classified error primitives used across kaizen.
//
// Errors carry a category (validation, auth, network, storage, ...), a severity and
// a retry hint. The HTTP adapter turns a category into a status code and a JSON
// payload; the CLI adapter turns it into an exit code and a one-line message.
//
// Example usage:
//
//	err := errors.NetworkError("save to server failed").
//		WithContext("url", url).
//		WithCause(cause).
//		Build()
package errors
