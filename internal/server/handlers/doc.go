// Package handlers contains HTTP handlers for the kaizen state service.
//
// This package provides handlers for:
//   - the shared state document (GET/POST /api/state)
//   - webhook sinks that append every delivery to the webhook log
//   - health monitoring
//
// Authentication is applied by the middleware package; handlers assume the
// caller is already authorised.
package handlers
