// Package server exposes editing sessions over HTTP.
//
// Every mutating request loads the session snapshot from a [session.Store],
// replays the change through an [editor.Session] and writes the new
// snapshot back. Requests on the same session are serialized; different
// sessions proceed in parallel.
//
// # Routes
//
//	GET    /health
//	GET    /metrics
//	GET    /api/sessions
//	POST   /api/sessions
//	GET    /api/sessions/{id}
//	DELETE /api/sessions/{id}
//	POST   /api/sessions/{id}/nodes
//	DELETE /api/sessions/{id}/nodes/{nodeID}
//	PUT    /api/sessions/{id}/nodes/{nodeID}/config
//	PUT    /api/sessions/{id}/nodes/{nodeID}/name
//	PUT    /api/sessions/{id}/nodes/{nodeID}/position
//	POST   /api/sessions/{id}/edges
//	DELETE /api/sessions/{id}/edges/{edgeID}
//	GET    /api/sessions/{id}/validate
//	POST   /api/sessions/{id}/commit
//	POST   /api/validate
//	POST   /api/encode
//	POST   /api/decode
//
// # Errors
//
// Failures are returned as {"error": {"code": ..., "message": ...}}.
// Rejected mutations map to 409, graphs that fail validation on commit to
// 422 with the validation result, and unknown sessions, nodes and edges to
// 404.
package server
