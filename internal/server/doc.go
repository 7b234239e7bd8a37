// Package server exposes an editor over a JSON HTTP API.
//
// # Routes
//
//	GET  /healthz      liveness and build version
//	GET  /project      the stored project
//	PUT  /project      replace the project (schema validated, then settled)
//	POST /commands     apply one command object or an array of commands
//	GET  /export       the project as Fountain text
//	POST /import       replace the project with parsed Fountain text
//	GET  /script.md    the project as a Markdown script
//	GET  /render.dot   Graphviz DOT source
//	GET  /render.svg   SVG diagram (?detailed=1, ?canvas=1)
//
// Errors are returned as {"code": "...", "error": "..."} with a status
// derived from the error code: INVALID_* map to 400, NOT_FOUND to 404,
// UNSUPPORTED to 501, NETWORK_ERROR to 502 and everything else to 500.
//
// Every request passes through the registered [observability.HTTPHooks].
package server
