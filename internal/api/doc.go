// Package api implements the HTTP layer: request/response DTOs, handlers
// and the mapping from engine errors to HTTP statuses and stable error
// codes.
package api
