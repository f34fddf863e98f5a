// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response utilities shared across all endpoints.
// Success responses are written directly by handlers; failure responses are
// not. Handlers attach the error to the Gin context and abort, and the error
// dispatcher middleware translates it into the single JSON envelope the API
// uses for every failure:
//
//	HTTP/1.1 404 Not Found
//	{ "message": "Place is not found" }
//
// Example success response:
//
//	HTTP/1.1 200 OK
//	{ "place": { "id": "abc123", "name": "Empire State Building" } }
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MessageResponse is the JSON envelope produced by the error dispatcher for
// every failed request. A handful of transport-level answers (method not
// allowed, rate limiting) mirror the same shape.
//
// This struct is used in OpenAPI documentation via Swagger annotations.
type MessageResponse struct {
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"Place is not found"`
}

// forward hands err to the error dispatcher and stops the handler chain.
//
// The dispatcher logs the raw error, classifies it (not found, validation, or
// unclassified) and writes the MessageResponse envelope with the matching
// HTTP status. Handlers must not write a response after calling forward.
func forward(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Forward is the exported variant of forward().
//
// External packages (e.g., router setup) should call Forward so fallback
// routes report errors through the same dispatch pipeline as handlers.
func Forward(c *gin.Context, err error) { forward(c, err) }

// ok writes a success JSON response.
//
// It serializes `body` as JSON with the given HTTP status code.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
//
// Used when the operation succeeds but there is no response body.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
