// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the centralized error dispatcher. Handlers never
// format failure responses themselves: they attach the error to the Gin
// context (c.Error) and abort, and the dispatcher owns the translation from
// the domain error taxonomy to an HTTP status and JSON body.
//
// Dispatch rules:
//
//	not-found   -> 404 { "message": <error message> }
//	validation  -> 400 { "message": <error message> }
//	anything else -> 500 { "message": "Internal Server Error" }
//
// The raw error is logged with the request-scoped logger before any response
// is written, so diagnostics never depend on what the client is shown. For
// unclassified failures the body is fixed: internal messages are never leaked.
//
// Exactly one response is produced per failed request. If a handler (or an
// earlier middleware) already wrote a response, the dispatcher only logs and
// steps aside.
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evlampios/go-places-backend/internal/domain"
)

// internalErrorMessage is the fixed client-visible body for unclassified
// failures. Raw error text stays in the logs.
const internalErrorMessage = "Internal Server Error"

// ErrorDispatcher converts errors collected on the Gin context into HTTP
// responses. Mount it before the route handlers run (it acts after c.Next()).
//
// Classification is structural: the dispatcher unwraps with errors.As looking
// for *domain.Error and switches on its Kind. Wrapped domain errors
// (fmt.Errorf("...: %w", err)) therefore classify the same as bare ones.
// Errors carrying no recognized kind are masked as 500.
func ErrorDispatcher() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		status := http.StatusInternalServerError
		message := internalErrorMessage
		kind := "unclassified"

		var de *domain.Error
		if errors.As(err, &de) {
			switch de.Kind() {
			case domain.KindNotFound:
				status = http.StatusNotFound
				message = de.Message()
				kind = de.Kind().String()
			case domain.KindValidation:
				status = http.StatusBadRequest
				message = de.Message()
				kind = de.Kind().String()
			}
		}

		// Log the raw error first; the response body may mask it. Client
		// faults log at warn, server faults at error.
		evt := LoggerFrom(c).Error()
		if status < http.StatusInternalServerError {
			evt = LoggerFrom(c).Warn()
		}
		evt.Err(err).Str("kind", kind).Msg("request error dispatched")

		// A response has already been written (e.g., streaming started or a
		// legacy handler replied inline). Never write a second one.
		if c.Writer.Written() {
			return
		}

		observeDispatch(kind)
		c.JSON(status, gin.H{"message": message})
	}
}
