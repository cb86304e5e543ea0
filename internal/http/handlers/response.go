// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by all endpoints. Every
// failure uses one envelope so clients can branch on a single shape:
//
//	HTTP/1.1 400 Bad Request
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "error": {
//	    "message": "missing user_identity",
//	    "explanation": "The user_identity parameter is missing."
//	  }
//	}
//
// Token endpoint failures carry message/explanation; recording-rule provider
// failures carry message/code (the provider's numeric code); fallbacks carry
// message and a string code from errors.go.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-room-token/internal/http/middleware"
)

// ErrorBody is the inner error object.
type ErrorBody struct {
	Message     string `json:"message" example:"missing user_identity"`
	Explanation string `json:"explanation,omitempty" example:"The user_identity parameter is missing."`
	// Code is a string from errors.go, or the provider's numeric error code
	// on recording-rule failures.
	Code any `json:"code,omitempty" swaggertype:"string" example:"not_found"`
}

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string    `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Error     ErrorBody `json:"error"`
}

// abort writes body as the error envelope. 5xx responses are logged with the
// request-scoped logger; cause, when given, is only logged.
func abort(c *gin.Context, status int, body ErrorBody, cause error) {
	if status >= http.StatusInternalServerError {
		ev := middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("message", body.Message)
		if cause != nil {
			ev = ev.Err(cause)
		}
		ev.Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: middleware.RequestIDFrom(c),
		Error:     body,
	})
}

// fail aborts with a stable string code and message.
func fail(c *gin.Context, status int, code, msg string) {
	abort(c, status, ErrorBody{Message: msg, Code: code}, nil)
}

// Fail is the exported variant of fail(), used by the router's fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
