package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-room-token/internal/domain"
	"github.com/tbourn/go-room-token/internal/services"
)

// TokenIssuer provisions resources and mints an access token.
type TokenIssuer interface {
	Issue(ctx context.Context, req services.ProvisionRequest) (*services.TokenGrant, error)
}

// RecordingRulesSetter overwrites a room's recording rules.
type RecordingRulesSetter interface {
	SetRecordingRules(ctx context.Context, roomSID string, rules json.RawMessage) (*domain.RecordingRules, error)
}

// Handlers groups the token and recording-rule endpoints.
type Handlers struct {
	tokens     TokenIssuer
	recordings RecordingRulesSetter
}

// New constructs a Handlers bound to the given services.
func New(tokens TokenIssuer, recordings RecordingRulesSetter) *Handlers {
	return &Handlers{tokens: tokens, recordings: recordings}
}

// bindFields decodes the request body into raw top-level fields so that
// parameter types can be checked one by one. An empty body is an empty
// object. It writes the error response itself and returns false on failure.
func bindFields(c *gin.Context) (map[string]json.RawMessage, bool) {
	var fields map[string]json.RawMessage
	err := c.ShouldBindJSON(&fields)
	if err == nil || errors.Is(err, io.EOF) {
		if fields == nil {
			fields = map[string]json.RawMessage{}
		}
		return fields, true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "request body too large")
		return nil, false
	}
	abort(c, http.StatusBadRequest, ErrorBody{
		Message:     "invalid request body",
		Explanation: "The request body must be a JSON object.",
		Code:        ErrCodeBadRequest,
	}, nil)
	return nil, false
}

// failClassified answers a *services.Error: 400 for client kinds, 500 with
// the generic message otherwise. Anything unclassified is a plain 500.
func failClassified(c *gin.Context, err error) {
	var se *services.Error
	if !errors.As(err, &se) {
		abort(c, http.StatusInternalServerError, ErrorBody{Message: "internal server error", Code: ErrCodeInternal}, err)
		return
	}
	status := http.StatusInternalServerError
	if services.IsClientError(err) {
		status = http.StatusBadRequest
	}
	abort(c, status, ErrorBody{Message: se.Message, Explanation: se.Explanation}, se.Cause)
}
