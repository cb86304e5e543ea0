package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-room-token/internal/domain"
	"github.com/tbourn/go-room-token/internal/http/middleware"
	"github.com/tbourn/go-room-token/internal/services"
)

// RecordingRulesRequest documents the recording-rules endpoint body.
type RecordingRulesRequest struct {
	RoomSID string `json:"room_sid" example:"RM0123456789abcdef0123456789abcdef"`
	// Rules is forwarded to the provider unchanged,
	// e.g. [{"type":"include","all":true}].
	Rules []map[string]any `json:"rules"`
}

// SetRecordingRules godoc
// @ID          setRecordingRules
// @Summary     Replace a room's recording rules
// @Description Forwards the rule set to the video provider. Provider failures are echoed with the provider's message and code.
// @Tags        Recording
// @Accept      json
// @Produce     json
// @Security    IdentityToken
//
// @Param       Authorization  header  string                          true  "Identity token, raw or Bearer"
// @Param       body           body    handlers.RecordingRulesRequest  true  "Rules update"
//
// @Success     200  {object}  domain.RecordingRules
// @Failure     400  {object}  handlers.ErrorResponse  "Missing parameter"
// @Failure     401  "Identity token missing, invalid or not allowed"
// @Failure     500  {object}  handlers.ErrorResponse  "Provider error (message and code)"
// @Router      /recordingrules [post]
func (h *Handlers) SetRecordingRules(c *gin.Context) {
	fields, bound := bindFields(c)
	if !bound {
		return
	}
	roomSID, rules, err := services.ParseRecordingParams(fields)
	if err != nil {
		failClassified(c, err)
		return
	}

	out, err := h.recordings.SetRecordingRules(c.Request.Context(), roomSID, rules)
	if err != nil {
		if services.IsClientError(err) {
			failClassified(c, err)
			return
		}
		failProvider(c, err)
		return
	}
	audit(c, roomSID)
	ok(c, http.StatusOK, out)
}

// audit records who changed a room's recording rules.
func audit(c *gin.Context, roomSID string) {
	ev := middleware.LoggerFrom(c).Info().Str("room_sid", roomSID)
	if id := middleware.IdentityFrom(c); id != nil {
		ev = ev.Str("uid", id.UID)
	}
	ev.Msg("recording rules updated")
}

// failProvider echoes a provider failure as {message, code}. Errors that did
// not come from the provider get a generic message.
func failProvider(c *gin.Context, err error) {
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		body := ErrorBody{Message: pe.Message}
		if pe.Code != 0 {
			body.Code = pe.Code
		}
		abort(c, http.StatusInternalServerError, body, err)
		return
	}
	abort(c, http.StatusInternalServerError, ErrorBody{Message: "error updating recording rules", Code: ErrCodeInternal}, err)
}
