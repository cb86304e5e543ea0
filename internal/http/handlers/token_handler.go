package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-room-token/internal/services"
)

// TokenRequest documents the token endpoint body. The handler decodes fields
// individually so that wrongly-typed values can be reported per parameter.
type TokenRequest struct {
	UserIdentity       string `json:"user_identity" example:"alice"`
	RoomName           string `json:"room_name" example:"daily-standup"`
	CreateRoom         *bool  `json:"create_room,omitempty" example:"true"`
	CreateConversation *bool  `json:"create_conversation,omitempty" example:"false"`
	MediaRegion        string `json:"media_region,omitempty" example:"gll"`
}

// IssueToken godoc
// @ID          issueToken
// @Summary     Issue an access token
// @Description Ensures the room (and optionally its conversation and the caller's membership) exists, then returns a signed access token for the room and the conversations service.
// @Tags        Tokens
// @Accept      json
// @Produce     json
//
// @Param       Authorization  header  string                 false  "Identity token (required when token auth is enabled)"
// @Param       body           body    handlers.TokenRequest  true   "Token request"
//
// @Success     200  {object}  services.TokenGrant
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid or missing parameter"
// @Failure     401  "Identity token missing, invalid or not allowed"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Provisioning failed"
// @Router      /token [post]
func (h *Handlers) IssueToken(c *gin.Context) {
	fields, bound := bindFields(c)
	if !bound {
		return
	}
	req, err := services.ParseTokenParams(fields)
	if err != nil {
		failClassified(c, err)
		return
	}

	grant, err := h.tokens.Issue(c.Request.Context(), req)
	if err != nil {
		failClassified(c, err)
		return
	}
	ok(c, http.StatusOK, grant)
}
