package twilio

import (
	"errors"
	"net/http"

	"github.com/twilio/twilio-go/client"

	"github.com/tbourn/go-room-token/internal/domain"
)

// Provider error codes this service branches on.
const (
	CodeNotFound           = 20404
	CodeRoomExists         = 53113
	CodeConversationExists = 50353
	CodeParticipantExists  = 50433
)

var conflictCodes = map[int]struct{}{
	CodeRoomExists:         {},
	CodeConversationExists: {},
	CodeParticipantExists:  {},
}

// classify converts an SDK error into a tagged *domain.ProviderError.
//
// Only the "already exists" codes above and HTTP 409 map to Conflict; a full
// conversation or any other 4xx stays Transient so the provisioner treats it
// as fatal.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var restErr *client.TwilioRestError
	if !errors.As(err, &restErr) {
		return &domain.ProviderError{Kind: domain.KindTransient, Message: err.Error(), Err: err}
	}

	kind := domain.KindTransient
	_, exists := conflictCodes[restErr.Code]
	switch {
	case restErr.Status == http.StatusNotFound || restErr.Code == CodeNotFound:
		kind = domain.KindNotFound
	case restErr.Status == http.StatusConflict || exists:
		kind = domain.KindConflict
	}
	return &domain.ProviderError{
		Kind:    kind,
		Code:    restErr.Code,
		Status:  restErr.Status,
		Message: restErr.Message,
		Err:     err,
	}
}
