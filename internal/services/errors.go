// Package services holds the provisioning and token-issuing logic behind the
// HTTP API. This file defines the error taxonomy shared by every operation.
//
// Kinds are sentinel errors; concrete failures are *Error values carrying
// the fixed, machine-readable message/explanation pair that handlers return
// to clients. Callers branch with errors.Is on the kind and read the pair
// with errors.As. The underlying provider cause is kept in Cause for logging
// and is never part of Message or Explanation.
package services

import "errors"

// Client-side kinds (HTTP 400).
var (
	// ErrInvalidParameter is returned when a parameter has the wrong type.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrMissingParameter is returned when a required parameter is absent
	// or empty.
	ErrMissingParameter = errors.New("missing parameter")
)

// Server-side kinds (HTTP 500).
var (
	// ErrRoomProvisioning is returned when a room could be neither fetched
	// nor created.
	ErrRoomProvisioning = errors.New("room provisioning failed")

	// ErrChannelProvisioning is returned when a conversation channel could
	// be neither fetched nor created.
	ErrChannelProvisioning = errors.New("channel provisioning failed")

	// ErrParticipantProvisioning is returned when adding the caller to the
	// channel failed for any reason other than an existing membership.
	ErrParticipantProvisioning = errors.New("participant provisioning failed")
)

// Error is a classified failure with a client-facing message pair.
type Error struct {
	Kind        error
	Message     string
	Explanation string
	Cause       error
}

func (e *Error) Error() string { return e.Message }

// Is matches the error's kind so errors.Is(err, ErrMissingParameter) works.
func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Cause }

// IsClientError reports whether err should be answered with HTTP 400.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidParameter) || errors.Is(err, ErrMissingParameter)
}

func invalidBool(param string) *Error {
	return &Error{
		Kind:        ErrInvalidParameter,
		Message:     "invalid parameter",
		Explanation: "A boolean value must be provided for the " + param + " parameter",
	}
}

func invalidString(param string) *Error {
	return &Error{
		Kind:        ErrInvalidParameter,
		Message:     "invalid parameter",
		Explanation: "A string value must be provided for the " + param + " parameter",
	}
}

func missing(param, explanation string) *Error {
	return &Error{
		Kind:        ErrMissingParameter,
		Message:     "missing " + param,
		Explanation: explanation,
	}
}

// Fixed client errors.
var (
	errInvalidCreateRoom         = invalidBool("create_room")
	errInvalidCreateConversation = invalidBool("create_conversation")
	errMissingUserIdentity       = missing("user_identity", "The user_identity parameter is missing.")
	errMissingRoomName           = missing("room_name", "The room_name parameter is missing. room_name is required when create_room is true.")
	errMissingRoomSID            = missing("room_sid", "The room_sid parameter is missing.")
	errMissingRules              = missing("rules", "The rules parameter is missing.")
)

func roomFailed(cause error) *Error {
	return &Error{
		Kind:        ErrRoomProvisioning,
		Message:     "error creating room",
		Explanation: "Something went wrong when creating a room.",
		Cause:       cause,
	}
}

func channelFailed(cause error) *Error {
	return &Error{
		Kind:        ErrChannelProvisioning,
		Message:     "error creating conversation",
		Explanation: "Something went wrong when creating a conversation.",
		Cause:       cause,
	}
}

func participantFailed(cause error) *Error {
	return &Error{
		Kind:        ErrParticipantProvisioning,
		Message:     "error creating conversation participant",
		Explanation: "Something went wrong when creating a conversation participant.",
		Cause:       cause,
	}
}
