package services

import (
	"encoding/json"
	"strings"
)

// ProvisionRequest is a validated token request.
type ProvisionRequest struct {
	UserIdentity       string
	RoomName           string
	CreateRoom         bool
	CreateConversation bool
	MediaRegion        string
}

// Validate checks the presence preconditions of a provisioning request.
// Type checks happen earlier, in ParseTokenParams.
func (r ProvisionRequest) Validate() error {
	if strings.TrimSpace(r.UserIdentity) == "" {
		return errMissingUserIdentity
	}
	if r.CreateRoom && r.RoomName == "" {
		return errMissingRoomName
	}
	return nil
}

// ParseTokenParams builds a ProvisionRequest from the raw JSON fields of a
// token request body, applying defaults (create_room=true,
// create_conversation=false). An absent media_region stays empty and is
// resolved by the Provisioner.
//
// Checks run in a fixed order: create_room type, create_conversation type,
// string parameter types, user_identity presence, room_name presence. A body
// with a malformed boolean is therefore rejected as InvalidParameter even
// when user_identity is also missing.
func ParseTokenParams(fields map[string]json.RawMessage) (ProvisionRequest, error) {
	var req ProvisionRequest

	var ok bool
	if req.CreateRoom, ok = boolParam(fields, "create_room", true); !ok {
		return ProvisionRequest{}, errInvalidCreateRoom
	}
	if req.CreateConversation, ok = boolParam(fields, "create_conversation", false); !ok {
		return ProvisionRequest{}, errInvalidCreateConversation
	}

	for _, p := range []struct {
		name string
		dst  *string
	}{
		{"user_identity", &req.UserIdentity},
		{"room_name", &req.RoomName},
		{"media_region", &req.MediaRegion},
	} {
		v, ok := stringParam(fields, p.name)
		if !ok {
			return ProvisionRequest{}, invalidString(p.name)
		}
		if v != "" {
			*p.dst = v
		}
	}

	if err := req.Validate(); err != nil {
		return ProvisionRequest{}, err
	}
	return req, nil
}

// ParseRecordingParams extracts room_sid and rules from a recording-rules
// request body. rules is returned untouched so it reaches the provider as
// the client sent it.
func ParseRecordingParams(fields map[string]json.RawMessage) (string, json.RawMessage, error) {
	roomSID, ok := stringParam(fields, "room_sid")
	if !ok {
		return "", nil, invalidString("room_sid")
	}
	if roomSID == "" {
		return "", nil, errMissingRoomSID
	}
	rules := fields["rules"]
	if isAbsent(rules) {
		return "", nil, errMissingRules
	}
	return roomSID, rules, nil
}

// boolParam reads a boolean field. A missing field yields def; null or any
// non-boolean JSON value is rejected.
func boolParam(fields map[string]json.RawMessage, name string, def bool) (bool, bool) {
	raw, present := fields[name]
	if !present {
		return def, true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// stringParam reads a string field. Missing and null both yield "".
func stringParam(fields map[string]json.RawMessage, name string) (string, bool) {
	raw := fields[name]
	if isAbsent(raw) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func isAbsent(raw json.RawMessage) bool {
	t := strings.TrimSpace(string(raw))
	return t == "" || t == "null"
}
