// Package domain defines the provider-owned resources this service reads
// and creates: video rooms, conversation channels, channel participants and
// recording rules. None of these types are persisted locally; they are
// snapshots of remote state taken during a single request.
package domain

import (
	"encoding/json"
	"time"
)

// DefaultMediaRegion is the media region requested for new rooms when the
// caller does not name one. "gll" lets the provider pick the region closest
// to the first participant.
const DefaultMediaRegion = "gll"

// ChannelCloseAfter is the ISO-8601 close timer attached to every channel
// created here. Rooms bill for at most 24h, so a channel outliving its room
// by more than a day only counts against its participants' open-channel quota.
const ChannelCloseAfter = "P1D"

// Room is a video room as reported by the media provider.
//
// Fields:
//   - SID: provider-assigned identifier ("RM…").
//   - UniqueName: caller-chosen name; unique among in-progress rooms.
//   - Type: room topology (go, peer-to-peer, group, group-small).
//   - MediaRegion: region hosting the room's media servers.
//   - Status: provider lifecycle status (in-progress, completed, failed).
type Room struct {
	SID         string `json:"sid"`
	UniqueName  string `json:"unique_name"`
	Type        string `json:"type"`
	MediaRegion string `json:"media_region"`
	Status      string `json:"status"`
}

// RoomSpec describes a room to create.
type RoomSpec struct {
	Name        string
	Type        string
	MediaRegion string
}

// Channel is a conversation bound 1:1 to a room: its unique name is the
// owning room's SID.
type Channel struct {
	SID        string `json:"sid"`
	UniqueName string `json:"unique_name"`
	ServiceSID string `json:"chat_service_sid"`
	State      string `json:"state"`
}

// ChannelSpec describes a channel to create.
type ChannelSpec struct {
	UniqueName string
	// CloseAfter is an ISO-8601 duration after which the provider closes
	// the channel on its own.
	CloseAfter string
}

// Participant is a channel membership for one identity.
type Participant struct {
	SID        string `json:"sid"`
	ChannelSID string `json:"conversation_sid"`
	Identity   string `json:"identity"`
}

// RecordingRules is the rule set currently applied to a room, as returned
// by the provider after an update. Rules is kept as raw JSON so the payload
// reaches the caller exactly as the provider produced it.
type RecordingRules struct {
	RoomSID     string          `json:"room_sid"`
	Rules       json.RawMessage `json:"rules" swaggertype:"array,object"`
	DateCreated *time.Time      `json:"date_created"`
	DateUpdated *time.Time      `json:"date_updated"`
}
