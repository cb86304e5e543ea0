// Package twilio adapts the Twilio REST SDK to the provider interfaces used
// by the provisioning services: video rooms, recording rules, and
// conversations within one conversations service.
//
// Every failure is returned as a *domain.ProviderError tagged NotFound,
// Conflict or Transient, so callers never inspect Twilio error codes.
//
// The SDK substitutes path parameters without escaping them, so every
// caller-supplied name is escaped here before it reaches a URL path.
//
// The SDK does not take a context. Each method checks ctx before issuing its
// request and relies on the SDK's HTTP client timeout to bound the call.
package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	twilio "github.com/twilio/twilio-go"
	conversations "github.com/twilio/twilio-go/rest/conversations/v1"
	video "github.com/twilio/twilio-go/rest/video/v1"

	"github.com/tbourn/go-room-token/internal/domain"
)

// videoAPI is the subset of the Video v1 SDK this adapter calls.
type videoAPI interface {
	FetchRoom(Sid string) (*video.VideoV1Room, error)
	CreateRoom(params *video.CreateRoomParams) (*video.VideoV1Room, error)
	UpdateRoomRecordingRule(RoomSid string, params *video.UpdateRoomRecordingRuleParams) (*video.VideoV1RoomRecordingRule, error)
}

// conversationsAPI is the subset of the Conversations v1 SDK this adapter calls.
type conversationsAPI interface {
	FetchServiceConversation(ChatServiceSid string, Sid string) (*conversations.ConversationsV1ServiceConversation, error)
	CreateServiceConversation(ChatServiceSid string, params *conversations.CreateServiceConversationParams) (*conversations.ConversationsV1ServiceConversation, error)
	CreateServiceConversationParticipant(ChatServiceSid string, ConversationSid string, params *conversations.CreateServiceConversationParticipantParams) (*conversations.ConversationsV1ServiceConversationParticipant, error)
}

// Credentials authenticate REST calls.
type Credentials struct {
	AccountSID string
	AuthToken  string
}

// Client talks to Twilio Video and to one Conversations service.
// It is safe for concurrent use.
type Client struct {
	video         videoAPI
	conversations conversationsAPI
	serviceSID    string
}

// New builds a Client. serviceSID is the conversations service that owns
// every channel this client touches.
func New(creds Credentials, serviceSID string) *Client {
	rc := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: creds.AccountSID,
		Password: creds.AuthToken,
	})
	return fromRestClient(rc, serviceSID)
}

func fromRestClient(rc *twilio.RestClient, serviceSID string) *Client {
	return &Client{
		video:         rc.VideoV1,
		conversations: rc.ConversationsV1,
		serviceSID:    serviceSID,
	}
}

// FetchRoom looks up an in-progress room by unique name or SID.
func (c *Client) FetchRoom(ctx context.Context, name string) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(err)
	}
	start := time.Now()
	r, err := c.video.FetchRoom(url.PathEscape(name))
	observe("fetch_room", start, err)
	if err != nil {
		return nil, classify(err)
	}
	room, err := convert[domain.Room](r)
	if err != nil {
		return nil, err
	}
	if room.SID != name && room.UniqueName != name {
		return nil, mismatch("room", name)
	}
	return room, nil
}

// CreateRoom creates a room named spec.Name.
func (c *Client) CreateRoom(ctx context.Context, spec domain.RoomSpec) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(err)
	}
	params := &video.CreateRoomParams{}
	params.SetUniqueName(spec.Name)
	if spec.Type != "" {
		params.SetType(spec.Type)
	}
	if spec.MediaRegion != "" {
		params.SetMediaRegion(spec.MediaRegion)
	}

	start := time.Now()
	r, err := c.video.CreateRoom(params)
	observe("create_room", start, err)
	if err != nil {
		return nil, classify(err)
	}
	return convert[domain.Room](r)
}

// UpdateRecordingRules replaces the recording rules of roomSID.
func (c *Client) UpdateRecordingRules(ctx context.Context, roomSID string, rules json.RawMessage) (*domain.RecordingRules, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(err)
	}
	var decoded interface{}
	if err := json.Unmarshal(rules, &decoded); err != nil {
		return nil, &domain.ProviderError{Kind: domain.KindTransient, Message: "rules are not valid JSON", Err: err}
	}
	params := &video.UpdateRoomRecordingRuleParams{}
	params.SetRules(decoded)

	start := time.Now()
	out, err := c.video.UpdateRoomRecordingRule(url.PathEscape(roomSID), params)
	observe("update_recording_rules", start, err)
	if err != nil {
		return nil, classify(err)
	}
	return convert[domain.RecordingRules](out)
}

// FetchChannel looks up a conversation by unique name or SID.
func (c *Client) FetchChannel(ctx context.Context, name string) (*domain.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(err)
	}
	start := time.Now()
	conv, err := c.conversations.FetchServiceConversation(url.PathEscape(c.serviceSID), url.PathEscape(name))
	observe("fetch_conversation", start, err)
	if err != nil {
		return nil, classify(err)
	}
	ch, err := convert[domain.Channel](conv)
	if err != nil {
		return nil, err
	}
	if ch.SID != name && ch.UniqueName != name {
		return nil, mismatch("conversation", name)
	}
	return ch, nil
}

// CreateChannel creates a conversation with a close timer.
func (c *Client) CreateChannel(ctx context.Context, spec domain.ChannelSpec) (*domain.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(err)
	}
	params := &conversations.CreateServiceConversationParams{}
	params.SetUniqueName(spec.UniqueName)
	if spec.CloseAfter != "" {
		params.SetTimersClosed(spec.CloseAfter)
	}

	start := time.Now()
	conv, err := c.conversations.CreateServiceConversation(url.PathEscape(c.serviceSID), params)
	observe("create_conversation", start, err)
	if err != nil {
		return nil, classify(err)
	}
	return convert[domain.Channel](conv)
}

// AddParticipant adds identity to the conversation named channel. Only
// CodeParticipantExists is reported as a Conflict; any other 409 is
// Transient so it cannot pass for an existing membership.
func (c *Client) AddParticipant(ctx context.Context, channel, identity string) (*domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, classify(err)
	}
	params := &conversations.CreateServiceConversationParticipantParams{}
	params.SetIdentity(identity)

	start := time.Now()
	p, err := c.conversations.CreateServiceConversationParticipant(url.PathEscape(c.serviceSID), url.PathEscape(channel), params)
	observe("create_participant", start, err)
	if err != nil {
		return nil, participantError(classify(err))
	}
	return convert[domain.Participant](p)
}

func participantError(err error) error {
	var pe *domain.ProviderError
	if errors.As(err, &pe) && pe.Kind == domain.KindConflict && pe.Code != CodeParticipantExists {
		pe.Kind = domain.KindTransient
	}
	return err
}

// mismatch reports a lookup that resolved to a resource other than the one
// named, as if nothing matched.
func mismatch(resource, name string) error {
	return &domain.ProviderError{
		Kind:    domain.KindNotFound,
		Code:    CodeNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s %q not found", resource, name),
	}
}

// convert maps an SDK model onto a domain type through their shared
// snake_case JSON field names.
func convert[T any](src any) (*T, error) {
	b, err := json.Marshal(src)
	if err != nil {
		return nil, fmt.Errorf("encode provider response: %w", err)
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}
	return &out, nil
}
