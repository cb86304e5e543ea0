// Package services – Provisioner
//
// This file implements the resource provisioning protocol that runs before a
// token is minted. Each step is a fetch-or-create against a remote provider:
//
//  1. room:        fetch by unique name, else create {name, type, region}
//  2. channel:     fetch by room SID, else create {room SID, close after P1D}
//  3. participant: add the identity; an existing membership is a no-op
//
// Steps run sequentially because each needs the previous step's output (the
// room SID names the channel). Nothing is retried, and a failure leaves the
// resources created so far in place: they are valid for the next attempt with
// the same room name.
//
// Concurrency is delegated to the provider's uniqueness constraints. Two
// requests for the same room can both see "not found" and both call create;
// the provider accepts one and rejects the other as a conflict, and the loser
// re-fetches and adopts the winner's resource. The window is narrow but real,
// and this service holds no lock that could close it.
package services

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-room-token/internal/domain"
)

var tracer = otel.Tracer("github.com/tbourn/go-room-token/internal/services")

// RoomProvider is the media-room side of the provider.
//
// Failures must be *domain.ProviderError values (possibly wrapped) so the
// provisioner can tell NotFound and Conflict apart from everything else.
type RoomProvider interface {
	// FetchRoom looks up an in-progress room by unique name or SID.
	FetchRoom(ctx context.Context, name string) (*domain.Room, error)
	// CreateRoom creates a room; a name collision is a Conflict.
	CreateRoom(ctx context.Context, spec domain.RoomSpec) (*domain.Room, error)
}

// ChannelProvider is the conversations side of the provider.
type ChannelProvider interface {
	// FetchChannel looks up a channel by unique name or SID.
	FetchChannel(ctx context.Context, name string) (*domain.Channel, error)
	// CreateChannel creates a channel; a unique-name collision is a Conflict.
	CreateChannel(ctx context.Context, spec domain.ChannelSpec) (*domain.Channel, error)
	// AddParticipant enrolls identity in channel; an existing membership is
	// a Conflict.
	AddParticipant(ctx context.Context, channel, identity string) (*domain.Participant, error)
}

// ProvisionedContext reports what a provisioning run converged on. Room is
// nil when create_room was false; Channel is nil unless create_conversation
// was true.
type ProvisionedContext struct {
	Room    *domain.Room
	Channel *domain.Channel
	// Participant is the membership created by this run; nil when the
	// identity was already a member.
	Participant *domain.Participant
}

// Provisioner ensures rooms, channels and memberships exist. It keeps no
// state between calls and is safe for concurrent use.
type Provisioner struct {
	Rooms    RoomProvider
	Channels ChannelProvider
	// RoomType is the topology requested for new rooms.
	RoomType string
	// DefaultRegion is used when a request names no media region. Empty
	// means domain.DefaultMediaRegion.
	DefaultRegion string
}

// NewProvisioner wires a Provisioner to its providers.
func NewProvisioner(rooms RoomProvider, channels ChannelProvider, roomType string) *Provisioner {
	return &Provisioner{Rooms: rooms, Channels: channels, RoomType: roomType}
}

// Provision validates req and, when req.CreateRoom is set, converges the
// room, channel and participant state. With CreateRoom unset it performs no
// remote calls and returns an empty context.
//
// Errors are *Error values of kind ErrMissingParameter,
// ErrRoomProvisioning, ErrChannelProvisioning or ErrParticipantProvisioning.
func (p *Provisioner) Provision(ctx context.Context, req ProvisionRequest) (*ProvisionedContext, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	out := &ProvisionedContext{}
	if !req.CreateRoom {
		return out, nil
	}

	ctx, span := tracer.Start(ctx, "provision",
		trace.WithAttributes(
			attribute.String("room.name", req.RoomName),
			attribute.Bool("create_conversation", req.CreateConversation),
		))
	defer span.End()

	region := req.MediaRegion
	if region == "" {
		region = p.DefaultRegion
	}
	if region == "" {
		region = domain.DefaultMediaRegion
	}

	room, err := p.ensureRoom(ctx, req.RoomName, region)
	if err != nil {
		span.SetStatus(codes.Error, "room step failed")
		return nil, err
	}
	out.Room = room
	span.SetAttributes(attribute.String("room.sid", room.SID))

	if !req.CreateConversation {
		return out, nil
	}

	ch, err := p.ensureChannel(ctx, room.SID)
	if err != nil {
		span.SetStatus(codes.Error, "channel step failed")
		return nil, err
	}
	out.Channel = ch

	part, err := p.ensureParticipant(ctx, room.SID, req.UserIdentity)
	if err != nil {
		span.SetStatus(codes.Error, "participant step failed")
		return nil, err
	}
	out.Participant = part
	return out, nil
}

func (p *Provisioner) ensureRoom(ctx context.Context, name, region string) (*domain.Room, error) {
	ctx, span := tracer.Start(ctx, "provision.room")
	defer span.End()
	lg := zerolog.Ctx(ctx).With().Str("step", stepRoom).Str("room_name", name).Logger()

	room, err := p.Rooms.FetchRoom(ctx, name)
	if err == nil {
		observeStep(stepRoom, outcomeFetched)
		lg.Debug().Str("room_sid", room.SID).Msg("room exists")
		return room, nil
	}
	// Every fetch failure falls through to create; only NotFound is routine.
	if !domain.IsNotFound(err) {
		lg.Warn().Err(err).Msg("room fetch failed, creating")
	}

	room, err = p.Rooms.CreateRoom(ctx, domain.RoomSpec{Name: name, Type: p.RoomType, MediaRegion: region})
	if err == nil {
		observeStep(stepRoom, outcomeCreated)
		lg.Info().Str("room_sid", room.SID).Str("media_region", region).Msg("room created")
		return room, nil
	}
	if domain.IsConflict(err) {
		if existing, ferr := p.Rooms.FetchRoom(ctx, name); ferr == nil {
			observeStep(stepRoom, outcomeAdopted)
			lg.Info().Str("room_sid", existing.SID).Msg("room created concurrently, adopted")
			return existing, nil
		}
	}

	observeStep(stepRoom, outcomeFailed)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	lg.Error().Err(err).Msg("room create failed")
	return nil, roomFailed(err)
}

func (p *Provisioner) ensureChannel(ctx context.Context, roomSID string) (*domain.Channel, error) {
	ctx, span := tracer.Start(ctx, "provision.channel")
	defer span.End()
	lg := zerolog.Ctx(ctx).With().Str("step", stepChannel).Str("room_sid", roomSID).Logger()

	ch, err := p.Channels.FetchChannel(ctx, roomSID)
	if err == nil {
		observeStep(stepChannel, outcomeFetched)
		return ch, nil
	}
	if !domain.IsNotFound(err) {
		lg.Warn().Err(err).Msg("channel fetch failed, creating")
	}

	ch, err = p.Channels.CreateChannel(ctx, domain.ChannelSpec{UniqueName: roomSID, CloseAfter: domain.ChannelCloseAfter})
	if err == nil {
		observeStep(stepChannel, outcomeCreated)
		lg.Info().Str("channel_sid", ch.SID).Msg("channel created")
		return ch, nil
	}
	if domain.IsConflict(err) {
		if existing, ferr := p.Channels.FetchChannel(ctx, roomSID); ferr == nil {
			observeStep(stepChannel, outcomeAdopted)
			return existing, nil
		}
	}

	observeStep(stepChannel, outcomeFailed)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	lg.Error().Err(err).Msg("channel create failed")
	return nil, channelFailed(err)
}

// ensureParticipant tolerates exactly one failure: a Conflict, which the
// ChannelProvider contract reserves for an existing membership. A full
// channel or any other rejection is fatal.
func (p *Provisioner) ensureParticipant(ctx context.Context, channel, identity string) (*domain.Participant, error) {
	ctx, span := tracer.Start(ctx, "provision.participant")
	defer span.End()

	part, err := p.Channels.AddParticipant(ctx, channel, identity)
	switch {
	case err == nil:
		observeStep(stepParticipant, outcomeJoined)
		return part, nil
	case domain.IsConflict(err):
		observeStep(stepParticipant, outcomeAlreadyMember)
		return nil, nil
	}

	observeStep(stepParticipant, outcomeFailed)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	zerolog.Ctx(ctx).Error().Err(err).
		Str("step", stepParticipant).
		Str("channel", channel).
		Msg("participant create failed")
	return nil, participantFailed(err)
}
