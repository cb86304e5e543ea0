// Package services – TokenService
//
// TokenService is the token endpoint's use case: provision, then mint. The
// minted grants always name the requested room and the configured
// conversations service, whether or not provisioning ran.
package services

import (
	"context"
	"fmt"
	"strconv"
)

// ResourceProvisioner converges remote state for a token request.
type ResourceProvisioner interface {
	Provision(ctx context.Context, req ProvisionRequest) (*ProvisionedContext, error)
}

// TokenMinter signs access tokens.
type TokenMinter interface {
	Mint(identity, roomName, channelServiceID string) (string, error)
}

// TokenGrant is the token endpoint's success payload.
type TokenGrant struct {
	Token    string `json:"token"`
	RoomType string `json:"room_type"`
}

// TokenService issues access tokens.
type TokenService struct {
	Provisioner ResourceProvisioner
	Minter      TokenMinter
	// ChannelServiceSID is the conversations service every chat grant names.
	ChannelServiceSID string
	// RoomType is echoed to clients so they can adapt their UI to the topology.
	RoomType string
}

// NewTokenService wires a TokenService.
func NewTokenService(p ResourceProvisioner, m TokenMinter, channelServiceSID, roomType string) *TokenService {
	return &TokenService{Provisioner: p, Minter: m, ChannelServiceSID: channelServiceSID, RoomType: roomType}
}

// Issue provisions the resources req asks for and mints a token for them.
// Provisioning errors are returned unchanged (see Provisioner.Provision).
func (s *TokenService) Issue(ctx context.Context, req ProvisionRequest) (*TokenGrant, error) {
	if _, err := s.Provisioner.Provision(ctx, req); err != nil {
		return nil, err
	}

	tok, err := s.Minter.Mint(req.UserIdentity, req.RoomName, s.ChannelServiceSID)
	if err != nil {
		return nil, fmt.Errorf("mint token: %w", err)
	}
	tokensIssued.WithLabelValues(strconv.FormatBool(req.CreateRoom)).Inc()

	return &TokenGrant{Token: tok, RoomType: s.RoomType}, nil
}
