// Package services – RecordingService
//
// RecordingService overwrites a room's recording rules. It is a single
// provider call with no idempotency concerns; provider failures are returned
// as-is so the handler can echo the provider's message and code.
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tbourn/go-room-token/internal/domain"
)

// RecordingRulesProvider updates the recording rules of a room.
type RecordingRulesProvider interface {
	UpdateRecordingRules(ctx context.Context, roomSID string, rules json.RawMessage) (*domain.RecordingRules, error)
}

// RecordingService applies recording rules to rooms.
type RecordingService struct {
	Rooms RecordingRulesProvider
}

// NewRecordingService wires a RecordingService.
func NewRecordingService(rooms RecordingRulesProvider) *RecordingService {
	return &RecordingService{Rooms: rooms}
}

// SetRecordingRules replaces the rules of roomSID with rules.
//
// Returns ErrMissingParameter when either argument is empty; otherwise the
// provider's result or error, unchanged apart from wrapping.
func (s *RecordingService) SetRecordingRules(ctx context.Context, roomSID string, rules json.RawMessage) (*domain.RecordingRules, error) {
	if roomSID == "" {
		return nil, errMissingRoomSID
	}
	if isAbsent(rules) {
		return nil, errMissingRules
	}

	out, err := s.Rooms.UpdateRecordingRules(ctx, roomSID, rules)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("room_sid", roomSID).Msg("recording rules update failed")
		return nil, fmt.Errorf("update recording rules: %w", err)
	}
	return out, nil
}
