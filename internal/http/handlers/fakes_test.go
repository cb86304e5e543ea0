package handlers

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/tbourn/go-room-token/internal/domain"
	"github.com/tbourn/go-room-token/internal/services"
	"github.com/tbourn/go-room-token/internal/token"
)

// memProvider is an in-memory room/channel provider.
type memProvider struct {
	mu          sync.Mutex
	rooms       map[string]*domain.Room
	channels    map[string]*domain.Channel
	members     map[string]bool
	creates     int
	rulesErr    error
	lastRoomSID string
	lastRules   json.RawMessage
}

func newMemProvider() *memProvider {
	return &memProvider{
		rooms:    map[string]*domain.Room{},
		channels: map[string]*domain.Channel{},
		members:  map[string]bool{},
	}
}

func notFound() error {
	return &domain.ProviderError{Kind: domain.KindNotFound, Code: 20404, Status: 404, Message: "not found"}
}

func (m *memProvider) FetchRoom(_ context.Context, name string) (*domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rooms[name]; ok {
		return r, nil
	}
	return nil, notFound()
}

func (m *memProvider) CreateRoom(_ context.Context, spec domain.RoomSpec) (*domain.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	r := &domain.Room{SID: "RM" + strconv.Itoa(len(m.rooms)+1), UniqueName: spec.Name, Type: spec.Type, MediaRegion: spec.MediaRegion}
	m.rooms[spec.Name] = r
	return r, nil
}

func (m *memProvider) UpdateRecordingRules(_ context.Context, roomSID string, rules json.RawMessage) (*domain.RecordingRules, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastRoomSID, m.lastRules = roomSID, rules
	if m.rulesErr != nil {
		return nil, m.rulesErr
	}
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.RecordingRules{RoomSID: roomSID, Rules: rules, DateCreated: &ts, DateUpdated: &ts}, nil
}

func (m *memProvider) FetchChannel(_ context.Context, name string) (*domain.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.channels[name]; ok {
		return ch, nil
	}
	return nil, notFound()
}

func (m *memProvider) CreateChannel(_ context.Context, spec domain.ChannelSpec) (*domain.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := &domain.Channel{SID: "CH" + spec.UniqueName, UniqueName: spec.UniqueName}
	m.channels[spec.UniqueName] = ch
	return ch, nil
}

func (m *memProvider) AddParticipant(_ context.Context, channel, identity string) (*domain.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := channel + "/" + identity
	if m.members[key] {
		return nil, &domain.ProviderError{Kind: domain.KindConflict, Code: 50433, Status: 409, Message: "exists"}
	}
	m.members[key] = true
	return &domain.Participant{SID: "MB1", ChannelSID: channel, Identity: identity}, nil
}

const (
	testAPIKeySID = "SKtest"
	testSecret    = "top-secret"
	testChatSID   = "ISchat"
)

func newMinter(t *testing.T) *token.Minter {
	t.Helper()
	m, err := token.New(token.Credentials{AccountSID: "ACtest", APIKeySID: testAPIKeySID, APIKeySecret: testSecret})
	if err != nil {
		t.Fatalf("minter: %v", err)
	}
	return m
}

// newTestHandlers wires real services over memProvider.
func newTestHandlers(t *testing.T) (*Handlers, *memProvider, *token.Minter) {
	t.Helper()
	mp := newMemProvider()
	m := newMinter(t)
	tokens := services.NewTokenService(services.NewProvisioner(mp, mp, "group"), m, testChatSID, "group")
	return New(tokens, services.NewRecordingService(mp)), mp, m
}
