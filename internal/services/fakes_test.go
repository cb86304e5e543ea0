package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tbourn/go-room-token/internal/domain"
)

// ----- In-memory provider fake -----

// fakeProvider behaves like the remote provider: unique room names, unique
// channel names, idempotent-by-conflict memberships. Hooks override a call
// when set.
type fakeProvider struct {
	mu sync.Mutex

	rooms    map[string]*domain.Room    // by unique name
	channels map[string]*domain.Channel // by unique name
	members  map[string]bool            // channel|identity

	calls map[string]int

	fetchRoomErr     error
	createRoomErr    error
	fetchChannelErr  error
	fetchChannelFail int // fail this many FetchChannel calls transiently
	createChannelErr error
	addPartErr       error

	channelSpecs []domain.ChannelSpec // every CreateChannel argument, in order

	// beforeCreateRoom runs inside CreateRoom before the uniqueness check;
	// used to simulate a concurrent creator.
	beforeCreateRoom func()

	rulesResp *domain.RecordingRules
	rulesErr  error
	rulesArgs []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		rooms:    map[string]*domain.Room{},
		channels: map[string]*domain.Channel{},
		members:  map[string]bool{},
		calls:    map[string]int{},
	}
}

func (f *fakeProvider) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeProvider) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func notFound() error {
	return &domain.ProviderError{Kind: domain.KindNotFound, Code: 20404, Status: 404, Message: "The requested resource was not found"}
}

func conflict(code int) error {
	return &domain.ProviderError{Kind: domain.KindConflict, Code: code, Status: 409, Message: "already exists"}
}

func (f *fakeProvider) FetchRoom(_ context.Context, name string) (*domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["FetchRoom"]++
	if f.fetchRoomErr != nil {
		return nil, f.fetchRoomErr
	}
	if r, ok := f.rooms[name]; ok {
		return r, nil
	}
	return nil, notFound()
}

func (f *fakeProvider) CreateRoom(_ context.Context, spec domain.RoomSpec) (*domain.Room, error) {
	if f.beforeCreateRoom != nil {
		f.beforeCreateRoom()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateRoom"]++
	if f.createRoomErr != nil {
		return nil, f.createRoomErr
	}
	if _, ok := f.rooms[spec.Name]; ok {
		return nil, conflict(53113)
	}
	r := &domain.Room{
		SID:         fmt.Sprintf("RM%03d", len(f.rooms)+1),
		UniqueName:  spec.Name,
		Type:        spec.Type,
		MediaRegion: spec.MediaRegion,
		Status:      "in-progress",
	}
	f.rooms[spec.Name] = r
	return r, nil
}

func (f *fakeProvider) FetchChannel(_ context.Context, name string) (*domain.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["FetchChannel"]++
	if f.fetchChannelErr != nil {
		return nil, f.fetchChannelErr
	}
	if f.fetchChannelFail > 0 {
		f.fetchChannelFail--
		return nil, &domain.ProviderError{Kind: domain.KindTransient, Status: 503, Message: "unavailable"}
	}
	if c, ok := f.channels[name]; ok {
		return c, nil
	}
	return nil, notFound()
}

func (f *fakeProvider) CreateChannel(_ context.Context, spec domain.ChannelSpec) (*domain.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["CreateChannel"]++
	f.channelSpecs = append(f.channelSpecs, spec)
	if f.createChannelErr != nil {
		return nil, f.createChannelErr
	}
	if _, ok := f.channels[spec.UniqueName]; ok {
		return nil, conflict(50353)
	}
	c := &domain.Channel{
		SID:        fmt.Sprintf("CH%03d", len(f.channels)+1),
		UniqueName: spec.UniqueName,
		State:      "active",
	}
	f.channels[spec.UniqueName] = c
	return c, nil
}

func (f *fakeProvider) AddParticipant(_ context.Context, channel, identity string) (*domain.Participant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["AddParticipant"]++
	if f.addPartErr != nil {
		return nil, f.addPartErr
	}
	if _, ok := f.channels[channel]; !ok {
		return nil, notFound()
	}
	key := channel + "|" + identity
	if f.members[key] {
		return nil, conflict(50433)
	}
	f.members[key] = true
	return &domain.Participant{SID: "MB" + identity, ChannelSID: f.channels[channel].SID, Identity: identity}, nil
}

func (f *fakeProvider) UpdateRecordingRules(_ context.Context, roomSID string, rules json.RawMessage) (*domain.RecordingRules, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["UpdateRecordingRules"]++
	f.rulesArgs = []string{roomSID, string(rules)}
	return f.rulesResp, f.rulesErr
}

// ----- Minter fake -----

type fakeMinter struct {
	identity, room, service string
	calls                   int
	err                     error
}

func (m *fakeMinter) Mint(identity, roomName, channelServiceID string) (string, error) {
	m.calls++
	m.identity, m.room, m.service = identity, roomName, channelServiceID
	if m.err != nil {
		return "", m.err
	}
	return "tok:" + identity + ":" + roomName + ":" + channelServiceID, nil
}
