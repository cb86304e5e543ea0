// Package token mints the signed access tokens clients present to the video
// and conversation providers. Tokens follow the provider's access-token JWT
// layout: HS256 signed with an API key secret, a "twilio-fpa;v=1" content
// type header, and a grants claim carrying the identity plus one grant per
// product.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MaxSessionDuration is the validity window of every minted token and the
// longest session the provider allows.
const MaxSessionDuration = 14400 * time.Second

const contentType = "twilio-fpa;v=1"

// VideoGrant scopes a token to a single room. An empty Room lets the holder
// join any room, which only happens when the caller asked for no room.
type VideoGrant struct {
	Room string `json:"room,omitempty"`
}

// ChatGrant scopes a token to a conversations service.
type ChatGrant struct {
	ServiceSID string `json:"service_sid"`
}

// Grants is the provider-defined grants claim.
type Grants struct {
	Identity string      `json:"identity"`
	Video    *VideoGrant `json:"video"`
	Chat     *ChatGrant  `json:"chat"`
}

// Claims is the full claim set of an access token.
type Claims struct {
	jwt.RegisteredClaims
	Grants Grants `json:"grants"`
}

// Credentials identify the account and API key that sign tokens.
type Credentials struct {
	AccountSID   string
	APIKeySID    string
	APIKeySecret string
}

// Minter builds access tokens. It holds no per-request state and is safe
// for concurrent use.
type Minter struct {
	accountSID string
	apiKeySID  string
	secret     []byte
	ttl        time.Duration
	now        func() time.Time
}

// New validates creds and returns a Minter using the wall clock.
func New(creds Credentials) (*Minter, error) {
	switch {
	case creds.AccountSID == "":
		return nil, errors.New("token: account SID is required")
	case creds.APIKeySID == "":
		return nil, errors.New("token: API key SID is required")
	case creds.APIKeySecret == "":
		return nil, errors.New("token: API key secret is required")
	}
	return &Minter{
		accountSID: creds.AccountSID,
		apiKeySID:  creds.APIKeySID,
		secret:     []byte(creds.APIKeySecret),
		ttl:        MaxSessionDuration,
		now:        time.Now,
	}, nil
}

// WithClock returns a copy of m that reads the time from now.
func (m *Minter) WithClock(now func() time.Time) *Minter {
	cp := *m
	cp.now = now
	return &cp
}

// Mint returns a signed token for identity carrying exactly two grants: a
// video grant for roomName and a chat grant for channelServiceID. It does
// not depend on whether the room or channel exist.
func (m *Minter) Mint(identity, roomName, channelServiceID string) (string, error) {
	now := m.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        fmt.Sprintf("%s-%d", m.apiKeySID, now.Unix()),
			Issuer:    m.apiKeySID,
			Subject:   m.accountSID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Grants: Grants{
			Identity: identity,
			Video:    &VideoGrant{Room: roomName},
			Chat:     &ChatGrant{ServiceSID: channelServiceID},
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tok.Header["cty"] = contentType

	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token minted with the same secret and returns its claims.
// The service never needs it on a request path; it exists for diagnostics
// and tests.
func (m *Minter) Parse(raw string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse access token: %w", err)
	}
	if claims, ok := tok.Claims.(*Claims); ok && tok.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid access token")
}
