// Package auth verifies caller identity tokens and decides whether a
// verified identity may use restricted endpoints.
package auth

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/tbourn/go-room-token/internal/domain"
)

// ErrInvalidToken is returned for any token the identity provider rejects.
var ErrInvalidToken = errors.New("invalid identity token")

// idTokenVerifier is the subset of the Firebase auth client used here.
type idTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier verifies Firebase ID tokens.
type FirebaseVerifier struct {
	client idTokenVerifier
}

// NewFirebaseVerifier initializes a Firebase app from a service-account JSON
// document. databaseURL may be empty.
func NewFirebaseVerifier(ctx context.Context, serviceAccountJSON []byte, databaseURL string) (*FirebaseVerifier, error) {
	if len(serviceAccountJSON) == 0 {
		return nil, errors.New("auth: service account credential is required")
	}
	var conf *firebase.Config
	if databaseURL != "" {
		conf = &firebase.Config{DatabaseURL: databaseURL}
	}
	app, err := firebase.NewApp(ctx, conf, option.WithCredentialsJSON(serviceAccountJSON))
	if err != nil {
		return nil, fmt.Errorf("auth: init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: init firebase auth: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

// VerifyIdentityToken checks raw's signature, audience and expiry and
// returns the caller's uid and email. The email is empty when the token has
// no email claim.
func (v *FirebaseVerifier) VerifyIdentityToken(ctx context.Context, raw string) (*domain.Identity, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}
	tok, err := v.client.VerifyIDToken(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id := &domain.Identity{UID: tok.UID}
	if email, ok := tok.Claims["email"].(string); ok {
		id.Email = email
	}
	return id, nil
}
