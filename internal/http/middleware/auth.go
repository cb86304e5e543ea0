package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-room-token/internal/domain"
)

const (
	// userIDKey holds the verified caller (email, or uid when the token has
	// no email). The rate limiter and access log read it.
	userIDKey = "userID"
	// identityKey holds the *domain.Identity of the verified caller.
	identityKey = "identity"
)

// IdentityVerifier checks a raw identity token and returns the caller.
type IdentityVerifier interface {
	VerifyIdentityToken(ctx context.Context, raw string) (*domain.Identity, error)
}

// EmailPolicy decides whether a verified email may proceed.
type EmailPolicy interface {
	Allows(email string) bool
}

// RequireIdentity gates a route on a verified, domain-restricted identity
// token carried in the Authorization header, either raw or as
// "Bearer <token>".
//
// Every rejection (missing header, invalid token, email outside the allowed
// domains) answers 401 with an empty body, so callers cannot tell which
// check failed. The reason is only logged and counted.
func RequireIdentity(v IdentityVerifier, policy EmailPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			reject(c, "missing_token", nil)
			return
		}
		id, err := v.VerifyIdentityToken(c.Request.Context(), raw)
		if err != nil || id == nil {
			reject(c, "invalid_token", err)
			return
		}
		if !policy.Allows(id.Email) {
			reject(c, "domain_not_allowed", nil)
			return
		}

		caller := id.Email
		if caller == "" {
			caller = id.UID
		}
		c.Set(userIDKey, caller)
		c.Set(identityKey, id)
		c.Next()
	}
}

// IdentityFrom returns the identity set by RequireIdentity, or nil on
// ungated routes.
func IdentityFrom(c *gin.Context) *domain.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(*domain.Identity); ok {
			return id
		}
	}
	return nil
}

func reject(c *gin.Context, reason string, err error) {
	authRejections.WithLabelValues(reason).Inc()
	ev := LoggerFrom(c).Warn().Str("reason", reason)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("identity rejected")
	c.AbortWithStatus(http.StatusUnauthorized)
}

// bearerToken strips an optional case-insensitive "Bearer" scheme. A bare
// scheme with no token yields "".
func bearerToken(h string) string {
	h = strings.TrimSpace(h)
	if len(h) >= 6 && strings.EqualFold(h[:6], "bearer") {
		rest := h[6:]
		if rest == "" {
			return ""
		}
		if rest[0] == ' ' || rest[0] == '\t' {
			return strings.TrimSpace(rest)
		}
	}
	return h
}
