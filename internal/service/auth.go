package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MKhiriev/go-event-companion/internal/store"
)

// authenticated reports whether a usable local session marker exists. The
// check is purely local: the stored token's expiry claim is read without
// signature verification, never re-derived from the network. Triggered syncs
// are skipped for unauthenticated users as a deliberate no-op, not an error.
func (e *cacheSyncEngine) authenticated(ctx context.Context) bool {
	session, err := e.storages.Sessions.GetSession(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrSessionNotFound) {
			e.logger.Warn().Err(err).Msg("session marker unreadable, treating as unauthenticated")
		}
		return false
	}
	if session.Token == "" {
		return false
	}

	return tokenUsable(session.Token, e.clock())
}

func tokenUsable(tokenString string, now time.Time) bool {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp == nil {
		// token without expiry never goes stale locally
		return true
	}

	return exp.After(now)
}
