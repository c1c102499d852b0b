package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-event-companion/internal/logger"
	"github.com/MKhiriev/go-event-companion/models"
)

// sessionStore persists the single-row local authentication marker.
type sessionStore struct {
	*DB
	logger *logger.Logger
}

// NewSessionStore constructs a [SessionStore] backed by db.
func NewSessionStore(db *DB, log *logger.Logger) SessionStore {
	return &sessionStore{DB: db, logger: log}
}

func (s *sessionStore) SaveSession(ctx context.Context, session models.Session) error {
	query, args, err := buildSaveSessionQuery(session.UserID, session.Token, session.SavedAt)
	if err != nil {
		return fmt.Errorf("build save session query: %w", err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	return nil
}

func (s *sessionStore) GetSession(ctx context.Context) (models.Session, error) {
	query, args, err := buildGetSessionQuery()
	if err != nil {
		return models.Session{}, fmt.Errorf("build get session query: %w", err)
	}

	var session models.Session
	err = s.DB.QueryRowContext(ctx, query, args...).
		Scan(&session.UserID, &session.Token, &session.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("get session: %w", err)
	}

	return session, nil
}

func (s *sessionStore) DeleteSession(ctx context.Context) error {
	query, args, err := buildDeleteSessionQuery()
	if err != nil {
		return fmt.Errorf("build delete session query: %w", err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}
