package services

import (
	"github.com/google/uuid"

	"github.com/giftportfolio/portfolio/pkg/logging"
	"github.com/giftportfolio/portfolio/pkg/ports"
)

const SessionKey = "session_id"

// SessionManager hands out the per-browser session id kept in client storage.
type SessionManager struct {
	store ports.KeyValueStore
	newID func() string
}

func NewSessionManager(store ports.KeyValueStore) *SessionManager {
	return &SessionManager{store: store, newID: uuid.NewString}
}

// GetOrCreateSessionID returns the stored id, minting and storing one on
// first use. Storage failures degrade to an unpersisted id; this never fails.
func (m *SessionManager) GetOrCreateSessionID() string {
	id, ok, err := m.store.Get(SessionKey)
	if err != nil {
		logging.Warn().Err(err).Msg("session storage unreadable, using ephemeral session id")
		return m.newID()
	}
	if ok && id != "" {
		return id
	}

	id = m.newID()
	if err := m.store.Set(SessionKey, id); err != nil {
		logging.Warn().Err(err).Msg("failed to persist session id")
	}
	return id
}
