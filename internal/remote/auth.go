package remote

import (
	"context"
	"sync"

	"github.com/fitna/fitna/internal/log"
	"github.com/fitna/fitna/internal/pubsub"
)

// AuthProvider answers who, if anyone, is signed in.
type AuthProvider interface {
	CurrentUser() (string, bool)
}

// SessionAuth is the process-local auth session. Sign-in and sign-out fan
// out over the broker so the sync engine can react.
type SessionAuth struct {
	mu     sync.RWMutex
	userID string
	broker *pubsub.Broker[string]
}

var _ AuthProvider = (*SessionAuth)(nil)

// NewSessionAuth creates a signed-out auth session.
func NewSessionAuth() *SessionAuth {
	return &SessionAuth{
		broker: pubsub.NewBroker[string](),
	}
}

// CurrentUser returns the signed-in user id, or false when signed out.
func (a *SessionAuth) CurrentUser() (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.userID, a.userID != ""
}

// SignIn records the user and publishes a signed-in event.
func (a *SessionAuth) SignIn(userID string) {
	a.mu.Lock()
	a.userID = userID
	a.mu.Unlock()

	log.Info(log.CatAuth, "signed in", "user", userID)
	a.broker.Publish(pubsub.SignedInEvent, userID)
}

// SignOut clears the user and publishes a signed-out event carrying the
// user id that just left.
func (a *SessionAuth) SignOut() {
	a.mu.Lock()
	userID := a.userID
	a.userID = ""
	a.mu.Unlock()

	if userID == "" {
		return
	}
	log.Info(log.CatAuth, "signed out", "user", userID)
	a.broker.Publish(pubsub.SignedOutEvent, userID)
}

// Subscribe returns a channel of auth events bound to ctx.
func (a *SessionAuth) Subscribe(ctx context.Context) <-chan pubsub.Event[string] {
	return a.broker.Subscribe(ctx)
}

// Close shuts the broker down.
func (a *SessionAuth) Close() {
	a.broker.Close()
}
