// Package session owns the authenticated identity of the client process:
// who is signed in, the opaque credential proving it, and the login/logout
// lifecycle. Every transition between authenticated and anonymous is
// broadcast over a signal hub so dependent stores react without the session
// store knowing them.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/example/storefront-session/internal/signal"
	"github.com/example/storefront-session/internal/storage"
)

// State is the session lifecycle state.
type State string

const (
	// StateUnknown holds until Restore resolves; UI must not trust the
	// session before then.
	StateUnknown       State = "unknown"
	StateAnonymous     State = "anonymous"
	StateAuthenticated State = "authenticated"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// User is the signed-in identity.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Change is the session-changed signal payload. User is nil when the
// session became anonymous.
type Change struct {
	State State
	User  *User
}

// Store owns the session. It persists the user and token under its own
// storage keys and never touches anyone else's.
type Store struct {
	storage storage.Storage
	hub     *signal.Hub[Change]

	mu      sync.RWMutex
	state   State
	user    *User
	token   string
	loading bool
}

// NewStore creates a session store in the Unknown state. Call Restore before
// trusting the session.
func NewStore(st storage.Storage, hub *signal.Hub[Change]) *Store {
	return &Store{
		storage: st,
		hub:     hub,
		state:   StateUnknown,
		loading: true,
	}
}

// Restore reads the persisted session on process start. The session is
// authenticated only when both the token and the user record are present and
// well-formed; anything partial is wiped so no half-session survives.
// Resolving the initial state is not a login/logout transition, so no
// session-changed signal fires here.
func (s *Store) Restore(ctx context.Context) State {
	token, user := s.readPersisted(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	if token != "" && user != nil {
		s.state = StateAuthenticated
		s.token = token
		s.user = user
		return s.state
	}

	// Partial leftovers (one field without the other, or a malformed
	// token) are dropped rather than trusted.
	if token != "" || user != nil {
		log.Println("[Session] Dropping partial persisted session")
	}
	s.clearPersisted(ctx)
	s.state = StateAnonymous
	s.token = ""
	s.user = nil
	return s.state
}

// Login records a successful authentication. The session-changed signal is
// delivered to all subscribers before Login returns.
func (s *Store) Login(ctx context.Context, user User, token string) {
	s.mu.Lock()
	s.state = StateAuthenticated
	s.user = &user
	s.token = token
	s.loading = false
	s.mu.Unlock()

	if err := s.storage.Set(ctx, storage.KeyAuthToken, []byte(token)); err != nil {
		log.Printf("[Session] Failed to persist token: %v", err)
	}
	if data, err := json.Marshal(user); err == nil {
		if err := s.storage.Set(ctx, storage.KeyUserData, data); err != nil {
			log.Printf("[Session] Failed to persist user: %v", err)
		}
	}

	s.emit(Change{State: StateAuthenticated, User: &user})
}

// Logout clears the session. Idempotent: when already anonymous it only
// re-clears storage and emits no second signal. The signal, when emitted, is
// delivered before Logout returns.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	wasAnonymous := s.state == StateAnonymous
	s.state = StateAnonymous
	s.user = nil
	s.token = ""
	s.loading = false
	s.mu.Unlock()

	s.clearPersisted(ctx)

	if !wasAnonymous {
		s.emit(Change{State: StateAnonymous})
	}
}

// UpdateProfile merges the non-empty fields of partial into the current user
// and re-persists the record. The user ID never changes.
func (s *Store) UpdateProfile(ctx context.Context, partial User) error {
	s.mu.Lock()
	if s.state != StateAuthenticated || s.user == nil {
		s.mu.Unlock()
		return ErrNotAuthenticated
	}
	if partial.Name != "" {
		s.user.Name = partial.Name
	}
	if partial.Email != "" {
		s.user.Email = partial.Email
	}
	if partial.Role != "" {
		s.user.Role = partial.Role
	}
	updated := *s.user
	s.mu.Unlock()

	data, err := json.Marshal(updated)
	if err != nil {
		return err
	}
	return s.storage.Set(ctx, storage.KeyUserData, data)
}

// State returns the current lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Loading reports whether Restore has resolved yet.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// IsAuthenticated reports whether a user is signed in.
func (s *Store) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (s *Store) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// Token returns the current credential, or "" when anonymous. Wire this as
// the API client's token source.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) emit(change Change) {
	if s.hub != nil {
		s.hub.Publish(change)
	}
}

// readPersisted loads and validates the persisted pair. Returns zero values
// for anything missing or malformed.
func (s *Store) readPersisted(ctx context.Context) (string, *User) {
	var token string
	raw, err := s.storage.Get(ctx, storage.KeyAuthToken)
	switch {
	case err == nil:
		token = string(raw)
		if !tokenWellFormed(token) {
			log.Println("[Session] Persisted token is malformed or expired")
			token = ""
		}
	case !errors.Is(err, storage.ErrKeyNotFound):
		log.Printf("[Session] Failed to read persisted token: %v", err)
	}

	var user *User
	raw, err = s.storage.Get(ctx, storage.KeyUserData)
	switch {
	case err == nil:
		var u User
		if err := json.Unmarshal(raw, &u); err != nil || u.ID == "" {
			log.Println("[Session] Persisted user record is malformed")
		} else {
			user = &u
		}
	case !errors.Is(err, storage.ErrKeyNotFound):
		log.Printf("[Session] Failed to read persisted user: %v", err)
	}

	return token, user
}

func (s *Store) clearPersisted(ctx context.Context) {
	if err := s.storage.Delete(ctx, storage.KeyAuthToken); err != nil {
		log.Printf("[Session] Failed to clear persisted token: %v", err)
	}
	if err := s.storage.Delete(ctx, storage.KeyUserData); err != nil {
		log.Printf("[Session] Failed to clear persisted user: %v", err)
	}
}
