// Package session holds the bearer token of the signed-in user. A Session is
// written by login and logout and read by every outgoing request.
package session

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/oauth2"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// TokenStore persists the token between runs. Load returns nil, nil when no
// token has been saved.
type TokenStore interface {
	Load() (*oauth2.Token, error)
	Save(token *oauth2.Token) error
	Delete() error
}

type Session struct {
	mu    sync.RWMutex
	token *oauth2.Token
	store TokenStore
}

// New restores a session from store. A nil store keeps the token in memory only.
func New(store TokenStore) (*Session, error) {
	if store == nil {
		store = &MemoryStore{}
	}
	token, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Session{token: token, store: store}, nil
}

// Token returns the access token, or "" when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return ""
	}
	return s.token.AccessToken
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Require is the route guard: it fails with ErrNotAuthenticated when no token
// is stored.
func (s *Session) Require() error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// Set stores a new token and persists it.
func (s *Session) Set(accessToken, tokenType string) error {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return errors.New("empty access token")
	}
	token := &oauth2.Token{AccessToken: accessToken, TokenType: tokenType}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(token); err != nil {
		return err
	}
	s.token = token
	return nil
}

// Clear forgets the token. The in-memory copy is dropped even when the store
// fails to delete its copy.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
	return s.store.Delete()
}

// Authorize adds "Authorization: Bearer <token>" to req when signed in.
func (s *Session) Authorize(req *http.Request) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token == nil || token.AccessToken == "" {
		return
	}
	token.SetAuthHeader(req)
}

type MemoryStore struct {
	mu    sync.Mutex
	token *oauth2.Token
}

func (m *MemoryStore) Load() (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Save(token *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = nil
	return nil
}
