// Package session keeps the signed-in user and bearer token across runs.
package session

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/unclebandit/clinic-booking/internal/model"
)

// Persisted is what a Store keeps between runs.
type Persisted struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Store persists a session. Load returns (nil, nil) when nothing is stored.
type Store interface {
	Load() (*Persisted, error)
	Save(p Persisted) error
	Clear() error
}

// Session is the signed-in context handed to whatever needs a token or the
// current user. The zero value is not usable; call New.
type Session struct {
	mu    sync.RWMutex
	store Store
	token string
	user  *model.User
	now   func() time.Time
}

func New(store Store) *Session {
	return &Session{store: store, now: time.Now}
}

// Init restores a persisted session. An expired or unreadable token is
// dropped from the store.
func (s *Session) Init() error {
	p, err := s.store.Load()
	if err != nil {
		return err
	}
	if p == nil || p.Token == "" || p.User == nil {
		return nil
	}

	if expired(p.Token, s.now()) {
		log.Println("⌛ Stored session expired, signing out")
		return s.store.Clear()
	}

	s.mu.Lock()
	s.token, s.user = p.Token, p.User
	s.mu.Unlock()
	return nil
}

func (s *Session) Login(token string, user model.User) error {
	if token == "" {
		return errors.New("session: empty token")
	}
	s.mu.Lock()
	s.token, s.user = token, &user
	s.mu.Unlock()
	return s.store.Save(Persisted{Token: token, User: &user})
}

func (s *Session) Logout() error {
	s.mu.Lock()
	s.token, s.user = "", nil
	s.mu.Unlock()
	return s.store.Clear()
}

// Token implements client.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Active() bool {
	return s.Token() != ""
}

func (s *Session) IsAdmin() bool {
	u := s.User()
	return u != nil && u.Role == model.RoleAdmin
}

// expired reads the exp claim without verifying the signature; only the
// backend can verify it. Tokens that are not JWTs, or carry no exp, are
// treated as still valid.
func expired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time)
}
