package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/clinic-booking/internal/model"
)

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func newStore(t *testing.T) FileStore {
	return FileStore{Path: filepath.Join(t.TempDir(), "nested", "session.json")}
}

func TestLoginPersistsAndInitRestores(t *testing.T) {
	store := newStore(t)
	token := signed(t, time.Now().Add(time.Hour))

	s := New(store)
	require.NoError(t, s.Login(token, model.User{ID: "a1", Username: "admin", Role: model.RoleAdmin}))
	assert.True(t, s.IsAdmin())

	restored := New(store)
	require.NoError(t, restored.Init())
	assert.True(t, restored.Active())
	assert.Equal(t, token, restored.Token())
	assert.Equal(t, "admin", restored.User().Username)
}

func TestInitDropsExpiredToken(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Save(Persisted{
		Token: signed(t, time.Now().Add(-time.Minute)),
		User:  &model.User{ID: "p1", Role: model.RolePatient},
	}))

	s := New(store)
	require.NoError(t, s.Init())

	assert.False(t, s.Active())
	assert.Nil(t, s.User())
	_, err := os.Stat(store.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestInitKeepsOpaqueToken(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Save(Persisted{Token: "opaque", User: &model.User{ID: "p1"}}))

	s := New(store)
	require.NoError(t, s.Init())
	assert.Equal(t, "opaque", s.Token())
}

func TestInitWithoutStoredSession(t *testing.T) {
	s := New(newStore(t))
	require.NoError(t, s.Init())
	assert.False(t, s.Active())
}

func TestLogoutClearsMemoryAndStore(t *testing.T) {
	store := newStore(t)
	s := New(store)
	require.NoError(t, s.Login("tok", model.User{ID: "p1"}))

	require.NoError(t, s.Logout())

	assert.False(t, s.Active())
	p, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, s.Logout(), "logging out twice is fine")
}

func TestUserIsACopy(t *testing.T) {
	s := New(newStore(t))
	require.NoError(t, s.Login("tok", model.User{ID: "p1", Name: "Noura"}))

	u := s.User()
	u.Name = "changed"
	assert.Equal(t, "Noura", s.User().Name)
}

func TestExpiredUsesClock(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token := signed(t, exp)

	assert.False(t, expired(token, exp.Add(-time.Second)))
	assert.True(t, expired(token, exp))
	assert.False(t, expired("not-a-jwt", exp))
}
