package session

import (
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestSessionLifecycle(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	require.False(t, s.Authenticated())
	require.ErrorIs(t, s.Require(), ErrNotAuthenticated)

	require.NoError(t, s.Set("tok-1", "bearer"))
	require.Equal(t, "tok-1", s.Token())
	require.NoError(t, s.Require())

	req, err := http.NewRequest(http.MethodGet, "http://example.test/folders/dashboard", nil)
	require.NoError(t, err)
	s.Authorize(req)
	require.Equal(t, "Bearer tok-1", req.Header.Get("Authorization"))

	require.NoError(t, s.Clear())
	require.Equal(t, "", s.Token())

	req2, err := http.NewRequest(http.MethodGet, "http://example.test/folders/dashboard", nil)
	require.NoError(t, err)
	s.Authorize(req2)
	require.Empty(t, req2.Header.Get("Authorization"))
}

func TestSessionRejectsEmptyToken(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)
	require.Error(t, s.Set("  ", "bearer"))
	require.False(t, s.Authenticated())
}

func TestBoltStorePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	store, err := OpenBolt(path)
	require.NoError(t, err)
	s, err := New(store)
	require.NoError(t, err)
	require.False(t, s.Authenticated())
	require.NoError(t, s.Set("persisted", "bearer"))
	require.NoError(t, store.Close())

	reopened, err := OpenBolt(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	s2, err := New(reopened)
	require.NoError(t, err)
	require.Equal(t, "persisted", s2.Token())

	require.NoError(t, s2.Clear())
	token, err := reopened.Load()
	require.NoError(t, err)
	require.Nil(t, token)
}

type failingStore struct{ MemoryStore }

func (f *failingStore) Delete() error { return errors.New("disk full") }

func TestClearDropsTokenWhenStoreFails(t *testing.T) {
	store := &failingStore{}
	require.NoError(t, store.Save(&oauth2.Token{AccessToken: "tok"}))
	s, err := New(store)
	require.NoError(t, err)
	require.True(t, s.Authenticated())

	require.Error(t, s.Clear())
	require.False(t, s.Authenticated())
}
