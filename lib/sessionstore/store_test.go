package sessionstore

import (
	"context"
	"path/filepath"
	"testing"

	"ojassist/lib/cookiejar"

	"github.com/stretchr/testify/require"
)

func setup(t testing.TB) SqliteStore {
	store, err := NewSqliteStore(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	return store
}

func TestGetMissingKey(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "nonexistent")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetOverwrites(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("one")))
	require.NoError(t, store.Set(ctx, "k", []byte("two")))

	value, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("two"), value)
}

func TestSessionRoundTrip(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	err := SaveSession(ctx, store, Session{SessionID: "xyz789", Locale: "en_US"})
	require.NoError(t, err)

	session, ok, err := LoadSession(ctx, store)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "xyz789", session.SessionID)
	require.Equal(t, "en_US", session.Locale)
}

func TestJarRoundTrip(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	jar := cookiejar.New()
	jar.Set("PHPSESSID", "abc", "openjudge.cn", "/")
	jar.Set("language", "zh_CN", "openjudge.cn", "/")
	require.NoError(t, SaveJar(ctx, store, jar))

	restored := cookiejar.New()
	ok, err := LoadJar(ctx, store, restored)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, jar.HeaderFor("openjudge.cn"), restored.HeaderFor("openjudge.cn"))
}

func TestClearAllIdempotent(t *testing.T) {
	store := setup(t)
	ctx := context.Background()

	require.NoError(t, SaveSession(ctx, store, Session{SessionID: "a", Locale: "zh_CN"}))
	require.NoError(t, SaveCredentials(ctx, store, Credentials{Email: "e", Password: "p"}))

	require.NoError(t, ClearAll(ctx, store))
	// a second clear on an already empty store must not error
	require.NoError(t, ClearAll(ctx, store))

	_, ok, err := LoadSession(ctx, store)
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = LoadCredentials(ctx, store)
	require.NoError(t, err)
	require.False(t, ok)
}
