// Package sessionstore persists the authenticated judge session across
// process restarts: the session identity, the exported cookie jar and
// the saved credentials used for auto-login.
package sessionstore

import (
	"context"
	"encoding/json"

	"ojassist/lib/cookiejar"
)

const (
	KeySession     = "session"
	KeyCookieJar   = "cookiejar"
	KeyCredentials = "credentials"
)

// Store is the narrow persistence port the session client writes
// through. Implementations hold opaque blobs by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Session struct {
	SessionID string `json:"session_id"`
	Locale    string `json:"locale"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func SaveSession(ctx context.Context, s Store, session Session) error {
	blob, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.Set(ctx, KeySession, blob)
}

func LoadSession(ctx context.Context, s Store) (Session, bool, error) {
	blob, ok, err := s.Get(ctx, KeySession)
	if err != nil || !ok {
		return Session{}, false, err
	}
	var session Session
	if err := json.Unmarshal(blob, &session); err != nil {
		return Session{}, false, err
	}
	return session, true, nil
}

func SaveJar(ctx context.Context, s Store, jar *cookiejar.Jar) error {
	blob, err := json.Marshal(jar.Export())
	if err != nil {
		return err
	}
	return s.Set(ctx, KeyCookieJar, blob)
}

func LoadJar(ctx context.Context, s Store, jar *cookiejar.Jar) (bool, error) {
	blob, ok, err := s.Get(ctx, KeyCookieJar)
	if err != nil || !ok {
		return false, err
	}
	var entries []cookiejar.Entry
	if err := json.Unmarshal(blob, &entries); err != nil {
		return false, err
	}
	jar.Import(entries)
	return true, nil
}

func SaveCredentials(ctx context.Context, s Store, creds Credentials) error {
	blob, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return s.Set(ctx, KeyCredentials, blob)
}

func LoadCredentials(ctx context.Context, s Store) (Credentials, bool, error) {
	blob, ok, err := s.Get(ctx, KeyCredentials)
	if err != nil || !ok {
		return Credentials{}, false, err
	}
	var creds Credentials
	if err := json.Unmarshal(blob, &creds); err != nil {
		return Credentials{}, false, err
	}
	return creds, true, nil
}

// ClearAll erases every persisted key. It is idempotent, clearing an
// already empty store is a no-op.
func ClearAll(ctx context.Context, s Store) error {
	for _, key := range []string{KeySession, KeyCookieJar, KeyCredentials} {
		if err := s.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
