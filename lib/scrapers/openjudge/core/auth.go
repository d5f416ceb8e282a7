package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"ojassist/lib/sessionstore"

	"go.opentelemetry.io/otel/codes"
)

const (
	SessionCookieName = "PHPSESSID"
	LocaleCookieName  = "language"
)

var (
	ErrLoginFailed          = fmt.Errorf("Failed to log in to your account.")
	ErrMissingSessionCookie = fmt.Errorf("login reported success but no session cookie was set")
	ErrNoSavedCredentials   = fmt.Errorf("no saved credentials to log in with")
)

// APIResult is the JSON envelope the judge returns from its form
// endpoints (login, submit, setlang).
type APIResult struct {
	Result   string `json:"result"`
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

const resultSuccess = "SUCCESS"

// LoginEmailPassword performs the credential login: visit the site
// root for the anti-forgery cookie, post the form, then require the
// session cookie that the login response should have set. Credentials
// are persisted for later auto-login.
func (c *Client) LoginEmailPassword(ctx context.Context, email, password string) error {
	ctx, span := tracer.Start(ctx, "client:LoginEmailPassword")
	defer span.End()

	_, err := c.Get(ctx, c.RootURL())
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch site root")
		return err
	}

	res, err := c.PostForm(ctx, c.RootURL()+"api/auth/login/", map[string]string{
		"email":       email,
		"password":    password,
		"redirectUrl": c.RootURL(),
	})
	if err != nil {
		span.SetStatus(codes.Error, "login request failed")
		return err
	}

	var result APIResult
	if err := json.Unmarshal([]byte(res.Body), &result); err != nil {
		span.SetStatus(codes.Error, "unexpected login response")
		return fmt.Errorf("parse login response: %w", err)
	}
	if result.Result != resultSuccess {
		span.SetStatus(codes.Error, "login rejected")
		if result.Message != "" {
			return fmt.Errorf("%w %s", ErrLoginFailed, result.Message)
		}
		return ErrLoginFailed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.jar.Get(SessionCookieName)
	if !ok || rec.Value == "" {
		span.SetStatus(codes.Error, ErrMissingSessionCookie.Error())
		return ErrMissingSessionCookie
	}

	locale := c.cfg.DefaultLocale
	if lrec, ok := c.jar.Get(LocaleCookieName); ok && lrec.Value != "" {
		locale = lrec.Value
	}

	c.session = sessionstore.Session{SessionID: rec.Value, Locale: locale}
	if err := sessionstore.SaveSession(ctx, c.store, c.session); err != nil {
		return err
	}
	if err := sessionstore.SaveJar(ctx, c.store, c.jar); err != nil {
		return err
	}
	return sessionstore.SaveCredentials(ctx, c.store, sessionstore.Credentials{
		Email:    email,
		Password: password,
	})
}

// LoginCookieString establishes a session from a cookie header copied
// out of a browser, for when credential login is infeasible (captcha).
// Only the session and locale cookies are kept; everything else in the
// jar is discarded. The trailing verification fetch is diagnostic: its
// failure does not invalidate the saved session.
func (c *Client) LoginCookieString(ctx context.Context, raw, locale string) error {
	ctx, span := tracer.Start(ctx, "client:LoginCookieString")
	defer span.End()

	sessionID := ""
	cookieLocale := ""
	for _, pair := range strings.Split(raw, ";") {
		// values may themselves contain '=', split on the first only
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		switch name {
		case SessionCookieName:
			sessionID = value
		case LocaleCookieName:
			cookieLocale = value
		}
	}
	if sessionID == "" {
		span.SetStatus(codes.Error, "cookie string has no session cookie")
		return fmt.Errorf("%w: cookie string has no %s", ErrMissingSessionCookie, SessionCookieName)
	}
	if locale == "" {
		locale = cookieLocale
	}
	if locale == "" {
		locale = c.cfg.DefaultLocale
	}

	c.mu.Lock()
	c.jar.Clear()
	c.jar.Set(SessionCookieName, sessionID, c.cfg.BaseDomain, "/")
	c.jar.Set(LocaleCookieName, locale, c.cfg.BaseDomain, "/")
	c.session = sessionstore.Session{SessionID: sessionID, Locale: locale}

	err := sessionstore.SaveSession(ctx, c.store, c.session)
	if err == nil {
		err = sessionstore.SaveJar(ctx, c.store, c.jar)
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if _, err := c.Get(ctx, c.RootURL()); err != nil {
		slog.WarnContext(ctx, "session verification fetch failed", "err", err)
	}
	return nil
}

// AutoLogin retries the credential login with whatever credentials a
// previous login persisted.
func (c *Client) AutoLogin(ctx context.Context) error {
	creds, ok, err := sessionstore.LoadCredentials(ctx, c.store)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoSavedCredentials
	}
	return c.LoginEmailPassword(ctx, creds.Email, creds.Password)
}

// RestoreSession rehydrates the session and cookie jar persisted by a
// previous process. Returns false when nothing was persisted.
func (c *Client) RestoreSession(ctx context.Context) (bool, error) {
	session, ok, err := sessionstore.LoadSession(ctx, c.store)
	if err != nil || !ok {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
	if _, err := sessionstore.LoadJar(ctx, c.store, c.jar); err != nil {
		return false, err
	}
	return true, nil
}

// SwitchLanguage asks the server to change the response locale.
// Locale switching is not critical path: a network failure is logged
// and swallowed, only persistence failures surface.
func (c *Client) SwitchLanguage(ctx context.Context, locale string) error {
	ctx, span := tracer.Start(ctx, "client:SwitchLanguage")
	defer span.End()

	_, err := c.PostForm(ctx, c.RootURL()+"api/setlang/", map[string]string{
		"lang": locale,
	})
	if err != nil {
		slog.WarnContext(ctx, "language switch request failed", "locale", locale, "err", err)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.jar.Set(LocaleCookieName, locale, c.cfg.BaseDomain, "/")
	c.session.Locale = locale
	if err := sessionstore.SaveSession(ctx, c.store, c.session); err != nil {
		return err
	}
	return sessionstore.SaveJar(ctx, c.store, c.jar)
}

// ClearSession logs out: in-memory session and jar are dropped and all
// persisted keys erased. Calling it without an active session is a
// no-op, not an error.
func (c *Client) ClearSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.session = sessionstore.Session{}
	c.jar.Clear()
	return sessionstore.ClearAll(ctx, c.store)
}

// Session returns the current session, false when logged out.
func (c *Client) Session() (sessionstore.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session, c.session.SessionID != ""
}
