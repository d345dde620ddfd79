package restgw

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/session"
)

var (
	nowFunc = time.Now // mockable

	// refreshMargin is how long before expiry GetSession refreshes the access token.
	refreshMargin = 5 * time.Minute
)

type (
	tokenResponse struct {
		AccessToken  string       `json:"access_token"`
		TokenType    string       `json:"token_type"`
		ExpiresIn    int64        `json:"expires_in"`
		ExpiresAt    int64        `json:"expires_at"`
		RefreshToken string       `json:"refresh_token"`
		User         session.User `json:"user"`
	}

	// signUpResponse is the user itself, or a session when email confirmation is off.
	signUpResponse struct {
		session.User
		Nested *session.User `json:"user"`
	}

	authSession struct {
		session.Session
		refreshToken string
	}
)

// AuthProvider signs operators in through the backend's auth service and keeps the Client's
// access token in sync with the current session.
type AuthProvider struct {
	*session.Notifier

	c      *Client
	logger core.Logger

	mu      sync.Mutex
	current *authSession
}

var _ session.Provider = (*AuthProvider)(nil) // interface compliance check

func NewAuthProvider(c *Client, logger core.Logger) *AuthProvider {
	return &AuthProvider{Notifier: session.NewNotifier(), c: c, logger: logger}
}

func (p *AuthProvider) OnAuthStateChange(fn func(session.Event, *session.Session)) func() {
	return p.Subscribe(fn)
}

func (tr tokenResponse) unpack() *authSession {
	expiresAt := time.Unix(tr.ExpiresAt, 0).UTC()
	if tr.ExpiresAt == 0 {
		expiresAt = time.Unix(nowFunc().Unix()+tr.ExpiresIn, 0).UTC()
	}
	return &authSession{
		Session: session.Session{
			AccessToken: tr.AccessToken,
			TokenType:   tr.TokenType,
			ExpiresAt:   expiresAt,
			User:        tr.User,
		},
		refreshToken: tr.RefreshToken,
	}
}

// authError turns the 4xx answers of the auth service into a session.AuthError.
func authError(err error, msg string) error {
	if gwErr, ok := errors.Cause(err).(*Error); ok && gwErr.Status < http.StatusInternalServerError {
		return &session.AuthError{Status: gwErr.Status, Message: gwErr.Message}
	}
	return errors.Wrap(err, msg)
}

func (p *AuthProvider) token(ctx context.Context, grantType string, body interface{}) (*authSession, error) {
	var tr tokenResponse
	err := p.c.do(ctx, call{
		method: rest.Post,
		path:   authPrefix + "/token",
		query:  map[string]string{"grant_type": grantType},
		body:   body,
		token:  p.c.anonKey,
	}, &tr)
	if err != nil {
		return nil, err
	}
	return tr.unpack(), nil
}

// set replaces the current session; the caller holds p.mu.
func (p *AuthProvider) set(sess *authSession) {
	p.current = sess
	if sess == nil {
		p.c.SetAccessToken("")
	} else {
		p.c.SetAccessToken(sess.AccessToken)
	}
}

// GetSession returns the current session, refreshing it when close to expiry.
// A session the backend refuses to refresh is dropped.
func (p *AuthProvider) GetSession(ctx context.Context) (*session.Session, error) {
	p.mu.Lock()
	sess := p.current
	if sess == nil {
		p.mu.Unlock()
		return nil, nil
	}
	if sess.ExpiresAt.Sub(nowFunc()) > refreshMargin {
		cp := sess.Session
		p.mu.Unlock()
		return &cp, nil
	}

	refreshed, err := p.token(ctx, "refresh_token", map[string]string{"refresh_token": sess.refreshToken})
	if err != nil {
		if status := StatusOf(err); status >= http.StatusBadRequest && status < http.StatusInternalServerError {
			p.set(nil)
			p.mu.Unlock()
			p.logger.Info("dropping expired session", map[string]interface{}{"user_id": sess.User.ID})
			p.Emit(session.EventSignedOut, nil)
			return nil, nil
		}
		p.mu.Unlock()
		return nil, errors.Wrap(err, "refreshing session")
	}
	p.set(refreshed)
	p.mu.Unlock()

	p.Emit(session.EventTokenRefreshed, &refreshed.Session)
	cp := refreshed.Session
	return &cp, nil
}

func (p *AuthProvider) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	sess, err := p.token(ctx, "password", map[string]string{
		"email":    strings.ToLower(strings.TrimSpace(email)),
		"password": password,
	})
	if err != nil {
		return nil, authError(err, "signing in")
	}
	p.mu.Lock()
	p.set(sess)
	p.mu.Unlock()

	p.Emit(session.EventSignedIn, &sess.Session)
	cp := sess.Session
	return &cp, nil
}

// SignUp registers the operator. The backend creates the profile; the operator is not signed in.
func (p *AuthProvider) SignUp(ctx context.Context, email, password string) (*session.User, error) {
	var res signUpResponse
	err := p.c.do(ctx, call{
		method: rest.Post,
		path:   authPrefix + "/signup",
		body: map[string]string{
			"email":    strings.ToLower(strings.TrimSpace(email)),
			"password": password,
		},
		token: p.c.anonKey,
	}, &res)
	if err != nil {
		return nil, authError(err, "signing up")
	}
	usr := res.User
	if res.Nested != nil {
		usr = *res.Nested
	}
	return &usr, nil
}

func (p *AuthProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	sess := p.current
	if sess == nil {
		p.mu.Unlock()
		return session.ErrNoSession
	}
	p.set(nil)
	p.mu.Unlock()

	err := p.c.do(ctx, call{
		method: rest.Post,
		path:   authPrefix + "/logout",
		token:  sess.AccessToken,
	}, nil)
	if err != nil {
		// the local session is gone either way
		p.logger.Warn("revoking session: "+err.Error(), map[string]interface{}{"user_id": sess.User.ID})
	}

	p.Emit(session.EventSignedOut, nil)
	return nil
}
