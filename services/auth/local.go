package authsvc

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/session"
)

var (
	nowFunc = time.Now // mockable

	// refreshMargin is how long before expiry GetSession refreshes the access token.
	refreshMargin = 5 * time.Minute

	errInvalidCredentials = &session.AuthError{Status: http.StatusBadRequest, Message: "Invalid login credentials"}
	errUserExists         = &session.AuthError{Status: http.StatusUnprocessableEntity, Message: "User already registered"}
)

const (
	DefaultRole = "leader"
	tokenType   = "bearer"
)

// Claims represents the authorization claims transmitted via the access token.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
}

// LocalProvider signs operators in against locally stored accounts: bcrypt password hashes and
// HS256 access tokens. It holds the current session of the process.
type LocalProvider struct {
	*session.Notifier

	accounts   session.AccountRepository
	appName    string
	secretKey  []byte
	expiration time.Duration
	logger     core.Logger

	mu      sync.Mutex
	current *session.Session
}

var _ session.Provider = (*LocalProvider)(nil) // interface compliance check

func NewLocalProvider(accounts session.AccountRepository, conf *core.Config, logger core.Logger) *LocalProvider {
	return &LocalProvider{
		Notifier:   session.NewNotifier(),
		accounts:   accounts,
		appName:    conf.AppName,
		secretKey:  []byte(conf.SecretKey),
		expiration: conf.Auth.TokenExpirationDelta,
		logger:     logger,
	}
}

func (p *LocalProvider) OnAuthStateChange(fn func(session.Event, *session.Session)) func() {
	return p.Subscribe(fn)
}

// GetSession returns the current session, refreshing its token when close to expiry.
// An expired or invalid session is dropped.
func (p *LocalProvider) GetSession(context.Context) (*session.Session, error) {
	p.mu.Lock()
	sess := p.current
	if sess == nil {
		p.mu.Unlock()
		return nil, nil
	}

	claims, err := p.parseToken(sess.AccessToken)
	if err != nil {
		p.current = nil
		p.mu.Unlock()
		p.logger.Info("dropping expired session", map[string]interface{}{"user_id": sess.User.ID})
		p.Emit(session.EventSignedOut, nil)
		return nil, nil
	}

	if time.Unix(claims.ExpiresAt, 0).Sub(nowFunc()) > refreshMargin {
		cp := *sess
		p.mu.Unlock()
		return &cp, nil
	}

	refreshed, err := p.newSession(sess.User)
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	p.current = refreshed
	p.mu.Unlock()

	p.Emit(session.EventTokenRefreshed, refreshed)
	cp := *refreshed
	return &cp, nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*session.Session, error) {
	acc, err := p.accounts.GetAccountByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Cause(err) == session.ErrAccountNotFound {
			// constant time for unknown emails
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, errInvalidCredentials
		}
		return nil, errors.Wrap(err, "finding account")
	}
	if err = bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	sess, err := p.newSession(session.User{ID: acc.ID, Email: acc.Email})
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.current = sess
	p.mu.Unlock()

	p.Emit(session.EventSignedIn, sess)
	cp := *sess
	return &cp, nil
}

// SignUp registers an account with its profile. The operator is not signed in.
func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (*session.User, error) {
	acc, err := CreateAccount(ctx, p.accounts, email, password, "")
	if err != nil {
		return nil, err
	}
	return &session.User{ID: acc.ID, Email: acc.Email}, nil
}

func (p *LocalProvider) SignOut(context.Context) error {
	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return session.ErrNoSession
	}
	p.current = nil
	p.mu.Unlock()

	p.Emit(session.EventSignedOut, nil)
	return nil
}

func (p *LocalProvider) newSession(usr session.User) (*session.Session, error) {
	now := nowFunc()
	expiresAt := now.Add(p.expiration)
	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    p.appName,
			Subject:   usr.ID,
			ExpiresAt: expiresAt.Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: usr.Email,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secretKey)
	if err != nil {
		return nil, errors.Wrap(err, "signing token")
	}
	return &session.Session{
		AccessToken: token,
		TokenType:   tokenType,
		ExpiresAt:   time.Unix(expiresAt.Unix(), 0).UTC(),
		User:        usr,
	}, nil
}

func (p *LocalProvider) parseToken(token string) (*Claims, error) {
	claims := new(Claims)
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}, SkipClaimsValidation: true}
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return p.secretKey, nil
	}); err != nil {
		return nil, errors.Wrap(err, "parsing token")
	}
	if !claims.VerifyExpiresAt(nowFunc().Unix(), true) {
		return nil, errors.New("token expired")
	}
	return claims, nil
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password"), bcrypt.DefaultCost)

// CreateAccount hashes the password and stores the account with its profile.
// An empty fullName defaults to the email's local part.
func CreateAccount(ctx context.Context, accounts session.AccountRepository, email, password, fullName string) (session.Account, error) {
	email = core.CleanString(email, true)
	if fullName == "" {
		fullName = strings.SplitN(email, "@", 2)[0]
	}
	hash, err := HashPassword(password)
	if err != nil {
		return session.Account{}, err
	}

	now := nowFunc().UTC()
	acc := session.Account{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	prof := session.Profile{
		ID:        acc.ID,
		FullName:  fullName,
		Role:      DefaultRole,
		CreatedAt: now,
	}
	acc, err = accounts.CreateAccount(ctx, acc, prof)
	if err != nil {
		if errors.Cause(err) == session.ErrAccountExists {
			return session.Account{}, errUserExists
		}
		return session.Account{}, errors.Wrap(err, "creating account")
	}
	return acc, nil
}

func HashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hashing password")
	}
	return hash, nil
}
