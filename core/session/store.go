package session

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/ministerio-jovenes/asistencia/core"
)

// profileTimeout bounds profile lookups made from auth events.
var profileTimeout = 10 * time.Second

// Store holds the operator's session, user and profile. Loading is true until Init completes
// the first session check.
type Store struct {
	provider Provider
	profiles ProfileRepository
	validate *validator.Validate
	logger   core.Logger

	mu    sync.RWMutex
	state State

	initOnce    sync.Once
	ready       chan struct{} // closed once Init follows provider events
	unsubscribe func()
	closed      bool

	listeners *stateListeners
}

func NewStore(provider Provider, profiles ProfileRepository, validate *validator.Validate, logger core.Logger) *Store {
	return &Store{
		provider:  provider,
		profiles:  profiles,
		validate:  validate,
		logger:    logger,
		state:     State{Loading: true},
		ready:     make(chan struct{}),
		listeners: newStateListeners(),
	}
}

// Init runs the first session check, then follows the provider's auth events. Only the first call has effect.
func (s *Store) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		sess, err := s.provider.GetSession(ctx)
		if err != nil {
			s.logger.Error("getting initial session", err)
		}

		next := State{}
		if sess != nil {
			next.Session = sess
			next.User = &sess.User
			next.Profile = s.loadProfile(ctx, sess.User.ID)
		}
		s.setState(next)

		s.unsubscribe = s.provider.OnAuthStateChange(s.handleEvent)
		close(s.ready)
	})
}

// Close stops following auth events.
func (s *Store) Close() {
	select {
	case <-s.ready:
	default:
		return
	}
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.unsubscribe()
}

// following reports whether provider events reach the store.
func (s *Store) following() bool {
	select {
	case <-s.ready:
	default:
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed
}

// Ready is closed once the first session check completed.
func (s *Store) Ready() <-chan struct{} { return s.ready }

// Wait blocks until the first session check completed or ctx is done.
func (s *Store) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) handleEvent(event Event, sess *Session) {
	prev := s.State()
	next := State{Session: sess, Profile: prev.Profile}
	if sess != nil {
		next.User = &sess.User
	}

	switch event {
	case EventSignedIn:
		if sess != nil {
			ctx, cancel := context.WithTimeout(context.Background(), profileTimeout)
			next.Profile = s.loadProfile(ctx, sess.User.ID)
			cancel()
		}
	case EventSignedOut:
		next.Profile = nil
	case EventTokenRefreshed:
		s.logger.Debug("token refreshed")
	}
	if sess == nil {
		next.Profile = nil
	}
	s.setState(next)
}

// loadProfile degrades to nil on failure, sign-in never blocks on it.
func (s *Store) loadProfile(ctx context.Context, userID string) *Profile {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		s.logger.Warn("fetching profile", err, map[string]interface{}{"user_id": userID})
		return nil
	}
	return &profile
}

func (s *Store) setState(next State) {
	s.mu.Lock()
	s.state = next
	s.mu.Unlock()
	s.listeners.publish(s.State())
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.Session != nil {
		sess := *st.Session
		st.Session = &sess
		st.User = &sess.User
	}
	if st.Profile != nil {
		prof := *st.Profile
		st.Profile = &prof
	}
	return st
}

func (s *Store) Session() *Session { return s.State().Session }
func (s *Store) User() *User       { return s.State().User }
func (s *Store) Profile() *Profile { return s.State().Profile }

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loading
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Session != nil
}

// Subscribe calls fn with every new state, in order. It returns the unsubscribe func.
func (s *Store) Subscribe(fn func(State)) func() {
	return s.listeners.add(fn)
}

// SignIn validates the credentials locally, then signs in through the provider.
func (s *Store) SignIn(ctx context.Context, creds Credentials) error {
	creds.Email = core.CleanString(creds.Email, true)
	if err := s.validate.Struct(creds); err != nil {
		return err
	}

	sess, err := s.provider.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		return err
	}
	// the SIGNED_IN event sets the state
	if sess != nil && !s.following() {
		s.setState(State{
			Session: sess,
			User:    &sess.User,
			Profile: s.loadProfile(ctx, sess.User.ID),
		})
	}
	return nil
}

// SignUp validates the credentials and the password policy, then registers through the provider.
// The operator is not signed in.
func (s *Store) SignUp(ctx context.Context, creds SignUpCredentials) (*User, error) {
	creds.Email = core.CleanString(creds.Email, true)
	if err := s.validate.Struct(creds); err != nil {
		return nil, err
	}
	return s.provider.SignUp(ctx, creds.Email, creds.Password)
}

// SignOut always clears the local state, a provider failure is only logged.
// On success the SIGNED_OUT event clears it.
func (s *Store) SignOut(ctx context.Context) {
	err := s.provider.SignOut(ctx)
	if err != nil && errors.Cause(err) != ErrNoSession {
		s.logger.Warn("signing out", err)
	}
	if err != nil || !s.following() {
		s.setState(State{})
	}
}

type stateListeners struct {
	publishMu sync.Mutex
	mu        sync.Mutex
	nextID    int
	fns       map[int]func(State)
}

func newStateListeners() *stateListeners {
	return &stateListeners{fns: make(map[int]func(State))}
}

func (l *stateListeners) add(fn func(State)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	id := l.nextID
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.fns, id)
	}
}

func (l *stateListeners) publish(st State) {
	l.publishMu.Lock()
	defer l.publishMu.Unlock()

	l.mu.Lock()
	fns := make([]func(State), 0, len(l.fns))
	for id := 1; id <= l.nextID; id++ {
		if fn, ok := l.fns[id]; ok {
			fns = append(fns, fn)
		}
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
