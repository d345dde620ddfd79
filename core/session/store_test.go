package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ministerio-jovenes/asistencia/core"
)

type providerMock struct {
	*Notifier
	mu        sync.Mutex
	current   *Session
	noSession bool // SignOut fails with ErrNoSession
	signIns   int
	signUps   int
}

func newProviderMock(current *Session) *providerMock {
	return &providerMock{Notifier: NewNotifier(), current: current}
}

func (p *providerMock) GetSession(context.Context) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, nil
}

func (p *providerMock) SignIn(_ context.Context, email, password string) (*Session, error) {
	p.mu.Lock()
	p.signIns++
	if password != "s3cret-pass" {
		p.mu.Unlock()
		return nil, &AuthError{Status: 400, Message: "Invalid login credentials"}
	}
	sess := &Session{AccessToken: "token", User: User{ID: "u-1", Email: email}}
	p.current = sess
	p.mu.Unlock()

	p.Emit(EventSignedIn, sess)
	return sess, nil
}

func (p *providerMock) SignUp(_ context.Context, email, _ string) (*User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signUps++
	return &User{ID: "u-2", Email: email}, nil
}

func (p *providerMock) SignOut(context.Context) error {
	p.mu.Lock()
	if p.noSession {
		p.mu.Unlock()
		return ErrNoSession
	}
	p.current = nil
	p.mu.Unlock()
	p.Emit(EventSignedOut, nil)
	return nil
}

func (p *providerMock) OnAuthStateChange(fn func(Event, *Session)) func() {
	return p.Subscribe(fn)
}

type profilesMock struct {
	err error
}

func (p profilesMock) GetProfile(_ context.Context, userID string) (Profile, error) {
	if p.err != nil {
		return Profile{}, p.err
	}
	return Profile{ID: userID, FullName: "Coordinadora", Role: "admin"}, nil
}

func newTestValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)
	return validate
}

func TestStore_Init(t *testing.T) {
	tests := []struct {
		name        string
		current     *Session
		profilesErr error
		wantAuth    bool
		wantProfile bool
	}{
		{name: "no session"},
		{name: "existing session", current: &Session{User: User{ID: "u-1"}}, wantAuth: true, wantProfile: true},
		{name: "profile lookup fails", current: &Session{User: User{ID: "u-1"}}, profilesErr: errors.New("boom"), wantAuth: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(newProviderMock(tt.current), profilesMock{err: tt.profilesErr}, newTestValidator(), core.NewNopLogger())
			assert.True(t, store.Loading())

			store.Init(context.Background())
			require.NoError(t, store.Wait(context.Background()))
			assert.False(t, store.Loading())
			assert.Equal(t, tt.wantAuth, store.IsAuthenticated())
			assert.Equal(t, tt.wantProfile, store.Profile() != nil)
		})
	}
}

func TestStore_Wait_deferred(t *testing.T) {
	store := NewStore(newProviderMock(nil), profilesMock{}, newTestValidator(), core.NewNopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Equal(t, context.DeadlineExceeded, store.Wait(ctx))

	select {
	case <-store.Ready():
		t.Fatal("store should not be ready before Init")
	default:
	}
}

func TestStore_SignIn(t *testing.T) {
	tests := []struct {
		name        string
		creds       Credentials
		profilesErr error
		wantErr     bool
		wantCalls   int
		wantProfile bool
	}{
		{name: "invalid email", creds: Credentials{Email: "nope", Password: "s3cret-pass"}, wantErr: true},
		{name: "missing password", creds: Credentials{Email: "a@test.test"}, wantErr: true},
		{name: "bad credentials", creds: Credentials{Email: "a@test.test", Password: "wrong"}, wantErr: true, wantCalls: 1},
		{name: "valid", creds: Credentials{Email: " A@test.test ", Password: "s3cret-pass"}, wantCalls: 1, wantProfile: true},
		{name: "profile lookup fails", creds: Credentials{Email: "a@test.test", Password: "s3cret-pass"}, profilesErr: errors.New("boom"), wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newProviderMock(nil)
			store := NewStore(provider, profilesMock{err: tt.profilesErr}, newTestValidator(), core.NewNopLogger())
			store.Init(context.Background())

			err := store.SignIn(context.Background(), tt.creds)
			assert.Equal(t, tt.wantCalls, provider.signIns)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, store.IsAuthenticated())
				return
			}
			require.NoError(t, err)
			assert.True(t, store.IsAuthenticated())
			assert.Equal(t, "a@test.test", store.User().Email)
			assert.Equal(t, tt.wantProfile, store.Profile() != nil)
		})
	}
}

func TestStore_events(t *testing.T) {
	provider := newProviderMock(nil)
	store := NewStore(provider, profilesMock{}, newTestValidator(), core.NewNopLogger())
	store.Init(context.Background())

	var (
		mu     sync.Mutex
		states []State
	)
	unsubscribe := store.Subscribe(func(st State) {
		mu.Lock()
		states = append(states, st)
		mu.Unlock()
	})

	provider.Emit(EventSignedIn, &Session{User: User{ID: "u-1", Email: "a@test.test"}})
	provider.Emit(EventTokenRefreshed, &Session{AccessToken: "refreshed", User: User{ID: "u-1", Email: "a@test.test"}})
	store.SignOut(context.Background())
	unsubscribe()
	provider.Emit(EventSignedIn, &Session{User: User{ID: "u-9"}})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, states, 3)
	assert.NotNil(t, states[0].Profile)
	assert.Equal(t, "refreshed", states[1].Session.AccessToken)
	assert.NotNil(t, states[1].Profile, "profile kept on token refresh")
	for _, st := range states[2:] {
		assert.False(t, st.IsAuthenticated())
		assert.Nil(t, st.User)
		assert.Nil(t, st.Profile)
	}

	store.Close()
	provider.Emit(EventSignedIn, &Session{User: User{ID: "u-9"}})
	assert.Equal(t, "u-9", store.User().ID, "store still followed events before Close")
}

type countingProfiles struct {
	profilesMock
	mu    sync.Mutex
	calls int
}

func (p *countingProfiles) GetProfile(ctx context.Context, userID string) (Profile, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	return p.profilesMock.GetProfile(ctx, userID)
}

func TestStore_SignInSignOut_publishOnce(t *testing.T) {
	tests := []struct {
		name string
		init bool
	}{
		{name: "following events", init: true},
		{name: "before init"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := &countingProfiles{}
			store := NewStore(newProviderMock(nil), profiles, newTestValidator(), core.NewNopLogger())
			if tt.init {
				store.Init(context.Background())
				defer store.Close()
			}

			var states []State
			unsubscribe := store.Subscribe(func(st State) { states = append(states, st) })
			defer unsubscribe()

			require.NoError(t, store.SignIn(context.Background(), Credentials{Email: "a@test.test", Password: "s3cret-pass"}))
			require.Len(t, states, 1)
			assert.True(t, states[0].IsAuthenticated())
			assert.NotNil(t, states[0].Profile)
			assert.Equal(t, 1, profiles.calls)

			store.SignOut(context.Background())
			require.Len(t, states, 2)
			assert.False(t, states[1].IsAuthenticated())
			assert.False(t, store.IsAuthenticated())
		})
	}
}

func TestStore_SignOut_withoutProviderSession(t *testing.T) {
	provider := newProviderMock(nil)
	store := NewStore(provider, profilesMock{}, newTestValidator(), core.NewNopLogger())
	store.Init(context.Background())
	defer store.Close()

	require.NoError(t, store.SignIn(context.Background(), Credentials{Email: "a@test.test", Password: "s3cret-pass"}))
	// the provider lost its session without telling the store
	provider.mu.Lock()
	provider.current = nil
	provider.noSession = true
	provider.mu.Unlock()

	store.SignOut(context.Background())
	assert.False(t, store.IsAuthenticated())
}

func TestStore_SignUp_passwordPolicy(t *testing.T) {
	tests := []struct {
		name    string
		pwd     string
		wantTag string
	}{
		{name: "too short", pwd: "Ab1!", wantTag: pwdMinLenTag},
		{name: "whitespace", pwd: "abc defgh1", wantTag: pwdNoSpaceTag},
		{name: "all numeric", pwd: "1234567890", wantTag: pwdNotAllNumTag},
		{name: "similar to email", pwd: "anaruiz2024", wantTag: pwdAttrSimTag},
		{name: "valid", pwd: "grupo-de-jovenes-7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newProviderMock(nil)
			store := NewStore(provider, profilesMock{}, newTestValidator(), core.NewNopLogger())

			usr, err := store.SignUp(context.Background(), SignUpCredentials{Email: "anaruiz@test.test", Password: tt.pwd})
			if tt.wantTag != "" {
				var vErrs validator.ValidationErrors
				require.True(t, errors.As(err, &vErrs), "got %v", err)
				assert.Equal(t, tt.wantTag, vErrs[0].Tag())
				assert.Zero(t, provider.signUps)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "anaruiz@test.test", usr.Email)
			assert.False(t, store.IsAuthenticated())
		})
	}
}

func TestNotifier_unsubscribe(t *testing.T) {
	n := NewNotifier()
	var got []Event
	unsubscribe := n.Subscribe(func(e Event, _ *Session) { got = append(got, e) })

	n.Emit(EventSignedIn, nil)
	n.Emit(EventTokenRefreshed, nil)
	unsubscribe()
	unsubscribe()
	n.Emit(EventSignedOut, nil)

	assert.Equal(t, []Event{EventSignedIn, EventTokenRefreshed}, got)
}
