package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNoSession = errors.New("no active session")
)

// AuthError is a sign-in/up failure reported by the Provider, eg: invalid credentials.
type AuthError struct {
	Status  int
	Message string
}

func (err *AuthError) Error() string { return err.Message }

type (
	// Provider is the gateway's authentication service. It holds the operator's current session.
	Provider interface {
		GetSession(ctx context.Context) (*Session, error)
		SignIn(ctx context.Context, email, password string) (*Session, error)
		SignUp(ctx context.Context, email, password string) (*User, error)
		SignOut(ctx context.Context) error
		// OnAuthStateChange registers fn for every later auth event and returns its unsubscribe func.
		OnAuthStateChange(fn func(Event, *Session)) (unsubscribe func())
	}

	ProfileRepository interface {
		GetProfile(ctx context.Context, userID string) (Profile, error)
	}
)

// Notifier delivers auth events to its subscribers, in emission order and once per event.
// Delivery is synchronous: Emit returns after every subscriber handled the event.
type Notifier struct {
	emitMu sync.Mutex // serializes deliveries
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event, *Session)
	order  []int
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]func(Event, *Session))}
}

func (n *Notifier) Subscribe(fn func(Event, *Session)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	n.subs[id] = fn
	n.order = append(n.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			for i, oid := range n.order {
				if oid == id {
					n.order = append(n.order[:i], n.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (n *Notifier) Emit(event Event, sess *Session) {
	n.emitMu.Lock()
	defer n.emitMu.Unlock()

	n.mu.Lock()
	fns := make([]func(Event, *Session), 0, len(n.order))
	for _, id := range n.order {
		fns = append(fns, n.subs[id])
	}
	n.mu.Unlock()

	for _, fn := range fns {
		var cp *Session
		if sess != nil {
			s := *sess
			cp = &s
		}
		fn(event, cp)
	}
}
