// Package session gates entry to the client using the locally cached
// sign-in record.
package session

import (
	"errors"
	"log"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"example.com/volunteer/internal/identity"
	"example.com/volunteer/internal/localstore"
)

// ErrNoSession is returned when no usable session is cached. It is a
// control-flow signal: callers redirect to the sign-in entry point
// rather than showing an error.
var ErrNoSession = errors.New("no active session")

// Option configures optional behaviour for the Guard.
type Option func(*Guard)

// WithLogger overrides the guard's logger.
func WithLogger(logger *log.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

// Guard reads, establishes, and clears the cached session.
type Guard struct {
	store  *localstore.Store
	logger *log.Logger
}

// NewGuard wraps the local store.
func NewGuard(store *localstore.Store, opts ...Option) *Guard {
	g := &Guard{
		store:  store,
		logger: log.New(log.Writer(), "[session] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Current returns the cached session. A missing, corrupt, or userless
// record yields ErrNoSession; validity is presence-based, the tokens
// themselves are opaque here.
func (g *Guard) Current() (*identity.Session, error) {
	var session identity.Session
	if err := g.store.Load(localstore.KeySession, &session); err != nil {
		return nil, ErrNoSession
	}
	if session.User.Email == "" {
		return nil, ErrNoSession
	}
	return &session, nil
}

// CurrentUser returns the signed-in user, if any.
func (g *Guard) CurrentUser() (*identity.User, error) {
	session, err := g.Current()
	if err != nil {
		return nil, err
	}
	return &session.User, nil
}

// Require is the entry gate: it returns the session or ErrNoSession,
// on which callers send the user to sign-in.
func (g *Guard) Require() (*identity.Session, error) {
	session, err := g.Current()
	if err != nil {
		g.logger.Printf("entry denied: %v", err)
		return nil, err
	}
	return session, nil
}

// Establish caches a freshly obtained session.
func (g *Guard) Establish(session identity.Session) error {
	return g.store.Save(localstore.KeySession, session)
}

// SignOut clears the session and the joined-activity set. Recorded
// payments survive sign-out.
func (g *Guard) SignOut() error {
	if err := g.store.Clear(localstore.KeySession); err != nil {
		return err
	}
	return g.store.Clear(localstore.KeyJoined)
}

// TokenExpiry reports the cached access token's expiry claim without
// verifying the signature. Used for display only; session validity
// stays presence-based.
func (g *Guard) TokenExpiry(session *identity.Session) (time.Time, bool) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(session.AccessToken, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	expiry, err := token.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}, false
	}
	return expiry.Time, true
}
