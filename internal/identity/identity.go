// Package identity verifies who is calling: identity tokens, the per-client
// auth-state stream, and the local credential sign-in.
package identity

import (
	"fmt"
	"sync"

	"github.com/Dias221467/MemoMe/internal/apperrors"
	"github.com/Dias221467/MemoMe/internal/models"
	jwtutil "github.com/Dias221467/MemoMe/pkg/jwt"
)

// Identity is what the identity provider vouches for.
type Identity struct {
	UID         string
	Email       string
	DisplayName string
}

// Verifier turns a bearer token into an Identity.
type Verifier struct {
	secret string
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

func (v *Verifier) Verify(token string) (Identity, error) {
	claims, err := jwtutil.ValidateToken(token, v.secret)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", apperrors.ErrNotAuthenticated, err)
	}
	return Identity{
		UID:         claims.UserID,
		Email:       models.NormalizeEmail(claims.Email),
		DisplayName: claims.Name,
	}, nil
}

// AuthState is an observable "who is signed in" value. Observers are called
// once on registration with the current state and then on every change,
// in order; nil means signed out.
type AuthState struct {
	dispatch  sync.Mutex
	mu        sync.Mutex
	current   *Identity
	observers map[int]func(*Identity)
	nextID    int
}

func NewAuthState() *AuthState {
	return &AuthState{observers: make(map[int]func(*Identity))}
}

// OnChange registers fn. Observers must not call SignIn or SignOut.
func (a *AuthState) OnChange(fn func(*Identity)) (unsubscribe func()) {
	a.dispatch.Lock()
	defer a.dispatch.Unlock()

	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.observers[id] = fn
	current := a.current
	a.mu.Unlock()

	fn(current)

	return func() {
		a.mu.Lock()
		delete(a.observers, id)
		a.mu.Unlock()
	}
}

func (a *AuthState) SignIn(id Identity) {
	a.set(&id)
}

func (a *AuthState) SignOut() {
	a.set(nil)
}

func (a *AuthState) Current() *Identity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *AuthState) set(id *Identity) {
	a.dispatch.Lock()
	defer a.dispatch.Unlock()

	a.mu.Lock()
	a.current = id
	observers := make([]func(*Identity), 0, len(a.observers))
	for _, fn := range a.observers {
		observers = append(observers, fn)
	}
	a.mu.Unlock()

	for _, fn := range observers {
		fn(id)
	}
}
