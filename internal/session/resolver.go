package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Dias221467/MemoMe/internal/apperrors"
	"github.com/Dias221467/MemoMe/internal/identity"
	"github.com/Dias221467/MemoMe/internal/models"
)

// ProfileStore is the part of the user repository the resolver needs.
type ProfileStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	CreateUser(ctx context.Context, user *models.UserProfile) (*models.UserProfile, error)
}

// Resolver maps an authenticated identity onto a stored profile, creating
// the profile on first sign-in.
type Resolver struct {
	users      ProfileStore
	adminEmail string
}

func NewResolver(users ProfileStore, adminEmail string) *Resolver {
	return &Resolver{users: users, adminEmail: models.NormalizeEmail(adminEmail)}
}

// Resolve fetches the profile for id, or creates and persists it. A stored
// profile is used as-is; the role is only derived at creation.
func (r *Resolver) Resolve(ctx context.Context, id identity.Identity) (*models.UserProfile, error) {
	email := models.NormalizeEmail(id.Email)
	if email == "" {
		return nil, apperrors.ErrNotAuthenticated
	}

	profile, err := r.users.GetUserByEmail(ctx, email)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	name := strings.TrimSpace(id.DisplayName)
	if name == "" {
		name = models.DefaultDisplayName
	}
	role := models.RoleUser
	if r.adminEmail != "" && email == r.adminEmail {
		role = models.RoleAdmin
	}

	return r.users.CreateUser(ctx, &models.UserProfile{
		UID:         id.UID,
		Email:       email,
		DisplayName: name,
		Role:        role,
	})
}

// OpenFunc prepares a freshly resolved session, typically by opening mirrors.
type OpenFunc func(ctx context.Context, sess *Session) error

// Observe follows auth and keeps exactly one session open while someone is
// signed in. onChange receives the new session, or nil when signed out or
// when resolving failed. stop unsubscribes and closes the current session.
func (r *Resolver) Observe(ctx context.Context, auth *identity.AuthState, open OpenFunc, onChange func(*Session)) (stop func()) {
	var (
		mu      sync.Mutex
		current *Session
		stopped bool
	)

	swap := func(next *Session) bool {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return false
		}
		prev := current
		current = next
		if prev != nil {
			prev.Close()
		}
		return true
	}

	handle := func(id *identity.Identity) {
		if id == nil {
			if swap(nil) {
				onChange(nil)
			}
			return
		}

		profile, err := r.Resolve(ctx, *id)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"email": id.Email,
				"error": err,
			}).Error("Failed to resolve user profile")
			if swap(nil) {
				onChange(nil)
			}
			return
		}

		sess := New(*profile)
		if open != nil {
			if err := open(ctx, sess); err != nil {
				logrus.WithFields(logrus.Fields{
					"email": profile.Email,
					"error": err,
				}).Error("Failed to open session")
				sess.Close()
				if swap(nil) {
					onChange(nil)
				}
				return
			}
		}

		if !swap(sess) {
			sess.Close()
			return
		}
		onChange(sess)
	}

	unsubscribe := auth.OnChange(handle)

	return func() {
		unsubscribe()
		mu.Lock()
		stopped = true
		prev := current
		current = nil
		mu.Unlock()
		if prev != nil {
			prev.Close()
		}
	}
}
