// Package session holds the signed-in user's context: the resolved profile
// and every live subscription opened on the user's behalf.
package session

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Dias221467/MemoMe/internal/apperrors"
	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/store"
)

// Session is passed to every operation that needs a signed-in user. Close
// cancels all tracked subscriptions exactly once.
type Session struct {
	mu      sync.Mutex
	profile models.UserProfile
	subs    []store.Subscription
	closed  bool
}

func New(profile models.UserProfile) *Session {
	return &Session{profile: profile}
}

// Require returns ErrNotAuthenticated unless s is an open session.
func Require(s *Session) error {
	if !s.Active() {
		return apperrors.ErrNotAuthenticated
	}
	return nil
}

// Active is safe on a nil session.
func (s *Session) Active() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

func (s *Session) Profile() models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Email is the user's key and storage namespace.
func (s *Session) Email() string {
	return s.Profile().Email
}

func (s *Session) IsAdmin() bool {
	p := s.Profile()
	return p.IsAdmin()
}

// SetProfile replaces the cached profile after a profile edit.
func (s *Session) SetProfile(p models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// Track ties sub to the session. A subscription handed to an already closed
// session is cancelled immediately.
func (s *Session) Track(sub store.Subscription) {
	s.mu.Lock()
	if !s.closed {
		s.subs = append(s.subs, sub)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	sub.Cancel()
}

func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	email := s.profile.Email
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
	logrus.WithFields(logrus.Fields{
		"email":         email,
		"subscriptions": len(subs),
	}).Info("Session closed")
}
