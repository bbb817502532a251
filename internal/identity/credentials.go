package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dias221467/MemoMe/internal/apperrors"
	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/repository"
	jwtutil "github.com/Dias221467/MemoMe/pkg/jwt"
)

var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", apperrors.ErrNotAuthenticated)
)

const minPasswordLength = 8

// CredentialStore persists local credentials. Save must fail with
// apperrors.ErrAlreadyExists for an email that is already stored.
type CredentialStore interface {
	Save(ctx context.Context, c *models.Credential) error
	Get(ctx context.Context, email string) (*models.Credential, error)
}

// CredentialService is the local identity provider: it registers email and
// password pairs and issues identity tokens for them.
type CredentialService struct {
	store  CredentialStore
	secret string
	expiry time.Duration
}

func NewCredentialService(store CredentialStore, secret string, expiry time.Duration) *CredentialService {
	return &CredentialService{store: store, secret: secret, expiry: expiry}
}

// LocalUID derives a stable uid for a locally registered email.
func LocalUID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("memome:"+email)).String()
}

// Register creates a credential and returns a token for it.
func (s *CredentialService) Register(ctx context.Context, email, password, displayName string) (string, error) {
	email = models.NormalizeEmail(email)
	if err := repository.ValidateEmail(email); err != nil {
		return "", err
	}
	if len(password) < minPasswordLength {
		return "", &apperrors.ValidationError{Field: "password", Rule: "min"}
	}

	if _, err := s.store.Get(ctx, email); err == nil {
		logrus.WithField("email", email).Warn("Email already in use")
		return "", ErrEmailTaken
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	cred := &models.Credential{Email: email, PasswordHash: string(hash), DisplayName: displayName}
	if err := s.store.Save(ctx, cred); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			logrus.WithField("email", email).Warn("Email registered concurrently")
			return "", ErrEmailTaken
		}
		return "", err
	}

	logrus.WithField("email", email).Info("Local credential registered")
	return s.issue(cred)
}

// Login checks the password and returns a fresh token.
func (s *CredentialService) Login(ctx context.Context, email, password string) (string, error) {
	email = models.NormalizeEmail(email)
	cred, err := s.store.Get(ctx, email)
	if errors.Is(err, apperrors.ErrNotFound) {
		logrus.WithField("email", email).Warn("Login for unknown email")
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Invalid credentials")
		return "", ErrInvalidCredentials
	}
	return s.issue(cred)
}

func (s *CredentialService) issue(cred *models.Credential) (string, error) {
	token, err := jwtutil.GenerateToken(LocalUID(cred.Email), cred.Email, cred.DisplayName, s.secret, s.expiry)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}
