package repository

import (
	"context"
	"fmt"

	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/store"
)

// CredentialRepository stores local sign-in credentials keyed by email.
type CredentialRepository struct {
	store store.Store
	path  store.Path
}

func NewCredentialRepository(s store.Store) *CredentialRepository {
	return &CredentialRepository{store: s, path: store.Root(store.CredentialsCollection)}
}

// Save stores a new credential. It fails with apperrors.ErrAlreadyExists
// when the email is already registered.
func (r *CredentialRepository) Save(ctx context.Context, c *models.Credential) error {
	if err := validateRecord(c); err != nil {
		return err
	}
	doc, err := toDoc(c)
	if err != nil {
		return err
	}
	if err := r.store.Create(ctx, r.path, c.Email, doc); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (r *CredentialRepository) Get(ctx context.Context, email string) (*models.Credential, error) {
	doc, err := r.store.Get(ctx, r.path, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}
	c, err := fromDoc[models.Credential](doc)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
