package repository

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/store"
)

// UserRepository handles store operations on user profiles.
type UserRepository struct {
	store store.Store
	path  store.Path
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(s store.Store) *UserRepository {
	return &UserRepository{
		store: s,
		path:  store.Root(store.UsersCollection),
	}
}

// CreateUser stores a new profile keyed by its email.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.UserProfile) (*models.UserProfile, error) {
	if err := validateRecord(user); err != nil {
		return nil, err
	}
	doc, err := toDoc(user)
	if err != nil {
		return nil, err
	}

	if err := r.store.Set(ctx, r.path, user.Email, doc); err != nil {
		logrus.WithError(err).Error("Failed to insert user profile")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"email": user.Email,
		"role":  user.Role,
	}).Info("User profile created")
	return user, nil
}

// GetUserByEmail retrieves a profile by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	doc, err := r.store.Get(ctx, r.path, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	user, err := fromDoc[models.UserProfile](doc)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"email": email,
			"error": err,
		}).Warn("Stored user profile is invalid")
		return nil, err
	}
	return &user, nil
}

// UpdateUser applies a partial profile update and returns the new profile.
func (r *UserRepository) UpdateUser(ctx context.Context, email string, update models.ProfileUpdate) (*models.UserProfile, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	fields := bson.M{}
	if update.DisplayName != nil {
		user.DisplayName = *update.DisplayName
		fields["displayName"] = user.DisplayName
	}
	if len(fields) == 0 {
		return user, nil
	}
	if err := validateRecord(user); err != nil {
		return nil, err
	}

	if err := r.store.Update(ctx, r.path, email, fields); err != nil {
		logrus.WithFields(logrus.Fields{
			"email": email,
			"error": err,
		}).Error("Failed to update user profile")
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	logrus.WithField("email", email).Info("User profile updated")
	return user, nil
}

// GetAllUsers returns every valid stored profile.
func (r *UserRepository) GetAllUsers(ctx context.Context) ([]*models.UserProfile, error) {
	records, err := r.store.List(ctx, r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	users := make([]*models.UserProfile, 0, len(records))
	for _, rec := range records {
		user, err := fromDoc[models.UserProfile](rec.Data)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"key":   rec.Key,
				"error": err,
			}).Warn("Skipping invalid user profile")
			continue
		}
		users = append(users, &user)
	}
	return users, nil
}

// ListUserKeys returns the key (email) of every stored profile record, valid
// or not.
func (r *UserRepository) ListUserKeys(ctx context.Context) ([]string, error) {
	records, err := r.store.List(ctx, r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	keys := make([]string, 0, len(records))
	for _, rec := range records {
		keys = append(keys, rec.Key)
	}
	return keys, nil
}
