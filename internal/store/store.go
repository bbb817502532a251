// Package store is the keyed, namespaced document store behind every MemoMe
// record. Documents are bson maps; typed access lives in internal/repository.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// Root collections (namespace "").
const (
	UsersCollection       = "users"
	CredentialsCollection = "credentials"
)

// Per-user subcollections (namespace = owner email).
const (
	NotesCollection     = "notes"
	CareCollection      = "care"
	RemindersCollection = "reminders"
)

// Path addresses one collection inside one namespace.
type Path struct {
	Namespace  string
	Collection string
}

// Root returns the path of a collection outside any user namespace.
func Root(collection string) Path {
	return Path{Collection: collection}
}

// UserPath returns the path of a user's subcollection.
func UserPath(email, collection string) Path {
	return Path{Namespace: email, Collection: collection}
}

func (p Path) String() string {
	if p.Namespace == "" {
		return p.Collection
	}
	return "users/" + p.Namespace + "/" + p.Collection
}

// Record is one stored document together with its key.
type Record struct {
	Key  string
	Data bson.M
}

// SnapshotFunc receives the full current contents of a watched collection.
type SnapshotFunc func([]Record)

// Subscription is a live Watch registration.
type Subscription interface {
	// Cancel stops deliveries and waits for the delivery goroutine to exit.
	// Calling it more than once is a no-op.
	Cancel()
}

// Store is the contract both backends implement. Get, Update and Delete
// return apperrors.ErrNotFound for a missing key, Create returns
// apperrors.ErrAlreadyExists for a taken one; driver failures are wrapped
// with apperrors.ErrStoreUnavailable.
type Store interface {
	Get(ctx context.Context, p Path, key string) (bson.M, error)
	List(ctx context.Context, p Path) ([]Record, error)
	Count(ctx context.Context, p Path) (int64, error)
	Add(ctx context.Context, p Path, doc bson.M) (string, error)
	Set(ctx context.Context, p Path, key string, doc bson.M) error
	Create(ctx context.Context, p Path, key string, doc bson.M) error
	Update(ctx context.Context, p Path, key string, fields bson.M) error
	Delete(ctx context.Context, p Path, key string) error

	// Watch delivers the current snapshot immediately and then a fresh
	// snapshot after every change. Bursts of writes may be coalesced.
	Watch(ctx context.Context, p Path, fn SnapshotFunc) (Subscription, error)

	Close(ctx context.Context) error
}
