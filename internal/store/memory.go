package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/Dias221467/MemoMe/internal/apperrors"
)

var errClosed = errors.New("memory store closed")

// MemoryStore keeps bson-encoded documents in process memory. It backs the
// tests and STORAGE_BACKEND=memory for local development.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[Path]map[string][]byte
	subs   map[Path]map[*watcher]struct{}
	closed bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[Path]map[string][]byte),
		subs: make(map[Path]map[*watcher]struct{}),
	}
}

func (s *MemoryStore) Get(_ context.Context, p Path, key string) (bson.M, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, apperrors.Unavailable("get", errClosed)
	}

	raw, ok := s.data[p][key]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", p, key, apperrors.ErrNotFound)
	}
	return decodeRaw(raw)
}

func (s *MemoryStore) List(_ context.Context, p Path) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, apperrors.Unavailable("list", errClosed)
	}

	docs := s.data[p]
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]Record, 0, len(keys))
	for _, k := range keys {
		m, err := decodeRaw(docs[k])
		if err != nil {
			return nil, err
		}
		records = append(records, Record{Key: k, Data: m})
	}
	return records, nil
}

func (s *MemoryStore) Count(_ context.Context, p Path) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, apperrors.Unavailable("count", errClosed)
	}
	return int64(len(s.data[p])), nil
}

func (s *MemoryStore) Add(ctx context.Context, p Path, doc bson.M) (string, error) {
	key := uuid.NewString()
	if err := s.Set(ctx, p, key, doc); err != nil {
		return "", err
	}
	return key, nil
}

func (s *MemoryStore) Set(_ context.Context, p Path, key string, doc bson.M) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", p, key, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return apperrors.Unavailable("set", errClosed)
	}
	if s.data[p] == nil {
		s.data[p] = make(map[string][]byte)
	}
	s.data[p][key] = raw
	s.mu.Unlock()

	s.notify(p)
	return nil
}

func (s *MemoryStore) Create(_ context.Context, p Path, key string, doc bson.M) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", p, key, err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return apperrors.Unavailable("create", errClosed)
	}
	if _, ok := s.data[p][key]; ok {
		s.mu.Unlock()
		return fmt.Errorf("create %s/%s: %w", p, key, apperrors.ErrAlreadyExists)
	}
	if s.data[p] == nil {
		s.data[p] = make(map[string][]byte)
	}
	s.data[p][key] = raw
	s.mu.Unlock()

	s.notify(p)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, p Path, key string, fields bson.M) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return apperrors.Unavailable("update", errClosed)
	}
	raw, ok := s.data[p][key]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%s/%s: %w", p, key, apperrors.ErrNotFound)
	}
	current, err := decodeRaw(raw)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	for k, v := range fields {
		current[k] = v
	}
	merged, err := bson.Marshal(current)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("encode %s/%s: %w", p, key, err)
	}
	s.data[p][key] = merged
	s.mu.Unlock()

	s.notify(p)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, p Path, key string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return apperrors.Unavailable("delete", errClosed)
	}
	if _, ok := s.data[p][key]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%s/%s: %w", p, key, apperrors.ErrNotFound)
	}
	delete(s.data[p], key)
	s.mu.Unlock()

	s.notify(p)
	return nil
}

func (s *MemoryStore) Watch(ctx context.Context, p Path, fn SnapshotFunc) (Subscription, error) {
	w := newWatcher(p, func() ([]Record, error) { return s.List(ctx, p) }, fn)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, apperrors.Unavailable("watch", errClosed)
	}
	if s.subs[p] == nil {
		s.subs[p] = make(map[*watcher]struct{})
	}
	s.subs[p][w] = struct{}{}
	s.mu.Unlock()

	w.onCancel = func() {
		s.mu.Lock()
		delete(s.subs[p], w)
		s.mu.Unlock()
	}
	w.start()
	return w, nil
}

// Close rejects further calls; live subscriptions still need Cancel.
func (s *MemoryStore) Close(context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) notify(p Path) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for w := range s.subs[p] {
		w.notify()
	}
}

func decodeRaw(raw []byte) (bson.M, error) {
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return m, nil
}
