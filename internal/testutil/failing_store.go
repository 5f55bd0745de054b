package testutil

import (
	"context"
	"sync/atomic"
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// FailingStore wraps a key-value store and injects errors. A nil error field
// passes the call through to Inner. Calls are counted either way.
type FailingStore struct {
	Inner     kvStore
	GetErr    error
	SetErr    error
	DeleteErr error

	Gets    atomic.Int32
	Sets    atomic.Int32
	Deletes atomic.Int32
}

func (s *FailingStore) Get(ctx context.Context, key string) (string, error) {
	s.Gets.Add(1)
	if s.GetErr != nil {
		return "", s.GetErr
	}
	return s.Inner.Get(ctx, key)
}

func (s *FailingStore) Set(ctx context.Context, key, value string) error {
	s.Sets.Add(1)
	if s.SetErr != nil {
		return s.SetErr
	}
	return s.Inner.Set(ctx, key, value)
}

func (s *FailingStore) Delete(ctx context.Context, key string) error {
	s.Deletes.Add(1)
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	return s.Inner.Delete(ctx, key)
}
