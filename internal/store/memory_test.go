package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

var errStorageDown = errors.New("storage down")

// memoryStorage is an in-memory Storage with switchable fault injection.
type memoryStorage struct {
	mu         sync.Mutex
	data       map[string]string
	failGet    bool
	failSet    bool
	failDelete bool
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{data: make(map[string]string)}
}

func (m *memoryStorage) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return "", errStorageDown
	}
	return m.data[key], nil
}

func (m *memoryStorage) Set(_ context.Context, key string, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet {
		return errStorageDown
	}
	m.data[key] = value
	return nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return errStorageDown
	}
	delete(m.data, key)
	return nil
}

func (m *memoryStorage) snapshot(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// fakeProfiles is an in-memory ProfileFlags.
type fakeProfiles struct {
	mu          sync.Mutex
	status      map[string]string
	err         error
	activated   []string
	deactivated []string
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{status: make(map[string]string)}
}

func (f *fakeProfiles) SubscriptionStatus(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.status[userID], nil
}

func (f *fakeProfiles) ActivateSubscription(_ context.Context, userID string, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.status[userID] = "active"
	f.activated = append(f.activated, userID)
	return nil
}

func (f *fakeProfiles) DeactivateSubscription(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.status[userID] = "inactive"
	f.deactivated = append(f.deactivated, userID)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
