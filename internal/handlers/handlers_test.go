package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/afroman-media/storefront-backend/internal/auth"
	"github.com/afroman-media/storefront-backend/internal/checkout"
	"github.com/afroman-media/storefront-backend/internal/models"
	"github.com/afroman-media/storefront-backend/internal/store"
)

// memStorage backs both the user document stores and the session store.
type memStorage struct {
	mu      sync.Mutex
	data    map[string]string
	failGet bool
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string]string)}
}

func (m *memStorage) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return "", errors.New("storage down")
	}
	return m.data[key], nil
}

func (m *memStorage) Set(_ context.Context, key string, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type memFlags struct {
	mu     sync.Mutex
	status map[string]string
}

func newMemFlags() *memFlags {
	return &memFlags{status: make(map[string]string)}
}

func (f *memFlags) SubscriptionStatus(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status[userID], nil
}

func (f *memFlags) ActivateSubscription(_ context.Context, userID string, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[userID] = "active"
	return nil
}

func (f *memFlags) DeactivateSubscription(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status[userID] = "inactive"
	return nil
}

type memProfileReader struct{}

func (memProfileReader) GetUserProfileByEmail(_ context.Context, _ string) (*models.UserProfile, error) {
	return nil, nil
}

var testLinks = checkout.Links{
	Premium:     "https://pay.example.com/premium",
	Merchandise: "https://pay.example.com/merch",
}

// testEnv wires the handlers against in-memory backends with one
// pre-opened session.
type testEnv struct {
	storage   *memStorage
	flags     *memFlags
	auth      *auth.Service
	cart      *CartHandler
	access    *AccessHandler
	purchases *PurchaseHandler
	downloads *DownloadHandler
	token     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	storage := newMemStorage()
	flags := newMemFlags()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	authService := auth.NewService(storage, memProfileReader{}, time.Hour, log)

	const token = "test-token-u1"
	storage.data["session:"+token] = `{"id":"u1","email":"fan@example.com","role":"user"}`

	carts := store.NewCartStore(storage, log)
	access := store.NewAccessStore(storage, flags, log)
	purchases := store.NewPurchaseStore(storage, log)
	downloads := store.NewDownloadStore(storage, log)

	return &testEnv{
		storage:   storage,
		flags:     flags,
		auth:      authService,
		cart:      NewCartHandler(carts, authService, testLinks),
		access:    NewAccessHandler(access, authService),
		purchases: NewPurchaseHandler(purchases, authService),
		downloads: NewDownloadHandler(downloads, authService),
		token:     token,
	}
}

func (e *testEnv) request(method, path, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		r.Header.Set("Content-Type", "application/json")
	}
	r.Header.Set("Authorization", "Bearer "+e.token)
	return r
}
