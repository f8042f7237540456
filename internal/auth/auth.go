package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/afroman-media/storefront-backend/internal/models"
	"github.com/afroman-media/storefront-backend/internal/store"
)

const sessionKeyPrefix = "session:"

// ErrInvalidCredentials is returned on a failed sign-in. The same error
// covers an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// SessionStorage holds session documents keyed by bearer token.
type SessionStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ProfileReader looks up the credential row behind a sign-in.
type ProfileReader interface {
	GetUserProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error)
}

// Service issues and resolves bearer-token sessions.
type Service struct {
	sessions SessionStorage
	profiles ProfileReader
	ttl      time.Duration
	log      *slog.Logger
}

func NewService(sessions SessionStorage, profiles ProfileReader, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{sessions: sessions, profiles: profiles, ttl: ttl, log: log}
}

// SignIn verifies the password against the stored hash and opens a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.SignInResponse, error) {
	profile, err := s.profiles.GetUserProfileByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}
	if profile == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	user := models.SessionUser{ID: profile.ID, Email: profile.Email, Role: profile.Role}
	data, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}

	token := uuid.NewString()
	if err := s.sessions.Set(ctx, sessionKeyPrefix+token, string(data), s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.log.Info("user signed in", "user_id", user.ID)
	return &models.SignInResponse{Token: token, User: user}, nil
}

// SignOut discards the session behind the token. Unknown tokens are fine.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionKeyPrefix+token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// UserFromRequest resolves the request's bearer token to the signed-in user.
// Returns store.ErrNotAuthenticated when there is no usable session.
func (s *Service) UserFromRequest(r *http.Request) (*models.SessionUser, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return nil, store.ErrNotAuthenticated
	}

	data, err := s.sessions.Get(r.Context(), sessionKeyPrefix+token)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if data == "" {
		return nil, store.ErrNotAuthenticated
	}

	var user models.SessionUser
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		s.log.Warn("discarding corrupt session document", "error", err)
		return nil, store.ErrNotAuthenticated
	}
	return &user, nil
}

// TokenFromRequest extracts the bearer token, "" when absent.
func TokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// HashPassword produces the bcrypt hash stored in user_profiles.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
