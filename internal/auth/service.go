// Package auth implements password sign-in, revocable bearer sessions and
// the role-gated navigation guard.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/phishguard/awareness-service/internal/models"
	"github.com/phishguard/awareness-service/internal/repositories"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account is disabled")
)

// Session is the resolved authentication state for one signed-in client.
type Session struct {
	Token     string          `json:"token"`
	UserID    string          `json:"user_id"`
	Email     string          `json:"email"`
	Role      models.UserRole `json:"role"`
	ExpiresAt time.Time       `json:"expires_at"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

// ChangeEvent identifies why the auth state changed.
type ChangeEvent string

const (
	EventSignedIn       ChangeEvent = "signed_in"
	EventSignedOut      ChangeEvent = "signed_out"
	EventTokenRefreshed ChangeEvent = "token_refreshed"
)

// Service is the auth contract consumed by the guard and the handlers.
// GetSession returns (nil, nil) for anonymous callers; OnAuthStateChange
// fires on sign-in, sign-out and token refresh for the lifetime of the
// subscription.
type Service interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	GetSession(ctx context.Context, token string) (*Session, error)
	RefreshSession(ctx context.Context, token string) (*Session, error)
	OnAuthStateChange(handler func(ChangeEvent, *Session)) *Subscription
}

// Subscription is a handle on a registered auth-state listener. After
// Unsubscribe returns the handler is never invoked again.
type Subscription struct {
	once        sync.Once
	unsubscribe func()
}

func (s *Subscription) Unsubscribe() {
	s.once.Do(s.unsubscribe)
}

type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type service struct {
	profiles   repositories.ProfileRepository
	redis      *redis.Client
	jwtSecret  []byte
	sessionTTL time.Duration
	logger     *slog.Logger

	mu          sync.RWMutex
	nextSubID   int
	subscribers map[int]func(ChangeEvent, *Session)
}

func NewService(
	profiles repositories.ProfileRepository,
	redisClient *redis.Client,
	jwtSecret string,
	sessionTTL time.Duration,
	logger *slog.Logger,
) Service {
	return &service{
		profiles:    profiles,
		redis:       redisClient,
		jwtSecret:   []byte(jwtSecret),
		sessionTTL:  sessionTTL,
		logger:      logger,
		subscribers: map[int]func(ChangeEvent, *Session){},
	}
}

func (s *service) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}

	if !profile.IsActive {
		return nil, ErrAccountDisabled
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := s.issueSession(ctx, profile)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.TouchLastLogin(ctx, profile.ID, time.Now()); err != nil {
		s.logger.Warn("Failed to record last login", "user_id", profile.ID, "error", err)
	}

	s.logger.Info("User signed in", "user_id", profile.ID, "role", profile.Role)
	s.notify(EventSignedIn, session)
	return session, nil
}

// SignOut revokes the session. The caller clears its local state even if
// revocation fails; subscribers are always told the session ended.
func (s *service) SignOut(ctx context.Context, token string) error {
	defer s.notify(EventSignedOut, nil)

	jti, err := s.parseToken(token)
	if err != nil {
		return nil // already unusable, nothing to revoke
	}
	if err := s.redis.Del(ctx, sessionKey(jti)).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// GetSession resolves a bearer token to its session, or (nil, nil) when
// the token is absent, expired, malformed or revoked.
func (s *service) GetSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}

	jti, err := s.parseToken(token)
	if err != nil {
		return nil, nil
	}

	data, err := s.redis.Get(ctx, sessionKey(jti)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

// RefreshSession issues a fresh token for a live session and revokes the
// old one.
func (s *service) RefreshSession(ctx context.Context, token string) (*Session, error) {
	current, err := s.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.profiles.GetByID(ctx, current.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}

	session, err := s.issueSession(ctx, profile)
	if err != nil {
		return nil, err
	}

	if jti, err := s.parseToken(token); err == nil {
		if err := s.redis.Del(ctx, sessionKey(jti)).Err(); err != nil {
			s.logger.Warn("Failed to revoke replaced session", "error", err)
		}
	}

	s.notify(EventTokenRefreshed, session)
	return session, nil
}

func (s *service) OnAuthStateChange(handler func(ChangeEvent, *Session)) *Subscription {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = handler
	s.mu.Unlock()

	return &Subscription{unsubscribe: func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}}
}

func (s *service) notify(event ChangeEvent, session *Session) {
	s.mu.RLock()
	handlers := make([]func(ChangeEvent, *Session), 0, len(s.subscribers))
	for _, h := range s.subscribers {
		handlers = append(handlers, h)
	}
	s.mu.RUnlock()

	for _, h := range handlers {
		h(event, session)
	}
}

func (s *service) issueSession(ctx context.Context, profile *models.Profile) (*Session, error) {
	jti := uuid.NewString()
	expiresAt := time.Now().Add(s.sessionTTL)

	claims := sessionClaims{
		Email: profile.Email,
		Role:  string(profile.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   profile.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	session := &Session{
		Token:     token,
		UserID:    profile.ID,
		Email:     profile.Email,
		Role:      profile.Role,
		ExpiresAt: expiresAt,
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(jti), data, s.sessionTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	return session, nil
}

func (s *service) parseToken(token string) (string, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidCredentials
	}
	return claims.ID, nil
}

func sessionKey(jti string) string {
	return "session:" + jti
}
