package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tryonstudio/backend/internal/kvstore"
	"github.com/tryonstudio/backend/internal/latency"
	"github.com/tryonstudio/backend/internal/ledger"
	"github.com/tryonstudio/backend/internal/models"
)

var ErrUnauthorized = models.ErrUnauthorized

// Landing routes for the splash decision.
const (
	LandingHome  = "/home"
	LandingLogin = "/login"
)

const providerGoogle = "google"

type Config struct {
	Secret          []byte
	TokenTTL        time.Duration
	LoginLatency    time.Duration
	StartingCredits int
}

type LoginResult struct {
	Token   string         `json:"token"`
	Session models.Session `json:"session"`
}

type Service interface {
	// Login performs the mock Google sign-in.
	Login(ctx context.Context) (*LoginResult, error)
	Logout(ctx context.Context) error
	LoggedIn(ctx context.Context) (bool, error)
	Landing(ctx context.Context) (string, error)
	ValidateToken(ctx context.Context, token string) (sessionID string, err error)
}

type service struct {
	store  kvstore.Store
	ledger ledger.Service
	cfg    Config
	now    func() time.Time
	log    *slog.Logger
}

func NewService(store kvstore.Store, l ledger.Service, cfg Config, log *slog.Logger) *service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if log == nil {
		log = slog.Default()
	}
	return &service{store: store, ledger: l, cfg: cfg, now: time.Now, log: log}
}

// Ensure service implements Service at compile time.
var _ Service = (*service)(nil)

type claims struct {
	jwt.RegisteredClaims
	Provider string `json:"provider"`
}

// Login sets the logged-in flag and opens the balance with the starting grant.
// A balance left over from an earlier session is kept.
func (s *service) Login(ctx context.Context) (*LoginResult, error) {
	if err := latency.Wait(ctx, s.cfg.LoginLatency); err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, models.KeyLoggedIn, "true"); err != nil {
		return nil, fmt.Errorf("set session flag: %w", err)
	}
	bal, err := s.ledger.Open(ctx, s.cfg.StartingCredits)
	if err != nil {
		return nil, err
	}
	sessionID := uuid.NewString()
	tok, err := s.issueToken(sessionID)
	if err != nil {
		return nil, err
	}
	s.log.Info("signed in", "session_id", sessionID, "provider", providerGoogle)
	return &LoginResult{
		Token:   tok,
		Session: models.Session{ID: sessionID, LoggedIn: true, Balance: bal},
	}, nil
}

func (s *service) Logout(ctx context.Context) error {
	if err := s.store.Delete(ctx, models.KeyLoggedIn, models.KeyCredits); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.log.Info("signed out")
	return nil
}

func (s *service) LoggedIn(ctx context.Context) (bool, error) {
	v, ok, err := s.store.Get(ctx, models.KeyLoggedIn)
	if err != nil {
		return false, fmt.Errorf("read session flag: %w", err)
	}
	return ok && v == "true", nil
}

func (s *service) Landing(ctx context.Context) (string, error) {
	in, err := s.LoggedIn(ctx)
	if err != nil {
		return "", err
	}
	if in {
		return LandingHome, nil
	}
	return LandingLogin, nil
}

func (s *service) issueToken(sessionID string) (string, error) {
	now := s.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Provider: providerGoogle,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.cfg.Secret)
}

func (s *service) ValidateToken(_ context.Context, token string) (string, error) {
	tok, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.cfg.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid || c.Subject == "" {
		return "", fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	return c.Subject, nil
}
