package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/dependencies/clock"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/dependencies/random"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
)

// ErrSigningDisabled is returned when tokens are requested without a secret
var ErrSigningDisabled = errors.New("token signing is disabled")

// Claims are the identity claims carried by tokens from the account service
type Claims struct {
	jwt.RegisteredClaims
	UserID   any    `json:"userId,omitempty"`
	Username string `json:"username"`
	Guest    bool   `json:"guest"`
}

// AccountID returns the user id claim as a string. Numeric ids are common.
func (c Claims) AccountID() model.AccountID {
	switch v := c.UserID.(type) {
	case nil:
		return ""
	case string:
		return model.AccountID(v)
	case float64:
		return model.AccountID(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return model.AccountID(fmt.Sprint(v))
	}
}

// Config holds configuration for the auth service
type Config struct {
	// Secret is the HS256 key shared with the account service. Empty
	// disables verification and client-supplied identities are trusted.
	Secret string
	Leeway time.Duration
	// GuestTokenDuration is the lifetime of tokens minted by IssueGuest
	GuestTokenDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		Leeway:             30 * time.Second,
		GuestTokenDuration: time.Hour,
	}
}

// Service turns register requests into identities
type Service struct {
	secret []byte
	cfg    Config
	clock  clock.Clock
	random random.Random
}

// New creates a new AuthService
func New(clock clock.Clock, random random.Random, cfg Config) *Service {
	if cfg.GuestTokenDuration == 0 {
		cfg.GuestTokenDuration = DefaultConfig().GuestTokenDuration
	}
	return &Service{
		secret: []byte(cfg.Secret),
		cfg:    cfg,
		clock:  clock,
		random: random,
	}
}

// Enabled reports whether tokens are verified
func (s *Service) Enabled() bool {
	return len(s.secret) > 0
}

// Verify parses and validates an HS256 token
func (s *Service) Verify(token string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" || !s.Enabled() {
		return nil, model.ErrInvalidToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithLeeway(s.cfg.Leeway),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: expired", model.ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidToken, err)
	}
	return claims, nil
}

// Identify resolves the identity a connection registers as.
//
// With verification enabled the identity comes from the token claims, and a
// request without a token is treated as a guest whatever it claims. With
// verification disabled the request is taken at face value.
func (s *Service) Identify(conn model.ConnectionID, req model.RegisterPayload) (model.Identity, error) {
	identity := model.Identity{ConnectionID: conn}

	switch {
	case !s.Enabled():
		identity.AccountID = req.UserID
		identity.DisplayName = req.Username
		identity.IsGuest = req.Guest || req.UserID == ""

	case req.Token != "":
		claims, err := s.Verify(req.Token)
		if err != nil {
			return model.Identity{}, err
		}
		identity.AccountID = claims.AccountID()
		identity.DisplayName = claims.Username
		identity.IsGuest = claims.Guest || identity.AccountID == ""

	default:
		identity.DisplayName = req.Username
		identity.IsGuest = true
	}

	if identity.IsGuest {
		identity.AccountID = ""
	}
	if strings.TrimSpace(identity.DisplayName) == "" {
		identity.DisplayName = s.GuestName()
	}
	return identity, nil
}

// GuestName returns a random "Guest#NNNNNN" display name
func (s *Service) GuestName() string {
	return fmt.Sprintf("Guest#%06d", 100000+s.random.Intn(900000))
}

// Issue signs claims with the shared secret
func (s *Service) Issue(claims Claims, ttl time.Duration) (string, error) {
	if !s.Enabled() {
		return "", ErrSigningDisabled
	}
	now := s.clock.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// IssueGuest mints a short-lived guest token
func (s *Service) IssueGuest(displayName string) (string, error) {
	if strings.TrimSpace(displayName) == "" {
		displayName = s.GuestName()
	}
	return s.Issue(Claims{Username: displayName, Guest: true}, s.cfg.GuestTokenDuration)
}
