package marketplace

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/thejerf/abtime"
)

// SessionTTL is the lifetime of every issued session token
const SessionTTL = 7 * 24 * time.Hour

// TokenService signs and verifies session tokens with a process wide key
type TokenService struct {
	signingKey []byte
	clock      abtime.AbstractTime
	logger     Logger
}

// TokenOption configures a TokenService
type TokenOption func(*TokenService)

// WithClock overrides the wall clock used for iat, exp and expiry checks
func WithClock(clock abtime.AbstractTime) TokenOption {
	return func(ts *TokenService) {
		if clock != nil {
			ts.clock = clock
		}
	}
}

// WithTokenLogger sets the logger
func WithTokenLogger(logger Logger) TokenOption {
	return func(ts *TokenService) {
		ts.logger = normalizeLogger(logger)
	}
}

// NewTokenService creates a new TokenService. An empty signing key is a
// configuration error.
func NewTokenService(signingKey []byte, opts ...TokenOption) (*TokenService, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	ts := &TokenService{
		signingKey: append([]byte(nil), signingKey...),
		clock:      abtime.NewRealTime(),
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts, nil
}

// Issue signs the given claims with iat set to now and exp seven days later
func (ts *TokenService) Issue(in TokenClaims) (string, error) {
	if ts == nil || len(ts.signingKey) == 0 {
		return "", ErrMissingSigningKey
	}

	now := ts.now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   in.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
		},
		Email:    in.Email,
		UserRole: in.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	return signed, nil
}

// Verify checks signature and expiry and returns the embedded claims. Every
// failure wraps ErrInvalidToken.
func (ts *TokenService) Verify(raw string) (*SessionClaims, error) {
	if ts == nil || len(ts.signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	)

	token, err := parser.ParseWithClaims(raw, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		ts.logger.Debug("token verify could not decode claims")
		return nil, fmt.Errorf("%w: unable to decode claims", ErrInvalidToken)
	}

	return claims, nil
}

func (ts *TokenService) now() time.Time {
	return ts.clock.Now()
}
