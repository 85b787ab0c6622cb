package tokenmanager

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/tripplanner/internal/apperrors"
	"github.com/nkiryanov/tripplanner/internal/logger"
	"github.com/nkiryanov/tripplanner/internal/models"
)

const defaultSigningMethod = "HS256"

// Token parse failures. Parse returns exactly one of them
var (
	ErrTokenEmpty       = errors.New("token is empty")
	ErrTokenMalformed   = errors.New("token is malformed")
	ErrTokenUnsupported = errors.New("token format is not supported")
	ErrTokenExpired     = apperrors.ErrTokenExpired
)

type Claims struct {
	jwt.RegisteredClaims
	Kind string `json:"typ"`
}

type Config struct {
	// Secret key to sign tokens
	// Required to be set
	SecretKey string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Access and refresh token lifetimes
	// Required to be set
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// Logger to report why a token was rejected. Optional
	Logger logger.Logger
}

// TokenManager issues and parses signed tokens
// It's immutable after creation and safe for concurrent use
type TokenManager struct {
	// Secret key to sign tokens
	key []byte

	// JWT MAC (Message Authentication Code) algorithm
	alg jwt.SigningMethod

	// Access and refresh token lifetimes
	accessTTL  time.Duration
	refreshTTL time.Duration

	logger logger.Logger
	now    func() time.Time
}

func New(cfg Config) (*TokenManager, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}

	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("token lifetimes must be positive, got access=%s refresh=%s", cfg.AccessTTL, cfg.RefreshTTL)
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	// Only symmetric MAC algorithms could be used with shared secret key
	alg, ok := jwt.GetSigningMethod(cfg.Alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("signing method %q is not supported", cfg.Alg)
	}

	l := cfg.Logger
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &TokenManager{
		key:        []byte(cfg.SecretKey),
		alg:        alg,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		logger:     l,
		now:        time.Now,
	}, nil
}

func (m *TokenManager) AccessTTL() time.Duration {
	return m.accessTTL
}

func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// Issue signs token for subject with lifetime ttl
// Token times have seconds precision, so expiry is truncated to seconds too
func (m *TokenManager) Issue(subject string, kind string, ttl time.Duration) (models.IssuedToken, error) {
	if subject == "" {
		return models.IssuedToken{}, errors.New("token subject must not be empty")
	}

	now := m.now()
	issuedAt := jwt.NewNumericDate(now)
	expiresAt := jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(m.alg, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  issuedAt,
			ExpiresAt: expiresAt,
		},
		Kind: kind,
	})

	value, err := token.SignedString(m.key)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing %s token. Err: %w", kind, err)
	}

	return models.IssuedToken{Value: value, ExpiresAt: expiresAt.UTC()}, nil
}

// IssuePair issues access and refresh tokens with configured lifetimes
func (m *TokenManager) IssuePair(subject string) (models.TokenPair, error) {
	access, err := m.Issue(subject, models.TokenKindAccess, m.accessTTL)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := m.Issue(subject, models.TokenKindRefresh, m.refreshTTL)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Parse verifies token signature and expiry and returns its claims
// Issued at is not validated
func (m *TokenManager) Parse(token string) (models.TokenClaims, error) {
	if strings.TrimSpace(token) == "" {
		return models.TokenClaims{}, ErrTokenEmpty
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		m.keyFunc,
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return models.TokenClaims{}, classify(err)
	}

	if claims.Subject == "" {
		return models.TokenClaims{}, fmt.Errorf("%w: subject claim is missing", ErrTokenMalformed)
	}

	return models.TokenClaims{
		ID:        claims.ID,
		Subject:   claims.Subject,
		Kind:      claims.Kind,
		IssuedAt:  timeOf(claims.IssuedAt),
		ExpiresAt: timeOf(claims.ExpiresAt),
	}, nil
}

// Validate reports whether token could be parsed
// All failures are the same for the caller; the reason is logged only
func (m *TokenManager) Validate(token string) bool {
	_, err := m.Parse(token)
	if err != nil {
		m.logger.Warn("token rejected", "reason", reason(err))
		return false
	}

	return true
}

// RemainingLifetime returns time left till token expiry, with milliseconds precision
// The result is negative or zero for expired token. Signature is still verified
func (m *TokenManager) RemainingLifetime(token string) (time.Duration, error) {
	if strings.TrimSpace(token) == "" {
		return 0, ErrTokenEmpty
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, m.keyFunc, jwt.WithoutClaimsValidation())
	if err != nil {
		return 0, classify(err)
	}

	if claims.ExpiresAt == nil {
		return 0, fmt.Errorf("%w: expiration claim is missing", ErrTokenMalformed)
	}

	return claims.ExpiresAt.Sub(m.now()).Truncate(time.Millisecond), nil
}

func (m *TokenManager) keyFunc(t *jwt.Token) (any, error) {
	if t.Method.Alg() != m.alg.Alg() {
		return nil, ErrTokenUnsupported
	}
	return m.key, nil
}

// Map jwt library errors to one of the package failures
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	case errors.Is(err, ErrTokenUnsupported), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrTokenUnsupported, err)
	default:
		// Broken structure, bad signature and missing required claims
		return fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrTokenEmpty):
		return "empty"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenUnsupported):
		return "unsupported"
	default:
		return "malformed"
	}
}

func timeOf(d *jwt.NumericDate) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.UTC()
}
