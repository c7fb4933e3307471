package station

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Station tokens
//
// A station token is an HS256 JWT carrying the station name, technician and
// location. Browsers at a bench request one once per shift and send it as a
// Bearer token so notes are attributed to the right station. Tokens are not
// authorization: any holder of a valid token may read and write every note.

// TokenExpiry is how long a station token is valid.
const TokenExpiry = 12 * time.Hour

// Predefined token errors.
var (
	ErrInvalidToken = errors.New("invalid station token")
	ErrTokenExpired = errors.New("station token has expired")
)

// Claims represents the claims in a station token.
type Claims struct {
	jwt.RegisteredClaims

	StationName string `json:"stn"`
	UserName    string `json:"usr,omitempty"`
	Location    string `json:"loc,omitempty"`
}

// Config returns the station configuration carried by the claims.
func (c *Claims) Config() Config {
	return Config{
		StationName: c.StationName,
		UserName:    c.UserName,
		Location:    c.Location,
	}.Normalize()
}

// TokenConfig holds configuration for the token service.
type TokenConfig struct {
	// SigningKey is the secret key used to sign tokens.
	SigningKey string

	// Issuer is the issuer claim for tokens.
	Issuer string

	// Expiry overrides TokenExpiry when non-zero.
	Expiry time.Duration
}

// TokenService issues and validates station tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
	expiry     time.Duration
	now        func() time.Time
}

// NewTokenService creates a new token service.
func NewTokenService(cfg TokenConfig) *TokenService {
	expiry := cfg.Expiry
	if expiry == 0 {
		expiry = TokenExpiry
	}
	return &TokenService{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		expiry:     expiry,
		now:        time.Now,
	}
}

// Issue creates a token for the given station.
func (s *TokenService) Issue(cfg Config) (string, time.Time, error) {
	cfg = cfg.Normalize()
	now := s.now()
	expiresAt := now.Add(s.expiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   cfg.StationName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		StationName: cfg.StationName,
		UserName:    cfg.UserName,
		Location:    cfg.Location,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing station token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate parses a token and returns its station configuration.
func (s *TokenService) Validate(tokenString string) (Config, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Config{}, ErrTokenExpired
		}
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Config{}, ErrInvalidToken
	}

	return claims.Config(), nil
}
