// Package token issues and validates the HS256 access/refresh pair.
//
// Both tokens of a pair carry the same identity payload. Refreshing mints a
// new pair but the previous refresh token stays valid until it expires:
// there is no revocation list.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	AccessTTL  = 10 * time.Minute
	RefreshTTL = 10 * 24 * time.Hour
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// InvalidCredentialsMessage is the only text callers ever see for a failed validation
const InvalidCredentialsMessage = "Invalid credentials. Please login!"

// Payload is the identity embedded in every token
type Payload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Claims are the JWT claims carried by both tokens of a pair
type Claims struct {
	Payload
	jwt.RegisteredClaims
}

// Pair is one access/refresh issuance
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer signs and verifies tokens with a shared secret
type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret), now: time.Now}
}

// WithClock returns a copy of the issuer that stamps tokens using now
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	return &Issuer{secret: i.secret, now: now}
}

// Generate signs payload with the given lifetime
func (i *Issuer) Generate(p Payload, ttl time.Duration) (string, error) {
	issuedAt := i.now()
	claims := &Claims{
		Payload: p,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// GeneratePair issues a 10-minute access token and a 10-day refresh token
func (i *Issuer) GeneratePair(p Payload) (Pair, error) {
	access, err := i.Generate(p, AccessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.Generate(p, RefreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// Validate checks signature and expiry and returns the embedded payload.
// It returns ErrTokenExpired or ErrTokenInvalid; callers collapse both into
// InvalidCredentialsMessage.
func (i *Issuer) Validate(tokenString string) (*Payload, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tok, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tok.Valid || claims.ExpiresAt == nil {
		return nil, ErrTokenInvalid
	}
	return &claims.Payload, nil
}

// Resolver maps the identity found in a refresh token to the current account
// identity, failing when the account no longer exists.
type Resolver func(p *Payload) (*Payload, error)

// Refresh validates a refresh token and rotates the pair. The supplied
// token is not invalidated.
func (i *Issuer) Refresh(refreshToken string, resolve Resolver) (Pair, error) {
	p, err := i.Validate(refreshToken)
	if err != nil {
		return Pair{}, err
	}
	if resolve != nil {
		if p, err = resolve(p); err != nil {
			return Pair{}, err
		}
	}
	return i.GeneratePair(*p)
}
