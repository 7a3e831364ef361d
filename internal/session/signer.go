// Package session issues and verifies the signed administrator session token.
//
// Tokens are stateless: the server holds no session records, so logout only
// clears the client cookie. A token that has already been handed out stays
// verifiable until its maximum age elapses, which is a documented limitation
// of the advisory logout, not a defect to work around here.
package session

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrBadSignature is returned when a token is malformed or its signature
	// does not verify against the server secret.
	ErrBadSignature = errors.New("session: bad signature")
	// ErrExpired is returned when a token's issuance time is older than the
	// configured maximum age.
	ErrExpired = errors.New("session: token expired")
)

// Signer binds a username and issuance timestamp into an HS256 signed token
// and verifies tokens presented back by clients.
type Signer struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewSigner constructs a Signer. The secret must be operator supplied; an
// empty secret is a deployment misconfiguration and is refused outright
// rather than silently falling back to a default.
func NewSigner(secret string, maxAge time.Duration, now func() time.Time) (*Signer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("session: signing secret must not be empty")
	}
	if maxAge <= 0 {
		maxAge = 8 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &Signer{secret: []byte(secret), maxAge: maxAge, now: now}, nil
}

// MaxAge reports the validity window applied at verification time.
func (s *Signer) MaxAge() time.Duration {
	return s.maxAge
}

// Issue produces a signed token embedding the username and the current time.
func (s *Signer) Issue(username string) (string, error) {
	if strings.TrimSpace(username) == "" {
		return "", errors.New("session: username must not be empty")
	}

	claims := jwt.RegisteredClaims{
		Subject:  username,
		IssuedAt: jwt.NewNumericDate(s.now().UTC()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the token signature and recomputes the elapsed age from the
// embedded issuance time. On success the embedded username is returned.
// Signature failures and expiry are reported distinctly so callers can log
// them apart, even when both collapse to "not authenticated".
func (s *Signer) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(
		strings.TrimSpace(token),
		&jwt.RegisteredClaims{},
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
	)
	if err != nil || !parsed.Valid {
		return "", ErrBadSignature
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" || claims.IssuedAt == nil {
		return "", ErrBadSignature
	}

	if s.now().Sub(claims.IssuedAt.Time) > s.maxAge {
		return "", ErrExpired
	}
	return claims.Subject, nil
}
