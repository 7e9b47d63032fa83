package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/pdoodle/pairing/internal/domain"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Verifier validates bearer credentials issued by the identity
// provider and maps them to a domain identity. Verification failure is
// an authentication error, distinct from every pairing error, so
// callers re-authenticate instead of retrying the pairing call.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Verify parses and validates the token, returning the caller's
// identity. The subject claim is mandatory; name and email are carried
// through when the provider supplied them.
func (v *Verifier) Verify(tokenString string) (domain.Identity, error) {
	claims := jwt.MapClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithIssuer(v.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return domain.Identity{}, ErrInvalidToken
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return domain.Identity{}, ErrInvalidToken
	}

	return domain.Identity{
		Subject: subject,
		Name:    stringClaim(claims, "name"),
		Email:   stringClaim(claims, "email"),
	}, nil
}

// FromAuthHeader extracts the bearer token from an Authorization header
// value and verifies it.
func (v *Verifier) FromAuthHeader(header string) (domain.Identity, error) {
	const prefix = "Bearer "
	if header == "" || !strings.HasPrefix(header, prefix) {
		return domain.Identity{}, ErrMissingToken
	}
	return v.Verify(strings.TrimSpace(header[len(prefix):]))
}

// Issue signs a short-lived token for the given identity. Production
// tokens come from the external identity provider; this exists for the
// dev token endpoint and for tests.
func (v *Verifier) Issue(identity domain.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   identity.Subject,
		"name":  identity.Name,
		"email": identity.Email,
		"iss":   v.issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if val, ok := claims[key].(string); ok {
		return val
	}
	return ""
}
