// Package session resolves the signed-in user of a request.
//
// Login itself lives outside this application; it hands the browser a signed
// JWT in a cookie (or an API client sends it as a bearer token), and this
// package only verifies that token and extracts the identity it carries.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Identity is the resolved user of a request.
type Identity struct {
	ID       uint
	Username string
}

// Resolver yields the identity of a request, or false when there is none.
type Resolver interface {
	Resolve(r *http.Request) (Identity, bool)
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(r *http.Request) (Identity, bool)

func (f ResolverFunc) Resolve(r *http.Request) (Identity, bool) {
	return f(r)
}

// Claims is the token payload: the username in "sub" and the numeric user id in "id".
type Claims struct {
	UserID uint `json:"id"`
	jwt.RegisteredClaims
}

// JWT verifies and issues HMAC-signed session tokens.
type JWT struct {
	secret     []byte
	cookieName string
	log        *slog.Logger
	now        func() time.Time
}

func NewJWT(secret, cookieName string, log *slog.Logger) *JWT {
	return &JWT{
		secret:     []byte(secret),
		cookieName: cookieName,
		log:        log,
		now:        time.Now,
	}
}

// CookieName is the cookie the token is read from.
func (j *JWT) CookieName() string {
	return j.cookieName
}

// Issue signs a token for id that expires after ttl.
func (j *JWT) Issue(id Identity, ttl time.Duration) (string, error) {
	now := j.now()
	claims := Claims{
		UserID: id.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Resolve reads the token from the session cookie, falling back to an
// "Authorization: Bearer" header.
func (j *JWT) Resolve(r *http.Request) (Identity, bool) {
	raw := j.token(r)
	if raw == "" {
		return Identity{}, false
	}

	id, err := j.Verify(raw)
	if err != nil {
		j.log.Debug("rejected session token", "error", err, "path", r.URL.Path)
		return Identity{}, false
	}
	return id, true
}

// Verify checks the signature and expiry of raw and returns its identity.
func (j *JWT) Verify(raw string) (Identity, error) {
	var claims Claims
	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	token, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return j.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return Identity{}, errors.New("the token is not valid")
	}
	if claims.UserID == 0 || claims.Subject == "" {
		return Identity{}, errors.New("token carries no user")
	}

	return Identity{ID: claims.UserID, Username: claims.Subject}, nil
}

func (j *JWT) token(r *http.Request) string {
	if c, err := r.Cookie(j.cookieName); err == nil && c.Value != "" {
		return c.Value
	}

	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
