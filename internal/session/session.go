// Package session provides Valkey-backed HTTP session management.
// Sessions are identified by a secure cookie and stored as JSON in Valkey
// with automatic TTL expiry. The session holds the backend API token, so
// the browser only ever sees an opaque ID.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"prepdeck/internal/models"
)

const (
	// CookieName carries the opaque session ID.
	CookieName = "pd_session"

	// DefaultTTL applies when the store is built without a TTL.
	DefaultTTL = 24 * time.Hour

	keyPrefix = "session:"

	// idLength is in bytes; IDs are hex encoded.
	idLength = 32
)

// Data holds the session payload stored in Valkey.
type Data struct {
	Token     string       `json:"token"`
	User      *models.User `json:"user"`
	CreatedAt time.Time    `json:"created_at"`
}

// Authenticated reports whether the session carries a signed-in user.
func (d *Data) Authenticated() bool {
	return d != nil && d.User != nil
}

// Store keeps sessions in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore creates a session store on client. A session lives for ttl, or
// until the backend token it carries expires if that comes first. Secure
// marks the cookie for TLS only.
func NewStore(client *redis.Client, secure bool, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl, secure: secure}
}

// Create stores data under a fresh random ID and sets the session cookie.
// It returns the ID, which also scopes the per-session state store.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}
	data.CreatedAt = time.Now()
	ttl, err := s.save(ctx, id, data)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, s.cookie(id, int(ttl.Seconds())))
	return id, nil
}

// ID returns the session ID from the request cookie, or "".
func ID(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Get loads the session named by the request cookie. A missing cookie or
// an expired session is (nil, nil).
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	id := ID(r)
	if id == "" {
		return nil, nil
	}
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("session get: %w", err)
	}
	data := new(Data)
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return data, nil
}

// Update rewrites the session in place, for example after a profile or
// admin mode change. The ID and cookie are kept and the TTL restarts.
func (s *Store) Update(ctx context.Context, r *http.Request, data *Data) error {
	id := ID(r)
	if id == "" {
		return errors.New("session update: no session cookie")
	}
	_, err := s.save(ctx, id, data)
	return err
}

// Destroy deletes the session and expires the cookie. Without a cookie it
// does nothing.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := ID(r)
	if id == "" {
		return nil
	}
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	http.SetCookie(w, s.cookie("", -1))
	return nil
}

// save writes data under id and returns the TTL it was stored with.
func (s *Store) save(ctx context.Context, id string, data *Data) (time.Duration, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return 0, fmt.Errorf("session encode: %w", err)
	}
	ttl := s.ttlFor(data.Token)
	if err := s.client.Set(ctx, keyPrefix+id, raw, ttl).Err(); err != nil {
		return 0, fmt.Errorf("session save: %w", err)
	}
	return ttl, nil
}

func (s *Store) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}

// ttlFor caps the store TTL at the token's expiry so a session never
// outlives the credential it carries. The token is issued by the backend
// and is only inspected here, never trusted for authorization.
func (s *Store) ttlFor(token string) time.Duration {
	exp, ok := tokenExpiry(token)
	if !ok {
		return s.ttl
	}
	left := time.Until(exp)
	if left < time.Second {
		left = time.Second
	}
	if left < s.ttl {
		return left
	}
	return s.ttl
}

// tokenExpiry reads the exp claim of a JWT without verifying it.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// generateID returns a random hex session ID.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
