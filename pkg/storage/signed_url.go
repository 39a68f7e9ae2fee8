package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidToken covers malformed tokens and bad signatures.
	ErrInvalidToken = errors.New("invalid signed token")
	// ErrTokenExpired is returned for well-formed tokens past their expiry.
	ErrTokenExpired = errors.New("signed token expired")
)

// SignedURLSigner creates and validates HMAC-SHA256 tokens binding an id to a
// payload. Tokens read "id.expiry.payload.signature" with both text parts
// base64url encoded; an expiry of 0 never lapses.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate signs id and payload with the signer's TTL.
func (s *SignedURLSigner) Generate(id, payload string) (string, time.Time, error) {
	expiresAt := s.now().Add(s.ttl)
	token, err := s.Sign(id, payload, expiresAt)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Sign produces a token valid until expiresAt; a zero time means forever.
func (s *SignedURLSigner) Sign(id, payload string, expiresAt time.Time) (string, error) {
	if id == "" || payload == "" {
		return "", fmt.Errorf("id and payload required")
	}
	if len(s.secret) == 0 {
		return "", fmt.Errorf("signing secret missing")
	}
	var exp int64
	if !expiresAt.IsZero() {
		exp = expiresAt.Unix()
	}
	parts := []string{
		base64.RawURLEncoding.EncodeToString([]byte(id)),
		strconv.FormatInt(exp, 10),
		base64.RawURLEncoding.EncodeToString([]byte(payload)),
	}
	parts = append(parts, s.mac(parts[0], parts[1], parts[2]))
	return strings.Join(parts, "."), nil
}

// Parse validates a token and returns the embedded id and payload. When
// allowExpired is true the expiry check is skipped, which cleanup relies on.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (id, payload string, expiresAt time.Time, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return "", "", time.Time{}, ErrInvalidToken
	}
	if !hmac.Equal([]byte(s.mac(parts[0], parts[1], parts[2])), []byte(parts[3])) {
		return "", "", time.Time{}, ErrInvalidToken
	}

	rawID, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", "", time.Time{}, ErrInvalidToken
	}
	rawPayload, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", "", time.Time{}, ErrInvalidToken
	}
	exp, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || exp < 0 {
		return "", "", time.Time{}, ErrInvalidToken
	}
	if exp > 0 {
		expiresAt = time.Unix(exp, 0)
		if !allowExpired && s.now().After(expiresAt) {
			return "", "", expiresAt, ErrTokenExpired
		}
	}
	return string(rawID), string(rawPayload), expiresAt, nil
}

func (s *SignedURLSigner) mac(id, exp, payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(id + "|" + exp + "|" + payload))
	return hex.EncodeToString(mac.Sum(nil))
}
