package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const tokenKeyPrefix = "auth_token:"

// TokenStore keeps opaque bearer tokens in a [fiber.Storage], usually Redis.
// Only the SHA-256 digest of a token is used as the key.
type TokenStore struct {
	storage fiber.Storage
	ttl     time.Duration
}

// NewTokenStore creates a [TokenStore]. A zero ttl keeps tokens until they are revoked.
func NewTokenStore(storage fiber.Storage, ttl time.Duration) *TokenStore {
	return &TokenStore{storage: storage, ttl: ttl}
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return tokenKeyPrefix + hex.EncodeToString(sum[:])
}

// Issue creates a token bound to userID.
func (s *TokenStore) Issue(userID uuid.UUID) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if err := s.storage.Set(tokenKey(token), []byte(userID.String()), s.ttl); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return token, nil
}

// Resolve returns the user bound to token, or [ErrUnauthenticated] when it is unknown or expired.
func (s *TokenStore) Resolve(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrUnauthenticated
	}

	val, err := s.storage.Get(tokenKey(token))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to read token: %w", err)
	}
	if len(val) == 0 {
		return uuid.Nil, ErrUnauthenticated
	}

	id, err := uuid.ParseBytes(val)
	if err != nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return id, nil
}

// Revoke deletes token.
func (s *TokenStore) Revoke(token string) error {
	if err := s.storage.Delete(tokenKey(token)); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}
