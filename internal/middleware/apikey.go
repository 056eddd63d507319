package middleware

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	APIKeyIDKey = "api_key_id"
)

// APIKeyServiceInterface defines the methods needed by the API key middleware
type APIKeyServiceInterface interface {
	Validate(ctx context.Context, key string) (uuid.UUID, error)
}

// APIKeyAuth authenticates the judge's result callbacks with an issued key.
func APIKeyAuth(apiKeyService APIKeyServiceInterface) drift.HandlerFunc {
	return func(c *drift.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Unauthorized("missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.Unauthorized("invalid authorization header format")
			return
		}

		token := parts[1]

		if !strings.HasPrefix(token, "ck_") {
			c.Unauthorized("invalid api key format")
			return
		}

		keyID, err := apiKeyService.Validate(context.Background(), token)
		if err != nil {
			c.Unauthorized("invalid or expired api key")
			return
		}

		c.Set(APIKeyIDKey, keyID)
		c.Next()
	}
}

// GetAPIKeyID retrieves the authenticated key's id from context.
func GetAPIKeyID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(APIKeyIDKey); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}
