package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mveljko/codeclash-api/internal/database"
	"github.com/mveljko/codeclash-api/internal/models"
)

var (
	ErrAPIKeyNotFound = errors.New("api key not found")
	ErrAPIKeyRevoked  = errors.New("api key has been revoked")
	ErrAPIKeyExpired  = errors.New("api key has expired")
	ErrAPIKeyInvalid  = errors.New("invalid api key")
)

const (
	apiKeyPrefix    = "ck_"
	apiKeyRandomLen = 32
)

// APIKeyService manages the credentials the judge presents when posting
// verdicts back. Only the sha256 of a key is stored.
type APIKeyService struct {
	db *database.DB
}

func NewAPIKeyService(db *database.DB) *APIKeyService {
	return &APIKeyService{db: db}
}

// GenerateAPIKey generates a new key with the format ck_<32_random_bytes_hex>.
func (s *APIKeyService) GenerateAPIKey() (plainKey, keyHash, keyPrefix string) {
	randomBytes := make([]byte, apiKeyRandomLen)
	_, _ = rand.Read(randomBytes)
	randomPart := hex.EncodeToString(randomBytes)

	plainKey = apiKeyPrefix + randomPart
	keyPrefix = apiKeyPrefix + randomPart[:8] + "..."

	hash := sha256.Sum256([]byte(plainKey))
	keyHash = hex.EncodeToString(hash[:])

	return plainKey, keyHash, keyPrefix
}

// Create issues a new judge key. The plaintext is returned once and never
// stored.
func (s *APIKeyService) Create(ctx context.Context, name string, createdBy uuid.UUID, expiresAt *time.Time) (*models.JudgeAPIKey, string, error) {
	plainKey, keyHash, keyPrefix := s.GenerateAPIKey()

	var apiKey models.JudgeAPIKey
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO judge_api_keys (name, key_hash, key_prefix, created_by, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, key_hash, key_prefix, created_by, expires_at, revoked_at, last_used_at, created_at
	`, name, keyHash, keyPrefix, createdBy, expiresAt).Scan(
		&apiKey.ID, &apiKey.Name, &apiKey.KeyHash, &apiKey.KeyPrefix,
		&apiKey.CreatedBy, &apiKey.ExpiresAt, &apiKey.RevokedAt,
		&apiKey.LastUsedAt, &apiKey.CreatedAt,
	)
	if err != nil {
		return nil, "", err
	}

	return &apiKey, plainKey, nil
}

// Validate checks a presented key and returns its id.
func (s *APIKeyService) Validate(ctx context.Context, key string) (uuid.UUID, error) {
	hash := sha256.Sum256([]byte(key))
	keyHash := hex.EncodeToString(hash[:])

	var apiKey models.JudgeAPIKey
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, expires_at, revoked_at
		FROM judge_api_keys
		WHERE key_hash = $1
	`, keyHash).Scan(&apiKey.ID, &apiKey.ExpiresAt, &apiKey.RevokedAt)
	if err != nil {
		return uuid.Nil, ErrAPIKeyInvalid
	}

	if apiKey.RevokedAt != nil {
		return uuid.Nil, ErrAPIKeyRevoked
	}

	if apiKey.ExpiresAt != nil && apiKey.ExpiresAt.Before(time.Now()) {
		return uuid.Nil, ErrAPIKeyExpired
	}

	go func() {
		_, _ = s.db.Pool.Exec(context.Background(), `
			UPDATE judge_api_keys SET last_used_at = NOW() WHERE id = $1
		`, apiKey.ID)
	}()

	return apiKey.ID, nil
}

func (s *APIKeyService) List(ctx context.Context) ([]models.JudgeAPIKey, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, name, key_hash, key_prefix, created_by, expires_at, revoked_at, last_used_at, created_at
		FROM judge_api_keys
		WHERE revoked_at IS NULL
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []models.JudgeAPIKey
	for rows.Next() {
		var k models.JudgeAPIKey
		if err := rows.Scan(
			&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix,
			&k.CreatedBy, &k.ExpiresAt, &k.RevokedAt, &k.LastUsedAt, &k.CreatedAt,
		); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *APIKeyService) Revoke(ctx context.Context, keyID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE judge_api_keys
		SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL
	`, keyID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}

func (s *APIKeyService) CleanupExpired(ctx context.Context) error {
	_, err := s.db.Pool.Exec(ctx, `
		DELETE FROM judge_api_keys
		WHERE expires_at < NOW() OR revoked_at IS NOT NULL AND revoked_at < NOW() - INTERVAL '30 days'
	`)
	return err
}
