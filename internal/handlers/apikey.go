package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"

	"github.com/mveljko/codeclash-api/internal/middleware"
	"github.com/mveljko/codeclash-api/internal/services"
	"github.com/mveljko/codeclash-api/pkg/dto"
)

// APIKeyHandler manages judge callback credentials. All routes sit behind
// the admin gate.
type APIKeyHandler struct {
	apiKeyService APIKeyServiceInterface
}

func NewAPIKeyHandler(apiKeyService APIKeyServiceInterface) *APIKeyHandler {
	return &APIKeyHandler{apiKeyService: apiKeyService}
}

func (h *APIKeyHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateAPIKeyRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		c.BadRequest("name is required")
		return
	}

	apiKey, plainKey, err := h.apiKeyService.Create(context.Background(), req.Name, userID, req.ExpiresAt)
	if err != nil {
		c.InternalServerError("failed to create api key")
		return
	}

	response := dto.APIKeyCreatedResponse{
		ID:        apiKey.ID,
		Name:      apiKey.Name,
		Key:       plainKey,
		KeyPrefix: apiKey.KeyPrefix,
		CreatedAt: apiKey.CreatedAt.Format(time.RFC3339),
	}
	if apiKey.ExpiresAt != nil {
		formatted := apiKey.ExpiresAt.Format(time.RFC3339)
		response.ExpiresAt = &formatted
	}

	_ = c.JSON(201, response)
}

func (h *APIKeyHandler) List(c *drift.Context) {
	keys, err := h.apiKeyService.List(context.Background())
	if err != nil {
		c.InternalServerError("failed to list api keys")
		return
	}

	var response []dto.APIKeyResponse
	for _, k := range keys {
		item := dto.APIKeyResponse{
			ID:        k.ID,
			Name:      k.Name,
			KeyPrefix: k.KeyPrefix,
			CreatedAt: k.CreatedAt.Format(time.RFC3339),
		}
		if k.ExpiresAt != nil {
			formatted := k.ExpiresAt.Format(time.RFC3339)
			item.ExpiresAt = &formatted
		}
		if k.LastUsedAt != nil {
			formatted := k.LastUsedAt.Format(time.RFC3339)
			item.LastUsedAt = &formatted
		}
		response = append(response, item)
	}

	_ = c.JSON(200, response)
}

func (h *APIKeyHandler) Revoke(c *drift.Context) {
	keyID, err := uuid.Parse(c.Param("keyId"))
	if err != nil {
		c.BadRequest("invalid key id")
		return
	}

	if err := h.apiKeyService.Revoke(context.Background(), keyID); err != nil {
		if errors.Is(err, services.ErrAPIKeyNotFound) {
			c.NotFound("api key not found")
			return
		}
		c.InternalServerError("failed to revoke api key")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "api key revoked"})
}
