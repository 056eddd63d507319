package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mveljko/codeclash-api/internal/middleware"
	"github.com/mveljko/codeclash-api/internal/models"
	"github.com/mveljko/codeclash-api/internal/services"
	"github.com/mveljko/codeclash-api/pkg/dto"
	"github.com/mveljko/codeclash-api/tests/testutil"
)

func setupLeaderboardTest(t *testing.T) (*testutil.MockLeaderboardService, *LeaderboardHandler, *services.JWTService) {
	t.Helper()
	mockLeaderboardService := new(testutil.MockLeaderboardService)
	handler := NewLeaderboardHandler(mockLeaderboardService)
	jwtSvc := newTestJWTService()
	return mockLeaderboardService, handler, jwtSvc
}

func newLeaderboardApp(handler *LeaderboardHandler, jwtSvc *services.JWTService) http.Handler {
	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Get("/contests/:contestId/leaderboard", handler.Get)
	app.Post("/contests/:contestId/leaderboard/rebuild", handler.Rebuild)
	return app
}

func TestLeaderboardHandler_Get_Success(t *testing.T) {
	mockLeaderboardService, handler, jwtSvc := setupLeaderboardTest(t)

	userID := uuid.New()
	contestID := uuid.New()
	avatarURL := "https://example.com/avatar.png"

	entries := []models.LeaderboardEntry{
		{Rank: 1, UserID: uuid.New(), Name: "Alice", AvatarURL: &avatarURL, Score: 300},
		{Rank: 2, UserID: uuid.New(), Name: "Bob", Score: 180},
	}

	mockLeaderboardService.On("Top", mock.Anything, contestID, 50).Return(entries, nil)

	app := newLeaderboardApp(handler, jwtSvc)

	token := generateTestToken(t, jwtSvc, userID, "user@example.com")
	req := httptest.NewRequest(http.MethodGet, "/contests/"+contestID.String()+"/leaderboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.LeaderboardResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, contestID, response.ContestID)
	require.Len(t, response.Entries, 2)
	assert.Equal(t, 1, response.Entries[0].Rank)
	assert.Equal(t, "Alice", response.Entries[0].Name)
	assert.Equal(t, 300, response.Entries[0].Score)
	assert.Equal(t, 2, response.Entries[1].Rank)
	assert.Nil(t, response.Entries[1].AvatarURL)

	mockLeaderboardService.AssertExpectations(t)
}

func TestLeaderboardHandler_Get_CustomLimit(t *testing.T) {
	mockLeaderboardService, handler, jwtSvc := setupLeaderboardTest(t)

	userID := uuid.New()
	contestID := uuid.New()

	mockLeaderboardService.On("Top", mock.Anything, contestID, 10).Return([]models.LeaderboardEntry{}, nil)

	app := newLeaderboardApp(handler, jwtSvc)

	token := generateTestToken(t, jwtSvc, userID, "user@example.com")
	req := httptest.NewRequest(http.MethodGet, "/contests/"+contestID.String()+"/leaderboard?limit=10", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.LeaderboardResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Empty(t, response.Entries)

	mockLeaderboardService.AssertExpectations(t)
}

func TestLeaderboardHandler_Get_InvalidLimit(t *testing.T) {
	_, handler, jwtSvc := setupLeaderboardTest(t)

	userID := uuid.New()
	contestID := uuid.New()
	app := newLeaderboardApp(handler, jwtSvc)
	token := generateTestToken(t, jwtSvc, userID, "user@example.com")

	for _, limit := range []string{"0", "-5", "600", "lots"} {
		req := httptest.NewRequest(http.MethodGet, "/contests/"+contestID.String()+"/leaderboard?limit="+limit, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "limit must be between 1 and 500")
	}
}

func TestLeaderboardHandler_Get_InvalidContestID(t *testing.T) {
	_, handler, jwtSvc := setupLeaderboardTest(t)

	userID := uuid.New()
	app := newLeaderboardApp(handler, jwtSvc)

	token := generateTestToken(t, jwtSvc, userID, "user@example.com")
	req := httptest.NewRequest(http.MethodGet, "/contests/not-a-uuid/leaderboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid contest id")
}

func TestLeaderboardHandler_Get_ServiceError(t *testing.T) {
	mockLeaderboardService, handler, jwtSvc := setupLeaderboardTest(t)

	userID := uuid.New()
	contestID := uuid.New()

	mockLeaderboardService.On("Top", mock.Anything, contestID, 50).Return([]models.LeaderboardEntry{}, errors.New("redis down"))

	app := newLeaderboardApp(handler, jwtSvc)

	token := generateTestToken(t, jwtSvc, userID, "user@example.com")
	req := httptest.NewRequest(http.MethodGet, "/contests/"+contestID.String()+"/leaderboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to load leaderboard")

	mockLeaderboardService.AssertExpectations(t)
}

func TestLeaderboardHandler_Rebuild_Success(t *testing.T) {
	mockLeaderboardService, handler, jwtSvc := setupLeaderboardTest(t)

	adminID := uuid.New()
	contestID := uuid.New()

	mockLeaderboardService.On("Rebuild", mock.Anything, contestID).Return(nil)

	app := newLeaderboardApp(handler, jwtSvc)

	token := generateAdminToken(t, jwtSvc, adminID, "admin@example.com")
	req := httptest.NewRequest(http.MethodPost, "/contests/"+contestID.String()+"/leaderboard/rebuild", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "leaderboard rebuilt")

	mockLeaderboardService.AssertExpectations(t)
}

func TestLeaderboardHandler_Rebuild_ServiceError(t *testing.T) {
	mockLeaderboardService, handler, jwtSvc := setupLeaderboardTest(t)

	adminID := uuid.New()
	contestID := uuid.New()

	mockLeaderboardService.On("Rebuild", mock.Anything, contestID).Return(errors.New("redis down"))

	app := newLeaderboardApp(handler, jwtSvc)

	token := generateAdminToken(t, jwtSvc, adminID, "admin@example.com")
	req := httptest.NewRequest(http.MethodPost, "/contests/"+contestID.String()+"/leaderboard/rebuild", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to rebuild leaderboard")

	mockLeaderboardService.AssertExpectations(t)
}
