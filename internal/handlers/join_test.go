package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/mveljko/codeclash-api/internal/models"
	"github.com/mveljko/codeclash-api/tests/testutil"
)

func setupJoinTest(t *testing.T) (*testutil.MockTeamService, *testutil.MockContestService, *JoinHandler) {
	t.Helper()
	mockTeamService := new(testutil.MockTeamService)
	mockContestService := new(testutil.MockContestService)
	handler := NewJoinHandler(mockTeamService, mockContestService, "http://localhost:3000")
	return mockTeamService, mockContestService, handler
}

func newJoinApp(handler *JoinHandler) http.Handler {
	app := drift.New()
	app.Get("/join/:code", handler.ViewJoinPage)
	return app
}

func TestJoinHandler_ViewJoinPage_Success(t *testing.T) {
	mockTeamService, mockContestService, handler := setupJoinTest(t)

	contestID := uuid.New()
	team := waitingTeam("AB2CDE", contestID, uuid.New())

	mockTeamService.On("GetByCode", mock.Anything, "AB2CDE").Return(team, nil)
	mockContestService.On("Get", mock.Anything, contestID).Return(teamContest(contestID), nil)

	app := newJoinApp(handler)

	req := httptest.NewRequest(http.MethodGet, "/join/AB2CDE", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Stack Smashers")
	assert.Contains(t, body, "Spring Clash")
	assert.Contains(t, body, "AB2CDE")
	assert.Contains(t, body, "http://localhost:3000?join=AB2CDE")

	mockTeamService.AssertExpectations(t)
	mockContestService.AssertExpectations(t)
}

func TestJoinHandler_ViewJoinPage_LowercaseCode(t *testing.T) {
	mockTeamService, mockContestService, handler := setupJoinTest(t)

	contestID := uuid.New()
	team := waitingTeam("AB2CDE", contestID, uuid.New())

	mockTeamService.On("GetByCode", mock.Anything, "AB2CDE").Return(team, nil)
	mockContestService.On("Get", mock.Anything, contestID).Return(teamContest(contestID), nil)

	app := newJoinApp(handler)

	req := httptest.NewRequest(http.MethodGet, "/join/ab2cde", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AB2CDE")

	mockTeamService.AssertExpectations(t)
}

func TestJoinHandler_ViewJoinPage_TeamNotFound(t *testing.T) {
	mockTeamService, _, handler := setupJoinTest(t)

	mockTeamService.On("GetByCode", mock.Anything, "ZZZZZZ").Return(nil, errors.New("not found"))

	app := newJoinApp(handler)

	req := httptest.NewRequest(http.MethodGet, "/join/ZZZZZZ", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Team not found")

	mockTeamService.AssertExpectations(t)
}

func TestJoinHandler_ViewJoinPage_TeamStarted(t *testing.T) {
	mockTeamService, mockContestService, handler := setupJoinTest(t)

	contestID := uuid.New()
	team := waitingTeam("AB2CDE", contestID, uuid.New())
	team.Status = models.TeamStatusStarted

	mockTeamService.On("GetByCode", mock.Anything, "AB2CDE").Return(team, nil)

	app := newJoinApp(handler)

	req := httptest.NewRequest(http.MethodGet, "/join/AB2CDE", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already started competing")

	mockTeamService.AssertExpectations(t)
	mockContestService.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestJoinHandler_ViewJoinPage_ContestEnded(t *testing.T) {
	mockTeamService, mockContestService, handler := setupJoinTest(t)

	contestID := uuid.New()
	team := waitingTeam("AB2CDE", contestID, uuid.New())

	contest := teamContest(contestID)
	contest.StartsAt = time.Now().Add(-2 * time.Hour)
	contest.EndsAt = time.Now().Add(-time.Hour)

	mockTeamService.On("GetByCode", mock.Anything, "AB2CDE").Return(team, nil)
	mockContestService.On("Get", mock.Anything, contestID).Return(contest, nil)

	app := newJoinApp(handler)

	req := httptest.NewRequest(http.MethodGet, "/join/AB2CDE", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already ended")

	mockTeamService.AssertExpectations(t)
	mockContestService.AssertExpectations(t)
}

func TestJoinHandler_ViewJoinPage_UnknownContestStillRenders(t *testing.T) {
	mockTeamService, mockContestService, handler := setupJoinTest(t)

	contestID := uuid.New()
	team := waitingTeam("AB2CDE", contestID, uuid.New())

	mockTeamService.On("GetByCode", mock.Anything, "AB2CDE").Return(team, nil)
	mockContestService.On("Get", mock.Anything, contestID).Return(nil, errors.New("not found"))

	app := newJoinApp(handler)

	req := httptest.NewRequest(http.MethodGet, "/join/AB2CDE", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Stack Smashers")
	assert.Contains(t, body, "a contest")

	mockTeamService.AssertExpectations(t)
	mockContestService.AssertExpectations(t)
}
