package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wordrush/internal/service"
	"wordrush/shared/interfaces/mocks"
	"wordrush/shared/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, name, email, password string) (*models.AuthResult, error) {
	args := m.Called(ctx, name, email, password)
	r, _ := args.Get(0).(*models.AuthResult)
	return r, args.Error(1)
}
func (m *mockAuthService) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	args := m.Called(ctx, email, password)
	r, _ := args.Get(0).(*models.AuthResult)
	return r, args.Error(1)
}
func (m *mockAuthService) Logout(ctx context.Context, userID uuid.UUID, accessUUID string) error {
	return m.Called(ctx, userID, accessUUID).Error(0)
}
func (m *mockAuthService) VerifyAccessToken(ctx context.Context, tokenString string) (*models.Claims, error) {
	args := m.Called(ctx, tokenString)
	cl, _ := args.Get(0).(*models.Claims)
	return cl, args.Error(1)
}
func (m *mockAuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	return m.Called(ctx, userID, oldPassword, newPassword).Error(0)
}

const (
	userToken  = "user-token"
	adminToken = "admin-token"
)

type testEnv struct {
	router  *gin.Engine
	auth    *mockAuthService
	users   *mocks.UserRepository
	bests   *mocks.TypingBestRepository
	words   *mocks.WordRepository
	userID  uuid.UUID
	adminID uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	env := &testEnv{
		auth:    new(mockAuthService),
		users:   new(mocks.UserRepository),
		bests:   new(mocks.TypingBestRepository),
		words:   new(mocks.WordRepository),
		userID:  uuid.New(),
		adminID: uuid.New(),
	}

	claims := func(id uuid.UUID, role string) *models.Claims {
		c := &models.Claims{Role: role}
		c.Subject = id.String()
		c.ID = "jti-" + role
		return c
	}
	env.auth.On("VerifyAccessToken", mock.Anything, userToken).Return(claims(env.userID, models.RoleUser), nil).Maybe()
	env.auth.On("VerifyAccessToken", mock.Anything, adminToken).Return(claims(env.adminID, models.RoleAdmin), nil).Maybe()
	env.auth.On("VerifyAccessToken", mock.Anything, mock.Anything).Return(nil, models.ErrTokenInvalid).Maybe()

	h := NewHandler(
		env.auth,
		service.NewProfileService(env.users, env.bests, log),
		service.NewScoreService(env.bests, env.users, nil, nil, log, nil),
		service.NewWordService(env.words, log, nil),
		service.NewLeaderboardService(env.bests, nil, log),
		nil,
		log,
	)
	env.router = gin.New()
	h.RegisterRoutes(env.router, nil)
	return env
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/api/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"msg":"pong"}`, w.Body.String())
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Ann", "email": "a@b.c"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.auth.On("Register", mock.Anything, "Ann", "dup@b.c", "pw").Return(nil, models.ErrEmailAlreadyExists).Once()
	w = env.do(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Ann", "email": "dup@b.c", "password": "pw"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.ErrCodeDuplicateEmail, decode[models.ErrorResponse](t, w).Code)

	res := &models.AuthResult{Token: "tok", User: models.PublicUser{ID: uuid.New(), Name: "Ann", Email: "a@b.c", Role: models.RoleUser}}
	env.auth.On("Register", mock.Anything, "Ann", "a@b.c", "pw").Return(res, nil).Once()
	w = env.do(http.MethodPost, "/api/auth/register", "", map[string]string{"name": "Ann", "email": "a@b.c", "password": "pw"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "tok", decode[models.AuthResult](t, w).Token)
}

func TestLogin_WrongCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.auth.On("Login", mock.Anything, "a@b.c", "bad").Return(nil, models.ErrInvalidCredentials).Once()

	w := env.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@b.c", "password": "bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	env.auth.On("Logout", mock.Anything, env.userID, "jti-user").Return(nil).Once()

	w := env.do(http.MethodPost, "/api/auth/logout", userToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	env.auth.AssertExpectations(t)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)
	for _, tc := range []struct{ method, path, token string }{
		{http.MethodGet, "/api/me", ""},
		{http.MethodGet, "/api/typing/best", "garbage"},
		{http.MethodPost, "/api/typing/best", ""},
	} {
		w := env.do(tc.method, tc.path, tc.token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	user := &models.User{ID: env.userID, Name: "Ann", Email: "a@b.c", Role: models.RoleUser}
	env.users.On("GetUserByID", mock.Anything, env.userID).Return(user, nil).Once()
	env.bests.On("GetAll", mock.Anything, env.userID).Return(models.BestScores{Easy: 15}, nil)

	w := env.do(http.MethodGet, "/api/me", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[models.Profile](t, w)
	assert.Equal(t, "Ann", p.Name)
	assert.Equal(t, 15, p.BestScores.Easy)

	w = env.do(http.MethodPut, "/api/me", userToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.users.On("UpdateName", mock.Anything, env.userID, "Bea").Return(&models.User{ID: env.userID, Name: "Bea"}, nil).Once()
	w = env.do(http.MethodPut, "/api/me", userToken, map[string]string{"name": "Bea"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bea", decode[models.Profile](t, w).Name)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/change-password", userToken, map[string]string{"oldPassword": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.auth.On("ChangePassword", mock.Anything, env.userID, "wrong", "newpass").Return(models.ErrWrongPassword).Once()
	w = env.do(http.MethodPost, "/api/change-password", userToken, map[string]string{"oldPassword": "wrong", "newPassword": "newpass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	env.auth.On("ChangePassword", mock.Anything, env.userID, "old", "newpass").Return(nil).Once()
	w = env.do(http.MethodPost, "/api/change-password", userToken, map[string]string{"oldPassword": "old", "newPassword": "newpass"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestBestEndpoints(t *testing.T) {
	env := newTestEnv(t)

	env.bests.On("Get", mock.Anything, env.userID, models.LevelEasy).Return(50, nil).Once()
	w := env.do(http.MethodGet, "/api/typing/best", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"level":"easy","best":50}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/typing/best?level=expert", userToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/typing/best", userToken, map[string]any{"level": "easy", "score": -3})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/typing/best", userToken, map[string]any{"level": "nope", "score": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/typing/best", userToken, map[string]any{"level": "easy"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.bests.On("SubmitMax", mock.Anything, env.userID, models.LevelEasy, 40).
		Return(models.SubmitResult{Level: models.LevelEasy, Best: 50, Previous: 50}, nil).Once()
	w = env.do(http.MethodPost, "/api/typing/best", userToken, map[string]any{"level": "easy", "score": 40})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"level":"easy","best":50}`, w.Body.String())

	env.bests.On("GetAll", mock.Anything, env.userID).Return(models.BestScores{Easy: 50, Normal: 67}, nil).Twice()
	for _, path := range []string{"/api/typing/best/all", "/api/typing/bests"} {
		w = env.do(http.MethodGet, path, userToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"easy":50,"normal":67,"hard":0}`, w.Body.String())
	}
}

func TestWordEndpoints_AdminOnly(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/words", userToken, map[string]string{"term": "x", "level": "easy"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodPost, "/api/words", adminToken, map[string]string{"term": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/words", adminToken, map[string]string{"term": "x", "level": "expert"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.words.On("Create", mock.Anything, models.WordInput{Term: "apple", Level: models.LevelEasy}).Return(nil, models.ErrWordAlreadyExists).Once()
	w = env.do(http.MethodPost, "/api/words", adminToken, map[string]string{"term": "apple", "level": "easy"})
	assert.Equal(t, http.StatusConflict, w.Code)

	env.words.On("Create", mock.Anything, models.WordInput{Term: "pear", Level: models.LevelEasy}).
		Return(&models.Word{ID: uuid.New(), Term: "pear", Level: models.LevelEasy}, nil).Once()
	w = env.do(http.MethodPost, "/api/words", adminToken, map[string]string{"term": "pear", "level": "easy"})
	assert.Equal(t, http.StatusCreated, w.Code)

	missing := uuid.New()
	env.words.On("Delete", mock.Anything, missing).Return(models.ErrWordNotFound).Once()
	w = env.do(http.MethodDelete, "/api/words/"+missing.String(), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodDelete, "/api/words/not-a-uuid", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPost, "/api/seed/words", adminToken, map[string]any{"items": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWordEndpoints_Public(t *testing.T) {
	env := newTestEnv(t)

	level := models.LevelHard
	env.words.On("List", mock.Anything, &level).Return([]models.Word{{Term: "Simplicity is the ultimate sophistication", Level: level}}, nil).Once()
	w := env.do(http.MethodGet, "/api/words?level=hard", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Word](t, w), 1)

	env.words.On("Random", mock.Anything, models.LevelEasy).Return(nil, models.ErrNoWordsForLevel).Once()
	w = env.do(http.MethodGet, "/api/words/random", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImportWords(t *testing.T) {
	env := newTestEnv(t)
	env.words.On("Create", mock.Anything, models.WordInput{Term: "apple", Level: models.LevelNormal, Hint: "fruit"}).
		Return(&models.Word{}, nil).Once()
	env.words.On("Create", mock.Anything, models.WordInput{Term: "music", Level: models.LevelHard}).
		Return(nil, models.ErrWordAlreadyExists).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/words/import?level=normal&filename=w.tsv", strings.NewReader("apple\tfruit\nmusic\t\thard\n"))
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"inserted":1,"duplicates":1,"failed":0}`, w.Body.String())
}

func TestLeaderboards(t *testing.T) {
	env := newTestEnv(t)

	env.bests.On("Top", mock.Anything, mock.Anything, 50, 0).Return([]models.RankedBest{}, nil).Times(3)
	w := env.do(http.MethodGet, "/api/leaderboard?limit=999", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"easy":[],"normal":[],"hard":[]}`, w.Body.String())

	rows := []models.RankedBest{{Rank: 1, UserID: env.userID, Name: "Ann", Best: 15}}
	env.bests.On("Top", mock.Anything, models.LevelNormal, 2, -1).Return(rows, nil).Once()
	w = env.do(http.MethodGet, "/api/typing/leaderboard?level=normal&limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[rankedBestsResponse](t, w)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "Ann", got.Data[0].Name)
}
