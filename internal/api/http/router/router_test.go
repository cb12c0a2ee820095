package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpctx "github.com/imagify/imagify-server/internal/api/http/context"
	"github.com/imagify/imagify-server/internal/mocks"
	"github.com/imagify/imagify-server/internal/model"
	"github.com/imagify/imagify-server/internal/service"
	"github.com/imagify/imagify-server/internal/testutil"
)

type routerFixture struct {
	users    *mocks.UserStore
	tokens   *mocks.RefreshTokenStore
	manager  *mocks.TokenManager
	notifier *mocks.Notifier
	handler  http.Handler
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	f := &routerFixture{
		users:    mocks.NewUserStore(t),
		tokens:   mocks.NewRefreshTokenStore(t),
		manager:  mocks.NewTokenManager(t),
		notifier: mocks.NewNotifier(t),
	}

	lg := testutil.MakeNoopLogger()
	verifier := mocks.NewIdentityVerifier(t)
	storage := mocks.NewStorage(t)

	authService := service.NewAuth(f.users, f.tokens, f.manager, verifier, storage, f.notifier, 14*24*time.Hour, lg)
	tokenService := service.NewTokenService(f.manager, f.tokens, f.users, 14*24*time.Hour, lg)

	f.handler = New(authService, tokenService, httpctx.NewManager(), lg).Register()
	return f
}

func TestRouter_RegisterRoute(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)

	f.users.On("GetByEmail", mock.Anything, "bob@example.com").Return(model.User{}, model.ErrNotFound)
	f.users.On("Create", mock.Anything, mock.AnythingOfType("model.User")).Return(model.User{}, nil)
	f.notifier.On("Enqueue", mock.AnythingOfType("model.Email")).Return()

	body := `{"username":"bob","email":"bob@example.com","password":"password123","confirm_password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	f.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRouter_ProfileRequiresToken(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	w := httptest.NewRecorder()

	f.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_ProfileWithToken(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)

	user := model.NewLocalUser("bob", "bob@example.com", "hash")
	user.IsVerified = true

	f.manager.On("ParseAccessToken", "valid").Return(model.AccessClaims{UserID: user.ID, Email: user.Email}, nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer valid")
	w := httptest.NewRecorder()

	f.handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bob@example.com")
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
	w := httptest.NewRecorder()

	f.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
