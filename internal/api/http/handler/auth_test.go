package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imagify/imagify-server/internal/model"
	"github.com/imagify/imagify-server/internal/service"
	"github.com/imagify/imagify-server/internal/testutil"
)

type authServiceStub struct {
	registerFn        func(ctx context.Context, in service.RegisterInput) error
	verifyEmailFn     func(ctx context.Context, email string, code int) error
	resendCodeFn      func(ctx context.Context, email string) error
	loginFn           func(ctx context.Context, in service.LoginInput) (model.User, string, string, error)
	googleFn          func(ctx context.Context, rawIDToken string) (model.User, string, string, error)
	refreshFn         func(ctx context.Context, refreshToken string) (model.User, string, error)
	signOutFn         func(ctx context.Context, refreshToken string) error
	forgotPasswordFn  func(ctx context.Context, email string) error
	verifyResetCodeFn func(ctx context.Context, email string, code int) error
	setNewPasswordFn  func(ctx context.Context, email, password string) error
}

func (s *authServiceStub) Register(ctx context.Context, in service.RegisterInput) error {
	return s.registerFn(ctx, in)
}

func (s *authServiceStub) VerifyEmail(ctx context.Context, email string, code int) error {
	return s.verifyEmailFn(ctx, email, code)
}

func (s *authServiceStub) ResendCode(ctx context.Context, email string) error {
	return s.resendCodeFn(ctx, email)
}

func (s *authServiceStub) Login(ctx context.Context, in service.LoginInput) (model.User, string, string, error) {
	return s.loginFn(ctx, in)
}

func (s *authServiceStub) SignInWithGoogle(ctx context.Context, rawIDToken string) (model.User, string, string, error) {
	return s.googleFn(ctx, rawIDToken)
}

func (s *authServiceStub) Refresh(ctx context.Context, refreshToken string) (model.User, string, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *authServiceStub) SignOut(ctx context.Context, refreshToken string) error {
	return s.signOutFn(ctx, refreshToken)
}

func (s *authServiceStub) ForgotPassword(ctx context.Context, email string) error {
	return s.forgotPasswordFn(ctx, email)
}

func (s *authServiceStub) VerifyResetCode(ctx context.Context, email string, code int) error {
	return s.verifyResetCodeFn(ctx, email, code)
}

func (s *authServiceStub) SetNewPassword(ctx context.Context, email, password string) error {
	return s.setNewPasswordFn(ctx, email, password)
}

func postJSON(t *testing.T, h http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func TestAuth_Register(t *testing.T) {
	t.Parallel()

	var got service.RegisterInput
	svc := &authServiceStub{registerFn: func(_ context.Context, in service.RegisterInput) error {
		got = in
		return nil
	}}

	h := NewAuth(svc, testutil.MakeNoopLogger())
	w := postJSON(t, h.Register, map[string]string{
		"username":         "bob",
		"email":            "bob@example.com",
		"password":         "password123",
		"confirm_password": "password123",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "bob", got.Username)
	assert.Equal(t, "bob@example.com", got.Email)
}

func TestAuth_Register_PasswordMismatch(t *testing.T) {
	t.Parallel()

	svc := &authServiceStub{registerFn: func(context.Context, service.RegisterInput) error {
		t.Fatal("service must not be called")
		return nil
	}}

	h := NewAuth(svc, testutil.MakeNoopLogger())
	w := postJSON(t, h.Register, map[string]string{
		"username":         "bob",
		"email":            "bob@example.com",
		"password":         "password123",
		"confirm_password": "different456",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuth_Register_InvalidEmail(t *testing.T) {
	t.Parallel()

	svc := &authServiceStub{registerFn: func(context.Context, service.RegisterInput) error {
		t.Fatal("service must not be called")
		return nil
	}}

	h := NewAuth(svc, testutil.MakeNoopLogger())
	w := postJSON(t, h.Register, map[string]string{
		"username":         "bob",
		"email":            "not-an-email",
		"password":         "password123",
		"confirm_password": "password123",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuth_Register_EmailTaken(t *testing.T) {
	t.Parallel()

	svc := &authServiceStub{registerFn: func(context.Context, service.RegisterInput) error {
		return model.NewErrEmailTaken()
	}}

	h := NewAuth(svc, testutil.MakeNoopLogger())
	w := postJSON(t, h.Register, map[string]string{
		"username":         "bob",
		"email":            "bob@example.com",
		"password":         "password123",
		"confirm_password": "password123",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuth_Register_Multipart(t *testing.T) {
	t.Parallel()

	var got service.RegisterInput
	svc := &authServiceStub{registerFn: func(_ context.Context, in service.RegisterInput) error {
		got = in
		return nil
	}}

	body := &bytes.Buffer{}
	mw := newMultipartBody(t, body, map[string]string{
		"username":         "bob",
		"email":            "bob@example.com",
		"password":         "password123",
		"confirm_password": "password123",
	}, "profile_image", "pic.jpg", []byte("jpegdata"))

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", mw)
	w := httptest.NewRecorder()

	h := NewAuth(svc, testutil.MakeNoopLogger())
	h.Register(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, got.ProfileImage)
	assert.Equal(t, "pic.jpg", got.ProfileImage.Name)
}

func TestAuth_VerifyEmail(t *testing.T) {
	t.Parallel()

	svc := &authServiceStub{verifyEmailFn: func(_ context.Context, email string, code int) error {
		assert.Equal(t, "bob@example.com", email)
		assert.Equal(t, 123456, code)
		return nil
	}}

	h := NewAuth(svc, testutil.MakeNoopLogger())
	w := postJSON(t, h.VerifyEmail, map[string]any{"email": "bob@example.com", "code": 123456})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_VerifyEmail_InvalidCode(t *testing.T) {
	t.Parallel()

	svc := &authServiceStub{verifyEmailFn: func(context.Context, string, int) error {
		return model.NewErrInvalidCode()
	}}

	h := NewAuth(svc, testutil.MakeNoopLogger())
	w := postJSON(t, h.VerifyEmail, map[string]any{"email": "bob@example.com", "code": 1})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_Login(t *testing.T) {
	t.Parallel()

	user := model.NewLocalUser("bob", "bob@example.com", "hash")
	svc := &authServiceStub{loginFn: func(_ context.Context, in service.LoginInput) (model.User, string, string, error) {
		assert.Equal(t, "bob@example.com", in.Email)
		assert.NotEmpty(t, in.IP)
		return user, "access", "refresh", nil
	}}

	h := NewAuth(svc, testutil.MakeNoopLogger())
	w := postJSON(t, h.Login, map[string]string{"email": "bob@example.com", "password": "password123"})

	require.Equal(t, http.StatusOK, w.Code)

	var resp tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, user.ID.String(), resp.UserID)
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "refresh", resp.RefreshToken)
}

func TestAuth_Login_InvalidCredentials(t *testing.T) {
	t.Parallel()

	svc := &authServiceStub{loginFn: func(context.Context, service.LoginInput) (model.User, string, string, error) {
		return model.User{}, "", "", model.NewErrInvalidCredentials()
	}}

	h := NewAuth(svc, testutil.MakeNoopLogger())
	w := postJSON(t, h.Login, map[string]string{"email": "bob@example.com", "password": "wrongwrong"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_credentials", resp.Code)
}

func TestAuth_GoogleSignIn(t *testing.T) {
	t.Parallel()

	user := model.NewGoogleUser("bob", "bob@example.com", model.GoogleIdentity{Subject: "sub"})
	svc := &authServiceStub{googleFn: func(_ context.Context, raw string) (model.User, string, string, error) {
		assert.Equal(t, "id-token", raw)
		return user, "access", "refresh", nil
	}}

	h := NewAuth(svc, testutil.MakeNoopLogger())
	w := postJSON(t, h.GoogleSignIn, map[string]string{"id_token": "id-token"})

	require.Equal(t, http.StatusOK, w.Code)

	var resp tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, user.ID.String(), resp.UserID)
}

func TestAuth_GoogleSignIn_MissingToken(t *testing.T) {
	t.Parallel()

	h := NewAuth(&authServiceStub{}, testutil.MakeNoopLogger())
	w := postJSON(t, h.GoogleSignIn, map[string]string{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuth_Refresh(t *testing.T) {
	t.Parallel()

	user := model.NewLocalUser("bob", "bob@example.com", "hash")
	svc := &authServiceStub{refreshFn: func(_ context.Context, refresh string) (model.User, string, error) {
		assert.Equal(t, "refresh-token", refresh)
		return user, "new-access", nil
	}}

	h := NewAuth(svc, testutil.MakeNoopLogger())
	w := postJSON(t, h.Refresh, map[string]string{"refresh_token": "refresh-token"})

	require.Equal(t, http.StatusOK, w.Code)

	var resp tokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "new-access", resp.AccessToken)
	assert.Equal(t, "refresh-token", resp.RefreshToken)
}

func TestAuth_Refresh_MissingToken(t *testing.T) {
	t.Parallel()

	h := NewAuth(&authServiceStub{}, testutil.MakeNoopLogger())
	w := postJSON(t, h.Refresh, map[string]string{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuth_Refresh_Expired(t *testing.T) {
	t.Parallel()

	svc := &authServiceStub{refreshFn: func(context.Context, string) (model.User, string, error) {
		return model.User{}, "", model.NewErrExpiredRefreshToken()
	}}

	h := NewAuth(svc, testutil.MakeNoopLogger())
	w := postJSON(t, h.Refresh, map[string]string{"refresh_token": "stale"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_SignOut(t *testing.T) {
	t.Parallel()

	svc := &authServiceStub{signOutFn: func(_ context.Context, refresh string) error {
		assert.Equal(t, "refresh-token", refresh)
		return nil
	}}

	h := NewAuth(svc, testutil.MakeNoopLogger())
	w := postJSON(t, h.SignOut, map[string]string{"refresh_token": "refresh-token"})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_ForgotPassword(t *testing.T) {
	t.Parallel()

	svc := &authServiceStub{forgotPasswordFn: func(_ context.Context, email string) error {
		assert.Equal(t, "bob@example.com", email)
		return nil
	}}

	h := NewAuth(svc, testutil.MakeNoopLogger())
	w := postJSON(t, h.ForgotPassword, map[string]string{"email": "bob@example.com"})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_SetNewPassword(t *testing.T) {
	t.Parallel()

	svc := &authServiceStub{setNewPasswordFn: func(_ context.Context, email, password string) error {
		assert.Equal(t, "bob@example.com", email)
		assert.Equal(t, "newpassword1", password)
		return nil
	}}

	h := NewAuth(svc, testutil.MakeNoopLogger())
	w := postJSON(t, h.SetNewPassword, map[string]string{
		"email":            "bob@example.com",
		"new_password":     "newpassword1",
		"confirm_password": "newpassword1",
	})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_SetNewPassword_NotVerified(t *testing.T) {
	t.Parallel()

	svc := &authServiceStub{setNewPasswordFn: func(context.Context, string, string) error {
		return model.NewErrResetNotVerified()
	}}

	h := NewAuth(svc, testutil.MakeNoopLogger())
	w := postJSON(t, h.SetNewPassword, map[string]string{
		"email":            "bob@example.com",
		"new_password":     "newpassword1",
		"confirm_password": "newpassword1",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestClientIP_ForwardedFor(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	assert.Equal(t, "203.0.113.9", clientIP(req))
}

func TestClientIP_RemoteAddr(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	req.RemoteAddr = "192.0.2.7:51234"

	assert.Equal(t, "192.0.2.7", clientIP(req))
}

// newMultipartBody writes fields and a single file part, returning the
// Content-Type header value.
func newMultipartBody(t *testing.T, buf *bytes.Buffer, fields map[string]string, fileField, fileName string, fileData []byte) string {
	t.Helper()

	mw := multipart.NewWriter(buf)
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	part, err := mw.CreateFormFile(fileField, fileName)
	require.NoError(t, err)
	_, err = part.Write(fileData)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return mw.FormDataContentType()
}
