package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lumehaven/identity/auth-service/internal/adapters/transport/http/dto"
	authErrors "github.com/lumehaven/identity/auth-service/internal/domain/auth/errors"
	"github.com/lumehaven/identity/auth-service/internal/domain/auth/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

/* ──────────────────────────────── stub ──────────────────────────────── */

type svcStub struct {
	registerErr error
	loginErr    error
	refreshErr  error
	profileErr  error
	authErr     error
}

var stubProfile = model.PublicUser{ID: 1, Username: "alice", Email: "alice@x.com"}

func (s *svcStub) Register(_ context.Context, _ dto.RegisterDTO) (model.PublicUser, error) {
	if s.registerErr != nil {
		return model.PublicUser{}, s.registerErr
	}
	return stubProfile, nil
}

func (s *svcStub) Login(_ context.Context, _ dto.LoginDTO) (model.Session, error) {
	if s.loginErr != nil {
		return model.Session{}, s.loginErr
	}
	return model.Session{AccessToken: "at", RefreshToken: "rt", Profile: stubProfile}, nil
}

func (s *svcStub) Refresh(_ context.Context, refreshToken string) (model.Session, error) {
	if s.refreshErr != nil {
		return model.Session{}, s.refreshErr
	}
	return model.Session{AccessToken: "at2", RefreshToken: refreshToken, Profile: stubProfile}, nil
}

func (s *svcStub) Logout(_ context.Context, _ int64) error { return nil }

func (s *svcStub) GetProfile(_ context.Context, _ int64) (model.PublicUser, error) {
	if s.profileErr != nil {
		return model.PublicUser{}, s.profileErr
	}
	return stubProfile, nil
}

func (s *svcStub) Authenticate(_ context.Context, _ string) (int64, error) {
	if s.authErr != nil {
		return 0, s.authErr
	}
	return 1, nil
}

/* ───────────────────────────── helpers ───────────────────────────── */

func newRouter(svc *svcStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(svc, zap.NewNop()).Register(r)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(tok string) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+tok)
	return h
}

/* ───────────────────────────── tests ───────────────────────────── */

func TestHandler_Register(t *testing.T) {
	r := newRouter(&svcStub{})
	w := doJSON(t, r, http.MethodPost, "/auth/register",
		dto.RegisterDTO{Username: "alice", Email: "alice@x.com", Password: "secret1"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"alice"`)
	require.NotContains(t, w.Body.String(), "password")
}

func TestHandler_RegisterConflict(t *testing.T) {
	r := newRouter(&svcStub{registerErr: authErrors.NewAlreadyExists("username already taken")})
	w := doJSON(t, r, http.MethodPost, "/auth/register",
		dto.RegisterDTO{Username: "alice", Email: "alice@x.com", Password: "secret1"}, nil)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_RegisterBadBody(t *testing.T) {
	r := newRouter(&svcStub{})
	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Login(t *testing.T) {
	r := newRouter(&svcStub{})
	w := doJSON(t, r, http.MethodPost, "/auth/login",
		dto.LoginDTO{Username: "alice", Password: "secret1"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "at", resp["accessToken"])
	require.Equal(t, "rt", resp["refreshToken"])
}

func TestHandler_LoginUnauthorized(t *testing.T) {
	r := newRouter(&svcStub{loginErr: authErrors.ErrInvalidCredentials})
	w := doJSON(t, r, http.MethodPost, "/auth/login",
		dto.LoginDTO{Username: "alice", Password: "wrong"}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_RefreshMalformedHeader(t *testing.T) {
	r := newRouter(&svcStub{})

	for name, h := range map[string]http.Header{
		"no header":    nil,
		"wrong scheme": {"Authorization": []string{"Basic abc"}},
		"empty token":  {"Authorization": []string{"Bearer "}},
		"no space":     {"Authorization": []string{"Bearerabc"}},
	} {
		w := doJSON(t, r, http.MethodPost, "/auth/refresh", nil, h)
		require.Equal(t, http.StatusBadRequest, w.Code, name)
	}
}

func TestHandler_Refresh(t *testing.T) {
	r := newRouter(&svcStub{})
	w := doJSON(t, r, http.MethodPost, "/auth/refresh", nil, bearer("rt"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "at2", resp["accessToken"])
	require.Equal(t, "rt", resp["refreshToken"], "refresh token is returned unrotated")
}

func TestHandler_RefreshInvalidToken(t *testing.T) {
	r := newRouter(&svcStub{refreshErr: authErrors.ErrInvalidToken})
	w := doJSON(t, r, http.MethodPost, "/auth/refresh", nil, bearer("stale"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_ProfileRequiresToken(t *testing.T) {
	r := newRouter(&svcStub{})
	w := doJSON(t, r, http.MethodGet, "/auth/profile", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_Profile(t *testing.T) {
	r := newRouter(&svcStub{})
	w := doJSON(t, r, http.MethodGet, "/auth/profile", nil, bearer("at"))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"alice@x.com"`)
}

func TestHandler_ProfileNotFound(t *testing.T) {
	r := newRouter(&svcStub{profileErr: authErrors.ErrNotFound})
	w := doJSON(t, r, http.MethodGet, "/auth/profile", nil, bearer("at"))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_Logout(t *testing.T) {
	r := newRouter(&svcStub{})
	w := doJSON(t, r, http.MethodPost, "/auth/logout", nil, bearer("at"))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHandler_LogoutInvalidToken(t *testing.T) {
	r := newRouter(&svcStub{authErr: authErrors.ErrInvalidToken})
	w := doJSON(t, r, http.MethodPost, "/auth/logout", nil, bearer("expired"))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandler_InternalErrorIsOpaque(t *testing.T) {
	r := newRouter(&svcStub{loginErr: authErrors.WrapInternal(context.DeadlineExceeded, "Login")})
	w := doJSON(t, r, http.MethodPost, "/auth/login",
		dto.LoginDTO{Username: "alice", Password: "secret1"}, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "deadline", "internal detail must not leak")
}
