package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/user/movielab-go/apperror"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	args := m.Called(ctx, req)
	if u := args.Get(0); u != nil {
		return u.(*User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	args := m.Called(ctx, req)
	if t := args.Get(0); t != nil {
		return t.(*TokenResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockService) RefreshToken(ctx context.Context, token string) (*TokenResponse, error) {
	args := m.Called(ctx, token)
	if t := args.Get(0); t != nil {
		return t.(*TokenResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func newRouter(svc Service) chi.Router {
	r := chi.NewRouter()
	NewHandlers(svc).RegisterRoutes(r)
	return r
}

func TestHandleRegister(t *testing.T) {
	t.Run("created without password hash", func(t *testing.T) {
		svc := new(mockService)
		req := RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "password123"}
		svc.On("Register", mock.Anything, req).
			Return(&User{ID: 1, Username: "alice", Email: "alice@example.com", HashedPassword: "$2a$..."}, nil)

		rr := httptest.NewRecorder()
		body := `{"username":"alice","email":"alice@example.com","password":"password123"}`
		newRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.NotContains(t, rr.Body.String(), "$2a$")

		var got User
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, 1, got.ID)
		svc.AssertExpectations(t)
	})

	t.Run("invalid email never reaches the service", func(t *testing.T) {
		svc := new(mockService)
		rr := httptest.NewRecorder()
		body := `{"username":"alice","email":"nope","password":"password123"}`
		newRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "email must be a valid email address")
		svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("conflict", func(t *testing.T) {
		svc := new(mockService)
		svc.On("Register", mock.Anything, mock.Anything).
			Return(nil, apperror.NewConflictError("username already exists", nil))

		rr := httptest.NewRecorder()
		body := `{"username":"alice","email":"alice@example.com","password":"password123"}`
		newRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body)))

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.JSONEq(t, `{"error":"username already exists"}`, rr.Body.String())
	})
}

func TestHandleLogin(t *testing.T) {
	svc := new(mockService)
	svc.On("Login", mock.Anything, LoginRequest{Login: "alice", Password: "wrong"}).
		Return(nil, apperror.NewAuthError("invalid credentials", nil))
	svc.On("Login", mock.Anything, LoginRequest{Login: "alice", Password: "right"}).
		Return(&TokenResponse{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}, nil)

	r := newRouter(svc)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"login":"alice","password":"wrong"}`)))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"login":"alice","password":"right"}`)))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"access_token":"a"`)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{not json`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleRefreshTokenRequiresBody(t *testing.T) {
	svc := new(mockService)
	rr := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/refresh", strings.NewReader(`{}`)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "refresh_token is required")
}

func TestWriteErrorHidesUnexpectedCause(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, httptest.NewRequest(http.MethodGet, "/", nil), assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"an unexpected error occurred"}`, rr.Body.String())
}
