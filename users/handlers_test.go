package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/user/movielab-go/apperror"
	"github.com/user/movielab-go/auth"
)

type mockProfileService struct {
	mock.Mock
}

func (m *mockProfileService) GetUserProfile(ctx context.Context, userID int) (*UserProfileResponse, error) {
	args := m.Called(ctx, userID)
	if p := args.Get(0); p != nil {
		return p.(*UserProfileResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileService) UpdateUserProfile(ctx context.Context, userID int, req *UpdateUserProfileRequest) (*UserProfileResponse, error) {
	args := m.Called(ctx, userID, req)
	if p := args.Get(0); p != nil {
		return p.(*UserProfileResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

// asUser fakes what auth.JWTMiddleware does for a verified token.
func asUser(userID int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.ContextWithUserID(r.Context(), userID)))
		})
	}
}

func newRouter(svc ProfileService, userID int) chi.Router {
	r := chi.NewRouter()
	if userID > 0 {
		r.Use(asUser(userID))
	}
	NewUserHandlers(svc).RegisterRoutes(r)
	return r
}

func TestHandleGetUserProfile(t *testing.T) {
	svc := new(mockProfileService)
	svc.On("GetUserProfile", mock.Anything, 7).
		Return(&UserProfileResponse{ID: 7, Username: "alice", FavouriteYears: []int{2021, 2020}}, nil)

	rr := httptest.NewRecorder()
	newRouter(svc, 7).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"favourite_years":[2021,2020]`)
	svc.AssertExpectations(t)
}

func TestHandleGetUserProfileWithoutIdentity(t *testing.T) {
	svc := new(mockProfileService)

	rr := httptest.NewRecorder()
	newRouter(svc, 0).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	svc.AssertNotCalled(t, "GetUserProfile", mock.Anything, mock.Anything)
}

func TestHandleUpdateUserProfile(t *testing.T) {
	t.Run("updates email", func(t *testing.T) {
		svc := new(mockProfileService)
		svc.On("UpdateUserProfile", mock.Anything, 7, mock.MatchedBy(func(req *UpdateUserProfileRequest) bool {
			return req.Email != nil && *req.Email == "new@example.com"
		})).Return(&UserProfileResponse{ID: 7, Email: "new@example.com"}, nil)

		rr := httptest.NewRecorder()
		newRouter(svc, 7).ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/me", strings.NewReader(`{"email":"new@example.com"}`)))

		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("missing email", func(t *testing.T) {
		svc := new(mockProfileService)
		rr := httptest.NewRecorder()
		newRouter(svc, 7).ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/me", strings.NewReader(`{}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("email taken", func(t *testing.T) {
		svc := new(mockProfileService)
		svc.On("UpdateUserProfile", mock.Anything, 7, mock.Anything).
			Return(nil, apperror.NewConflictError("email 'bob@example.com' already exists", nil))

		rr := httptest.NewRecorder()
		newRouter(svc, 7).ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/me", strings.NewReader(`{"email":"bob@example.com"}`)))

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}
