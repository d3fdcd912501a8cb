package comments

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
)

type mockCommentService struct {
	mock.Mock
}

func (m *mockCommentService) ListForMovie(ctx context.Context, movieID int) ([]Comment, error) {
	args := m.Called(ctx, movieID)
	list, _ := args.Get(0).([]Comment)
	return list, args.Error(1)
}

func (m *mockCommentService) AddComment(ctx context.Context, movieID int, req NewCommentRequest) (*Comment, error) {
	args := m.Called(ctx, movieID, req)
	c, _ := args.Get(0).(*Comment)
	return c, args.Error(1)
}

func (m *mockCommentService) UpdateComment(ctx context.Context, movieID, commentID int, req UpdateCommentRequest) error {
	return m.Called(ctx, movieID, commentID, req).Error(0)
}

func (m *mockCommentService) DeleteComment(ctx context.Context, movieID, commentID int) error {
	return m.Called(ctx, movieID, commentID).Error(0)
}

func newRouter(svc CommentService) chi.Router {
	r := chi.NewRouter()
	r.Route("/movies", NewCommentHandler(svc).RegisterRoutes)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rr
}

func TestAddComment(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		svc := new(mockCommentService)
		svc.On("AddComment", mock.Anything, 3, NewCommentRequest{Text: "a proper comment"}).
			Return(&Comment{ID: 1, MovieID: 3, Text: "a proper comment"}, nil)

		rr := serve(newRouter(svc), http.MethodPost, "/movies/3/comments", `{"text":"a proper comment"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"id":1,"movie_id":3,"text":"a proper comment","important":false}`, rr.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("text too short", func(t *testing.T) {
		svc := new(mockCommentService)
		rr := serve(newRouter(svc), http.MethodPost, "/movies/3/comments", `{"text":"meh"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "text must be at least 10 characters long")
		svc.AssertNotCalled(t, "AddComment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("movie missing", func(t *testing.T) {
		svc := new(mockCommentService)
		svc.On("AddComment", mock.Anything, 99, mock.Anything).
			Return(nil, apperror.NewNotFoundError("movie with ID 99 not found", nil))

		rr := serve(newRouter(svc), http.MethodPost, "/movies/99/comments", `{"text":"a proper comment"}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("bad movie id", func(t *testing.T) {
		svc := new(mockCommentService)
		rr := serve(newRouter(svc), http.MethodPost, "/movies/abc/comments", `{"text":"a proper comment"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUpdateComment(t *testing.T) {
	svc := new(mockCommentService)
	req := UpdateCommentRequest{ID: 5, Text: "updated comment text", Important: true}
	svc.On("UpdateComment", mock.Anything, 3, 5, req).Return(nil)
	svc.On("UpdateComment", mock.Anything, 3, 6, mock.Anything).
		Return(apperror.NewBadRequestError("comment id 5 in body does not match comment 6 in path", nil))

	r := newRouter(svc)
	body := `{"id":5,"text":"updated comment text","important":true}`

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodPut, "/movies/3/comments/5", body).Code)
	assert.Equal(t, http.StatusBadRequest, serve(r, http.MethodPut, "/movies/3/comments/6", body).Code)
	svc.AssertExpectations(t)
}

func TestDeleteComment(t *testing.T) {
	svc := new(mockCommentService)
	svc.On("DeleteComment", mock.Anything, 3, 5).Return(nil)
	svc.On("DeleteComment", mock.Anything, 3, 6).Return(apperror.NewNotFoundError("comment with ID 6 not found", nil))

	r := newRouter(svc)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodDelete, "/movies/3/comments/5", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodDelete, "/movies/3/comments/6", "").Code)
}
