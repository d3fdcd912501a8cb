package comments

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/movielab-go/apperror"
	"github.com/user/movielab-go/auth"
)

// CommentHandler serves the comment endpoints nested under a movie. Its routes
// are registered on the movies router, so every route reads the movie id from
// the "id" URL parameter.
type CommentHandler struct {
	service CommentService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(service CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// RegisterRoutes registers the write routes on a movies router. The caller
// applies authentication.
func (h *CommentHandler) RegisterRoutes(router chi.Router) {
	router.Post("/{id}/comments", h.addComment)
	router.Put("/{id}/comments/{commentId}", h.updateComment)
	router.Delete("/{id}/comments/{commentId}", h.deleteComment)
}

func intParam(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || v <= 0 {
		return 0, apperror.NewBadRequestError("invalid "+name+": "+chi.URLParam(r, name), nil)
	}
	return v, nil
}

// addComment godoc
// @Summary Add a comment to a movie
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Param comment body comments.NewCommentRequest true "Comment"
// @Success 200 {object} comments.Comment
// @Failure 400 {object} apperror.ErrorResponse "Text shorter than 10 characters or movie_id mismatch"
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse "Movie not found"
// @Router /api/movies/{id}/comments [post]
func (h *CommentHandler) addComment(w http.ResponseWriter, r *http.Request) {
	movieID, err := intParam(r, "id")
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	var req NewCommentRequest
	if err := auth.DecodeAndValidate(r, &req); err != nil {
		auth.WriteError(w, r, err)
		return
	}

	comment, err := h.service.AddComment(r.Context(), movieID, req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, comment)
}

// updateComment godoc
// @Summary Update a movie comment
// @Tags comments
// @Accept json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Param commentId path int true "Comment ID"
// @Param comment body comments.UpdateCommentRequest true "Comment"
// @Success 204
// @Failure 400 {object} apperror.ErrorResponse "Body id does not match path"
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/movies/{id}/comments/{commentId} [put]
func (h *CommentHandler) updateComment(w http.ResponseWriter, r *http.Request) {
	movieID, err := intParam(r, "id")
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	commentID, err := intParam(r, "commentId")
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	var req UpdateCommentRequest
	if err := auth.DecodeAndValidate(r, &req); err != nil {
		auth.WriteError(w, r, err)
		return
	}

	if err := h.service.UpdateComment(r.Context(), movieID, commentID, req); err != nil {
		auth.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteComment godoc
// @Summary Delete a movie comment
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Param commentId path int true "Comment ID"
// @Success 204
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/movies/{id}/comments/{commentId} [delete]
func (h *CommentHandler) deleteComment(w http.ResponseWriter, r *http.Request) {
	movieID, err := intParam(r, "id")
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	commentID, err := intParam(r, "commentId")
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	if err := h.service.DeleteComment(r.Context(), movieID, commentID); err != nil {
		auth.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
