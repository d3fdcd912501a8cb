package movies

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/user/movielab-go/apperror"
	"github.com/user/movielab-go/auth"
	"github.com/user/movielab-go/comments"
)

// MovieHandler handles HTTP requests under /api/movies.
type MovieHandler struct {
	service  MovieService
	comments comments.CommentService
	now      func() time.Time
}

// NewMovieHandler creates a new MovieHandler.
func NewMovieHandler(service MovieService, commentService comments.CommentService) *MovieHandler {
	return &MovieHandler{service: service, comments: commentService, now: time.Now}
}

// RegisterRoutes registers the movie routes on r. Reads are public; writes,
// including the comment writes, go through requireAuth.
func (h *MovieHandler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.Get("/filter/{startDate}_{endDate}", h.filter)
	r.Get("/{id}", h.get)
	r.Get("/{id}/comments", h.getWithComments)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		comments.NewCommentHandler(h.comments).RegisterRoutes(r)
	})
}

func movieID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperror.NewBadRequestError(fmt.Sprintf("invalid movie id: %s", raw), nil)
	}
	return id, nil
}

// list godoc
// @Summary List movies
// @Description Movies added between startDate and endDate, ordered by release year descending. startDate defaults to 1888-01-01 and endDate to now.
// @Tags movies
// @Produce json
// @Param startDate query string false "Lower bound on added_at (e.g. 1997-12-31T23:59:00)"
// @Param endDate query string false "Upper bound on added_at (e.g. 2002-01-01)"
// @Success 200 {array} movies.MovieView
// @Failure 400 {object} apperror.ErrorResponse "Unparseable date"
// @Router /api/movies [get]
func (h *MovieHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.writeRange(w, r, q.Get("startDate"), q.Get("endDate"))
}

// filter godoc
// @Summary Filter movies by added date
// @Description Same as the listing but both bounds are part of the path.
// @Tags movies
// @Produce json
// @Param startDate path string true "Lower bound on added_at"
// @Param endDate path string true "Upper bound on added_at"
// @Success 200 {array} movies.MovieView
// @Failure 400 {object} apperror.ErrorResponse "Unparseable date"
// @Router /api/movies/filter/{startDate}_{endDate} [get]
func (h *MovieHandler) filter(w http.ResponseWriter, r *http.Request) {
	start, end := chi.URLParam(r, "startDate"), chi.URLParam(r, "endDate")
	if start == "" || end == "" {
		auth.WriteError(w, r, apperror.NewBadRequestError("both startDate and endDate are required", nil))
		return
	}
	h.writeRange(w, r, start, end)
}

func (h *MovieHandler) writeRange(w http.ResponseWriter, r *http.Request, start, end string) {
	from, to, err := DateRange(start, end, h.now())
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	list, err := h.service.List(r.Context(), from, to)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, ToViews(list))
}

// get godoc
// @Summary Get a movie
// @Tags movies
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} movies.MovieView
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/movies/{id} [get]
func (h *MovieHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	m, err := h.service.Get(r.Context(), id)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, ToView(*m))
}

// getWithComments godoc
// @Summary Get a movie with its comments
// @Tags movies
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} movies.MovieWithCommentsView
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/movies/{id}/comments [get]
func (h *MovieHandler) getWithComments(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	m, err := h.service.Get(r.Context(), id)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	list, err := h.comments.ListForMovie(r.Context(), id)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	if list == nil {
		list = []comments.Comment{}
	}

	auth.WriteJSON(w, http.StatusOK, MovieWithCommentsView{MovieView: ToView(*m), Comments: list})
}

// create godoc
// @Summary Create a movie
// @Tags movies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param movie body movies.MovieRequest true "Movie"
// @Success 201 {object} movies.MovieView
// @Failure 400 {object} apperror.ErrorResponse "Invalid body or rating outside 1..10"
// @Failure 401 {object} apperror.ErrorResponse
// @Router /api/movies [post]
func (h *MovieHandler) create(w http.ResponseWriter, r *http.Request) {
	var req MovieRequest
	if err := auth.DecodeAndValidate(r, &req); err != nil {
		auth.WriteError(w, r, err)
		return
	}

	m, err := h.service.Create(r.Context(), req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/movies/%d", m.ID))
	auth.WriteJSON(w, http.StatusCreated, ToView(*m))
}

// update godoc
// @Summary Update a movie
// @Tags movies
// @Accept json
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Param movie body movies.MovieRequest true "Movie, id must match the path"
// @Success 204
// @Failure 400 {object} apperror.ErrorResponse "Body id does not match path, or invalid body"
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/movies/{id} [put]
func (h *MovieHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	var req MovieRequest
	if err := auth.DecodeAndValidate(r, &req); err != nil {
		auth.WriteError(w, r, err)
		return
	}

	if err := h.service.Update(r.Context(), id, req); err != nil {
		auth.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// delete godoc
// @Summary Delete a movie
// @Tags movies
// @Security BearerAuth
// @Param id path int true "Movie ID"
// @Success 204
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/movies/{id} [delete]
func (h *MovieHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		auth.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
