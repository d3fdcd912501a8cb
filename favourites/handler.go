package favourites

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/movielab-go/apperror"
	"github.com/user/movielab-go/auth"
)

// Service is the set of operations the HTTP layer needs. *Manager implements it.
type Service interface {
	ListAll(ctx context.Context, userID int) ([]FavouritesView, error)
	Create(ctx context.Context, userID, year int, movieIDs []int) (*FavouritesView, error)
	Update(ctx context.Context, userID, favouritesID int, movieIDs []int) (*FavouritesView, error)
	DeleteByID(ctx context.Context, userID, favouritesID int) error
	DeleteByYear(ctx context.Context, userID, year int) error
}

var _ Service = (*Manager)(nil)

// Handler serves /api/favourites.
type Handler struct {
	service Service
}

// NewHandler creates a Handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the favourites endpoints on r. r must already be
// behind auth.JWTMiddleware.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Put("/", h.update)
	r.Delete("/{id}", h.deleteByID)
	r.Delete("/year/{year}", h.deleteByYear)
}

func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.NewBadRequestError(fmt.Sprintf("invalid %s: %s", name, raw), nil)
	}
	return v, nil
}

// list godoc
// @Summary List favourites
// @Description Every favourites list of the authenticated user, newest year first.
// @Tags favourites
// @Produce json
// @Security BearerAuth
// @Success 200 {array} favourites.FavouritesView
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /api/favourites [get]
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	views, err := h.service.ListAll(r.Context(), userID)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, views)
}

// create godoc
// @Summary Create a favourites list
// @Description Creates the list for a year. Unknown movie ids are ignored; at least one must exist.
// @Tags favourites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body favourites.CreateFavouritesRequest true "Year and movie ids"
// @Success 200 {object} favourites.FavouritesView
// @Failure 400 {object} apperror.ErrorResponse "Year already taken, no known movies, or invalid body"
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Router /api/favourites [post]
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	var req CreateFavouritesRequest
	if err := auth.DecodeAndValidate(r, &req); err != nil {
		auth.WriteError(w, r, err)
		return
	}

	view, err := h.service.Create(r.Context(), userID, req.Year, req.MovieIDs)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, view)
}

// update godoc
// @Summary Replace the movies of a favourites list
// @Tags favourites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body favourites.UpdateFavouritesRequest true "List id and the new movie ids"
// @Success 200 {object} favourites.FavouritesView
// @Failure 400 {object} apperror.ErrorResponse "No such list for this user, or invalid body"
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Router /api/favourites [put]
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	var req UpdateFavouritesRequest
	if err := auth.DecodeAndValidate(r, &req); err != nil {
		auth.WriteError(w, r, err)
		return
	}

	view, err := h.service.Update(r.Context(), userID, req.ID, req.MovieIDs)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	auth.WriteJSON(w, http.StatusOK, view)
}

// deleteByID godoc
// @Summary Delete a favourites list by id
// @Tags favourites
// @Security BearerAuth
// @Param id path int true "Favourites ID"
// @Success 204
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/favourites/{id} [delete]
func (h *Handler) deleteByID(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	id, err := intParam(r, "id")
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	if err := h.service.DeleteByID(r.Context(), userID, id); err != nil {
		auth.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteByYear godoc
// @Summary Delete the favourites list of a year
// @Tags favourites
// @Security BearerAuth
// @Param year path int true "Year"
// @Success 204
// @Failure 404 {object} apperror.ErrorResponse
// @Router /api/favourites/year/{year} [delete]
func (h *Handler) deleteByYear(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	year, err := intParam(r, "year")
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	if err := h.service.DeleteByYear(r.Context(), userID, year); err != nil {
		auth.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
