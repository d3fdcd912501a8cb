package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/movielab-go/auth"
)

// UserHandlers provides HTTP handlers for user profile management.
type UserHandlers struct {
	service ProfileService
}

// NewUserHandlers creates new UserHandlers.
func NewUserHandlers(service ProfileService) *UserHandlers {
	return &UserHandlers{service: service}
}

// RegisterRoutes mounts /me on r. r must already be behind auth.JWTMiddleware.
func (h *UserHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.HandleGetUserProfile())
	r.Put("/me", h.HandleUpdateUserProfile())
}

// HandleGetUserProfile godoc
// @Summary Get current user's profile
// @Description Retrieves the profile of the authenticated user, including the years they keep favourites for.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserProfileResponse "Successfully retrieved user profile"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - User not found"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /users/me [get]
func (h *UserHandlers) HandleGetUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.RequireUserID(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		profile, err := h.service.GetUserProfile(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, profile)
	}
}

// HandleUpdateUserProfile godoc
// @Summary Update current user's profile
// @Description Updates the email of the authenticated user.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userProfile body UpdateUserProfileRequest true "User profile data to update"
// @Success 200 {object} UserProfileResponse "Successfully updated user profile"
// @Failure 400 {object} apperror.ErrorResponse "Bad Request - Invalid input data"
// @Failure 401 {object} apperror.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 404 {object} apperror.ErrorResponse "Not Found - User not found"
// @Failure 409 {object} apperror.ErrorResponse "Conflict - email already exists"
// @Failure 500 {object} apperror.ErrorResponse "Internal Server Error"
// @Router /users/me [put]
func (h *UserHandlers) HandleUpdateUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.RequireUserID(r.Context())
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		var req UpdateUserProfileRequest
		if err := auth.DecodeAndValidate(r, &req); err != nil {
			auth.WriteError(w, r, err)
			return
		}

		updated, err := h.service.UpdateUserProfile(r.Context(), userID, &req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		auth.WriteJSON(w, http.StatusOK, updated)
	}
}
