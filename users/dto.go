package users

import "time"

// UserProfileResponse represents the data returned for a user profile.
// @Description User profile information
type UserProfileResponse struct {
	ID        int       `json:"id" example:"1"`
	Username  string    `json:"username" example:"alice"`
	Email     string    `json:"email" example:"alice@example.com"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	// Years the user keeps a favourites list for, newest first.
	FavouriteYears []int `json:"favourite_years" example:"2021,2020"`
}

// UpdateUserProfileRequest represents the data for updating a user profile.
// @Description Request body for updating user profile
type UpdateUserProfileRequest struct {
	Email *string `json:"email,omitempty" validate:"required,email" example:"alice.new@example.com"`
}
