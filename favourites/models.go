package favourites

import (
	"github.com/user/movielab-go/auth"
	"github.com/user/movielab-go/movies"
)

// Favourites is one user's list of favourite movies for a calendar year.
// A user has at most one list per year. Movies are referenced, not owned.
type Favourites struct {
	ID     int
	UserID int
	Year   int
	Movies []movies.Movie
}

// CreateFavouritesRequest is the body of POST /api/favourites.
type CreateFavouritesRequest struct {
	Year     int   `json:"year" validate:"gte=1888,lte=9999" example:"2020"`
	MovieIDs []int `json:"movie_ids" validate:"required,min=1,dive,gt=0" example:"1,2,99"`
}

// UpdateFavouritesRequest is the body of PUT /api/favourites. The movie set of
// list ID is replaced with MovieIDs; an empty set is allowed.
type UpdateFavouritesRequest struct {
	ID       int   `json:"id" validate:"required,gt=0" example:"7"`
	MovieIDs []int `json:"movie_ids" validate:"dive,gt=0" example:"1,3"`
}

// UserView is the owner as shown inside a favourites list.
type UserView struct {
	ID       int    `json:"id" example:"1"`
	Username string `json:"username" example:"alice"`
}

// FavouritesView is the client-facing shape of a Favourites list.
type FavouritesView struct {
	ID     int                `json:"id" example:"7"`
	User   UserView           `json:"user"`
	Movies []movies.MovieView `json:"movies"`
	Year   int                `json:"year" example:"2020"`
}

// Project converts a list and its owner into the response shape.
func Project(f Favourites, owner auth.User) FavouritesView {
	return FavouritesView{
		ID:     f.ID,
		User:   UserView{ID: owner.ID, Username: owner.Username},
		Movies: movies.ToViews(f.Movies),
		Year:   f.Year,
	}
}
