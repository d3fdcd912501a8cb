package movies

import (
	"strings"
	"time"

	"github.com/user/movielab-go/comments"
)

// Movie is a catalog entry. The db tags are the column names of the movies table.
type Movie struct {
	ID              int       `db:"id"`
	Title           string    `db:"title"`
	Description     string    `db:"description"`
	Genre           string    `db:"genre"`
	DurationMinutes int       `db:"duration_minutes"`
	ReleaseYear     int       `db:"release_year"`
	Director        string    `db:"director"`
	AddedAt         time.Time `db:"added_at"`
	Rating          int       `db:"rating"`
	Watched         bool      `db:"watched"`
}

var columns = []string{
	"id", "title", "description", "genre", "duration_minutes",
	"release_year", "director", "added_at", "rating", "watched",
}

// Columns returns the movie select list, each column prefixed with alias when
// one is given. The order matches the fields of Movie.
func Columns(alias string) string {
	if alias == "" {
		return strings.Join(columns, ", ")
	}
	qualified := make([]string, len(columns))
	for i, c := range columns {
		qualified[i] = alias + "." + c
	}
	return strings.Join(qualified, ", ")
}

// MovieView is the client-facing shape of a Movie.
type MovieView struct {
	ID              int       `json:"id" example:"1"`
	Title           string    `json:"title" example:"Metropolis"`
	Description     string    `json:"description" example:"A futuristic city sharply divided between the working class and the city planners."`
	Genre           string    `json:"genre" example:"Sci-Fi"`
	DurationMinutes int       `json:"duration_minutes" example:"153"`
	ReleaseYear     int       `json:"release_year" example:"1927"`
	Director        string    `json:"director" example:"Fritz Lang"`
	AddedAt         time.Time `json:"added_at" example:"2021-08-10T00:00:00Z"`
	Rating          int       `json:"rating" example:"9"`
	Watched         bool      `json:"watched" example:"true"`
}

// ToView projects a Movie to its response shape.
func ToView(m Movie) MovieView {
	return MovieView{
		ID:              m.ID,
		Title:           m.Title,
		Description:     m.Description,
		Genre:           m.Genre,
		DurationMinutes: m.DurationMinutes,
		ReleaseYear:     m.ReleaseYear,
		Director:        m.Director,
		AddedAt:         m.AddedAt,
		Rating:          m.Rating,
		Watched:         m.Watched,
	}
}

// ToViews projects a slice of movies, never returning nil.
func ToViews(list []Movie) []MovieView {
	views := make([]MovieView, 0, len(list))
	for _, m := range list {
		views = append(views, ToView(m))
	}
	return views
}

// MovieWithCommentsView is returned by GET /api/movies/{id}/comments.
type MovieWithCommentsView struct {
	MovieView
	Comments []comments.Comment `json:"comments"`
}

// MovieRequest is the body of POST and PUT /api/movies. ID is only read on
// PUT, where it has to match the path. AddedAt defaults to now on create and
// is left unchanged on update when omitted.
type MovieRequest struct {
	ID              int        `json:"id" example:"5"`
	Title           string     `json:"title" validate:"required,max=255" example:"Metropolis"`
	Description     string     `json:"description" validate:"max=4000" example:"A futuristic city sharply divided between the working class and the city planners."`
	Genre           string     `json:"genre" validate:"max=64" example:"Sci-Fi"`
	DurationMinutes int        `json:"duration_minutes" validate:"gte=0" example:"153"`
	ReleaseYear     int        `json:"release_year" validate:"gte=1888,lte=2100" example:"1927"`
	Director        string     `json:"director" validate:"max=255" example:"Fritz Lang"`
	AddedAt         *time.Time `json:"added_at,omitempty" example:"2021-08-10T00:00:00Z"`
	Rating          int        `json:"rating" validate:"gte=1,lte=10" example:"9"`
	Watched         bool       `json:"watched" example:"true"`
}
