package favourites

import (
	"context"
	"errors"

	"github.com/user/movielab-go/auth"
	"github.com/user/movielab-go/movies"
)

var (
	// ErrNotFound is returned when a user or an owned list does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateYear is returned by Insert when the user already has a list for the year.
	ErrDuplicateYear = errors.New("favourites for this year already exist")
)

// Store is the persistence the Manager needs. Every list lookup is filtered by
// owner; there is deliberately no lookup by list id alone.
type Store interface {
	FindUser(ctx context.Context, userID int) (*auth.User, error)
	// FindMoviesByIDs returns the movies that exist among ids, ordered by id.
	FindMoviesByIDs(ctx context.Context, ids []int) ([]movies.Movie, error)

	// ListByUser returns the user's lists with movies, newest year first.
	ListByUser(ctx context.Context, userID int) ([]Favourites, error)
	// FindByYear returns the user's list for year; with several, the lowest id wins.
	FindByYear(ctx context.Context, userID, year int) (*Favourites, error)
	// FindByID returns list id if userID owns it. Inside WithTx the row is locked.
	FindByID(ctx context.Context, userID, id int) (*Favourites, error)

	// Insert stores f and its movies and sets f.ID.
	Insert(ctx context.Context, f *Favourites) error
	// ReplaceMovies swaps the movie set of f for list.
	ReplaceMovies(ctx context.Context, f *Favourites, list []movies.Movie) error
	// Delete removes f, returning ErrNotFound if it is already gone.
	Delete(ctx context.Context, f *Favourites) error

	// WithTx runs fn against a Store bound to one transaction, committing when
	// fn returns nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(Store) error) error
}
