// Package movies is the movie catalog: listing by the date a movie was added,
// single lookups, and the authenticated create, update and delete operations.
// The comment endpoints nested under a movie are registered here as well.
package movies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/movielab-go/apperror"
	"github.com/user/movielab-go/logging"
)

// MovieService defines the catalog operations.
type MovieService interface {
	List(ctx context.Context, from, to time.Time) ([]Movie, error)
	Get(ctx context.Context, id int) (*Movie, error)
	Create(ctx context.Context, req MovieRequest) (*Movie, error)
	Update(ctx context.Context, id int, req MovieRequest) error
	Delete(ctx context.Context, id int) error
}

type movieServiceImpl struct {
	db  *pgxpool.Pool
	now func() time.Time
}

var _ MovieService = (*movieServiceImpl)(nil)

// NewMovieService creates a new MovieService.
func NewMovieService(db *pgxpool.Pool) MovieService {
	return &movieServiceImpl{db: db, now: time.Now}
}

// CollectMovies drains rows selected with Columns into a slice.
func CollectMovies(rows pgx.Rows) ([]Movie, error) {
	return pgx.CollectRows(rows, pgx.RowToStructByName[Movie])
}

// List returns movies added within [from, to], newest release year first.
func (s *movieServiceImpl) List(ctx context.Context, from, to time.Time) ([]Movie, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+Columns("")+` FROM movies
		 WHERE added_at >= $1 AND added_at <= $2
		 ORDER BY release_year DESC, id`,
		from, to)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list movies", err)
	}

	list, err := CollectMovies(rows)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to read movies", err)
	}
	return list, nil
}

// Get returns one movie or NotFound.
func (s *movieServiceImpl) Get(ctx context.Context, id int) (*Movie, error) {
	rows, err := s.db.Query(ctx, `SELECT `+Columns("")+` FROM movies WHERE id = $1`, id)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to get movie", err)
	}

	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Movie])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("movie with ID %d not found", id), nil)
		}
		return nil, apperror.NewDatabaseError("failed to read movie", err)
	}
	return &m, nil
}

// Create inserts a movie and returns it with its generated id.
func (s *movieServiceImpl) Create(ctx context.Context, req MovieRequest) (*Movie, error) {
	addedAt := s.now().UTC()
	if req.AddedAt != nil {
		addedAt = *req.AddedAt
	}

	rows, err := s.db.Query(ctx,
		`INSERT INTO movies (title, description, genre, duration_minutes, release_year, director, added_at, rating, watched)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+Columns(""),
		req.Title, req.Description, req.Genre, req.DurationMinutes, req.ReleaseYear,
		req.Director, addedAt, req.Rating, req.Watched)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create movie", err)
	}

	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Movie])
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create movie", err)
	}

	logging.Ctx(ctx).Info().Int("movie_id", m.ID).Str("title", m.Title).Msg("Movie created")
	return &m, nil
}

// Update overwrites every field of the movie. The body id must equal id.
func (s *movieServiceImpl) Update(ctx context.Context, id int, req MovieRequest) error {
	if req.ID != id {
		return apperror.NewBadRequestError(
			fmt.Sprintf("movie id %d in body does not match movie %d in path", req.ID, id), nil)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE movies
		 SET title = $1, description = $2, genre = $3, duration_minutes = $4, release_year = $5,
		     director = $6, added_at = COALESCE($7, added_at), rating = $8, watched = $9
		 WHERE id = $10`,
		req.Title, req.Description, req.Genre, req.DurationMinutes, req.ReleaseYear,
		req.Director, req.AddedAt, req.Rating, req.Watched, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to update movie", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("movie with ID %d not found", id), nil)
	}
	return nil
}

// Delete removes the movie. Its comments and favourites memberships go with it.
func (s *movieServiceImpl) Delete(ctx context.Context, id int) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete movie", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("movie with ID %d not found", id), nil)
	}
	return nil
}
