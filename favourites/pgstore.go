package favourites

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/movielab-go/auth"
	"github.com/user/movielab-go/movies"
)

const uniqueUserYearConstraint = "favourites_user_id_year_key"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgStore is the PostgreSQL Store.
type PgStore struct {
	pool *pgxpool.Pool
	q    querier
	inTx bool
}

var _ Store = (*PgStore)(nil)

// NewPgStore creates a Store backed by pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool, q: pool}
}

func (s *PgStore) FindUser(ctx context.Context, userID int) (*auth.User, error) {
	var u auth.User
	err := s.q.QueryRow(ctx,
		`SELECT id, username, email, created_at FROM users WHERE id = $1`, userID,
	).Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user %d: %w", userID, err)
	}
	return &u, nil
}

func (s *PgStore) FindMoviesByIDs(ctx context.Context, ids []int) ([]movies.Movie, error) {
	if len(ids) == 0 {
		return []movies.Movie{}, nil
	}
	rows, err := s.q.Query(ctx,
		`SELECT `+movies.Columns("")+` FROM movies WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("find movies: %w", err)
	}
	list, err := movies.CollectMovies(rows)
	if err != nil {
		return nil, fmt.Errorf("find movies: %w", err)
	}
	return list, nil
}

type favouriteMovieRow struct {
	FavouritesID int `db:"favourites_id"`
	movies.Movie
}

// moviesFor loads the movies of every list in ids, keyed by list id.
func (s *PgStore) moviesFor(ctx context.Context, ids []int) (map[int][]movies.Movie, error) {
	out := make(map[int][]movies.Movie, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := s.q.Query(ctx,
		`SELECT fm.favourites_id, `+movies.Columns("m")+`
		 FROM favourites_movies fm
		 JOIN movies m ON m.id = fm.movie_id
		 WHERE fm.favourites_id = ANY($1)
		 ORDER BY fm.favourites_id, m.id`, ids)
	if err != nil {
		return nil, fmt.Errorf("load favourites movies: %w", err)
	}
	joined, err := pgx.CollectRows(rows, pgx.RowToStructByName[favouriteMovieRow])
	if err != nil {
		return nil, fmt.Errorf("load favourites movies: %w", err)
	}

	for _, row := range joined {
		out[row.FavouritesID] = append(out[row.FavouritesID], row.Movie)
	}
	return out, nil
}

func (s *PgStore) ListByUser(ctx context.Context, userID int) ([]Favourites, error) {
	rows, err := s.q.Query(ctx,
		`SELECT id, user_id, year FROM favourites WHERE user_id = $1 ORDER BY year DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favourites: %w", err)
	}

	lists := []Favourites{}
	ids := []int{}
	for rows.Next() {
		var f Favourites
		if err := rows.Scan(&f.ID, &f.UserID, &f.Year); err != nil {
			rows.Close()
			return nil, fmt.Errorf("list favourites: %w", err)
		}
		lists = append(lists, f)
		ids = append(ids, f.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list favourites: %w", err)
	}

	byList, err := s.moviesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range lists {
		lists[i].Movies = byList[lists[i].ID]
	}
	return lists, nil
}

// findOne runs a single-list query, locking the row when inside a transaction.
func (s *PgStore) findOne(ctx context.Context, where string, args ...any) (*Favourites, error) {
	query := `SELECT id, user_id, year FROM favourites WHERE ` + where + ` ORDER BY id LIMIT 1`
	if s.inTx {
		query += ` FOR UPDATE`
	}

	var f Favourites
	if err := s.q.QueryRow(ctx, query, args...).Scan(&f.ID, &f.UserID, &f.Year); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find favourites: %w", err)
	}

	byList, err := s.moviesFor(ctx, []int{f.ID})
	if err != nil {
		return nil, err
	}
	f.Movies = byList[f.ID]
	return &f, nil
}

func (s *PgStore) FindByYear(ctx context.Context, userID, year int) (*Favourites, error) {
	return s.findOne(ctx, `user_id = $1 AND year = $2`, userID, year)
}

func (s *PgStore) FindByID(ctx context.Context, userID, id int) (*Favourites, error) {
	return s.findOne(ctx, `id = $1 AND user_id = $2`, id, userID)
}

func movieIDs(list []movies.Movie) []int {
	ids := make([]int, len(list))
	for i, m := range list {
		ids[i] = m.ID
	}
	return ids
}

func (s *PgStore) linkMovies(ctx context.Context, favouritesID int, list []movies.Movie) error {
	if len(list) == 0 {
		return nil
	}
	_, err := s.q.Exec(ctx,
		`INSERT INTO favourites_movies (favourites_id, movie_id)
		 SELECT $1, unnest($2::int[])
		 ON CONFLICT DO NOTHING`,
		favouritesID, movieIDs(list))
	if err != nil {
		return fmt.Errorf("link movies to favourites %d: %w", favouritesID, err)
	}
	return nil
}

func (s *PgStore) Insert(ctx context.Context, f *Favourites) error {
	err := s.q.QueryRow(ctx,
		`INSERT INTO favourites (user_id, year) VALUES ($1, $2) RETURNING id`,
		f.UserID, f.Year,
	).Scan(&f.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == auth.PgUniqueViolation && pgErr.ConstraintName == uniqueUserYearConstraint {
			return ErrDuplicateYear
		}
		return fmt.Errorf("insert favourites: %w", err)
	}
	return s.linkMovies(ctx, f.ID, f.Movies)
}

func (s *PgStore) ReplaceMovies(ctx context.Context, f *Favourites, list []movies.Movie) error {
	if _, err := s.q.Exec(ctx, `DELETE FROM favourites_movies WHERE favourites_id = $1`, f.ID); err != nil {
		return fmt.Errorf("clear favourites %d movies: %w", f.ID, err)
	}
	if err := s.linkMovies(ctx, f.ID, list); err != nil {
		return err
	}
	f.Movies = list
	return nil
}

func (s *PgStore) Delete(ctx context.Context, f *Favourites) error {
	tag, err := s.q.Exec(ctx, `DELETE FROM favourites WHERE id = $1 AND user_id = $2`, f.ID, f.UserID)
	if err != nil {
		return fmt.Errorf("delete favourites %d: %w", f.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// WithTx begins a transaction on the pool. Nested calls reuse the outer transaction.
func (s *PgStore) WithTx(ctx context.Context, fn func(Store) error) (err error) {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	return fn(&PgStore{pool: s.pool, q: tx, inTx: true})
}
