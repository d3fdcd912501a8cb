// Package comments manages the comments attached to movies. Every operation is
// scoped by movie id, so a comment can only be reached through the movie it
// belongs to.
package comments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/movielab-go/apperror"
	"github.com/user/movielab-go/logging"
)

// CommentService defines the comment operations used by the movie endpoints.
type CommentService interface {
	ListForMovie(ctx context.Context, movieID int) ([]Comment, error)
	AddComment(ctx context.Context, movieID int, req NewCommentRequest) (*Comment, error)
	UpdateComment(ctx context.Context, movieID, commentID int, req UpdateCommentRequest) error
	DeleteComment(ctx context.Context, movieID, commentID int) error
}

type commentServiceImpl struct {
	db *pgxpool.Pool
}

var _ CommentService = (*commentServiceImpl)(nil)

// NewCommentService creates a new CommentService.
func NewCommentService(db *pgxpool.Pool) CommentService {
	return &commentServiceImpl{db: db}
}

// ListForMovie returns the movie's comments in insertion order. It does not
// check that the movie exists; callers that care do that first.
func (s *commentServiceImpl) ListForMovie(ctx context.Context, movieID int) ([]Comment, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, movie_id, text, important FROM comments WHERE movie_id = $1 ORDER BY id`, movieID)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list comments", err)
	}

	list, err := pgx.CollectRows(rows, pgx.RowToStructByPos[Comment])
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to read comments", err)
	}
	return list, nil
}

// AddComment attaches a comment to an existing movie. The existence check and
// the insert are a single statement, so a concurrently deleted movie yields
// NotFound rather than a foreign key error.
func (s *commentServiceImpl) AddComment(ctx context.Context, movieID int, req NewCommentRequest) (*Comment, error) {
	if req.MovieID != nil && *req.MovieID != movieID {
		return nil, apperror.NewBadRequestError(
			fmt.Sprintf("movie_id %d in body does not match movie %d in path", *req.MovieID, movieID), nil)
	}

	c := Comment{MovieID: movieID, Text: req.Text, Important: req.Important}
	err := s.db.QueryRow(ctx,
		`INSERT INTO comments (movie_id, text, important)
		 SELECT m.id, $2, $3 FROM movies m WHERE m.id = $1
		 RETURNING id`,
		movieID, c.Text, c.Important,
	).Scan(&c.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("movie with ID %d not found", movieID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to add comment", err)
	}

	logging.Ctx(ctx).Debug().Int("movie_id", movieID).Int("comment_id", c.ID).Msg("Comment added")
	return &c, nil
}

// UpdateComment replaces text and importance of one comment of the movie.
func (s *commentServiceImpl) UpdateComment(ctx context.Context, movieID, commentID int, req UpdateCommentRequest) error {
	if req.ID != commentID {
		return apperror.NewBadRequestError(
			fmt.Sprintf("comment id %d in body does not match comment %d in path", req.ID, commentID), nil)
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE comments SET text = $1, important = $2 WHERE id = $3 AND movie_id = $4`,
		req.Text, req.Important, commentID, movieID)
	if err != nil {
		return apperror.NewDatabaseError("failed to update comment", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("comment with ID %d not found", commentID), nil)
	}
	return nil
}

// DeleteComment removes one comment of the movie.
func (s *commentServiceImpl) DeleteComment(ctx context.Context, movieID, commentID int) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM comments WHERE id = $1 AND movie_id = $2`, commentID, movieID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete comment", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("comment with ID %d not found", commentID), nil)
	}
	return nil
}
