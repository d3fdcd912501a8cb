// Package users serves the authenticated caller's own profile.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/movielab-go/apperror"
	"github.com/user/movielab-go/auth"
)

// ProfileService is what the handlers need from the user store.
type ProfileService interface {
	GetUserProfile(ctx context.Context, userID int) (*UserProfileResponse, error)
	UpdateUserProfile(ctx context.Context, userID int, req *UpdateUserProfileRequest) (*UserProfileResponse, error)
}

// UserService provides methods for user profile management.
type UserService struct {
	db *pgxpool.Pool
}

var _ ProfileService = (*UserService)(nil)

// NewUserService creates a new UserService.
func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

// GetUserProfile retrieves a user's profile by their ID.
func (s *UserService) GetUserProfile(ctx context.Context, userID int) (*UserProfileResponse, error) {
	var p UserProfileResponse
	err := s.db.QueryRow(ctx,
		`SELECT u.id, u.username, u.email, u.created_at,
		        COALESCE(ARRAY(SELECT f.year FROM favourites f WHERE f.user_id = u.id ORDER BY f.year DESC), '{}')
		 FROM users u
		 WHERE u.id = $1`,
		userID,
	).Scan(&p.ID, &p.Username, &p.Email, &p.CreatedAt, &p.FavouriteYears)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", userID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user profile", err)
	}
	return &p, nil
}

// UpdateUserProfile changes the caller's email. The new address must not be
// used by another account.
func (s *UserService) UpdateUserProfile(ctx context.Context, userID int, req *UpdateUserProfileRequest) (*UserProfileResponse, error) {
	if req.Email == nil || strings.TrimSpace(*req.Email) == "" {
		return nil, apperror.NewBadRequestError("no fields provided for update", nil)
	}
	email := strings.ToLower(strings.TrimSpace(*req.Email))

	tag, err := s.db.Exec(ctx, `UPDATE users SET email = $1 WHERE id = $2`, email, userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == auth.PgUniqueViolation && strings.Contains(pgErr.ConstraintName, "email") {
			return nil, apperror.NewConflictError(fmt.Sprintf("email '%s' already exists", email), nil)
		}
		return nil, apperror.NewDatabaseError("failed to update user profile", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", userID), nil)
	}

	return s.GetUserProfile(ctx, userID)
}
