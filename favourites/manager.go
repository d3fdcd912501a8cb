// Package favourites manages per-user, per-year lists of favourite movies.
//
// Files:
//   - manager.go: the business rules (ownership, one list per year, movie resolution)
//   - store.go / pgstore.go: the persistence port and its PostgreSQL implementation
//   - models.go: entity, request bodies and the response projection
//   - handler.go: the /api/favourites HTTP endpoints
//
// Every operation takes the caller's user id explicitly. Lists belonging to
// someone else are indistinguishable from lists that do not exist.
package favourites

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/user/movielab-go/apperror"
	"github.com/user/movielab-go/auth"
	"github.com/user/movielab-go/logging"
	"github.com/user/movielab-go/metrics"
)

// Operation names used for metrics and logs.
const (
	opList         = "list"
	opCreate       = "create"
	opUpdate       = "update"
	opDeleteByID   = "delete_by_id"
	opDeleteByYear = "delete_by_year"
)

// Manager implements the favourites operations on top of a Store.
type Manager struct {
	store Store
}

// NewManager creates a Manager.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// ListAll returns every list owned by userID, newest year first.
func (m *Manager) ListAll(ctx context.Context, userID int) ([]FavouritesView, error) {
	owner, err := m.findUser(ctx, userID)
	if err != nil {
		return nil, m.fail(ctx, opList, userID, err)
	}

	lists, err := m.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, m.fail(ctx, opList, userID, err)
	}

	views := make([]FavouritesView, 0, len(lists))
	for _, f := range lists {
		views = append(views, Project(f, *owner))
	}
	metrics.RecordFavouritesOperation(opList, metrics.OutcomeSuccess)
	return views, nil
}

// Create stores a new list for (userID, year). Unknown movie ids are dropped;
// the request fails if none remain or if the year is already taken.
func (m *Manager) Create(ctx context.Context, userID, year int, movieIDs []int) (*FavouritesView, error) {
	owner, err := m.findUser(ctx, userID)
	if err != nil {
		return nil, m.fail(ctx, opCreate, userID, err)
	}

	created := &Favourites{UserID: userID, Year: year}
	err = m.store.WithTx(ctx, func(tx Store) error {
		if _, err := tx.FindByYear(ctx, userID, year); err == nil {
			return duplicateYear(year)
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}

		resolved, err := tx.FindMoviesByIDs(ctx, dedupe(movieIDs))
		if err != nil {
			return err
		}
		if len(resolved) == 0 {
			return apperror.NewBadRequestError("none of the given movie ids exist", nil)
		}
		created.Movies = resolved

		if err := tx.Insert(ctx, created); err != nil {
			if errors.Is(err, ErrDuplicateYear) {
				// lost a race with a concurrent create for the same year
				return duplicateYear(year)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, m.fail(ctx, opCreate, userID, err)
	}

	logging.Ctx(ctx).Info().
		Int("user_id", userID).
		Int("favourites_id", created.ID).
		Int("year", year).
		Int("movies", len(created.Movies)).
		Msg("Favourites created")
	metrics.RecordFavouritesOperation(opCreate, metrics.OutcomeSuccess)

	view := Project(*created, *owner)
	return &view, nil
}

// Update replaces the movie set of list favouritesID owned by userID. A list
// that is missing or owned by someone else is a bad request here, unlike the
// deletes which report it as not found. An empty resolved set is accepted.
func (m *Manager) Update(ctx context.Context, userID, favouritesID int, movieIDs []int) (*FavouritesView, error) {
	owner, err := m.findUser(ctx, userID)
	if err != nil {
		return nil, m.fail(ctx, opUpdate, userID, err)
	}

	var updated *Favourites
	err = m.store.WithTx(ctx, func(tx Store) error {
		f, err := tx.FindByID(ctx, userID, favouritesID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return apperror.NewBadRequestError(fmt.Sprintf("favourites with ID %d not found", favouritesID), nil)
			}
			return err
		}

		resolved, err := tx.FindMoviesByIDs(ctx, dedupe(movieIDs))
		if err != nil {
			return err
		}
		if err := tx.ReplaceMovies(ctx, f, resolved); err != nil {
			return err
		}
		updated = f
		return nil
	})
	if err != nil {
		return nil, m.fail(ctx, opUpdate, userID, err)
	}

	metrics.RecordFavouritesOperation(opUpdate, metrics.OutcomeSuccess)
	view := Project(*updated, *owner)
	return &view, nil
}

// DeleteByID removes list favouritesID if userID owns it.
func (m *Manager) DeleteByID(ctx context.Context, userID, favouritesID int) error {
	f, err := m.store.FindByID(ctx, userID, favouritesID)
	if err == nil {
		err = m.store.Delete(ctx, f)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = apperror.NewNotFoundError(fmt.Sprintf("favourites with ID %d not found", favouritesID), nil)
		}
		return m.fail(ctx, opDeleteByID, userID, err)
	}

	metrics.RecordFavouritesOperation(opDeleteByID, metrics.OutcomeSuccess)
	return nil
}

// DeleteByYear removes userID's list for year.
func (m *Manager) DeleteByYear(ctx context.Context, userID, year int) error {
	f, err := m.store.FindByYear(ctx, userID, year)
	if err == nil {
		err = m.store.Delete(ctx, f)
	}
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = apperror.NewNotFoundError(fmt.Sprintf("favourites for year %d not found", year), nil)
		}
		return m.fail(ctx, opDeleteByYear, userID, err)
	}

	metrics.RecordFavouritesOperation(opDeleteByYear, metrics.OutcomeSuccess)
	return nil
}

func (m *Manager) findUser(ctx context.Context, userID int) (*auth.User, error) {
	u, err := m.store.FindUser(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", userID), nil)
	}
	return u, err
}

// fail records the outcome of a failed operation and turns anything that is
// not already an *apperror.AppError into a logged DatabaseError.
func (m *Manager) fail(ctx context.Context, op string, userID int, err error) error {
	appErr, ok := apperror.FromError(err)
	if !ok {
		logging.Ctx(ctx).Error().Err(err).Str("operation", op).Int("user_id", userID).Msg("Favourites storage failure")
		metrics.RecordFavouritesOperation(op, metrics.OutcomeError)
		return apperror.NewDatabaseError("failed to "+opVerb(op)+" favourites", err)
	}

	switch {
	case apperror.IsNotFound(appErr):
		metrics.RecordFavouritesOperation(op, metrics.OutcomeNotFound)
	case appErr.StatusCode() < 500:
		metrics.RecordFavouritesOperation(op, metrics.OutcomeRejected)
	default:
		metrics.RecordFavouritesOperation(op, metrics.OutcomeError)
	}
	return appErr
}

func opVerb(op string) string {
	switch op {
	case opDeleteByID, opDeleteByYear:
		return "delete"
	default:
		return op
	}
}

func duplicateYear(year int) error {
	return apperror.NewBadRequestError(fmt.Sprintf("favourites for year %d already exist", year), nil)
}

// dedupe returns ids without repeats, keeping first-seen order.
func dedupe(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
