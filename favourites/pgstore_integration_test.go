//go:build integration

package favourites

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/movielab-go/apperror"
	"github.com/user/movielab-go/db/dbtest"
)

func seed(t *testing.T, pool *pgxpool.Pool) (aliceID, bobID int) {
	t.Helper()
	ctx := context.Background()
	dbtest.Truncate(t, pool)

	for _, name := range []string{"alice", "bob"} {
		var id int
		require.NoError(t, pool.QueryRow(ctx,
			`INSERT INTO users (username, email, password) VALUES ($1, $2, 'x') RETURNING id`,
			name, name+"@example.com").Scan(&id))
		if name == "alice" {
			aliceID = id
		} else {
			bobID = id
		}
	}
	for _, title := range []string{"Metropolis", "Nosferatu", "Sunrise"} {
		_, err := pool.Exec(ctx,
			`INSERT INTO movies (title, description, genre, duration_minutes, release_year, director, rating)
			 VALUES ($1, '', 'Drama', 100, 1927, 'unknown', 8)`, title)
		require.NoError(t, err)
	}
	return aliceID, bobID
}

func TestPgStore(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()

	t.Run("scenario", func(t *testing.T) {
		aliceID, bobID := seed(t, pool)
		m := NewManager(NewPgStore(pool))

		created, err := m.Create(ctx, aliceID, 2020, []int{1, 2, 99})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, movieIDsOf(created.Movies))
		assert.Equal(t, "Metropolis", created.Movies[0].Title)

		_, err = m.Create(ctx, aliceID, 2020, []int{3})
		assert.True(t, apperror.IsBadRequest(err))

		_, err = m.Update(ctx, bobID, created.ID, []int{3})
		assert.True(t, apperror.IsBadRequest(err))

		list, err := m.ListAll(ctx, aliceID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, []int{1, 2}, movieIDsOf(list[0].Movies))

		require.NoError(t, m.DeleteByYear(ctx, aliceID, 2020))
		list, err = m.ListAll(ctx, aliceID)
		require.NoError(t, err)
		assert.Empty(t, list)

		var movieCount int
		require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM movies`).Scan(&movieCount))
		assert.Equal(t, 3, movieCount)
	})

	t.Run("unique constraint", func(t *testing.T) {
		aliceID, _ := seed(t, pool)
		store := NewPgStore(pool)

		require.NoError(t, store.Insert(ctx, &Favourites{UserID: aliceID, Year: 2020}))
		err := store.Insert(ctx, &Favourites{UserID: aliceID, Year: 2020})
		assert.ErrorIs(t, err, ErrDuplicateYear)
	})

	t.Run("concurrent create", func(t *testing.T) {
		aliceID, _ := seed(t, pool)
		m := NewManager(NewPgStore(pool))

		var wg sync.WaitGroup
		errs := make([]error, 6)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = m.Create(ctx, aliceID, 2024, []int{1})
			}(i)
		}
		wg.Wait()

		ok := 0
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			assert.True(t, apperror.IsBadRequest(err), err.Error())
		}
		assert.Equal(t, 1, ok)

		var rows int
		require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM favourites WHERE user_id = $1`, aliceID).Scan(&rows))
		assert.Equal(t, 1, rows)
	})

	t.Run("rollback on failure", func(t *testing.T) {
		aliceID, _ := seed(t, pool)
		store := NewPgStore(pool)

		err := store.WithTx(ctx, func(tx Store) error {
			if err := tx.Insert(ctx, &Favourites{UserID: aliceID, Year: 2030}); err != nil {
				return err
			}
			return tx.Insert(ctx, &Favourites{UserID: aliceID, Year: 2030})
		})
		assert.ErrorIs(t, err, ErrDuplicateYear)

		_, err = store.FindByYear(ctx, aliceID, 2030)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("update to empty and delete ownership", func(t *testing.T) {
		aliceID, bobID := seed(t, pool)
		store := NewPgStore(pool)
		m := NewManager(store)

		created, err := m.Create(ctx, aliceID, 2021, []int{1, 3})
		require.NoError(t, err)

		updated, err := m.Update(ctx, aliceID, created.ID, []int{})
		require.NoError(t, err)
		assert.Empty(t, updated.Movies)

		assert.True(t, apperror.IsNotFound(m.DeleteByID(ctx, bobID, created.ID)))
		require.NoError(t, m.DeleteByID(ctx, aliceID, created.ID))
		assert.ErrorIs(t, store.Delete(ctx, &Favourites{ID: created.ID, UserID: aliceID}), ErrNotFound)
	})
}
