package favourites

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/user/movielab-go/auth"
	"github.com/user/movielab-go/movies"
)

// memStore is an in-memory Store. Insert enforces one list per (user, year)
// like the unique constraint in the schema, and WithTx serialises
// transactions and restores a snapshot on error.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users  map[int]auth.User
	movies map[int]movies.Movie
	lists  map[int]Favourites
	nextID int

	// staleYearReads makes FindByYear miss, as if another request inserted
	// the same year between our check and our insert.
	staleYearReads bool
	// failList is returned by ListByUser when set.
	failList error
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		users:  map[int]auth.User{},
		movies: map[int]movies.Movie{},
		lists:  map[int]Favourites{},
		nextID: 1,
	}
}

func (s *memStore) addUser(id int, username string) {
	s.users[id] = auth.User{ID: id, Username: username, Email: username + "@example.com", CreatedAt: time.Now()}
}

func (s *memStore) addMovie(id int, title string) {
	s.movies[id] = movies.Movie{ID: id, Title: title, Rating: 7, ReleaseYear: 2000, AddedAt: time.Now()}
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lists)
}

func (s *memStore) get(id int) (Favourites, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.lists[id]
	return f, ok
}

func (s *memStore) FindUser(_ context.Context, userID int) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *memStore) FindMoviesByIDs(_ context.Context, ids []int) ([]movies.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []movies.Movie{}
	for _, id := range ids {
		if m, ok := s.movies[id]; ok && !slices.ContainsFunc(out, func(o movies.Movie) bool { return o.ID == id }) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) ListByUser(_ context.Context, userID int) ([]Favourites, error) {
	if s.failList != nil {
		return nil, s.failList
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Favourites{}
	for _, f := range s.lists {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *memStore) find(match func(Favourites) bool) (*Favourites, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *Favourites
	for _, f := range s.lists {
		if match(f) && (found == nil || f.ID < found.ID) {
			found = &f
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (s *memStore) FindByYear(_ context.Context, userID, year int) (*Favourites, error) {
	if s.staleYearReads {
		return nil, ErrNotFound
	}
	return s.find(func(f Favourites) bool { return f.UserID == userID && f.Year == year })
}

func (s *memStore) FindByID(_ context.Context, userID, id int) (*Favourites, error) {
	return s.find(func(f Favourites) bool { return f.ID == id && f.UserID == userID })
}

func (s *memStore) Insert(_ context.Context, f *Favourites) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.lists {
		if existing.UserID == f.UserID && existing.Year == f.Year {
			return ErrDuplicateYear
		}
	}
	f.ID = s.nextID
	s.nextID++
	s.lists[f.ID] = *f
	return nil
}

func (s *memStore) ReplaceMovies(_ context.Context, f *Favourites, list []movies.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.lists[f.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Movies = list
	s.lists[f.ID] = stored
	f.Movies = list
	return nil
}

func (s *memStore) Delete(_ context.Context, f *Favourites) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.lists[f.ID]
	if !ok || stored.UserID != f.UserID {
		return ErrNotFound
	}
	delete(s.lists, f.ID)
	return nil
}

func (s *memStore) WithTx(_ context.Context, fn func(Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot, next := maps.Clone(s.lists), s.nextID
	s.mu.Unlock()

	err := fn(s)
	if err != nil {
		s.mu.Lock()
		s.lists, s.nextID = snapshot, next
		s.mu.Unlock()
	}
	return err
}

var errBoom = errors.New("connection reset by peer")
