// Package testutil contains in-memory test doubles for the stores used by services and handlers.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"songboard/models"
)

// SongStore is an in-memory [services.SongStore] following the same scopes as the SQL repository.
// Setting Err makes every call fail with it.
type SongStore struct {
	mu     sync.Mutex
	songs  map[int64]models.Song
	nextID int64
	Err    error
}

// NewSongStore returns a store holding songs. Songs without an id get one assigned.
func NewSongStore(songs ...models.Song) *SongStore {
	s := &SongStore{songs: map[int64]models.Song{}}
	for _, song := range songs {
		s.Put(song)
	}
	return s
}

// Put inserts or replaces song as is, bypassing validation, and returns it.
func (s *SongStore) Put(song models.Song) models.Song {
	s.mu.Lock()
	defer s.mu.Unlock()

	if song.ID == 0 {
		s.nextID++
		song.ID = s.nextID
	} else if song.ID > s.nextID {
		s.nextID = song.ID
	}
	s.songs[song.ID] = song
	return song
}

// Get returns the stored song without side effects.
func (s *SongStore) Get(id int64) (models.Song, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	song, ok := s.songs[id]
	return song, ok
}

func (s *SongStore) filter(keep func(models.Song) bool, less func(a, b models.Song) bool) []models.Song {
	out := []models.Song{}
	for _, song := range s.songs {
		if keep(song) {
			out = append(out, song)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byID(a, b models.Song) bool { return a.ID < b.ID }

func (s *SongStore) TopFive(ctx context.Context) ([]models.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return s.filter(models.Song.InTopFive, func(a, b models.Song) bool { return *a.Position < *b.Position }), nil
}

func (s *SongStore) Overflow(ctx context.Context, limit, offset int) ([]models.Song, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}

	all := s.filter(models.Song.InOverflow, models.Song.RankedBefore)
	if offset >= len(all) {
		return []models.Song{}, len(all), nil
	}
	end := min(offset+limit, len(all))
	return all[offset:end], len(all), nil
}

func (s *SongStore) Pending(ctx context.Context) ([]models.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return s.filter(models.Song.IsPending, byID), nil
}

func (s *SongStore) Create(ctx context.Context, song models.Song) (models.Song, error) {
	if s.Err != nil {
		return models.Song{}, s.Err
	}
	now := time.Now().UTC()
	song.ID, song.Views, song.CreatedAt, song.UpdatedAt = 0, 0, now, now
	return s.Put(song), nil
}

func (s *SongStore) FindByID(ctx context.Context, id int64) (models.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Song{}, s.Err
	}
	song, ok := s.songs[id]
	if !ok {
		return models.Song{}, models.ErrNotFound
	}
	return song, nil
}

func (s *SongStore) mutate(id int64, fn func(*models.Song) error) (models.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Song{}, s.Err
	}
	song, ok := s.songs[id]
	if !ok {
		return models.Song{}, models.ErrNotFound
	}
	if err := fn(&song); err != nil {
		return models.Song{}, err
	}
	song.UpdatedAt = time.Now().UTC()
	s.songs[id] = song
	return song, nil
}

// positionTaken reports whether another approved song holds position, like the partial unique index.
func (s *SongStore) positionTaken(id int64, position *int) bool {
	if position == nil {
		return false
	}
	for otherID, other := range s.songs {
		if otherID != id && other.IsApproved && other.Position != nil && *other.Position == *position {
			return true
		}
	}
	return false
}

// Update enforces the unique position index among approved songs like the database does.
func (s *SongStore) Update(ctx context.Context, in models.Song) (models.Song, error) {
	return s.mutate(in.ID, func(song *models.Song) error {
		if in.IsApproved && s.positionTaken(in.ID, in.Position) {
			return models.ErrPositionTaken
		}
		song.Title, song.Artist, song.YoutubeURL = in.Title, in.Artist, in.YoutubeURL
		song.Description, song.Position, song.IsApproved = in.Description, in.Position, in.IsApproved
		return nil
	})
}

func (s *SongStore) SetApproval(ctx context.Context, id int64, approved bool) (models.Song, error) {
	return s.mutate(id, func(song *models.Song) error {
		if approved && s.positionTaken(id, song.Position) {
			return models.ErrPositionTaken
		}
		song.IsApproved = approved
		return nil
	})
}

func (s *SongStore) IncrementViews(ctx context.Context, id int64) (models.Song, error) {
	return s.mutate(id, func(song *models.Song) error {
		song.Views++
		return nil
	})
}

func (s *SongStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.songs[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.songs, id)
	return nil
}

// UserStore is an in-memory [services.UserStore].
type UserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]models.User
}

// NewUserStore returns an empty user store.
func NewUserStore() *UserStore {
	return &UserStore{users: map[uuid.UUID]models.User{}}
}

func (s *UserStore) Create(ctx context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return models.User{}, models.ErrEmailTaken
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = user
	return user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, models.ErrNotFound
	}
	return u, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

func (s *UserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := s.FindByEmail(ctx, email)
	return err == nil, nil
}
