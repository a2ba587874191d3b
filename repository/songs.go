package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"songboard/models"
)

// Query scopes. Top five and overflow split approved songs on a single predicate over position,
// so no row can satisfy both.
const (
	scopeApproved = `is_approved = true`
	scopeTopFive  = scopeApproved + ` AND position IS NOT NULL`
	scopeOverflow = scopeApproved + ` AND position IS NULL`
	scopePending  = `is_approved = false`

	songColumns = `id, title, artist, youtube_url, description, views, position, is_approved, created_at, updated_at`

	positionConstraint = "songs_position_unique"
)

// SongRepository reads and writes the songs table.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a [SongRepository] on db.
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

func scanSong(row scanner) (models.Song, error) {
	var s models.Song
	err := row.Scan(&s.ID, &s.Title, &s.Artist, &s.YoutubeURL, &s.Description,
		&s.Views, &s.Position, &s.IsApproved, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *SongRepository) list(ctx context.Context, query string, args ...any) ([]models.Song, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	songs := []models.Song{}
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// one runs a statement returning a single song row and maps a missing row to [models.ErrNotFound].
func (r *SongRepository) one(ctx context.Context, query string, args ...any) (models.Song, error) {
	song, err := scanSong(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Song{}, models.ErrNotFound
	}
	if name, ok := uniqueConstraint(err); ok && name == positionConstraint {
		return models.Song{}, models.ErrPositionTaken
	}
	return song, err
}

// TopFive returns approved songs holding a position, lowest position first.
func (r *SongRepository) TopFive(ctx context.Context) ([]models.Song, error) {
	songs, err := r.list(ctx, `SELECT `+songColumns+` FROM songs WHERE `+scopeTopFive+` ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list top five: %w", err)
	}
	return songs, nil
}

// Overflow returns one window of approved, unpositioned songs ordered by views, and the size of the whole set.
func (r *SongRepository) Overflow(ctx context.Context, limit, offset int) ([]models.Song, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM songs WHERE `+scopeOverflow).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count songs: %w", err)
	}

	query := `SELECT ` + songColumns + ` FROM songs WHERE ` + scopeOverflow +
		` ORDER BY views DESC, id ASC LIMIT $1 OFFSET $2`
	songs, err := r.list(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list songs: %w", err)
	}
	return songs, total, nil
}

// Pending returns unapproved songs in insertion order.
func (r *SongRepository) Pending(ctx context.Context) ([]models.Song, error) {
	songs, err := r.list(ctx, `SELECT `+songColumns+` FROM songs WHERE `+scopePending+` ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending songs: %w", err)
	}
	return songs, nil
}

// Create inserts song and returns the stored row.
func (r *SongRepository) Create(ctx context.Context, song models.Song) (models.Song, error) {
	query := `INSERT INTO songs (title, artist, youtube_url, description, position, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING ` + songColumns
	created, err := r.one(ctx, query, song.Title, song.Artist, song.YoutubeURL, song.Description, song.Position, song.IsApproved)
	if err != nil {
		return models.Song{}, fmt.Errorf("failed to create song: %w", err)
	}
	return created, nil
}

// FindByID returns the song with id.
func (r *SongRepository) FindByID(ctx context.Context, id int64) (models.Song, error) {
	song, err := r.one(ctx, `SELECT `+songColumns+` FROM songs WHERE id = $1`, id)
	if err != nil {
		return models.Song{}, fmt.Errorf("failed to find song %d: %w", id, err)
	}
	return song, nil
}

// Update writes the editable columns of song. Views are never written here.
func (r *SongRepository) Update(ctx context.Context, song models.Song) (models.Song, error) {
	query := `UPDATE songs SET title = $2, artist = $3, youtube_url = $4, description = $5, position = $6,
		is_approved = $7, updated_at = now() WHERE id = $1 RETURNING ` + songColumns
	updated, err := r.one(ctx, query, song.ID, song.Title, song.Artist, song.YoutubeURL,
		song.Description, song.Position, song.IsApproved)
	if err != nil {
		return models.Song{}, fmt.Errorf("failed to update song %d: %w", song.ID, err)
	}
	return updated, nil
}

// SetApproval sets is_approved and leaves the position untouched.
func (r *SongRepository) SetApproval(ctx context.Context, id int64, approved bool) (models.Song, error) {
	query := `UPDATE songs SET is_approved = $2, updated_at = now() WHERE id = $1 RETURNING ` + songColumns
	song, err := r.one(ctx, query, id, approved)
	if err != nil {
		return models.Song{}, fmt.Errorf("failed to set approval of song %d: %w", id, err)
	}
	return song, nil
}

// IncrementViews adds one view in a single statement and returns the updated row.
func (r *SongRepository) IncrementViews(ctx context.Context, id int64) (models.Song, error) {
	query := `UPDATE songs SET views = views + 1, updated_at = now() WHERE id = $1 RETURNING ` + songColumns
	song, err := r.one(ctx, query, id)
	if err != nil {
		return models.Song{}, fmt.Errorf("failed to record view of song %d: %w", id, err)
	}
	return song, nil
}

// Delete removes the song permanently.
func (r *SongRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete song %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete song %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to delete song %d: %w", id, models.ErrNotFound)
	}
	return nil
}
