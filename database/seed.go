package database

import (
	"context"
	"database/sql"
	"fmt"
)

type seedSong struct {
	title, artist, description string
	views                      int64
	position                   *int
	approved                   bool
}

const seedURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func rank(p int) *int { return &p }

var seedSongs = []seedSong{
	{"Pagode Russo", "Tião Carreiro e Pardinho", "One of the duo's best known songs", 1500000, rank(1), true},
	{"Rei do Gado", "Tião Carreiro e Pardinho", "A classic of sertanejo raiz", 1200000, rank(2), true},
	{"Boi Soberano", "Tião Carreiro e Pardinho", "A song that marked generations", 1000000, rank(3), true},
	{"Fogo de Palha", "Tião Carreiro e Pardinho", "A hit across decades", 900000, rank(4), true},
	{"Casa de Caboclo", "Tião Carreiro e Pardinho", "Rural culture in a song", 800000, rank(5), true},
	{"Boiadeiro Errante", "Tião Carreiro e Pardinho", "The life of a drover", 700000, nil, true},
	{"Saudade de Minha Terra", "Tião Carreiro e Pardinho", "Longing for the homeland", 600000, nil, true},
	{"Vida de Vaqueiro", "Tião Carreiro e Pardinho", "A tribute to cowboys", 500000, nil, true},
	{"Pending Suggestion 1", "Test Visitor", "Waiting for moderation", 0, nil, false},
	{"Pending Suggestion 2", "Test Visitor", "Also waiting for moderation", 0, nil, false},
}

// Seed fills an empty songs table with a ranked top five, an overflow list and two pending suggestions.
// It returns the number of inserted rows and does nothing when songs already exist.
func Seed(ctx context.Context, db *sql.DB) (int, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM songs`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count songs: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin seed: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO songs (title, artist, youtube_url, description, views, position, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, s := range seedSongs {
		if _, err := tx.ExecContext(ctx, query, s.title, s.artist, seedURL, s.description, s.views, s.position, s.approved); err != nil {
			return 0, fmt.Errorf("failed to seed %q: %w", s.title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}
	return len(seedSongs), nil
}
