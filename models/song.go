package models

import "time"

// TopFiveSize is the number of manually ranked slots.
const TopFiveSize = 5

// Song represents a row of the songs table.
type Song struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Artist      string    `json:"artist"`
	YoutubeURL  string    `json:"youtube_url"`
	Description *string   `json:"description"`
	Views       int64     `json:"views"`
	Position    *int      `json:"position"`
	IsApproved  bool      `json:"is_approved"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// InTopFive reports whether the song belongs to the curated ranking.
func (s Song) InTopFive() bool {
	return s.IsApproved && s.Position != nil
}

// InOverflow reports whether the song belongs to the view-ranked list.
func (s Song) InOverflow() bool {
	return s.IsApproved && s.Position == nil
}

// IsPending reports whether the song is still waiting for moderation.
func (s Song) IsPending() bool {
	return !s.IsApproved
}

// RankedBefore orders overflow songs: most viewed first, lower id first on ties.
func (s Song) RankedBefore(o Song) bool {
	if s.Views != o.Views {
		return s.Views > o.Views
	}
	return s.ID < o.ID
}
