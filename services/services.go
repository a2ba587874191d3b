// Package services holds the song ranking, moderation and authentication logic.
package services

import (
	"context"

	"github.com/google/uuid"

	"songboard/models"
)

// SongStore is the persistence used by [Catalog] and [Moderation].
type SongStore interface {
	TopFive(ctx context.Context) ([]models.Song, error)
	Overflow(ctx context.Context, limit, offset int) ([]models.Song, int, error)
	Pending(ctx context.Context) ([]models.Song, error)
	Create(ctx context.Context, song models.Song) (models.Song, error)
	FindByID(ctx context.Context, id int64) (models.Song, error)
	Update(ctx context.Context, song models.Song) (models.Song, error)
	SetApproval(ctx context.Context, id int64, approved bool) (models.Song, error)
	IncrementViews(ctx context.Context, id int64) (models.Song, error)
	Delete(ctx context.Context, id int64) error
}

// UserStore is the persistence used by [Auth].
type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}
