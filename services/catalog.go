package services

import (
	"context"

	"github.com/charmbracelet/log"

	"songboard/models"
)

// DefaultPerPage is the overflow page size used when none is configured.
const DefaultPerPage = 10

// Listing is the public song board: the curated ranking and one page of the rest.
type Listing struct {
	TopFive   []models.Song            `json:"top_five"`
	Paginated models.Page[models.Song] `json:"paginated"`
}

// Catalog computes the display partitions of the song set. It never mutates songs.
type Catalog struct {
	songs   SongStore
	perPage int
	logger  *log.Logger
}

// NewCatalog creates a [Catalog]. A non-positive perPage falls back to [DefaultPerPage].
func NewCatalog(songs SongStore, perPage int, logger *log.Logger) *Catalog {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &Catalog{songs: songs, perPage: perPage, logger: logger}
}

// PerPage returns the configured overflow page size.
func (c *Catalog) PerPage() int {
	return c.perPage
}

// TopFive returns the approved, positioned songs ordered by position.
// More than five rows means the ranking is corrupt; they are all returned and the anomaly is logged.
func (c *Catalog) TopFive(ctx context.Context) ([]models.Song, error) {
	songs, err := c.songs.TopFive(ctx)
	if err != nil {
		return nil, err
	}
	if len(songs) > models.TopFiveSize {
		ids := make([]int64, len(songs))
		for i, s := range songs {
			ids[i] = s.ID
		}
		c.logger.Warn("top five holds more songs than slots", "count", len(songs), "ids", ids)
	}
	return songs, nil
}

// Paginated returns page of the approved, unpositioned songs ranked by views.
// A non-positive perPage uses the catalog default.
func (c *Catalog) Paginated(ctx context.Context, page, perPage int) (models.Page[models.Song], error) {
	if perPage <= 0 {
		perPage = c.perPage
	}
	page = models.ClampPage(page, perPage)

	songs, total, err := c.songs.Overflow(ctx, perPage, models.Offset(page, perPage))
	if err != nil {
		return models.Page[models.Song]{}, err
	}
	return models.NewPage(songs, page, perPage, total), nil
}

// Pending returns the songs waiting for moderation in the order they were suggested.
func (c *Catalog) Pending(ctx context.Context) ([]models.Song, error) {
	return c.songs.Pending(ctx)
}

// Listing builds both partitions for page of the overflow list.
func (c *Catalog) Listing(ctx context.Context, page int) (Listing, error) {
	top, err := c.TopFive(ctx)
	if err != nil {
		return Listing{}, err
	}
	rest, err := c.Paginated(ctx, page, c.perPage)
	if err != nil {
		return Listing{}, err
	}
	return Listing{TopFive: top, Paginated: rest}, nil
}
