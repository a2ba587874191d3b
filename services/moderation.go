package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"songboard/metrics"
	"songboard/models"
)

const positionTakenMessage = "The position has already been taken."

// Moderation implements the song lifecycle: suggestion, approval, rejection, edits, removal and views.
type Moderation struct {
	songs  SongStore
	logger *log.Logger
}

// NewModeration creates a [Moderation] on songs.
func NewModeration(songs SongStore, logger *log.Logger) *Moderation {
	return &Moderation{songs: songs, logger: logger}
}

// Suggest stores a new unapproved, unranked song.
func (m *Moderation) Suggest(ctx context.Context, in SuggestInput) (models.Song, error) {
	in.normalize()
	if err := validateStruct(in).Err(); err != nil {
		return models.Song{}, err
	}

	song, err := m.songs.Create(ctx, models.Song{
		Title:       in.Title,
		Artist:      in.Artist,
		YoutubeURL:  in.YoutubeURL,
		Description: in.Description,
	})
	if err != nil {
		return models.Song{}, err
	}

	m.logger.Info("song suggested", "id", song.ID, "title", song.Title)
	metrics.RecordSongEvent("suggested")
	return song, nil
}

// Approve marks the song approved. Its position is left as is and must not be held by another approved song.
func (m *Moderation) Approve(ctx context.Context, id int64) (models.Song, error) {
	song, err := m.songs.SetApproval(ctx, id, true)
	if errors.Is(err, models.ErrPositionTaken) {
		return models.Song{}, Invalid("position", positionTakenMessage)
	}
	if err != nil {
		return models.Song{}, err
	}

	m.logger.Info("song approved", "id", id)
	metrics.RecordSongEvent("approved")
	return song, nil
}

// Reject marks the song unapproved. A positioned song keeps its position and drops out of both listings.
func (m *Moderation) Reject(ctx context.Context, id int64) (models.Song, error) {
	song, err := m.songs.SetApproval(ctx, id, false)
	if err != nil {
		return models.Song{}, err
	}

	if song.Position != nil {
		m.logger.Warn("rejected song keeps its position", "id", id, "position", *song.Position)
	} else {
		m.logger.Info("song rejected", "id", id)
	}
	metrics.RecordSongEvent("rejected")
	return song, nil
}

// Edit applies the fields present in in to the song.
func (m *Moderation) Edit(ctx context.Context, id int64, in UpdateInput) (models.Song, error) {
	song, err := m.songs.FindByID(ctx, id)
	if err != nil {
		return models.Song{}, err
	}

	if err := validateUpdate(in).Err(); err != nil {
		return models.Song{}, err
	}
	applyUpdate(&song, in)

	updated, err := m.songs.Update(ctx, song)
	if errors.Is(err, models.ErrPositionTaken) {
		return models.Song{}, Invalid("position", positionTakenMessage)
	}
	if err != nil {
		return models.Song{}, err
	}

	m.logger.Info("song updated", "id", id)
	metrics.RecordSongEvent("updated")
	return updated, nil
}

// Remove deletes the song permanently.
func (m *Moderation) Remove(ctx context.Context, id int64) error {
	if err := m.songs.Delete(ctx, id); err != nil {
		return err
	}

	m.logger.Info("song removed", "id", id)
	metrics.RecordSongEvent("removed")
	return nil
}

// RecordView counts one read of the song and returns it.
func (m *Moderation) RecordView(ctx context.Context, id int64) (models.Song, error) {
	song, err := m.songs.IncrementViews(ctx, id)
	if err != nil {
		return models.Song{}, err
	}

	metrics.RecordSongEvent("viewed")
	return song, nil
}

func validateUpdate(in UpdateInput) *ValidationError {
	verr := &ValidationError{}

	required := func(field string, v Optional[string], tag string) {
		if !v.Set {
			return
		}
		if v.Null {
			verr.Add(field, message(field, "required", ""))
			return
		}
		validateVar(verr, field, v.Value, tag)
	}
	required("title", trimmed(in.Title), "required,max=255")
	required("artist", trimmed(in.Artist), "required,max=255")
	required("youtube_url", trimmed(in.YoutubeURL), "required,http_url")

	if p := in.Position; p.Set && !p.Null && (p.Value < 1 || p.Value > models.TopFiveSize) {
		verr.Add("position", fmt.Sprintf("The position field must be between 1 and %d.", models.TopFiveSize))
	}
	if in.IsApproved.Set && in.IsApproved.Null {
		verr.Add("is_approved", "The is approved field must be true or false.")
	}
	return verr
}

func applyUpdate(song *models.Song, in UpdateInput) {
	if in.Title.Set {
		song.Title = trimmed(in.Title).Value
	}
	if in.Artist.Set {
		song.Artist = trimmed(in.Artist).Value
	}
	if in.YoutubeURL.Set {
		song.YoutubeURL = trimmed(in.YoutubeURL).Value
	}
	if in.Description.Set {
		if in.Description.Null {
			song.Description = nil
		} else {
			song.Description = blankToNil(&in.Description.Value)
		}
	}
	if in.Position.Set {
		if in.Position.Null {
			song.Position = nil
		} else {
			pos := in.Position.Value
			song.Position = &pos
		}
	}
	if in.IsApproved.Set {
		song.IsApproved = in.IsApproved.Value
	}
}

func trimmed(v Optional[string]) Optional[string] {
	v.Value = strings.TrimSpace(v.Value)
	return v
}
