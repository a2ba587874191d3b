package handlers

import (
	"github.com/gofiber/fiber/v2"

	"songboard/services"
)

const songNotFound = "Song not found."

// ListSongs returns the top five and one page of the remaining approved songs.
func (h *Handler) ListSongs(c *fiber.Ctx) error {
	listing, err := h.catalog.Listing(c.UserContext(), c.QueryInt("page", 1))
	if err != nil {
		return h.fail(c, err, songNotFound)
	}
	return c.JSON(listing)
}

// SuggestSong stores a public suggestion awaiting moderation.
func (h *Handler) SuggestSong(c *fiber.Ctx) error {
	var in services.SuggestInput
	if ok, err := h.bind(c, &in); !ok {
		return err
	}

	song, err := h.moderation.Suggest(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err, songNotFound)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Song suggested successfully! Awaiting approval.", "data": song})
}

// PendingSongs lists the suggestions waiting for moderation.
func (h *Handler) PendingSongs(c *fiber.Ctx) error {
	songs, err := h.catalog.Pending(c.UserContext())
	if err != nil {
		return h.fail(c, err, songNotFound)
	}
	return c.JSON(songs)
}

// GetSong returns a song and counts the view.
func (h *Handler) GetSong(c *fiber.Ctx) error {
	id, ok := songID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": songNotFound})
	}

	song, err := h.moderation.RecordView(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, songNotFound)
	}
	return c.JSON(song)
}

// UpdateSong applies a partial edit.
func (h *Handler) UpdateSong(c *fiber.Ctx) error {
	id, ok := songID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": songNotFound})
	}

	var in services.UpdateInput
	if ok, err := h.bind(c, &in); !ok {
		return err
	}

	song, err := h.moderation.Edit(c.UserContext(), id, in)
	if err != nil {
		return h.fail(c, err, songNotFound)
	}
	return c.JSON(fiber.Map{"message": "Song updated successfully!", "data": song})
}

// DeleteSong removes a song permanently.
func (h *Handler) DeleteSong(c *fiber.Ctx) error {
	id, ok := songID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": songNotFound})
	}

	if err := h.moderation.Remove(c.UserContext(), id); err != nil {
		return h.fail(c, err, songNotFound)
	}
	return c.JSON(fiber.Map{"message": "Song removed successfully!"})
}

// ApproveSong publishes a suggestion.
func (h *Handler) ApproveSong(c *fiber.Ctx) error {
	id, ok := songID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": songNotFound})
	}

	song, err := h.moderation.Approve(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, songNotFound)
	}
	return c.JSON(fiber.Map{"message": "Song approved successfully!", "data": song})
}

// RejectSong withdraws a song from the public listings.
func (h *Handler) RejectSong(c *fiber.Ctx) error {
	id, ok := songID(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": songNotFound})
	}

	song, err := h.moderation.Reject(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err, songNotFound)
	}
	return c.JSON(fiber.Map{"message": "Song rejected successfully!", "data": song})
}
