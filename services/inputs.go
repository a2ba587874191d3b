package services

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Optional distinguishes an absent JSON field from an explicit null and from a value.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Null returns a present Optional holding JSON null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// SuggestInput is the body of a public song suggestion.
type SuggestInput struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Artist      string  `json:"artist" validate:"required,max=255"`
	YoutubeURL  string  `json:"youtube_url" validate:"required,http_url"`
	Description *string `json:"description"`
}

func (in *SuggestInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Artist = strings.TrimSpace(in.Artist)
	in.YoutubeURL = strings.TrimSpace(in.YoutubeURL)
	in.Description = blankToNil(in.Description)
}

// UpdateInput is a partial song edit. Views are deliberately absent.
type UpdateInput struct {
	Title       Optional[string] `json:"title"`
	Artist      Optional[string] `json:"artist"`
	YoutubeURL  Optional[string] `json:"youtube_url"`
	Description Optional[string] `json:"description"`
	Position    Optional[int]    `json:"position"`
	IsApproved  Optional[bool]   `json:"is_approved"`
}

// RegisterInput is the body of an account registration.
type RegisterInput struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// LoginInput is the body of a login request.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
