package models

import "errors"

// Storage errors shared by the repositories and their in-memory doubles.
var (
	ErrNotFound      = errors.New("record not found")
	ErrPositionTaken = errors.New("position already taken")
	ErrEmailTaken    = errors.New("email already taken")
)
