package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"songboard/models"
)

const (
	userColumns     = `id, name, email, password_hash, created_at, updated_at`
	emailConstraint = "users_email_unique"
)

// UserRepository reads and writes the users table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a [UserRepository] on db.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrNotFound
	}
	return u, err
}

// Create inserts user with a fresh id and returns the stored row.
func (r *UserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	query := `INSERT INTO users (id, name, email, password_hash) VALUES ($1, $2, $3, $4) RETURNING ` + userColumns
	created, err := scanUser(r.db.QueryRowContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash))
	if name, ok := uniqueConstraint(err); ok && name == emailConstraint {
		err = models.ErrEmailTaken
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// FindByID returns the user with id.
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return models.User{}, fmt.Errorf("failed to find user %s: %w", id, err)
	}
	return user, nil
}

// FindByEmail returns the user registered with email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return models.User{}, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// EmailExists reports whether a user already registered with email.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}
