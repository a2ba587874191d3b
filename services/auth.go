package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"songboard/models"
)

// TokenType is reported alongside every issued token.
const TokenType = "Bearer"

// Session is an authenticated user together with the token that proves it.
type Session struct {
	User  models.User
	Token string
}

// Auth registers users, logs them in and resolves bearer tokens.
type Auth struct {
	users    UserStore
	tokens   *TokenStore
	hashCost int
	logger   *log.Logger
}

// AuthOption customizes [Auth].
type AuthOption func(*Auth)

// WithHashCost sets the bcrypt cost used for new passwords.
func WithHashCost(cost int) AuthOption {
	return func(a *Auth) { a.hashCost = cost }
}

// NewAuth creates an [Auth].
func NewAuth(users UserStore, tokens *TokenStore, logger *log.Logger, opts ...AuthOption) *Auth {
	a := &Auth{users: users, tokens: tokens, hashCost: bcrypt.DefaultCost, logger: logger}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register creates an account and logs it in.
func (a *Auth) Register(ctx context.Context, in RegisterInput) (Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	verr := validateStruct(in)
	if in.Password != in.PasswordConfirmation {
		verr.Add("password", "The password field confirmation does not match.")
	}
	if _, failed := verr.Fields["email"]; !failed {
		exists, err := a.users.EmailExists(ctx, in.Email)
		if err != nil {
			return Session{}, err
		}
		if exists {
			verr.Add("email", "The email has already been taken.")
		}
	}
	if err := verr.Err(); err != nil {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.hashCost)
	if err != nil {
		return Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := a.users.Create(ctx, models.User{Name: in.Name, Email: in.Email, PasswordHash: string(hash)})
	if errors.Is(err, models.ErrEmailTaken) {
		return Session{}, Invalid("email", "The email has already been taken.")
	}
	if err != nil {
		return Session{}, err
	}

	a.logger.Info("user registered", "id", user.ID)
	return a.issue(user)
}

// Login checks the credentials and issues a new token.
func (a *Auth) Login(ctx context.Context, in LoginInput) (Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in).Err(); err != nil {
		return Session{}, err
	}

	user, err := a.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, models.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return a.issue(user)
}

// Authenticate resolves token to its user.
func (a *Auth) Authenticate(ctx context.Context, token string) (models.User, error) {
	id, err := a.tokens.Resolve(token)
	if err != nil {
		return models.User{}, err
	}

	user, err := a.users.FindByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return models.User{}, ErrUnauthenticated
	}
	return user, err
}

// Logout revokes token. Revocation is best effort: a storage failure is logged and the logout still succeeds.
func (a *Auth) Logout(token string) {
	if err := a.tokens.Revoke(token); err != nil {
		a.logger.Error("token revocation failed", "err", err)
	}
}

func (a *Auth) issue(user models.User) (Session, error) {
	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Token: token}, nil
}
