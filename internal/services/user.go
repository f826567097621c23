package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qaforum/apiserver/internal/store"
	"github.com/qaforum/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates registration and authentication.
type UserService struct {
	repo     UserRepository
	events   emitter
	hashCost int
}

func NewUserService(repo UserRepository, publisher EventPublisher, logger *slog.Logger) *UserService {
	return &UserService{
		repo:     repo,
		events:   newEmitter(publisher, logger),
		hashCost: bcrypt.DefaultCost,
	}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Register validates form and stores a new user. It never logs the user in.
func (s *UserService) Register(ctx context.Context, form RegistrationForm) (types.User, error) {
	form = form.normalize()
	verr := validateRegistration(form)

	// Uniqueness is only checked for fields that passed their own rules.
	// The store constraint remains authoritative.
	if !verr.Has("username") {
		taken, err := s.exists(ctx, s.repo.GetByUsername, form.Username)
		if err != nil {
			return types.User{}, err
		}
		if taken {
			verr.Add("username", types.NewMessage(types.MsgUsernameTaken))
		}
	}
	if !verr.Has("email") {
		taken, err := s.exists(ctx, s.repo.GetByEmail, form.Email)
		if err != nil {
			return types.User{}, err
		}
		if taken {
			verr.Add("email", types.NewMessage(types.MsgEmailTaken))
		}
	}
	if err := verr.Err(); err != nil {
		return types.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.hashCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		Username:     form.Username,
		Email:        form.Email,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		PasswordHash: string(hash),
	})
	if err != nil {
		var conflict *store.ConflictError
		if errors.As(err, &conflict) {
			return types.User{}, conflictFieldError(conflict.Field)
		}
		return types.User{}, err
	}

	s.events.emit(ctx, types.Event{Type: types.EventUserRegistered, UserID: user.ID})
	return user, nil
}

// Authenticate checks username and password. Missing fields yield
// ErrInvalidLoginForm; an unknown user or a wrong password yields
// ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (types.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return types.User{}, ErrInvalidLoginForm
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) exists(ctx context.Context, lookup func(context.Context, string) (types.User, error), value string) (bool, error) {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func conflictFieldError(field string) error {
	verr := &ValidationError{}
	switch field {
	case "email":
		verr.Add("email", types.NewMessage(types.MsgEmailTaken))
	default:
		verr.Add("username", types.NewMessage(types.MsgUsernameTaken))
	}
	return verr
}
