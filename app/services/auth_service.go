package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/changyuyeo/fitbody/app/models"
	"github.com/changyuyeo/fitbody/app/repositories"
	"github.com/changyuyeo/fitbody/pkg/auth"
	"github.com/changyuyeo/fitbody/pkg/event"
)

var (
	// ErrNoSuchUser means the email resolved to no account.
	ErrNoSuchUser = errors.New("no such user")
	// ErrWrongPassword means the account exists but the password does not match.
	ErrWrongPassword = errors.New("wrong password")
	// ErrEmailTaken means registration hit an existing account.
	ErrEmailTaken = errors.New("email already registered")
)

// UserStore is the slice of the user repository the auth service needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// Verify checks an email/password pair against the stored credentials.
// A missing account returns ErrNoSuchUser before any password material is
// touched; a present account with a non-matching password returns
// ErrWrongPassword. Any other error is a storage fault.
func (s *AuthService) Verify(ctx context.Context, email, password string) (models.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, ErrNoSuchUser
	}
	if err != nil {
		return models.User{}, err
	}
	if !auth.CheckPassword(user.Password, password) {
		return models.User{}, ErrWrongPassword
	}
	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, string, string, error) {
	user, err := s.Verify(ctx, email, password)
	if err != nil {
		return models.User{}, "", "", err
	}

	access, err := auth.GenerateToken(user.ID.Hex(), user.Email)
	if err != nil {
		return models.User{}, "", "", err
	}
	refresh, err := auth.GenerateRefreshToken(user.ID.Hex(), user.Email)
	if err != nil {
		return models.User{}, "", "", err
	}
	return user, access, refresh, nil
}

// Register creates a new account with a hashed password and an empty cart
// and purchase history.
func (s *AuthService) Register(ctx context.Context, email, password string) (models.User, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Email:    email,
		Password: hash,
		Cart:     []models.CartLine{},
		Purchase: []models.PurchaseLine{},
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, err
	}

	event.FireAsync("user.registered", map[string]interface{}{
		"user_id": user.ID.Hex(),
		"email":   user.Email,
	})
	return user, nil
}

// Profile returns the account behind an authenticated user id.
func (s *AuthService) Profile(ctx context.Context, userID string) (models.User, error) {
	return findUserByHex(ctx, s.users, userID)
}
