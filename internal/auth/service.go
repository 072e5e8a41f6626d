package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"quizbank/internal/store"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// User is the stored account document. The password field holds the bcrypt
// hash and must never reach a response body; handlers serialize the
// dedicated view types below instead.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserSummary is the listing view: id, email and role only.
type UserSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type Service struct {
	users      *store.Collection[User]
	bcryptCost int
}

type ServiceConfig struct {
	BcryptCost int
}

func NewService(db *sql.DB, cfg ServiceConfig) *Service {
	if cfg.BcryptCost <= 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      NewUserCollection(db),
		bcryptCost: cfg.BcryptCost,
	}
}

func NewUserCollection(db *sql.DB) *store.Collection[User] {
	return store.NewCollection(db, "users",
		func(u *User) string { return u.ID },
		func(u *User, id string) { u.ID = id },
	)
}

func isValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStudent
}

// Register creates an account with an irreversibly hashed password. A
// duplicate email fails without touching the existing record.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Role = strings.TrimSpace(in.Role)

	if in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	if in.Role == "" {
		in.Role = RoleStudent
	}
	if !isValidRole(in.Role) {
		return nil, fmt.Errorf("%w: role must be %s or %s", ErrInvalidInput, RoleAdmin, RoleStudent)
	}

	existing, err := s.users.Find(ctx, func(u *User) bool { return u.Email == in.Email })
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		Name:      in.Name,
		Email:     in.Email,
		Password:  string(hash),
		Role:      in.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.users.InsertOne(ctx, &user); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &user, nil
}

// Authenticate checks an email/password pair. An unknown email and a wrong
// password yield the same error so the two causes are indistinguishable to
// the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	matches, err := s.users.Find(ctx, func(u *User) bool { return u.Email == email })
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	if len(matches) == 0 {
		return nil, ErrInvalidCredentials
	}
	user := matches[0]

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]UserSummary, error) {
	users, err := s.users.Find(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	items := make([]UserSummary, 0, len(users))
	for _, u := range users {
		items = append(items, UserSummary{ID: u.ID, Email: u.Email, Role: u.Role})
	}
	return items, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	if err := s.users.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
