package user

import (
	"strings"
	"time"

	"github.com/GoRent-Marketplace/service-rental/internal/common/auth"
	"github.com/GoRent-Marketplace/service-rental/internal/common/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// User is an account that can rent cars and, once promoted, list them.
type User struct {
	id           uuid.UUID
	name         string
	email        string
	passwordHash string
	role         auth.Role
	imageURL     string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewUser validates the registration fields and hashes the password.
func NewUser(name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, domain.NewValidationError("Fill all the fields")
	}
	if !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("invalid email address")
	}
	if len(password) < MinPasswordLength {
		return nil, domain.NewValidationError("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewValidationError("password cannot be hashed")
	}

	now := time.Now().UTC()
	return &User{
		id:           uuid.New(),
		name:         name,
		email:        email,
		passwordHash: string(hash),
		role:         auth.RoleUser,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructUser rebuilds a User from persistence data.
func ReconstructUser(
	id uuid.UUID,
	name, email, passwordHash string,
	role auth.Role,
	imageURL string,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		id:           id,
		name:         name,
		email:        email,
		passwordHash: passwordHash,
		role:         role,
		imageURL:     imageURL,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// NormalizeEmail trims and lower-cases an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) PasswordHash() string { return u.passwordHash }
func (u *User) Role() auth.Role      { return u.role }
func (u *User) ImageURL() string     { return u.imageURL }
func (u *User) CreatedAt() time.Time { return u.createdAt }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

func (u *User) IsOwner() bool { return u.role == auth.RoleOwner }

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) == nil
}

// PromoteToOwner grants the owner role. Promoting an owner again is a no-op.
func (u *User) PromoteToOwner() {
	if u.role == auth.RoleOwner {
		return
	}
	u.role = auth.RoleOwner
	u.updatedAt = time.Now().UTC()
}

func (u *User) SetImage(url string) {
	u.imageURL = url
	u.updatedAt = time.Now().UTC()
}
