package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRole controls which operations a user may perform. Kaprodi (head of
// program) and admin roles can mutate curricula; others are read-only.
type UserRole string

// Valid user roles.
const (
	RoleAdmin     UserRole = "admin"
	RoleKaprodi   UserRole = "kaprodi"
	RoleDosen     UserRole = "dosen"
	RoleMahasiswa UserRole = "mahasiswa"
)

// User-specific validation errors.
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
	ErrInvalidUserRole     = errors.New("invalid user role")
)

// User is an authenticated account of the curriculum backend.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // plaintext, present only during registration
	HashedPassword string    `json:"-"` // never exposed in JSON
	Role           UserRole  `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a user with a fresh UUID. The caller is responsible for
// hashing the plaintext password before the user is stored.
func NewUser(email, password string, role UserRole) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     email,
		Password:  password,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks if the User has valid data. A user must carry either a
// plaintext password within bcrypt's length limits (pre-hash) or an existing
// hash (post-load).
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validEmailFormat(u.Email) {
		return ErrInvalidEmail
	}
	if !isValidUserRole(u.Role) {
		return ErrInvalidUserRole
	}

	if u.Password != "" {
		if len(u.Password) < 12 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// CanManageCurricula reports whether the user may perform mutating
// curriculum operations.
func (u *User) CanManageCurricula() bool {
	return u.Role == RoleAdmin || u.Role == RoleKaprodi
}

// validEmailFormat performs a minimal structural check: a local part, an @,
// and a dotted domain.
func validEmailFormat(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}

func isValidUserRole(role UserRole) bool {
	switch role {
	case RoleAdmin, RoleKaprodi, RoleDosen, RoleMahasiswa:
		return true
	default:
		return false
	}
}
