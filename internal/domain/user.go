package domain

import (
	"context"
	"time"
)

// Role identifies what a user is allowed to do. HOME_USER is a client who
// trains with home EMS equipment and must pass onboarding before booking.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleTrainer  Role = "TRAINER"
	RoleClient   Role = "CLIENT"
	RoleHomeUser Role = "HOME_USER"
)

func ValidRoles() []Role {
	return []Role{RoleAdmin, RoleTrainer, RoleClient, RoleHomeUser}
}

func (r Role) IsValid() bool {
	for _, valid := range ValidRoles() {
		if r == valid {
			return true
		}
	}
	return false
}

// Staff roles may act on other users' bookings and send client messages.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleTrainer
}

type User struct {
	ID              int64      `json:"id"`
	Email           string     `json:"email"`
	Username        *string    `json:"username,omitempty"`
	FirstName       *string    `json:"first_name,omitempty"`
	LastName        *string    `json:"last_name,omitempty"`
	HashedPassword  string     `json:"-"`
	Role            Role       `json:"role"`
	PhoneNumber     *string    `json:"phone_number,omitempty"`
	ProfileImageURL *string    `json:"profile_image_url,omitempty"`
	IsActive        bool       `json:"is_active"`
	EmailVerified   *time.Time `json:"email_verified,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type SignupRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,valid_name,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,valid_name,max=100"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,valid_phone"`
	Role      *Role   `json:"role,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair is returned on successful authentication.
type TokenPair struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     Role   `json:"role" validate:"required"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,valid_name,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,valid_name,max=100"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,valid_phone"`
	Role      *Role   `json:"role,omitempty"`
}

type PaginatedResult[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user *User) error
	List(ctx context.Context, role Role, page, pageSize int) ([]User, int64, error)
	// SetActive soft-deletes (false) or restores (true) a user.
	SetActive(ctx context.Context, id int64, active bool) error
}

type AuthUsecase interface {
	Signup(ctx context.Context, req *SignupRequest) (*TokenPair, error)
	Login(ctx context.Context, req *LoginRequest) (*TokenPair, error)
	GetCurrentUser(ctx context.Context, id int64) (*User, error)
	AssignRole(ctx context.Context, userID int64, role Role) error
}

type AdminUserUsecase interface {
	ListUsers(ctx context.Context, role Role, page, pageSize int) (*PaginatedResult[User], error)
	CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error)
	UpdateUser(ctx context.Context, userID int64, req *UpdateUserRequest) (*User, error)
	SetUserActive(ctx context.Context, userID int64, active bool) error
}
