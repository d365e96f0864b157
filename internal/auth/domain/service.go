package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
	RegionID string `json:"region_id"`
	BranchID string `json:"branch_id"`
	CentreID string `json:"centre_id"`
}

type Service interface {
	Login(context.Context, LoginRequest) (LoginResponse, error)
	// Authenticate validates a bearer token and returns the user it names.
	Authenticate(ctx context.Context, token string) (User, error)
	CreateUser(context.Context, CreateUserRequest) (User, error)
	GetUser(ctx context.Context, id snowflake.ID) (User, error)
	ListUsers(ctx context.Context, role string, centreID snowflake.ID) ([]User, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrTokenExpired       = errors.New("token_expired")
	ErrUserExists         = errors.New("user_exists")
	ErrUserInactive       = errors.New("user_inactive")
	ErrInvalidUsername    = errors.New("invalid_username")
	ErrInvalidPassword    = errors.New("invalid_password")
	ErrInvalidRole        = errors.New("invalid_role")
	ErrNotFound           = errors.New("not_found")
)
