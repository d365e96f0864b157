package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/techtech-dev-team/stranger-backoffice/internal/auth/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/auth/password"
	"github.com/techtech-dev-team/stranger-backoffice/internal/auth/token"
	"github.com/techtech-dev-team/stranger-backoffice/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   domain.Repository
	Issuer *token.Issuer
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   domain.Repository
	issuer *token.Issuer
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("auth.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		issuer: p.Issuer,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, s.db, username)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}
	if !user.Active {
		return domain.LoginResponse{}, domain.ErrUserInactive
	}

	signed, err := s.issuer.Sign(user.ID, user.Role, s.clock.Now())
	if err != nil {
		return domain.LoginResponse{}, err
	}

	return domain.LoginResponse{Token: signed, User: *user}, nil
}

func (s *Service) Authenticate(ctx context.Context, raw string) (domain.User, error) {
	userID, _, err := s.issuer.Parse(raw)
	if err != nil {
		if errors.Is(err, token.ErrTokenExpired) {
			return domain.User{}, domain.ErrTokenExpired
		}
		return domain.User{}, domain.ErrInvalidToken
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrInvalidToken
	}
	if !user.Active {
		return domain.User{}, domain.ErrUserInactive
	}
	return *user, nil
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return domain.User{}, domain.ErrInvalidUsername
	}
	if len(req.Password) < 6 {
		return domain.User{}, domain.ErrInvalidPassword
	}
	if !domain.ValidRole(req.Role) {
		return domain.User{}, domain.ErrInvalidRole
	}

	existing, err := s.repo.FindByUsername(ctx, s.db, username)
	if err != nil {
		return domain.User{}, err
	}
	if existing != nil {
		return domain.User{}, domain.ErrUserExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := s.clock.Now().UTC()
	user := domain.User{
		ID:           s.genID.Generate(),
		Username:     username,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
		Role:         req.Role,
		RegionID:     parseOptionalID(req.RegionID),
		BranchID:     parseOptionalID(req.BranchID),
		CentreID:     parseOptionalID(req.CentreID),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id snowflake.ID) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *user, nil
}

func (s *Service) ListUsers(ctx context.Context, role string, centreID snowflake.ID) ([]domain.User, error) {
	items, err := s.repo.List(ctx, s.db, strings.TrimSpace(role), centreID)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		users = append(users, *item)
	}
	return users, nil
}

func parseOptionalID(value string) snowflake.ID {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return id
}
