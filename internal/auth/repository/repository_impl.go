package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/techtech-dev-team/stranger-backoffice/internal/auth/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO users (id, username, name, phone, password_hash, role, region_id, branch_id, centre_id, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Name,
		user.Phone,
		user.PasswordHash,
		user.Role,
		user.RegionID,
		user.BranchID,
		user.CentreID,
		user.Active,
		user.CreatedAt,
		user.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM users WHERE id = ?`, id,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) FindByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM users WHERE username = ?`, username,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, role string, centreID snowflake.ID) ([]*domain.User, error) {
	var users []*domain.User
	stmt := db.WithContext(ctx).Model(&domain.User{})
	if role != "" {
		stmt = stmt.Where("role = ?", role)
	}
	if centreID != 0 {
		stmt = stmt.Where("centre_id = ?", centreID)
	}
	if err := stmt.Order("created_at desc, id desc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repo) FindByRoleAndCentre(ctx context.Context, db *gorm.DB, role string, centreID snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM users WHERE role = ? AND centre_id = ? AND active ORDER BY id LIMIT 1`,
		role, centreID,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}
