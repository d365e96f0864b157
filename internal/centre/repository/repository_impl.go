package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/techtech-dev-team/stranger-backoffice/internal/centre/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, centre *domain.Centre) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO centres (id, branch_id, name, pay_criteria, balance, previous_balance, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		centre.ID,
		centre.BranchID,
		centre.Name,
		centre.PayCriteria,
		centre.Balance,
		centre.PreviousBalance,
		centre.Active,
		centre.CreatedAt,
		centre.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Centre, error) {
	var centre domain.Centre
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM centres WHERE id = ?`, id,
	).Scan(&centre).Error
	if err != nil {
		return nil, err
	}
	if centre.ID == 0 {
		return nil, nil
	}
	return &centre, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListCentreFilter) ([]domain.Centre, error) {
	var centres []domain.Centre
	stmt := db.WithContext(ctx).Model(&domain.Centre{})
	if filter.BranchID != 0 {
		stmt = stmt.Where("branch_id = ?", filter.BranchID)
	}
	if filter.RegionID != 0 {
		stmt = stmt.Where("branch_id IN (SELECT id FROM branches WHERE region_id = ?)", filter.RegionID)
	}
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}
	err := stmt.Order("name asc, id asc").Find(&centres).Error
	if err != nil {
		return nil, err
	}
	return centres, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, centre *domain.Centre) error {
	return db.WithContext(ctx).Exec(
		`UPDATE centres SET name = ?, pay_criteria = ?, active = ?, updated_at = ? WHERE id = ?`,
		centre.Name,
		centre.PayCriteria,
		centre.Active,
		centre.UpdatedAt,
		centre.ID,
	).Error
}
