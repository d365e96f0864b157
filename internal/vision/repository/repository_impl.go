package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/techtech-dev-team/stranger-backoffice/internal/vision/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.Entry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO vision_entries (id, centre_id, code, recorded_at, time_of_day, status, remark, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.CentreID,
		entry.Code,
		entry.RecordedAt,
		entry.TimeOfDay,
		entry.Status,
		entry.Remark,
		entry.CreatedAt,
		entry.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Entry, error) {
	var entry domain.Entry
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM vision_entries WHERE id = ?`, id,
	).Scan(&entry).Error
	if err != nil {
		return nil, err
	}
	if entry.ID == 0 {
		return nil, nil
	}
	return &entry, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListEntryFilter) ([]domain.Entry, error) {
	var entries []domain.Entry
	stmt := db.WithContext(ctx).Model(&domain.Entry{})
	if filter.CentreID != 0 {
		stmt = stmt.Where("centre_id = ?", filter.CentreID)
	}
	if filter.Code != "" {
		stmt = stmt.Where("code = ?", filter.Code)
	}
	if filter.From != nil {
		stmt = stmt.Where("recorded_at >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("recorded_at < ?", *filter.To)
	}
	err := stmt.Order("recorded_at desc, id desc").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
