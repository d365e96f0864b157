package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/techtech-dev-team/stranger-backoffice/internal/visit/domain"
	"github.com/techtech-dev-team/stranger-backoffice/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, visit *domain.Visit) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO visits (id, centre_id, staff_id, customer_name, phone, service, in_time, out_time,
		  cash1, online1, cash2, online2, cash_commission, online_commission,
		  tid1, tid2, remark1, remark2, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		visit.ID,
		visit.CentreID,
		visit.StaffID,
		visit.CustomerName,
		visit.Phone,
		visit.Service,
		visit.InTime,
		visit.OutTime,
		visit.Cash1,
		visit.Online1,
		visit.Cash2,
		visit.Online2,
		visit.CashCommission,
		visit.OnlineCommission,
		visit.TID1,
		visit.TID2,
		visit.Remark1,
		visit.Remark2,
		visit.CreatedAt,
		visit.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Visit, error) {
	var visit domain.Visit
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM visits WHERE id = ?`, id,
	).Scan(&visit).Error
	if err != nil {
		return nil, err
	}
	if visit.ID == 0 {
		return nil, nil
	}
	return &visit, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListVisitFilter, page pagination.Pagination) ([]*domain.Visit, error) {
	var visits []*domain.Visit
	stmt := db.WithContext(ctx).Model(&domain.Visit{})
	if filter.CentreID != 0 {
		stmt = stmt.Where("centre_id = ?", filter.CentreID)
	}
	if filter.Phone != "" {
		stmt = stmt.Where("phone = ?", filter.Phone)
	}
	if filter.Open != nil {
		if *filter.Open {
			stmt = stmt.Where("out_time IS NULL")
		} else {
			stmt = stmt.Where("out_time IS NOT NULL")
		}
	}
	if filter.From != nil {
		stmt = stmt.Where("in_time >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("in_time < ?", *filter.To)
	}
	stmt = pagination.Apply(stmt, page)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&visits).Error
	if err != nil {
		return nil, err
	}
	return visits, nil
}

func (r *repo) UpdateExitLeg(ctx context.Context, db *gorm.DB, visit *domain.Visit) error {
	return db.WithContext(ctx).Exec(
		`UPDATE visits SET out_time = ?, cash2 = ?, online2 = ?, cash_commission = ?, online_commission = ?,
		  tid2 = ?, remark2 = ?, updated_at = ?
		 WHERE id = ?`,
		visit.OutTime,
		visit.Cash2,
		visit.Online2,
		visit.CashCommission,
		visit.OnlineCommission,
		visit.TID2,
		visit.Remark2,
		visit.UpdatedAt,
		visit.ID,
	).Error
}
