package service

import (
	"context"
	"strings"

	"github.com/techtech-dev-team/stranger-backoffice/internal/report/domain"
	visitdomain "github.com/techtech-dev-team/stranger-backoffice/internal/visit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(p Params) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("report.service"),
	}
}

func (s *Service) SalesReport(ctx context.Context, filter domain.SalesFilter) (domain.SalesReport, error) {
	if filter.FromDate == "" || filter.ToDate == "" || filter.ToDate < filter.FromDate {
		return domain.SalesReport{}, domain.ErrInvalidRange
	}

	query := `SELECT ds.centre_id, c.name AS centre_name,
	   COALESCE(SUM(ds.cash_total), 0) AS cash_total,
	   COALESCE(SUM(ds.online_total), 0) AS online_total,
	   COALESCE(SUM(ds.cash_commission), 0) AS cash_commission,
	   COALESCE(SUM(ds.online_commission), 0) AS online_commission,
	   COALESCE(SUM(ds.expense_total), 0) AS expense_total,
	   COALESCE(SUM(ds.visit_count), 0) AS visit_count
	 FROM daily_summaries ds
	 JOIN centres c ON c.id = ds.centre_id
	 JOIN branches b ON b.id = c.branch_id
	 WHERE ds.date >= ? AND ds.date <= ?`
	args := []interface{}{filter.FromDate, filter.ToDate}

	if filter.CentreID != 0 {
		query += ` AND ds.centre_id = ?`
		args = append(args, filter.CentreID)
	}
	if filter.BranchID != 0 {
		query += ` AND c.branch_id = ?`
		args = append(args, filter.BranchID)
	}
	if filter.RegionID != 0 {
		query += ` AND b.region_id = ?`
		args = append(args, filter.RegionID)
	}
	query += ` GROUP BY ds.centre_id, c.name ORDER BY c.name`

	var rows []domain.SalesRow
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return domain.SalesReport{}, err
	}

	return domain.SalesReport{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
		Rows:     rows,
	}, nil
}

func (s *Service) FindByTID(ctx context.Context, tid string) ([]visitdomain.Visit, error) {
	tid = strings.TrimSpace(tid)
	if tid == "" {
		return nil, domain.ErrInvalidTID
	}

	var visits []visitdomain.Visit
	err := s.db.WithContext(ctx).
		Model(&visitdomain.Visit{}).
		Where("tid1 = ? OR tid2 = ?", tid, tid).
		Order("created_at desc, id desc").
		Find(&visits).Error
	if err != nil {
		return nil, err
	}
	return visits, nil
}
