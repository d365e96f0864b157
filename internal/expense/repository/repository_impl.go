package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/techtech-dev-team/stranger-backoffice/internal/expense/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, expense *domain.Expense) error {
	err := db.WithContext(ctx).Exec(
		`INSERT INTO expenses (id, amount, reason, incurred_at, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID,
		expense.Amount,
		expense.Reason,
		expense.IncurredAt,
		expense.CreatedBy,
		expense.CreatedAt,
		expense.UpdatedAt,
	).Error
	if err != nil {
		return err
	}
	for _, centreID := range expense.CentreIDs {
		err = db.WithContext(ctx).Exec(
			`INSERT INTO expense_centres (expense_id, centre_id) VALUES (?, ?)`,
			expense.ID,
			centreID,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Expense, error) {
	var expense domain.Expense
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM expenses WHERE id = ?`, id,
	).Scan(&expense).Error
	if err != nil {
		return nil, err
	}
	if expense.ID == 0 {
		return nil, nil
	}
	expense.CentreIDs, err = r.CentreIDs(ctx, db, id)
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListExpenseFilter) ([]domain.Expense, error) {
	var expenses []domain.Expense
	stmt := db.WithContext(ctx).Model(&domain.Expense{})
	if filter.CentreID != 0 {
		stmt = stmt.Where("id IN (SELECT expense_id FROM expense_centres WHERE centre_id = ?)", filter.CentreID)
	}
	if filter.From != nil {
		stmt = stmt.Where("incurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("incurred_at < ?", *filter.To)
	}
	err := stmt.Order("incurred_at desc, id desc").Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	for i := range expenses {
		expenses[i].CentreIDs, err = r.CentreIDs(ctx, db, expenses[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

func (r *repo) CentreIDs(ctx context.Context, db *gorm.DB, expenseID snowflake.ID) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT centre_id FROM expense_centres WHERE expense_id = ? ORDER BY centre_id`, expenseID,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
