package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateExpenseRequest struct {
	Amount    int64    `json:"amount"`
	Reason    string   `json:"reason"`
	CentreIDs []string `json:"centre_ids"`
}

type ListExpenseFilter struct {
	CentreID snowflake.ID
	From     *time.Time
	To       *time.Time
}

type Service interface {
	CreateExpense(ctx context.Context, req CreateExpenseRequest) (Expense, error)
	GetExpense(ctx context.Context, id snowflake.ID) (Expense, error)
	ListExpenses(ctx context.Context, filter ListExpenseFilter) ([]Expense, error)
}

var (
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidReason   = errors.New("invalid_reason")
	ErrNoCentres       = errors.New("no_centres")
	ErrInvalidCentre   = errors.New("invalid_centre")
	ErrExpenseNotFound = errors.New("expense_not_found")
)
