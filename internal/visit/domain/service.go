package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/techtech-dev-team/stranger-backoffice/pkg/db/pagination"
)

type CheckInRequest struct {
	CentreID     string `json:"centre_id"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	Service      string `json:"service"`
	Cash         int64  `json:"cash"`
	Online       int64  `json:"online"`
	TID          string `json:"tid"`
	Remark       string `json:"remark"`
}

type CheckOutRequest struct {
	Cash             int64  `json:"cash"`
	Online           int64  `json:"online"`
	CashCommission   int64  `json:"cash_commission"`
	OnlineCommission int64  `json:"online_commission"`
	TID              string `json:"tid"`
	Remark           string `json:"remark"`
}

type ListVisitFilter struct {
	CentreID snowflake.ID
	Phone    string
	Open     *bool
	From     *time.Time
	To       *time.Time
}

type Service interface {
	// CheckIn opens a visit and posts the entry leg to the centre balance.
	CheckIn(ctx context.Context, req CheckInRequest) (Visit, error)
	// CheckOut closes an open visit and posts the exit leg.
	CheckOut(ctx context.Context, id snowflake.ID, req CheckOutRequest) (Visit, error)
	GetVisit(ctx context.Context, id snowflake.ID) (Visit, error)
	ListVisits(ctx context.Context, filter ListVisitFilter, page pagination.Pagination) ([]*Visit, pagination.PageInfo, error)
}

var (
	ErrInvalidCentre      = errors.New("invalid_centre")
	ErrInvalidPhone       = errors.New("invalid_phone")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrVisitNotFound      = errors.New("visit_not_found")
	ErrVisitAlreadyClosed = errors.New("visit_already_closed")
)
