package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateEntryRequest struct {
	CentreID  string `json:"centre_id"`
	Code      string `json:"code"`
	TimeOfDay string `json:"time_of_day"`
	Status    string `json:"status"`
	Remark    string `json:"remark"`
}

type ListEntryFilter struct {
	CentreID snowflake.ID
	Code     string
	From     *time.Time
	To       *time.Time
}

type Service interface {
	CreateEntry(ctx context.Context, req CreateEntryRequest) (Entry, error)
	GetEntry(ctx context.Context, id snowflake.ID) (Entry, error)
	ListEntries(ctx context.Context, filter ListEntryFilter) ([]Entry, error)
}

var (
	ErrInvalidCentre = errors.New("invalid_centre")
	ErrInvalidCode   = errors.New("invalid_code")
	ErrInvalidStatus = errors.New("invalid_status")
	ErrEntryNotFound = errors.New("entry_not_found")
)
