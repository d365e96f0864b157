package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	KindMissedEntry = "missed_entry"
	KindCollection  = "collection"
)

type Notification struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	Kind      string       `gorm:"not null;default:''" json:"kind"`
	Title     string       `gorm:"not null;default:''" json:"title"`
	Body      string       `gorm:"not null;default:''" json:"body"`
	Seen      bool         `gorm:"not null;default:false" json:"seen"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

type Service interface {
	// Notify stores a notification for the user and sends an SMS when the
	// user has a phone number on file.
	Notify(ctx context.Context, userID snowflake.ID, kind, title, body string) error
	ListForUser(ctx context.Context, userID snowflake.ID, unseenOnly bool) ([]Notification, error)
	MarkSeen(ctx context.Context, userID, id snowflake.ID) error
}

var ErrNotificationNotFound = errors.New("notification_not_found")
