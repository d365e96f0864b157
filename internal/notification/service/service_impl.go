package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/techtech-dev-team/stranger-backoffice/internal/auth/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/clock"
	"github.com/techtech-dev-team/stranger-backoffice/internal/notification/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/providers/sms"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	UserRepo authdomain.Repository
	SMS      sms.Provider `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	userRepo authdomain.Repository
	sms      sms.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("notification.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		userRepo: p.UserRepo,
		sms:      p.SMS,
	}
}

func (s *Service) Notify(ctx context.Context, userID snowflake.ID, kind, title, body string) error {
	if userID == 0 {
		return nil
	}

	notification := domain.Notification{
		ID:        s.genID.Generate(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		CreatedAt: s.clock.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Exec(
		`INSERT INTO notifications (id, user_id, kind, title, body, seen, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		notification.ID,
		notification.UserID,
		notification.Kind,
		notification.Title,
		notification.Body,
		false,
		notification.CreatedAt,
	).Error
	if err != nil {
		return err
	}

	if s.sms == nil {
		return nil
	}
	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		s.log.Warn("notification target lookup failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil
	}
	if user == nil || user.Phone == "" {
		return nil
	}
	if err := s.sms.Send(ctx, user.Phone, title+": "+body); err != nil {
		// stored notification stands even when the SMS leg fails
		s.log.Warn("sms delivery failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
	return nil
}

func (s *Service) ListForUser(ctx context.Context, userID snowflake.ID, unseenOnly bool) ([]domain.Notification, error) {
	var notifications []domain.Notification
	stmt := s.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ?", userID)
	if unseenOnly {
		stmt = stmt.Where("seen = ?", false)
	}
	err := stmt.Order("created_at desc, id desc").Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *Service) MarkSeen(ctx context.Context, userID, id snowflake.ID) error {
	result := s.db.WithContext(ctx).Exec(
		`UPDATE notifications SET seen = TRUE WHERE id = ? AND user_id = ?`,
		id,
		userID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}
