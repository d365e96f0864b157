package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/techtech-dev-team/stranger-backoffice/internal/auth/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/clock"
	"github.com/techtech-dev-team/stranger-backoffice/internal/config"
	"github.com/techtech-dev-team/stranger-backoffice/internal/liveevents"
	notificationdomain "github.com/techtech-dev-team/stranger-backoffice/internal/notification/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/reconcile/domain"
	visiondomain "github.com/techtech-dev-team/stranger-backoffice/internal/vision/domain"
	visitdomain "github.com/techtech-dev-team/stranger-backoffice/internal/visit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config   config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	UserRepo authdomain.Repository
	Notifier notificationdomain.Service `optional:"true"`
	Hub      *liveevents.Hub            `optional:"true"`
}

type Matcher struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	userRepo  authdomain.Repository
	notifier  notificationdomain.Service
	hub       *liveevents.Hub
	window    time.Duration
	tolerance time.Duration
}

func New(p Params) domain.Service {
	return &Matcher{
		db:        p.DB,
		log:       p.Log.Named("reconcile.matcher"),
		genID:     p.GenID,
		clock:     p.Clock,
		userRepo:  p.UserRepo,
		notifier:  p.Notifier,
		hub:       p.Hub,
		window:    p.Config.MatchSweepWindow,
		tolerance: p.Config.MatchTolerance,
	}
}

// Sweep walks visits created within the trailing window and vision
// entries recorded in the same span, pairing them by phone-vs-code within
// the time tolerance. Per-record failures are joined and reported after
// the whole sweep finishes.
func (m *Matcher) Sweep(ctx context.Context) error {
	now := m.clock.Now().UTC()
	since := now.Add(-m.window)

	var errs []error

	var visits []visitdomain.Visit
	if err := m.db.WithContext(ctx).
		Model(&visitdomain.Visit{}).
		Where("created_at >= ?", since).
		Find(&visits).Error; err != nil {
		return fmt.Errorf("load recent visits: %w", err)
	}
	for _, visit := range visits {
		if err := m.matchVisit(ctx, visit); err != nil {
			errs = append(errs, fmt.Errorf("visit %s: %w", visit.ID, err))
		}
	}

	var entries []visiondomain.Entry
	if err := m.db.WithContext(ctx).
		Model(&visiondomain.Entry{}).
		Where("recorded_at >= ?", since).
		Find(&entries).Error; err != nil {
		errs = append(errs, fmt.Errorf("load recent vision entries: %w", err))
		return errors.Join(errs...)
	}
	for _, entry := range entries {
		if err := m.matchVisionEntry(ctx, entry); err != nil {
			errs = append(errs, fmt.Errorf("vision entry %s: %w", entry.ID, err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		m.log.Warn("sweep finished with errors", zap.Int("errors", len(errs)))
		return err
	}
	return nil
}

func (m *Matcher) matchVisit(ctx context.Context, visit visitdomain.Visit) error {
	if visit.Phone == "" {
		return nil
	}

	var count int64
	err := m.db.WithContext(ctx).
		Model(&visiondomain.Entry{}).
		Where("code = ?", visit.Phone).
		Where("recorded_at BETWEEN ? AND ?",
			visit.InTime.Add(-m.tolerance),
			visit.InTime.Add(m.tolerance),
		).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		// both streams saw the customer; nothing to flag
		return nil
	}

	inserted, err := m.insertMissed(ctx, domain.MissedEntry{
		Type:     domain.TypeVisionMissed,
		VisitID:  visit.ID,
		CentreID: visit.CentreID,
	})
	if err != nil || !inserted {
		return err
	}
	m.notify(ctx, authdomain.RoleVision, visit.CentreID, domain.TypeVisionMissed,
		fmt.Sprintf("No camera entry for visit %s (phone %s)", visit.ID, visit.Phone))
	return nil
}

func (m *Matcher) matchVisionEntry(ctx context.Context, entry visiondomain.Entry) error {
	if entry.Code == "" {
		return nil
	}

	var count int64
	err := m.db.WithContext(ctx).
		Model(&visitdomain.Visit{}).
		Where("phone = ?", entry.Code).
		Where("in_time BETWEEN ? AND ?",
			entry.RecordedAt.Add(-m.tolerance),
			entry.RecordedAt.Add(m.tolerance),
		).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	inserted, err := m.insertMissed(ctx, domain.MissedEntry{
		Type:     domain.TypeCustomerMissed,
		VisionID: entry.ID,
		CentreID: entry.CentreID,
	})
	if err != nil || !inserted {
		return err
	}
	m.notify(ctx, authdomain.RoleCentreManager, entry.CentreID, domain.TypeCustomerMissed,
		fmt.Sprintf("No front-desk visit for camera entry %s (code %s)", entry.ID, entry.Code))
	return nil
}

// insertMissed writes the gap marker. The unique (visit_id, vision_id,
// type) index makes concurrent sweeps race-free: only the sweep that wins
// the insert sends the notification.
func (m *Matcher) insertMissed(ctx context.Context, missed domain.MissedEntry) (bool, error) {
	result := m.db.WithContext(ctx).Exec(
		`INSERT INTO missed_entries (id, type, visit_id, vision_id, centre_id, notified, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (visit_id, vision_id, type) DO NOTHING`,
		m.genID.Generate(),
		missed.Type,
		missed.VisitID,
		missed.VisionID,
		missed.CentreID,
		true,
		m.clock.Now().UTC(),
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (m *Matcher) notify(ctx context.Context, role string, centreID snowflake.ID, missedType, body string) {
	if m.notifier != nil {
		user, err := m.userRepo.FindByRoleAndCentre(ctx, m.db, role, centreID)
		if err != nil {
			m.log.Warn("notification target lookup failed",
				zap.String("role", role),
				zap.String("centre_id", centreID.String()),
				zap.Error(err),
			)
		} else if user != nil {
			if err := m.notifier.Notify(ctx, user.ID, notificationdomain.KindMissedEntry, missedType, body); err != nil {
				m.log.Warn("missed-entry notification failed",
					zap.String("user_id", user.ID.String()),
					zap.Error(err),
				)
			}
		}
	}

	if m.hub != nil {
		m.hub.Publish(liveevents.LiveEvent{
			Kind:       liveevents.KindMissedEntry,
			CentreID:   centreID.String(),
			MissedType: missedType,
			OccurredAt: m.clock.Now().UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
}

func (m *Matcher) ListMissed(ctx context.Context, filter domain.ListMissedFilter) ([]domain.MissedEntry, error) {
	var missed []domain.MissedEntry
	stmt := m.db.WithContext(ctx).Model(&domain.MissedEntry{})
	if filter.CentreID != 0 {
		stmt = stmt.Where("centre_id = ?", filter.CentreID)
	}
	if filter.Type != "" {
		stmt = stmt.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		stmt = stmt.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("created_at < ?", *filter.To)
	}
	err := stmt.Order("created_at desc, id desc").Find(&missed).Error
	if err != nil {
		return nil, err
	}
	return missed, nil
}
