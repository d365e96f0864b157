package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/techtech-dev-team/stranger-backoffice/internal/auth/domain"
	"github.com/techtech-dev-team/stranger-backoffice/internal/auth/password"
	"github.com/techtech-dev-team/stranger-backoffice/internal/config"
	"gorm.io/gorm"
)

// EnsureAdminUser seeds the bootstrap admin account when one does not exist.
// Skipped when no bootstrap password is configured.
func EnsureAdminUser(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	username := strings.TrimSpace(cfg.AdminUsername)
	if username == "" || cfg.AdminPassword == "" {
		return nil
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.WithContext(ctx).
			Table("users").
			Where("username = ?", username).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hash, err := password.Hash(cfg.AdminPassword)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		return tx.WithContext(ctx).Exec(
			`INSERT INTO users (id, username, name, phone, password_hash, role, region_id, branch_id, centre_id, active, created_at, updated_at)
			 VALUES (?, ?, ?, '', ?, ?, 0, 0, 0, ?, ?, ?)`,
			node.Generate(),
			username,
			"Administrator",
			hash,
			authdomain.RoleAdmin,
			true,
			now,
			now,
		).Error
	})
}
