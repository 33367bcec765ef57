// Package migrations brings a database schema up to date
package migrations

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/amirphl/leadboard/models"
	"github.com/amirphl/leadboard/repository"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

//go:embed change_feed.sql
var changeFeedSQL string

// Options toggles the optional migration steps
type Options struct {
	ChangeFeed  bool
	SeedLookups bool
}

// DefaultOptions runs every step
func DefaultOptions() Options {
	return Options{ChangeFeed: true, SeedLookups: true}
}

// Run migrates every model, installs the change-feed triggers and seeds the sales lookups
func Run(ctx context.Context, db *gorm.DB, opts Options) error {
	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to auto-migrate models: %w", err)
	}
	logrus.WithField("models", len(models.All())).Info("schema migrated")

	if opts.ChangeFeed {
		if err := db.WithContext(ctx).Exec(changeFeedSQL).Error; err != nil {
			return fmt.Errorf("failed to install change-feed triggers: %w", err)
		}
		logrus.Info("change-feed triggers installed")
	}

	if opts.SeedLookups {
		if err := repository.NewSalesLookupRepository(db).EnsureDefaults(ctx); err != nil {
			return err
		}
		logrus.Info("sales lookups seeded")
	}

	return nil
}
