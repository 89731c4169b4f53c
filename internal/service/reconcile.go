package service

import (
	"bitwise74/usercontent-api/internal/model"
	"bitwise74/usercontent-api/internal/storage"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reconciler removes orphaned blobs: files under the upload root that no content
// record points to. They're left behind when a process dies between writing a blob
// and saving its record. Files younger than grace are skipped since their upload
// might still be in flight
type Reconciler struct {
	db    *gorm.DB
	blobs *storage.Local
	grace time.Duration
}

func NewReconciler(db *gorm.DB, blobs *storage.Local, grace time.Duration) *Reconciler {
	return &Reconciler{
		db:    db,
		blobs: blobs,
		grace: grace,
	}
}

// Run does a single pass and returns the amount of removed blobs
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	entries, err := r.blobs.List()
	if err != nil {
		return 0, fmt.Errorf("failed to list upload root, %w", err)
	}

	cutoff := time.Now().Add(-r.grace)
	removed := 0

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}

		if !e.Mode().IsRegular() || strings.HasPrefix(e.Name(), ".") || e.ModTime().After(cutoff) {
			continue
		}

		p := r.blobs.Path(e.Name())

		var count int64
		err := r.db.
			WithContext(ctx).
			Model(model.Content{}).
			Where("path = ?", p).
			Count(&count).
			Error
		if err != nil {
			return removed, fmt.Errorf("failed to check if blob has a record, %w", err)
		}

		if count > 0 {
			continue
		}

		if err := r.blobs.Remove(p); err != nil {
			zap.L().Error("Failed to remove orphaned blob", zap.String("path", p), zap.Error(err))
			continue
		}

		zap.L().Debug("Removed orphaned blob", zap.String("path", p))
		removed++
	}

	return removed, nil
}

// Schedule runs the reconciler on the given cron spec until the returned
// scheduler is stopped
func (r *Reconciler) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		removed, err := r.Run(context.Background())
		if err != nil {
			zap.L().Error("Orphan reconciliation failed", zap.Int("removed", removed), zap.Error(err))
			return
		}

		zap.L().Info("Orphan reconciliation finished", zap.Int("removed", removed))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule, %w", err)
	}

	zap.L().Debug("Orphan reconciler attached", zap.String("schedule", spec))
	c.Start()

	return c, nil
}
