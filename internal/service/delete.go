package service

import (
	"bitwise74/usercontent-api/internal/metrics"
	"bitwise74/usercontent-api/internal/model"
	"bitwise74/usercontent-api/internal/storage"
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deleter struct {
	db      *gorm.DB
	blobs   *storage.Local
	audit   *AuditLogger
	replica *Replica
}

func NewDeleter(db *gorm.DB, blobs *storage.Local, audit *AuditLogger, replica *Replica) *Deleter {
	return &Deleter{
		db:      db,
		blobs:   blobs,
		audit:   audit,
		replica: replica,
	}
}

// One deletes a single file owned by the owner of token. The blob goes first, if
// that fails the record is kept so the file stays reachable
func (d *Deleter) One(ctx context.Context, token string, id uint) error {
	if token == "" || id == 0 {
		return fmt.Errorf("%w: token and id are required", ErrMissingField)
	}

	userID, err := ResolveSession(ctx, d.db, token)
	if err != nil {
		return err
	}

	record, err := findContent(ctx, d.db, id)
	if err != nil {
		return err
	}

	if record.UserID != userID {
		return ErrForbidden
	}

	if err := d.blobs.Remove(record.Path); err != nil {
		metrics.RecordDeletion("error")
		return fmt.Errorf("%w: failed to remove blob, %w", ErrDisk, err)
	}

	metrics.RecordDeletion("success")

	err = d.db.
		WithContext(ctx).
		Where("id = ?", record.ID).
		Delete(&model.Content{}).
		Error
	if err != nil {
		return fmt.Errorf("%w: failed to delete content record, %w", ErrDatabase, err)
	}

	d.audit.Log(userID, "File deleted", fmt.Sprintf("Deleted %s", filepath.Base(record.Path)))
	d.replica.Delete(record.Path)

	return nil
}

// All deletes every file owned by the owner of token and returns how many blobs were
// removed. Blob failures are logged and skipped, the records are deleted regardless
func (d *Deleter) All(ctx context.Context, token string) (int, error) {
	userID, err := ResolveSession(ctx, d.db, token)
	if err != nil {
		return 0, err
	}

	var records []model.Content

	err = d.db.
		WithContext(ctx).
		Where("userid = ?", userID).
		Find(&records).
		Error
	if err != nil {
		return 0, fmt.Errorf("%w: failed to lookup user content, %w", ErrDatabase, err)
	}

	if len(records) == 0 {
		return 0, nil
	}

	ids := make([]uint, 0, len(records))
	removed := make([]string, 0, len(records))

	for _, r := range records {
		ids = append(ids, r.ID)

		if err := d.blobs.Remove(r.Path); err != nil {
			metrics.RecordDeletion("error")
			zap.L().Warn("Failed to remove blob, skipping",
				zap.String("user_id", userID),
				zap.Uint("id", r.ID),
				zap.String("path", r.Path),
				zap.Error(err))
			continue
		}

		metrics.RecordDeletion("success")
		removed = append(removed, r.Path)
	}

	err = d.db.
		WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&model.Content{}).
		Error
	if err != nil {
		return len(removed), fmt.Errorf("%w: failed to delete content records, %w", ErrDatabase, err)
	}

	d.audit.Log(userID, "All files deleted", fmt.Sprintf("Deleted %d of %d files", len(removed), len(records)))
	d.replica.Delete(removed...)

	return len(removed), nil
}
