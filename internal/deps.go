package internal

import (
	"bitwise74/usercontent-api/aws"
	"bitwise74/usercontent-api/internal/service"
	"bitwise74/usercontent-api/internal/storage"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	DB         *gorm.DB
	Blobs      *storage.Local
	Tasks      *service.TaskQueue
	Audit      *service.AuditLogger
	S3         *aws.S3Client
	Replica    *service.Replica
	Uploader   *service.Uploader
	Querier    *service.Querier
	Deleter    *service.Deleter
	Reconciler *service.Reconciler
	Cron       *cron.Cron
}

// Close stops the background work and releases the database. Queued audit
// entries and replica tasks are drained before the database is closed
func (d *Deps) Close() {
	if d.Cron != nil {
		<-d.Cron.Stop().Done()
	}

	if d.Tasks != nil {
		d.Tasks.Close()
	}

	if d.DB != nil {
		sqlDB, err := d.DB.DB()
		if err != nil {
			zap.L().Error("Failed to get sql handle", zap.Error(err))
			return
		}

		if err := sqlDB.Close(); err != nil {
			zap.L().Error("Failed to close database", zap.Error(err))
		}
	}
}
