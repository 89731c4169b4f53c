package service

import (
	"bitwise74/usercontent-api/internal/model"
	"bitwise74/usercontent-api/pkg/util"
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditLogger appends account log entries in the background. The request that
// triggered an entry never waits for it and never fails because of it
type AuditLogger struct {
	db    *gorm.DB
	queue *TaskQueue
}

func NewAuditLogger(db *gorm.DB, q *TaskQueue) *AuditLogger {
	return &AuditLogger{
		db:    db,
		queue: q,
	}
}

// Log is safe to call on a nil logger, which drops the entry
func (a *AuditLogger) Log(userID, title, message string) {
	if a == nil {
		return
	}

	entry := &model.AccountLog{
		UserID:  userID,
		Title:   title,
		Message: message,
		Date:    util.Now(),
	}

	err := a.queue.Enqueue(&Task{
		Name: "account_log",
		Run: func(ctx context.Context) error {
			return a.db.WithContext(ctx).Create(entry).Error
		},
	})
	if err != nil {
		zap.L().Warn("Dropped account log entry",
			zap.String("user_id", userID),
			zap.String("title", title),
			zap.Error(err))
	}
}
