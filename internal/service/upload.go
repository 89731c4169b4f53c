package service

import (
	"bitwise74/usercontent-api/internal/metrics"
	"bitwise74/usercontent-api/internal/model"
	"bitwise74/usercontent-api/internal/storage"
	"bitwise74/usercontent-api/pkg/util"
	"bitwise74/usercontent-api/pkg/validators"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultMaxSize      = 5 << 20
	DefaultPrefixLength = 20
)

type UploadOptions struct {
	MaxSize      int64    // Bytes, checked after the file is written
	AllowedExts  []string // Lowercase, with a leading dot
	PrefixLength int
}

type UploadInput struct {
	Token    string
	Type     string
	Filename string
	Body     io.Reader // nil when no file was sent
}

type UploadResult struct {
	ID     uint
	UserID string
	URL    string
	Path   string
	Size   int64
}

type Uploader struct {
	db      *gorm.DB
	blobs   *storage.Local
	audit   *AuditLogger
	replica *Replica
	opts    UploadOptions
}

func NewUploader(db *gorm.DB, blobs *storage.Local, audit *AuditLogger, replica *Replica, opts UploadOptions) *Uploader {
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}

	if len(opts.AllowedExts) == 0 {
		opts.AllowedExts = validators.DefaultAllowedExts
	}

	if opts.PrefixLength < DefaultPrefixLength {
		opts.PrefixLength = DefaultPrefixLength
	}

	return &Uploader{
		db:      db,
		blobs:   blobs,
		audit:   audit,
		replica: replica,
		opts:    opts,
	}
}

// Do stores a new file for the owner of in.Token. The size limit is enforced after the
// whole payload hit the disk, an oversized file is removed again before returning
func (u *Uploader) Do(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.Token == "" || in.Type == "" || in.Body == nil || in.Filename == "" {
		return nil, fmt.Errorf("%w: token, type and file are required", ErrMissingField)
	}

	userID, err := ResolveSession(ctx, u.db, in.Token)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(strings.ReplaceAll(in.Filename, `\`, "/"))
	if err := validators.FileNameValidator(name, u.opts.AllowedExts); err != nil {
		metrics.RecordUpload("rejected", 0)
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, strings.ToLower(filepath.Ext(name)))
	}

	prefix, err := util.RandStr(u.opts.PrefixLength)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to generate file name, %w", ErrDisk, err)
	}

	p, _, err := u.blobs.Write(prefix+"_"+name, in.Body)
	if err != nil {
		metrics.RecordUpload("error", 0)
		return nil, fmt.Errorf("%w: %w", ErrDisk, err)
	}

	info, err := u.blobs.Stat(p)
	if err != nil {
		metrics.RecordUpload("error", 0)
		return nil, fmt.Errorf("%w: failed to stat written file, %w", ErrDisk, err)
	}

	if info.Size() > u.opts.MaxSize {
		if err := u.blobs.Remove(p); err != nil {
			zap.L().Error("Failed to remove oversized upload", zap.String("path", p), zap.Error(err))
		}

		metrics.RecordUpload("too_large", 0)
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, u.opts.MaxSize)
	}

	url, err := u.blobs.URL(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDisk, err)
	}

	record := &model.Content{
		UserID:    userID,
		Path:      p,
		Type:      in.Type,
		CreatedAt: util.Now(),
	}

	if err := u.db.WithContext(ctx).Create(record).Error; err != nil {
		// Without a row nobody can reach the blob anymore
		if rmErr := u.blobs.Remove(p); rmErr != nil {
			zap.L().Error("Failed to remove blob after failed insert, it's orphaned now", zap.String("path", p), zap.Error(rmErr))
		}

		metrics.RecordUpload("error", 0)
		return nil, fmt.Errorf("%w: failed to save content record, %w", ErrDatabase, err)
	}

	u.audit.Log(userID, "File uploaded", fmt.Sprintf("Uploaded %s (%s)", name, in.Type))
	u.replica.Put(p)

	metrics.RecordUpload("success", info.Size())

	return &UploadResult{
		ID:     record.ID,
		UserID: userID,
		URL:    url,
		Path:   p,
		Size:   info.Size(),
	}, nil
}
