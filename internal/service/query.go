package service

import (
	"bitwise74/usercontent-api/internal/model"
	"bitwise74/usercontent-api/internal/storage"
	"bitwise74/usercontent-api/pkg/util"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type FileInfo struct {
	ID         uint   `json:"id"`
	UserID     string `json:"user_id"`
	Type       string `json:"file_type"`
	CreatedAt  string `json:"created_at"`
	Path       string `json:"file_path"`
	URL        string `json:"file_url"`
	Size       int64  `json:"size"`
	ModifiedAt string `json:"modified_at"`
}

type UploadEntry struct {
	ID        uint   `json:"id"`
	URL       string `json:"url"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

// Querier answers read-only questions about stored content
type Querier struct {
	db    *gorm.DB
	blobs *storage.Local
}

func NewQuerier(db *gorm.DB, blobs *storage.Local) *Querier {
	return &Querier{
		db:    db,
		blobs: blobs,
	}
}

// ContentID returns the ID of the content served under url
func (q *Querier) ContentID(ctx context.Context, url string) (uint, error) {
	if url == "" {
		return 0, fmt.Errorf("%w: url", ErrMissingField)
	}

	p, err := q.blobs.PathFor(url)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	var record model.Content

	err = q.db.
		WithContext(ctx).
		Where("path = ?", p).
		Select("id").
		First(&record).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}

		return 0, fmt.Errorf("%w: failed to lookup content by path, %w", ErrDatabase, err)
	}

	return record.ID, nil
}

// FileInfo combines the stored metadata of a file with a live stat of its blob
func (q *Querier) FileInfo(ctx context.Context, id uint) (*FileInfo, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: id", ErrMissingField)
	}

	record, err := findContent(ctx, q.db, id)
	if err != nil {
		return nil, err
	}

	stat, err := q.blobs.Stat(record.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStat, err)
	}

	url, err := q.blobs.URL(record.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStat, err)
	}

	return &FileInfo{
		ID:         record.ID,
		UserID:     record.UserID,
		Type:       record.Type,
		CreatedAt:  util.FormatTime(record.CreatedAt),
		Path:       record.Path,
		URL:        url,
		Size:       stat.Size(),
		ModifiedAt: util.FormatTime(stat.ModTime()),
	}, nil
}

// UserUploads lists everything the owner of token uploaded, oldest first
func (q *Querier) UserUploads(ctx context.Context, token string) ([]UploadEntry, error) {
	userID, err := ResolveSession(ctx, q.db, token)
	if err != nil {
		return nil, err
	}

	var records []model.Content

	err = q.db.
		WithContext(ctx).
		Where("userid = ?", userID).
		Order("id asc").
		Find(&records).
		Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to lookup user uploads, %w", ErrDatabase, err)
	}

	if len(records) == 0 {
		return nil, ErrNotFound
	}

	entries := make([]UploadEntry, 0, len(records))
	for _, r := range records {
		url, err := q.blobs.URL(r.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d points outside the upload root, %w", ErrDatabase, r.ID, err)
		}

		entries = append(entries, UploadEntry{
			ID:        r.ID,
			URL:       url,
			Type:      r.Type,
			CreatedAt: util.FormatTime(r.CreatedAt),
		})
	}

	return entries, nil
}

func findContent(ctx context.Context, db *gorm.DB, id uint) (*model.Content, error) {
	var record model.Content

	err := db.
		WithContext(ctx).
		Where("id = ?", id).
		First(&record).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("%w: failed to fetch content record, %w", ErrDatabase, err)
	}

	return &record, nil
}
