package service

import (
	"bitwise74/usercontent-api/internal/model"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ResolveSession returns the ID of the user the session token belongs to
func ResolveSession(ctx context.Context, db *gorm.DB, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: token", ErrMissingField)
	}

	var s model.Session

	err := db.
		WithContext(ctx).
		Where("token = ?", token).
		First(&s).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidSession
		}

		return "", fmt.Errorf("%w: failed to lookup session, %w", ErrDatabase, err)
	}

	if s.UserID == "" {
		return "", ErrInvalidSession
	}

	return s.UserID, nil
}
