package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var errNilDB = errors.New("db cannot be nil")
var errNilCtx = errors.New("ctx cannot be nil")

// isDuplicateKey reports whether err is a unique constraint violation.
// Connections opened with TranslateError report gorm.ErrDuplicatedKey; the
// message checks cover connections opened without it.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// session returns a gorm session bound to ctx.
func session(ctx context.Context, db *gorm.DB) (*gorm.DB, error) {
	if db == nil {
		return nil, errNilDB
	}
	if ctx == nil {
		return nil, errNilCtx
	}
	return db.WithContext(ctx), nil
}

// notFound maps gorm.ErrRecordNotFound to the given sentinel and wraps anything else.
func notFound(err error, sentinel error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("error %s: %w", op, err)
}
