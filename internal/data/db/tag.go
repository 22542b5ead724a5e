package db

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pentesthub/pentest-hub/internal/data/model"
	"github.com/pentesthub/pentest-hub/internal/log"
	"github.com/pentesthub/pentest-hub/pkg/types"
)

// GormTagManager stores tags using a GORM DB connection.
type GormTagManager struct {
	db *gorm.DB
}

// NewGormTagManager creates a new GormTagManager.
func NewGormTagManager(db *gorm.DB) (*GormTagManager, error) {
	if db == nil {
		return nil, errNilDB
	}
	return &GormTagManager{db: db}, nil
}

// FindByName returns the tag with the given name or types.ErrTagNotFound.
func (manager *GormTagManager) FindByName(ctx context.Context, name string) (*model.Tag, error) {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}
	var tag model.Tag
	if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
		return nil, notFound(err, types.ErrTagNotFound, "retrieving tag")
	}
	return &tag, nil
}

// Create inserts a tag. A concurrent insert of the same name yields types.ErrTagCreateRace.
func (manager *GormTagManager) Create(ctx context.Context, name string) (*model.Tag, error) {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}
	log.NewLogger(ctx).Debug("CreateTag", zap.String("name", name))
	tag := &model.Tag{Name: name}
	if err := tx.Create(tag).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("%w: %s", types.ErrTagCreateRace, name)
		}
		return nil, fmt.Errorf("error creating tag: %w", err)
	}
	return tag, nil
}

// FindOrCreate returns the tag with the given name, creating it when missing.
func (manager *GormTagManager) FindOrCreate(ctx context.Context, name string) (*model.Tag, error) {
	tag, err := manager.FindByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, types.ErrTagNotFound) {
		return nil, err
	}
	tag, err = manager.Create(ctx, name)
	if errors.Is(err, types.ErrTagCreateRace) {
		return manager.FindByName(ctx, name)
	}
	return tag, err
}

// List returns every tag ordered by name.
func (manager *GormTagManager) List(ctx context.Context) ([]model.Tag, error) {
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}
	var tags []model.Tag
	if err := tx.Order("name").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("error listing tags: %w", err)
	}
	return tags, nil
}

// GetByIDs returns the tags with the given ids. Any unknown id yields types.ErrTagNotFound.
func (manager *GormTagManager) GetByIDs(ctx context.Context, ids []uint) ([]model.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	tx, err := session(ctx, manager.db)
	if err != nil {
		return nil, err
	}

	unique := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}

	var tags []model.Tag
	if err := tx.Where("id IN ?", ids).Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("error retrieving tags: %w", err)
	}
	if len(tags) != len(unique) {
		return nil, fmt.Errorf("%w: requested %d, found %d", types.ErrTagNotFound, len(unique), len(tags))
	}
	return tags, nil
}
