package repository

import (
	"context"

	"vendorhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TimelineRepository interface {
	Append(ctx context.Context, entry *model.TimelineEntry) error
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.TimelineEntry, error)
}

type timelineRepository struct {
	db *gorm.DB
}

func NewTimelineRepository(db *gorm.DB) TimelineRepository {
	return &timelineRepository{db: db}
}

func (r *timelineRepository) Append(ctx context.Context, entry *model.TimelineEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

// ListByVendor returns the vendor's timeline oldest first.
func (r *timelineRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.TimelineEntry, error) {
	var entries []model.TimelineEntry
	if err := GetDB(ctx, r.db).
		Where("vendor_id = ?", vendorID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
