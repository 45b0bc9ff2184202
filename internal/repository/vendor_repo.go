package repository

import (
	"context"
	"errors"

	"vendorhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VendorFilter describes the composable list query: filter first, then sort,
// then paginate. Zero-valued fields impose no constraint.
type VendorFilter struct {
	Status        string
	Category      string
	Search        string
	SortBy        string
	SortDirection string
	Page          int
	Limit         int
}

// sortColumns whitelists sortable keys to their columns.
var sortColumns = map[string]string{
	"name":        "name",
	"email":       "email",
	"category":    "category",
	"status":      "status",
	"createdDate": "created_at",
	"created_at":  "created_at",
}

type VendorRepository interface {
	Create(ctx context.Context, vendor *model.Vendor) error
	Update(ctx context.Context, vendor *model.Vendor) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error)
	List(ctx context.Context, filter VendorFilter) ([]model.Vendor, int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type vendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) VendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) Create(ctx context.Context, vendor *model.Vendor) error {
	return GetDB(ctx, r.db).Create(vendor).Error
}

func (r *vendorRepository) Update(ctx context.Context, vendor *model.Vendor) error {
	return GetDB(ctx, r.db).Save(vendor).Error
}

func (r *vendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	var vendor model.Vendor
	if err := GetDB(ctx, r.db).First(&vendor, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepository) applyFilter(query *gorm.DB, filter VendorFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ? OR email ILIKE ?",
			"%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	return query
}

func (r *vendorRepository) List(ctx context.Context, filter VendorFilter) ([]model.Vendor, int64, error) {
	var vendors []model.Vendor
	var total int64

	db := GetDB(ctx, r.db)
	if err := r.applyFilter(db.Model(&model.Vendor{}), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if col, ok := sortColumns[filter.SortBy]; ok {
		dir := "ASC"
		if filter.SortDirection == "desc" {
			dir = "DESC"
		}
		order = col + " " + dir
	}

	offset := (filter.Page - 1) * filter.Limit
	fetchQuery := r.applyFilter(db.Model(&model.Vendor{}), filter)
	if err := fetchQuery.Order(order).Offset(offset).Limit(filter.Limit).Find(&vendors).Error; err != nil {
		return nil, 0, err
	}

	return vendors, total, nil
}

func (r *vendorRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := GetDB(ctx, r.db).Model(&model.Vendor{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
