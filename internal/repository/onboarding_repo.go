package repository

import (
	"context"
	"errors"
	"time"

	"vendorhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OnboardingRepository interface {
	CreateSession(ctx context.Context, session *model.OnboardingSession) error
	UpdateSession(ctx context.Context, session *model.OnboardingSession) error
	FindSessionByToken(ctx context.Context, token string) (*model.OnboardingSession, error)
	SaveCode(ctx context.Context, code *model.OtpCode) error
	FindActiveCode(ctx context.Context, email string, now time.Time) (*model.OtpCode, error)
	DeleteCodesByEmail(ctx context.Context, email string) error
	SaveDocuments(ctx context.Context, docs []model.OnboardingDocument) error
	ListDocumentsByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.OnboardingDocument, error)
}

type onboardingRepository struct {
	db *gorm.DB
}

func NewOnboardingRepository(db *gorm.DB) OnboardingRepository {
	return &onboardingRepository{db: db}
}

func (r *onboardingRepository) CreateSession(ctx context.Context, session *model.OnboardingSession) error {
	return GetDB(ctx, r.db).Create(session).Error
}

func (r *onboardingRepository) UpdateSession(ctx context.Context, session *model.OnboardingSession) error {
	return GetDB(ctx, r.db).Save(session).Error
}

func (r *onboardingRepository) FindSessionByToken(ctx context.Context, token string) (*model.OnboardingSession, error) {
	var session model.OnboardingSession
	if err := GetDB(ctx, r.db).First(&session, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrUnauthorized
		}
		return nil, err
	}
	return &session, nil
}

func (r *onboardingRepository) SaveCode(ctx context.Context, code *model.OtpCode) error {
	return GetDB(ctx, r.db).Create(code).Error
}

// FindActiveCode returns the most recent unexpired code for the email.
func (r *onboardingRepository) FindActiveCode(ctx context.Context, email string, now time.Time) (*model.OtpCode, error) {
	var code model.OtpCode
	if err := GetDB(ctx, r.db).
		Where("email = ? AND expires_at > ?", email, now).
		Order("created_at DESC").
		First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrInvalidCode
		}
		return nil, err
	}
	return &code, nil
}

func (r *onboardingRepository) DeleteCodesByEmail(ctx context.Context, email string) error {
	return GetDB(ctx, r.db).Where("email = ?", email).Delete(&model.OtpCode{}).Error
}

func (r *onboardingRepository) SaveDocuments(ctx context.Context, docs []model.OnboardingDocument) error {
	if len(docs) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&docs).Error
}

func (r *onboardingRepository) ListDocumentsByVendor(ctx context.Context, vendorID uuid.UUID) ([]model.OnboardingDocument, error) {
	var docs []model.OnboardingDocument
	if err := GetDB(ctx, r.db).
		Where("vendor_id = ?", vendorID).
		Order("created_at ASC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}
