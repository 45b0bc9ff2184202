package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Onboarding step kinds, in wizard order.
const (
	StepBusiness   = "business"
	StepContact    = "contact"
	StepBanking    = "banking"
	StepCompliance = "compliance"
)

// OnboardingSteps is the fixed submission sequence. The step after the last
// one is the finalize stage.
var OnboardingSteps = []string{StepBusiness, StepContact, StepBanking, StepCompliance}

// StepIndex returns the position of a step kind, or -1 for an unknown kind.
func StepIndex(kind string) int {
	for i, s := range OnboardingSteps {
		if s == kind {
			return i
		}
	}
	return -1
}

// Onboarding session status constants
const (
	SessionInProgress = "IN_PROGRESS"
	SessionCompleted  = "COMPLETED"
)

// OnboardingSession tracks a vendor's progress through the wizard. The token
// is the continuation credential presented on every step submission.
type OnboardingSession struct {
	ID             uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VendorID       uuid.UUID                `gorm:"type:uuid;not null;index" json:"vendor_id"`
	Vendor         Vendor                   `gorm:"foreignKey:VendorID;constraint:OnDelete:CASCADE" json:"-"`
	Email          string                   `gorm:"type:varchar(255);not null;index" json:"email"`
	Token          string                   `gorm:"type:varchar(64);uniqueIndex;not null" json:"token"`
	CurrentStep    int                      `gorm:"not null;default:0" json:"current_step"`
	CompletedSteps datatypes.JSONSlice[int] `gorm:"type:jsonb" json:"completed_steps"`
	Status         string                   `gorm:"type:varchar(20);not null" json:"-"` // IN_PROGRESS, COMPLETED
	CreatedAt      time.Time                `gorm:"autoCreateTime" json:"-"`
	UpdatedAt      time.Time                `gorm:"autoUpdateTime" json:"-"`
}

// ReadyToFinalize reports whether all payload steps have been submitted.
func (s *OnboardingSession) ReadyToFinalize() bool {
	return s.CurrentStep >= len(OnboardingSteps)
}

// OtpCode is a one-time verification code issued to a vendor email. Codes
// expire; the onboarding token they mint does not.
type OtpCode struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(255);not null;index" json:"email"`
	Code      string    `gorm:"type:varchar(6);not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// OnboardingDocument stores a file attached to a step submission.
type OnboardingDocument struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VendorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"vendor_id"`
	Step      string    `gorm:"type:varchar(20);not null" json:"step"`
	FileName  string    `gorm:"type:varchar(255);not null" json:"file_name"`
	Content   []byte    `gorm:"type:bytea" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
