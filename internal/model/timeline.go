package model

import (
	"time"

	"github.com/google/uuid"
)

// Timeline entry type constants
const (
	TimelineEmail      = "email"
	TimelineSubmission = "submission"
	TimelineActivity   = "activity"
	TimelineFollowup   = "followup"
)

// TimelineEntry is an append-only log record of vendor-related activity.
// Entries are served oldest first and never updated or deleted.
type TimelineEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VendorID    uuid.UUID `gorm:"type:uuid;not null;index" json:"vendor_id"`
	Type        string    `gorm:"type:varchar(20);not null" json:"type"` // email, submission, activity, followup
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Status      string    `gorm:"type:varchar(20)" json:"status,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index" json:"date"`
}
