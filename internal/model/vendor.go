package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Vendor status enum constants
const (
	StatusRequested = "requested"
	StatusValidated = "validated"
	StatusPending   = "pending"
	StatusDenied    = "denied"
)

// VendorStatuses lists every valid status, in pipeline order.
var VendorStatuses = []string{StatusRequested, StatusValidated, StatusPending, StatusDenied}

// Priority enum constants for vendor requests
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// VendorCategories is the fixed set a vendor request may use.
var VendorCategories = map[string]bool{
	"technology":    true,
	"manufacturing": true,
	"logistics":     true,
	"consulting":    true,
	"marketing":     true,
	"finance":       true,
	"legal":         true,
	"healthcare":    true,
	"construction":  true,
	"other":         true,
}

// Vendor represents a prospective or registered vendor. Detail blocks are
// populated step by step during onboarding and stored as JSONB.
type Vendor struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name              string         `gorm:"type:varchar(255);not null;index" json:"name"`
	Email             string         `gorm:"type:varchar(255);not null;index" json:"email"`
	Category          string         `gorm:"type:varchar(50);index" json:"category"`
	Status            string         `gorm:"type:varchar(20);not null;index" json:"status"` // requested, validated, pending, denied
	Description       string         `gorm:"type:text" json:"description"`
	Priority          string         `gorm:"type:varchar(10)" json:"priority"` // low, medium, high
	BusinessDetails   datatypes.JSON `gorm:"type:jsonb" json:"business_details,omitempty"`
	ContactDetails    datatypes.JSON `gorm:"type:jsonb" json:"contact_details,omitempty"`
	BankingDetails    datatypes.JSON `gorm:"type:jsonb" json:"banking_details,omitempty"`
	ComplianceDetails datatypes.JSON `gorm:"type:jsonb" json:"compliance_details,omitempty"`
	CreatedAt         time.Time      `gorm:"autoCreateTime;index" json:"created_date"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// statusTransitions guards procurement review moves. Status changes are made by
// the procurement backend, not this API; the guard is exported for its use.
var statusTransitions = map[string][]string{
	StatusRequested: {StatusPending, StatusValidated, StatusDenied},
	StatusPending:   {StatusValidated, StatusDenied},
}

// CanTransition reports whether a vendor status may move from one value to another.
// validated and denied are terminal.
func CanTransition(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
