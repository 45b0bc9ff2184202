package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"vendorhub/internal/model"
	"vendorhub/internal/pdf"
	"vendorhub/internal/repository"
	"vendorhub/internal/websocket"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateVendorRequestDTO struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Category    string `json:"category" binding:"required"`
	Description string `json:"description" binding:"required"`
	Priority    string `json:"priority" binding:"required"`
}

type VendorResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Email             string          `json:"email"`
	Category          string          `json:"category"`
	Status            string          `json:"status"`
	Description       string          `json:"description,omitempty"`
	Priority          string          `json:"priority,omitempty"`
	CreatedDate       time.Time       `json:"created_date"`
	BusinessDetails   json.RawMessage `json:"business_details,omitempty"`
	ContactDetails    json.RawMessage `json:"contact_details,omitempty"`
	BankingDetails    json.RawMessage `json:"banking_details,omitempty"`
	ComplianceDetails json.RawMessage `json:"compliance_details,omitempty"`
}

// DashboardStats is the per-status vendor count, recomputed fresh per call.
type DashboardStats struct {
	Requested int64 `json:"requested"`
	Validated int64 `json:"validated"`
	Pending   int64 `json:"pending"`
	Denied    int64 `json:"denied"`
}

type TimelineEntryResponse struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Status      string    `json:"status,omitempty"`
}

type FollowupDTO struct {
	Message string `json:"message" binding:"required"`
}

// --- Interface ---

type VendorService interface {
	CreateRequest(ctx context.Context, req CreateVendorRequestDTO) (*VendorResponse, error)
	List(ctx context.Context, filter repository.VendorFilter) ([]VendorResponse, int64, error)
	GetByID(ctx context.Context, id string) (*VendorResponse, error)
	GetStats(ctx context.Context) (*DashboardStats, error)
	SendFollowup(ctx context.Context, vendorID, message string) error
	GetTimeline(ctx context.Context, vendorID string) ([]TimelineEntryResponse, error)
	ExportRecord(ctx context.Context, vendorID string) ([]byte, error)
}

type vendorService struct {
	vendorRepo   repository.VendorRepository
	timelineRepo repository.TimelineRepository
	txManager    repository.TransactionManager
	hub          *websocket.Hub
}

func NewVendorService(
	vendorRepo repository.VendorRepository,
	timelineRepo repository.TimelineRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) VendorService {
	return &vendorService{
		vendorRepo:   vendorRepo,
		timelineRepo: timelineRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// --- Validation ---

var validPriorities = map[string]bool{
	model.PriorityLow:    true,
	model.PriorityMedium: true,
	model.PriorityHigh:   true,
}

func validateVendorRequest(req CreateVendorRequestDTO) error {
	if len(req.Name) < 2 {
		return validationErr("name must be at least 2 characters")
	}
	if !validEmail(req.Email) {
		return validationErr("email is not a valid address")
	}
	if !model.VendorCategories[req.Category] {
		return validationErr("unknown category %q", req.Category)
	}
	if len(req.Description) < 10 {
		return validationErr("description must be at least 10 characters")
	}
	if !validPriorities[req.Priority] {
		return validationErr("priority must be low, medium or high")
	}
	return nil
}

// --- Implementation ---

func (s *vendorService) CreateRequest(ctx context.Context, req CreateVendorRequestDTO) (*VendorResponse, error) {
	if err := validateVendorRequest(req); err != nil {
		return nil, err
	}

	vendor := &model.Vendor{
		Name:        req.Name,
		Email:       req.Email,
		Category:    req.Category,
		Status:      model.StatusRequested,
		Description: req.Description,
		Priority:    req.Priority,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.vendorRepo.Create(txCtx, vendor); createErr != nil {
			return fmt.Errorf("failed to create vendor request: %w", createErr)
		}
		entry := &model.TimelineEntry{
			VendorID:    vendor.ID,
			Type:        model.TimelineActivity,
			Title:       "Vendor Request Created",
			Description: "Procurement filed a new vendor request",
			Status:      "completed",
		}
		return s.timelineRepo.Append(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.Notify(websocket.Event{
			Event:    "vendor.requested",
			VendorID: vendor.ID.String(),
			Name:     vendor.Name,
			Status:   vendor.Status,
		})
	}

	return toVendorResponse(vendor), nil
}

func (s *vendorService) List(ctx context.Context, filter repository.VendorFilter) ([]VendorResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Status != "" && !isKnownStatus(filter.Status) {
		return nil, 0, validationErr("unknown status %q", filter.Status)
	}

	vendors, total, err := s.vendorRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch vendors: %w", err)
	}

	res := make([]VendorResponse, 0, len(vendors))
	for i := range vendors {
		res = append(res, *toVendorResponse(&vendors[i]))
	}
	return res, total, nil
}

func (s *vendorService) GetByID(ctx context.Context, id string) (*VendorResponse, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	vendor, err := s.vendorRepo.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return toVendorResponse(vendor), nil
}

func (s *vendorService) GetStats(ctx context.Context) (*DashboardStats, error) {
	counts, err := s.vendorRepo.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute dashboard stats: %w", err)
	}
	return &DashboardStats{
		Requested: counts[model.StatusRequested],
		Validated: counts[model.StatusValidated],
		Pending:   counts[model.StatusPending],
		Denied:    counts[model.StatusDenied],
	}, nil
}

// SendFollowup appends exactly one followup entry; vendor status and every
// other field stay untouched.
func (s *vendorService) SendFollowup(ctx context.Context, vendorID, message string) error {
	uid, err := uuid.Parse(vendorID)
	if err != nil {
		return model.ErrNotFound
	}
	if message == "" {
		return validationErr("message is required")
	}

	vendor, err := s.vendorRepo.FindByID(ctx, uid)
	if err != nil {
		return err
	}

	entry := &model.TimelineEntry{
		VendorID:    vendor.ID,
		Type:        model.TimelineFollowup,
		Title:       "Follow-up Sent",
		Description: message,
		Status:      "pending",
	}
	if err := s.timelineRepo.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append followup: %w", err)
	}

	if s.hub != nil {
		s.hub.Notify(websocket.Event{
			Event:    "vendor.followup",
			VendorID: vendor.ID.String(),
			Name:     vendor.Name,
		})
	}
	return nil
}

func (s *vendorService) GetTimeline(ctx context.Context, vendorID string) ([]TimelineEntryResponse, error) {
	uid, err := uuid.Parse(vendorID)
	if err != nil {
		return nil, model.ErrNotFound
	}
	if _, err := s.vendorRepo.FindByID(ctx, uid); err != nil {
		return nil, err
	}

	entries, err := s.timelineRepo.ListByVendor(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch timeline: %w", err)
	}

	res := make([]TimelineEntryResponse, 0, len(entries))
	for _, e := range entries {
		res = append(res, TimelineEntryResponse{
			ID:          e.ID,
			Type:        e.Type,
			Title:       e.Title,
			Description: e.Description,
			Date:        e.CreatedAt,
			Status:      e.Status,
		})
	}
	return res, nil
}

func (s *vendorService) ExportRecord(ctx context.Context, vendorID string) ([]byte, error) {
	uid, err := uuid.Parse(vendorID)
	if err != nil {
		return nil, model.ErrNotFound
	}
	vendor, err := s.vendorRepo.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	entries, err := s.timelineRepo.ListByVendor(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch timeline: %w", err)
	}

	baseURL := os.Getenv("PUBLIC_BASE_URL")
	detailURL := ""
	if baseURL != "" {
		detailURL = baseURL + "/procurement/vendors/" + vendor.ID.String()
	}

	doc, err := pdf.RenderVendorRecord(vendor, entries, detailURL)
	if err != nil {
		return nil, fmt.Errorf("failed to export vendor record: %w", err)
	}
	return doc, nil
}

// --- Helpers ---

func isKnownStatus(status string) bool {
	for _, s := range model.VendorStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func toVendorResponse(v *model.Vendor) *VendorResponse {
	return &VendorResponse{
		ID:                v.ID,
		Name:              v.Name,
		Email:             v.Email,
		Category:          v.Category,
		Status:            v.Status,
		Description:       v.Description,
		Priority:          v.Priority,
		CreatedDate:       v.CreatedAt,
		BusinessDetails:   json.RawMessage(v.BusinessDetails),
		ContactDetails:    json.RawMessage(v.ContactDetails),
		BankingDetails:    json.RawMessage(v.BankingDetails),
		ComplianceDetails: json.RawMessage(v.ComplianceDetails),
	}
}
