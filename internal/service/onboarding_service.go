package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"regexp"
	"sync"
	"time"

	"vendorhub/internal/model"
	"vendorhub/internal/repository"
	"vendorhub/internal/websocket"

	"gorm.io/datatypes"
)

const (
	otpTTL          = 10 * time.Minute
	dispatchTimeout = 5 * time.Second // bound on mailer calls
)

var otpFormat = regexp.MustCompile(`^[0-9]{6}$`)

// --- DTOs ---

type RequestCodeDTO struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyCodeDTO struct {
	Email string `json:"email" binding:"required,email"`
	Otp   string `json:"otp" binding:"required"`
}

// OnboardingStateResponse mirrors the wizard's resumable state.
type OnboardingStateResponse struct {
	CurrentStep     int    `json:"currentStep"`
	CompletedSteps  []int  `json:"completedSteps"`
	VendorID        string `json:"vendorId"`
	Token           string `json:"token"`
	ReadyToFinalize bool   `json:"readyToFinalize"`
}

type FinalizeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// --- Interface ---

// OnboardingService drives a vendor through the fixed step sequence. Sequencing
// is owned here, not by the caller: only the current step may be submitted.
type OnboardingService interface {
	RequestCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) (*OnboardingStateResponse, error)
	GetState(ctx context.Context, token string) (*OnboardingStateResponse, error)
	SubmitStep(ctx context.Context, token, kind string, payload json.RawMessage) (*OnboardingStateResponse, error)
	Finalize(ctx context.Context, token string) (*FinalizeResponse, error)
}

type onboardingService struct {
	onboardingRepo repository.OnboardingRepository
	vendorRepo     repository.VendorRepository
	timelineRepo   repository.TimelineRepository
	txManager      repository.TransactionManager
	mailer         Mailer
	hub            *websocket.Hub

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-token serialization
}

func NewOnboardingService(
	onboardingRepo repository.OnboardingRepository,
	vendorRepo repository.VendorRepository,
	timelineRepo repository.TimelineRepository,
	txManager repository.TransactionManager,
	mailer Mailer,
	hub *websocket.Hub,
) OnboardingService {
	return &onboardingService{
		onboardingRepo: onboardingRepo,
		vendorRepo:     vendorRepo,
		timelineRepo:   timelineRepo,
		txManager:      txManager,
		mailer:         mailer,
		hub:            hub,
		locks:          make(map[string]*sync.Mutex),
	}
}

// tokenLock returns the mutex serializing operations for one token. Racing
// step submissions on the same token are ordered, not interleaved.
func (s *onboardingService) tokenLock(token string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[token]
	if !ok {
		l = &sync.Mutex{}
		s.locks[token] = l
	}
	return l
}

func (s *onboardingService) dropTokenLock(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, token)
}

// --- Helpers ---

func newOnboardingToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func newOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func toStateResponse(session *model.OnboardingSession) *OnboardingStateResponse {
	completed := make([]int, len(session.CompletedSteps))
	copy(completed, session.CompletedSteps)
	return &OnboardingStateResponse{
		CurrentStep:     session.CurrentStep,
		CompletedSteps:  completed,
		VendorID:        session.VendorID.String(),
		Token:           session.Token,
		ReadyToFinalize: session.ReadyToFinalize(),
	}
}

// --- Implementation ---

func (s *onboardingService) RequestCode(ctx context.Context, email string) error {
	if !validEmail(email) {
		return validationErr("email is not a valid address")
	}

	code, err := newOtpCode()
	if err != nil {
		return err
	}

	if err := s.onboardingRepo.SaveCode(ctx, &model.OtpCode{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(otpTTL),
	}); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()
	if err := s.mailer.SendVerificationCode(sendCtx, email, code); err != nil {
		return fmt.Errorf("failed to dispatch verification code: %w", err)
	}

	return nil
}

// VerifyCode accepts any six-digit code as long as one was issued for the
// email and has not expired. That matches the observed contract of the system
// this replaces; tightening it to an exact-match check is a product decision.
func (s *onboardingService) VerifyCode(ctx context.Context, email, code string) (*OnboardingStateResponse, error) {
	if !validEmail(email) {
		return nil, validationErr("email is not a valid address")
	}
	if !otpFormat.MatchString(code) {
		return nil, model.ErrInvalidCode
	}

	if _, err := s.onboardingRepo.FindActiveCode(ctx, email, time.Now()); err != nil {
		return nil, err
	}

	token, err := newOnboardingToken()
	if err != nil {
		return nil, err
	}

	var session *model.OnboardingSession
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		vendor := &model.Vendor{
			Name:   email, // replaced by the company name on the business step
			Email:  email,
			Status: model.StatusRequested,
		}
		if createErr := s.vendorRepo.Create(txCtx, vendor); createErr != nil {
			return fmt.Errorf("failed to create vendor: %w", createErr)
		}

		session = &model.OnboardingSession{
			VendorID:       vendor.ID,
			Email:          email,
			Token:          token,
			CurrentStep:    0,
			CompletedSteps: datatypes.JSONSlice[int]{},
			Status:         model.SessionInProgress,
		}
		if createErr := s.onboardingRepo.CreateSession(txCtx, session); createErr != nil {
			return fmt.Errorf("failed to create onboarding session: %w", createErr)
		}

		entry := &model.TimelineEntry{
			VendorID:    vendor.ID,
			Type:        model.TimelineEmail,
			Title:       "Welcome Email Sent",
			Description: "Automated welcome email sent to vendor",
			Status:      "completed",
		}
		if appendErr := s.timelineRepo.Append(txCtx, entry); appendErr != nil {
			return fmt.Errorf("failed to append timeline entry: %w", appendErr)
		}

		// Codes are single-use: consume everything issued for this email.
		return s.onboardingRepo.DeleteCodesByEmail(txCtx, email)
	})
	if err != nil {
		return nil, err
	}

	return toStateResponse(session), nil
}

func (s *onboardingService) GetState(ctx context.Context, token string) (*OnboardingStateResponse, error) {
	session, err := s.onboardingRepo.FindSessionByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionCompleted {
		return nil, model.ErrAlreadyCompleted
	}
	return toStateResponse(session), nil
}

func (s *onboardingService) SubmitStep(ctx context.Context, token, kind string, payload json.RawMessage) (*OnboardingStateResponse, error) {
	lock := s.tokenLock(token)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.onboardingRepo.FindSessionByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionCompleted {
		return nil, model.ErrAlreadyCompleted
	}

	idx := model.StepIndex(kind)
	if idx < 0 {
		return nil, validationErr("unknown step kind %q", kind)
	}
	if session.ReadyToFinalize() || idx != session.CurrentStep {
		return nil, model.ErrOutOfSequence
	}

	stored, docs, err := parseStepPayload(kind, payload)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		vendor, findErr := s.vendorRepo.FindByID(txCtx, session.VendorID)
		if findErr != nil {
			return findErr
		}

		switch kind {
		case model.StepBusiness:
			vendor.BusinessDetails = stored
			var d struct {
				CompanyName string `json:"company_name"`
			}
			if unmarshalErr := json.Unmarshal(stored, &d); unmarshalErr == nil && d.CompanyName != "" {
				vendor.Name = d.CompanyName
			}
		case model.StepContact:
			vendor.ContactDetails = stored
		case model.StepBanking:
			vendor.BankingDetails = stored
		case model.StepCompliance:
			vendor.ComplianceDetails = stored
		}

		if updateErr := s.vendorRepo.Update(txCtx, vendor); updateErr != nil {
			return fmt.Errorf("failed to store %s details: %w", kind, updateErr)
		}

		if len(docs) > 0 {
			records := make([]model.OnboardingDocument, 0, len(docs))
			for _, doc := range docs {
				if doc.FileName == "" {
					return validationErr("attached document is missing a file name")
				}
				records = append(records, model.OnboardingDocument{
					VendorID: session.VendorID,
					Step:     kind,
					FileName: doc.FileName,
					Content:  doc.Content,
				})
			}
			if saveErr := s.onboardingRepo.SaveDocuments(txCtx, records); saveErr != nil {
				return fmt.Errorf("failed to store documents: %w", saveErr)
			}
		}

		session.CompletedSteps = append(session.CompletedSteps, idx)
		session.CurrentStep = idx + 1
		return s.onboardingRepo.UpdateSession(txCtx, session)
	})
	if err != nil {
		return nil, err
	}

	return toStateResponse(session), nil
}

func (s *onboardingService) Finalize(ctx context.Context, token string) (*FinalizeResponse, error) {
	lock := s.tokenLock(token)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.onboardingRepo.FindSessionByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.Status == model.SessionCompleted {
		return nil, model.ErrAlreadyCompleted
	}
	if !session.ReadyToFinalize() {
		return nil, model.ErrOutOfSequence
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		session.Status = model.SessionCompleted
		if updateErr := s.onboardingRepo.UpdateSession(txCtx, session); updateErr != nil {
			return fmt.Errorf("failed to complete session: %w", updateErr)
		}

		entry := &model.TimelineEntry{
			VendorID:    session.VendorID,
			Type:        model.TimelineSubmission,
			Title:       "Application Submitted",
			Description: "Vendor completed initial onboarding form",
			Status:      "completed",
		}
		return s.timelineRepo.Append(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}
	s.dropTokenLock(token)

	// Completion notice is advisory; the onboarding itself is already committed.
	noticeCtx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()
	if noticeErr := s.mailer.SendCompletionNotice(noticeCtx, session.Email); noticeErr != nil {
		log.Printf("onboarding: completion notice for %s failed: %v", session.Email, noticeErr)
	}

	if s.hub != nil {
		s.hub.Notify(websocket.Event{
			Event:    "onboarding.completed",
			VendorID: session.VendorID.String(),
		})
	}

	return &FinalizeResponse{Success: true, Message: "Onboarding completed successfully!"}, nil
}
