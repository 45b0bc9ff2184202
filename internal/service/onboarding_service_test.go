package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"vendorhub/internal/model"
	"vendorhub/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- In-memory fakes shared by the service tests ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeVendorRepo struct {
	vendors map[uuid.UUID]model.Vendor
}

func newFakeVendorRepo() *fakeVendorRepo {
	return &fakeVendorRepo{vendors: make(map[uuid.UUID]model.Vendor)}
}

func (r *fakeVendorRepo) Create(_ context.Context, vendor *model.Vendor) error {
	if vendor.ID == uuid.Nil {
		vendor.ID = uuid.New()
	}
	vendor.CreatedAt = time.Now()
	r.vendors[vendor.ID] = *vendor
	return nil
}

func (r *fakeVendorRepo) Update(_ context.Context, vendor *model.Vendor) error {
	if _, ok := r.vendors[vendor.ID]; !ok {
		return model.ErrNotFound
	}
	r.vendors[vendor.ID] = *vendor
	return nil
}

func (r *fakeVendorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Vendor, error) {
	vendor, ok := r.vendors[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	copied := vendor
	return &copied, nil
}

func (r *fakeVendorRepo) List(_ context.Context, filter repository.VendorFilter) ([]model.Vendor, int64, error) {
	var matched []model.Vendor
	for _, v := range r.vendors {
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		if filter.Category != "" && v.Category != filter.Category {
			continue
		}
		matched = append(matched, v)
	}
	return matched, int64(len(matched)), nil
}

func (r *fakeVendorRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, v := range r.vendors {
		counts[v.Status]++
	}
	return counts, nil
}

type fakeTimelineRepo struct {
	entries []model.TimelineEntry
}

func (r *fakeTimelineRepo) Append(_ context.Context, entry *model.TimelineEntry) error {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeTimelineRepo) ListByVendor(_ context.Context, vendorID uuid.UUID) ([]model.TimelineEntry, error) {
	var entries []model.TimelineEntry
	for _, e := range r.entries {
		if e.VendorID == vendorID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

type fakeOnboardingRepo struct {
	sessions map[string]model.OnboardingSession
	codes    []model.OtpCode
	docs     []model.OnboardingDocument
}

func newFakeOnboardingRepo() *fakeOnboardingRepo {
	return &fakeOnboardingRepo{sessions: make(map[string]model.OnboardingSession)}
}

func (r *fakeOnboardingRepo) CreateSession(_ context.Context, session *model.OnboardingSession) error {
	session.ID = uuid.New()
	r.sessions[session.Token] = *session
	return nil
}

func (r *fakeOnboardingRepo) UpdateSession(_ context.Context, session *model.OnboardingSession) error {
	if _, ok := r.sessions[session.Token]; !ok {
		return model.ErrUnauthorized
	}
	r.sessions[session.Token] = *session
	return nil
}

func (r *fakeOnboardingRepo) FindSessionByToken(_ context.Context, token string) (*model.OnboardingSession, error) {
	session, ok := r.sessions[token]
	if !ok {
		return nil, model.ErrUnauthorized
	}
	copied := session
	copied.CompletedSteps = append(copied.CompletedSteps[:0:0], session.CompletedSteps...)
	return &copied, nil
}

func (r *fakeOnboardingRepo) SaveCode(_ context.Context, code *model.OtpCode) error {
	code.ID = uuid.New()
	r.codes = append(r.codes, *code)
	return nil
}

func (r *fakeOnboardingRepo) FindActiveCode(_ context.Context, email string, now time.Time) (*model.OtpCode, error) {
	for i := len(r.codes) - 1; i >= 0; i-- {
		if r.codes[i].Email == email && r.codes[i].ExpiresAt.After(now) {
			code := r.codes[i]
			return &code, nil
		}
	}
	return nil, model.ErrInvalidCode
}

func (r *fakeOnboardingRepo) DeleteCodesByEmail(_ context.Context, email string) error {
	kept := r.codes[:0]
	for _, code := range r.codes {
		if code.Email != email {
			kept = append(kept, code)
		}
	}
	r.codes = kept
	return nil
}

func (r *fakeOnboardingRepo) SaveDocuments(_ context.Context, docs []model.OnboardingDocument) error {
	r.docs = append(r.docs, docs...)
	return nil
}

func (r *fakeOnboardingRepo) ListDocumentsByVendor(_ context.Context, vendorID uuid.UUID) ([]model.OnboardingDocument, error) {
	var docs []model.OnboardingDocument
	for _, d := range r.docs {
		if d.VendorID == vendorID {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

type fakeMailer struct {
	codes   []string
	notices []string
	fail    bool
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, email, code string) error {
	if m.fail {
		return fmt.Errorf("smtp unreachable")
	}
	m.codes = append(m.codes, code)
	return nil
}

func (m *fakeMailer) SendCompletionNotice(_ context.Context, email string) error {
	m.notices = append(m.notices, email)
	return nil
}

// --- Fixtures ---

type onboardingFixture struct {
	svc            OnboardingService
	onboardingRepo *fakeOnboardingRepo
	vendorRepo     *fakeVendorRepo
	timelineRepo   *fakeTimelineRepo
	mailer         *fakeMailer
}

func newOnboardingFixture() *onboardingFixture {
	onboardingRepo := newFakeOnboardingRepo()
	vendorRepo := newFakeVendorRepo()
	timelineRepo := &fakeTimelineRepo{}
	mailer := &fakeMailer{}
	svc := NewOnboardingService(onboardingRepo, vendorRepo, timelineRepo, fakeTxManager{}, mailer, nil)
	return &onboardingFixture{
		svc:            svc,
		onboardingRepo: onboardingRepo,
		vendorRepo:     vendorRepo,
		timelineRepo:   timelineRepo,
		mailer:         mailer,
	}
}

func (f *onboardingFixture) verifiedState(t *testing.T) *OnboardingStateResponse {
	t.Helper()
	require.NoError(t, f.svc.RequestCode(context.Background(), "vendor@example.com"))
	state, err := f.svc.VerifyCode(context.Background(), "vendor@example.com", "123456")
	require.NoError(t, err)
	return state
}

func businessPayload() json.RawMessage {
	return json.RawMessage(`{
		"company_name": "TechCorp Solutions",
		"business_type": "corporation",
		"tax_id": "12-3456789",
		"registration_number": "REG-2020-771",
		"description": "Enterprise software vendor",
		"established_year": 2010,
		"employees": 120
	}`)
}

func contactPayload() json.RawMessage {
	return json.RawMessage(`{
		"primary_contact_name": "Dana Reeves",
		"primary_contact_email": "dana@techcorp.com",
		"primary_contact_phone": "+1-555-0100",
		"address": {"street": "1 Main St", "city": "Austin", "state": "TX", "zip_code": "73301", "country": "US"}
	}`)
}

func bankingPayload() json.RawMessage {
	return json.RawMessage(`{
		"bank_name": "First National",
		"account_number": "000123456",
		"routing_number": "110000000",
		"account_type": "checking",
		"bank_address": {"street": "2 Bank Ave", "city": "Austin", "state": "TX", "zip_code": "73301"}
	}`)
}

func compliancePayload() json.RawMessage {
	return json.RawMessage(`{
		"certifications": ["ISO 9001"],
		"insurance_details": {"provider": "Acme Insurance", "policy_number": "POL-99", "coverage": "1000000.00", "expiry_date": "2027-01-01T00:00:00Z"},
		"quality_standards": ["Six Sigma"]
	}`)
}

// --- Tests ---

func TestRequestCodeDispatchesSixDigits(t *testing.T) {
	f := newOnboardingFixture()

	require.NoError(t, f.svc.RequestCode(context.Background(), "vendor@example.com"))

	require.Len(t, f.mailer.codes, 1)
	assert.Regexp(t, `^[0-9]{6}$`, f.mailer.codes[0])
	require.Len(t, f.onboardingRepo.codes, 1)
	assert.True(t, f.onboardingRepo.codes[0].ExpiresAt.After(time.Now()))
}

func TestRequestCodeRejectsBadEmail(t *testing.T) {
	f := newOnboardingFixture()
	err := f.svc.RequestCode(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestRequestCodeSurfacesDispatchFailure(t *testing.T) {
	f := newOnboardingFixture()
	f.mailer.fail = true
	err := f.svc.RequestCode(context.Background(), "vendor@example.com")
	assert.Error(t, err)
}

func TestVerifyCodeRejectsBadFormats(t *testing.T) {
	f := newOnboardingFixture()
	require.NoError(t, f.svc.RequestCode(context.Background(), "vendor@example.com"))

	for _, code := range []string{"12345", "1234567", "12345a", "", "abcdef"} {
		_, err := f.svc.VerifyCode(context.Background(), "vendor@example.com", code)
		assert.ErrorIs(t, err, model.ErrInvalidCode, "code %q", code)
	}
}

func TestVerifyCodeRequiresIssuedCode(t *testing.T) {
	f := newOnboardingFixture()
	_, err := f.svc.VerifyCode(context.Background(), "vendor@example.com", "123456")
	assert.ErrorIs(t, err, model.ErrInvalidCode)
}

func TestVerifyCodeAcceptsAnySixDigitsOnceIssued(t *testing.T) {
	f := newOnboardingFixture()
	require.NoError(t, f.svc.RequestCode(context.Background(), "vendor@example.com"))

	state, err := f.svc.VerifyCode(context.Background(), "vendor@example.com", "999999")
	require.NoError(t, err)

	assert.Equal(t, 0, state.CurrentStep)
	assert.Empty(t, state.CompletedSteps)
	assert.NotEmpty(t, state.Token)
	assert.NotEmpty(t, state.VendorID)
	assert.False(t, state.ReadyToFinalize)

	// Vendor is created in the requested status with a welcome timeline entry.
	vendorID, err := uuid.Parse(state.VendorID)
	require.NoError(t, err)
	vendor, err := f.vendorRepo.FindByID(context.Background(), vendorID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRequested, vendor.Status)

	require.Len(t, f.timelineRepo.entries, 1)
	assert.Equal(t, model.TimelineEmail, f.timelineRepo.entries[0].Type)
}

func TestVerifyCodeConsumesCode(t *testing.T) {
	f := newOnboardingFixture()
	require.NoError(t, f.svc.RequestCode(context.Background(), "vendor@example.com"))

	_, err := f.svc.VerifyCode(context.Background(), "vendor@example.com", "111111")
	require.NoError(t, err)

	_, err = f.svc.VerifyCode(context.Background(), "vendor@example.com", "111111")
	assert.ErrorIs(t, err, model.ErrInvalidCode)
}

func TestSubmitStepAdvancesThroughSequence(t *testing.T) {
	f := newOnboardingFixture()
	state := f.verifiedState(t)

	payloads := map[string]json.RawMessage{
		model.StepBusiness:   businessPayload(),
		model.StepContact:    contactPayload(),
		model.StepBanking:    bankingPayload(),
		model.StepCompliance: compliancePayload(),
	}

	for i, kind := range model.OnboardingSteps {
		next, err := f.svc.SubmitStep(context.Background(), state.Token, kind, payloads[kind])
		require.NoError(t, err, "step %s", kind)
		assert.Equal(t, i+1, next.CurrentStep)
		assert.Contains(t, next.CompletedSteps, i)
	}

	final, err := f.svc.GetState(context.Background(), state.Token)
	require.NoError(t, err)
	assert.True(t, final.ReadyToFinalize)
	assert.Equal(t, []int{0, 1, 2, 3}, final.CompletedSteps)
}

func TestSubmitStepOutOfSequenceLeavesStateUnchanged(t *testing.T) {
	f := newOnboardingFixture()
	state := f.verifiedState(t)

	for _, kind := range []string{model.StepContact, model.StepBanking, model.StepCompliance} {
		_, err := f.svc.SubmitStep(context.Background(), state.Token, kind, contactPayload())
		assert.ErrorIs(t, err, model.ErrOutOfSequence, "step %s", kind)
	}

	unchanged, err := f.svc.GetState(context.Background(), state.Token)
	require.NoError(t, err)
	assert.Equal(t, 0, unchanged.CurrentStep)
	assert.Empty(t, unchanged.CompletedSteps)
}

func TestSubmitStepRejectsCompletedStepResubmission(t *testing.T) {
	f := newOnboardingFixture()
	state := f.verifiedState(t)

	_, err := f.svc.SubmitStep(context.Background(), state.Token, model.StepBusiness, businessPayload())
	require.NoError(t, err)

	_, err = f.svc.SubmitStep(context.Background(), state.Token, model.StepBusiness, businessPayload())
	assert.ErrorIs(t, err, model.ErrOutOfSequence)
}

func TestSubmitStepUnknownToken(t *testing.T) {
	f := newOnboardingFixture()
	_, err := f.svc.SubmitStep(context.Background(), "bogus", model.StepBusiness, businessPayload())
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestSubmitStepUnknownKind(t *testing.T) {
	f := newOnboardingFixture()
	state := f.verifiedState(t)
	_, err := f.svc.SubmitStep(context.Background(), state.Token, "shipping", businessPayload())
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestSubmitStepInvalidPayloadRejectedBeforeMutation(t *testing.T) {
	f := newOnboardingFixture()
	state := f.verifiedState(t)

	_, err := f.svc.SubmitStep(context.Background(), state.Token, model.StepBusiness,
		json.RawMessage(`{"company_name": "X"}`))
	assert.ErrorIs(t, err, model.ErrValidation)

	unchanged, err := f.svc.GetState(context.Background(), state.Token)
	require.NoError(t, err)
	assert.Equal(t, 0, unchanged.CurrentStep)
}

func TestBusinessStepBackfillsVendorName(t *testing.T) {
	f := newOnboardingFixture()
	state := f.verifiedState(t)

	_, err := f.svc.SubmitStep(context.Background(), state.Token, model.StepBusiness, businessPayload())
	require.NoError(t, err)

	vendorID, err := uuid.Parse(state.VendorID)
	require.NoError(t, err)
	vendor, err := f.vendorRepo.FindByID(context.Background(), vendorID)
	require.NoError(t, err)
	assert.Equal(t, "TechCorp Solutions", vendor.Name)
	assert.NotEmpty(t, vendor.BusinessDetails)
}

func TestSubmitStepStoresDocuments(t *testing.T) {
	f := newOnboardingFixture()
	state := f.verifiedState(t)

	payload := json.RawMessage(`{
		"company_name": "TechCorp Solutions",
		"business_type": "corporation",
		"tax_id": "12-3456789",
		"registration_number": "REG-2020-771",
		"description": "Enterprise software vendor",
		"established_year": 2010,
		"employees": 120,
		"documents": [{"file_name": "registration.pdf", "content": "aGVsbG8="}]
	}`)

	_, err := f.svc.SubmitStep(context.Background(), state.Token, model.StepBusiness, payload)
	require.NoError(t, err)

	require.Len(t, f.onboardingRepo.docs, 1)
	assert.Equal(t, "registration.pdf", f.onboardingRepo.docs[0].FileName)
	assert.Equal(t, model.StepBusiness, f.onboardingRepo.docs[0].Step)
	assert.Equal(t, []byte("hello"), f.onboardingRepo.docs[0].Content)

	// The stored detail block never carries the raw file contents.
	vendorID, _ := uuid.Parse(state.VendorID)
	vendor, err := f.vendorRepo.FindByID(context.Background(), vendorID)
	require.NoError(t, err)
	assert.NotContains(t, string(vendor.BusinessDetails), "aGVsbG8=")
}

func completeAllSteps(t *testing.T, f *onboardingFixture) *OnboardingStateResponse {
	t.Helper()
	state := f.verifiedState(t)
	payloads := map[string]json.RawMessage{
		model.StepBusiness:   businessPayload(),
		model.StepContact:    contactPayload(),
		model.StepBanking:    bankingPayload(),
		model.StepCompliance: compliancePayload(),
	}
	for _, kind := range model.OnboardingSteps {
		_, err := f.svc.SubmitStep(context.Background(), state.Token, kind, payloads[kind])
		require.NoError(t, err)
	}
	return state
}

func TestFinalizeRequiresAllSteps(t *testing.T) {
	f := newOnboardingFixture()
	state := f.verifiedState(t)

	_, err := f.svc.Finalize(context.Background(), state.Token)
	assert.ErrorIs(t, err, model.ErrOutOfSequence)
}

func TestFinalizeCompletesAndInertsToken(t *testing.T) {
	f := newOnboardingFixture()
	state := completeAllSteps(t, f)

	result, err := f.svc.Finalize(context.Background(), state.Token)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.Message)
	assert.Equal(t, []string{"vendor@example.com"}, f.mailer.notices)

	// Token is inert: every further operation is rejected.
	_, err = f.svc.GetState(context.Background(), state.Token)
	assert.ErrorIs(t, err, model.ErrAlreadyCompleted)
	_, err = f.svc.SubmitStep(context.Background(), state.Token, model.StepBusiness, businessPayload())
	assert.ErrorIs(t, err, model.ErrAlreadyCompleted)
	_, err = f.svc.Finalize(context.Background(), state.Token)
	assert.ErrorIs(t, err, model.ErrAlreadyCompleted)
}

func TestFinalizeAppendsSubmissionEntry(t *testing.T) {
	f := newOnboardingFixture()
	state := completeAllSteps(t, f)

	_, err := f.svc.Finalize(context.Background(), state.Token)
	require.NoError(t, err)

	vendorID, _ := uuid.Parse(state.VendorID)
	entries, err := f.timelineRepo.ListByVendor(context.Background(), vendorID)
	require.NoError(t, err)
	last := entries[len(entries)-1]
	assert.Equal(t, model.TimelineSubmission, last.Type)
	assert.Equal(t, "Application Submitted", last.Title)
}
