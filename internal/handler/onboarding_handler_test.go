package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vendorhub/internal/model"
	"vendorhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubOnboardingService records the arguments it was called with and replies
// with canned values.
type stubOnboardingService struct {
	lastEmail string
	lastToken string
	lastKind  string
	err       error
	state     *service.OnboardingStateResponse
}

func (s *stubOnboardingService) RequestCode(_ context.Context, email string) error {
	s.lastEmail = email
	return s.err
}

func (s *stubOnboardingService) VerifyCode(_ context.Context, email, _ string) (*service.OnboardingStateResponse, error) {
	s.lastEmail = email
	if s.err != nil {
		return nil, s.err
	}
	return s.state, nil
}

func (s *stubOnboardingService) GetState(_ context.Context, token string) (*service.OnboardingStateResponse, error) {
	s.lastToken = token
	if s.err != nil {
		return nil, s.err
	}
	return s.state, nil
}

func (s *stubOnboardingService) SubmitStep(_ context.Context, token, kind string, _ json.RawMessage) (*service.OnboardingStateResponse, error) {
	s.lastToken = token
	s.lastKind = kind
	if s.err != nil {
		return nil, s.err
	}
	return s.state, nil
}

func (s *stubOnboardingService) Finalize(_ context.Context, token string) (*service.FinalizeResponse, error) {
	s.lastToken = token
	if s.err != nil {
		return nil, s.err
	}
	return &service.FinalizeResponse{Success: true, Message: "Onboarding completed successfully!"}, nil
}

func onboardingRouter(stub *stubOnboardingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewOnboardingHandler(stub).RegisterRoutes(router.Group(""))
	return router
}

func defaultState() *service.OnboardingStateResponse {
	return &service.OnboardingStateResponse{
		CurrentStep:    1,
		CompletedSteps: []int{0},
		VendorID:       "a6b7b570-52dc-4dd9-a34f-4c0f0c0c2b1d",
		Token:          "tok-123",
	}
}

func TestRequestCodeEndpoint(t *testing.T) {
	stub := &stubOnboardingService{}
	router := onboardingRouter(stub)

	req := httptest.NewRequest("POST", "/api/onboarding/otp",
		strings.NewReader(`{"email": "vendor@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "vendor@example.com", stub.lastEmail)
}

func TestRequestCodeEndpointRejectsBadBody(t *testing.T) {
	router := onboardingRouter(&stubOnboardingService{})

	req := httptest.NewRequest("POST", "/api/onboarding/otp",
		strings.NewReader(`{"email": "not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyCodeEndpointMapsInvalidCode(t *testing.T) {
	stub := &stubOnboardingService{err: model.ErrInvalidCode}
	router := onboardingRouter(stub)

	req := httptest.NewRequest("POST", "/api/onboarding/otp/verify",
		strings.NewReader(`{"email": "vendor@example.com", "otp": "000000"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStateRequiresToken(t *testing.T) {
	router := onboardingRouter(&stubOnboardingService{state: defaultState()})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/onboarding/state", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetStateAcceptsQueryToken(t *testing.T) {
	stub := &stubOnboardingService{state: defaultState()}
	router := onboardingRouter(stub)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/onboarding/state?token=tok-123", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok-123", stub.lastToken)
	assert.Contains(t, w.Body.String(), `"currentStep":1`)
}

func TestSubmitStepAcceptsHeaderToken(t *testing.T) {
	stub := &stubOnboardingService{state: defaultState()}
	router := onboardingRouter(stub)

	req := httptest.NewRequest("POST", "/api/onboarding/steps/contact",
		strings.NewReader(`{"primary_contact_name": "Dana"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Onboarding-Token", "tok-456")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok-456", stub.lastToken)
	assert.Equal(t, "contact", stub.lastKind)
}

func TestSubmitStepRequiresBody(t *testing.T) {
	router := onboardingRouter(&stubOnboardingService{state: defaultState()})

	req := httptest.NewRequest("POST", "/api/onboarding/steps/business?token=tok-123", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitStepMapsOutOfSequence(t *testing.T) {
	stub := &stubOnboardingService{err: model.ErrOutOfSequence}
	router := onboardingRouter(stub)

	req := httptest.NewRequest("POST", "/api/onboarding/steps/banking?token=tok-123",
		strings.NewReader(`{"bank_name": "First National"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFinalizeEndpoint(t *testing.T) {
	stub := &stubOnboardingService{}
	router := onboardingRouter(stub)

	req := httptest.NewRequest("POST", "/api/onboarding/finalize?token=tok-123", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok-123", stub.lastToken)
	assert.Contains(t, w.Body.String(), `"success":true`)
}

func TestFinalizeMapsAlreadyCompleted(t *testing.T) {
	stub := &stubOnboardingService{err: model.ErrAlreadyCompleted}
	router := onboardingRouter(stub)

	req := httptest.NewRequest("POST", "/api/onboarding/finalize?token=tok-123", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
