package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"vendorhub/internal/service"
	"vendorhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type OnboardingHandler struct {
	onboardingService service.OnboardingService
}

func NewOnboardingHandler(onboardingService service.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboardingService: onboardingService}
}

func (h *OnboardingHandler) RegisterRoutes(router *gin.RouterGroup) {
	onboarding := router.Group("/api/onboarding")
	{
		onboarding.POST("/otp", h.RequestCode)
		onboarding.POST("/otp/verify", h.VerifyCode)
		onboarding.GET("/state", h.GetState)
		onboarding.POST("/steps/:kind", h.SubmitStep)
		onboarding.POST("/finalize", h.Finalize)
	}
}

// continuationToken pulls the onboarding token from the query string or the
// X-Onboarding-Token header.
func continuationToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	return strings.TrimSpace(c.GetHeader("X-Onboarding-Token"))
}

// RequestCode triggers out-of-band delivery of a one-time code
// @Summary      Request verification code
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        payload  body  service.RequestCodeDTO  true  "Email"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/onboarding/otp [post]
func (h *OnboardingHandler) RequestCode(c *gin.Context) {
	var req service.RequestCodeDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.onboardingService.RequestCode(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "OTP sent successfully"}))
}

// VerifyCode validates a code and opens an onboarding session
// @Summary      Verify code
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        payload  body  service.VerifyCodeDTO  true  "Email and code"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/onboarding/otp/verify [post]
func (h *OnboardingHandler) VerifyCode(c *gin.Context) {
	var req service.VerifyCodeDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	state, err := h.onboardingService.VerifyCode(c.Request.Context(), req.Email, req.Otp)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, state))
}

// GetState returns the resumable wizard state for a continuation token
// @Summary      Get onboarding state
// @Tags         onboarding
// @Produce      json
// @Param        token  query  string  true  "Continuation token"
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /api/onboarding/state [get]
func (h *OnboardingHandler) GetState(c *gin.Context) {
	token := continuationToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Onboarding token is missing"))
		return
	}

	state, err := h.onboardingService.GetState(c.Request.Context(), token)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, state))
}

// SubmitStep accepts the payload for the current wizard step
// @Summary      Submit onboarding step
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        kind   path   string  true  "Step kind: business, contact, banking, compliance"
// @Param        token  query  string  true  "Continuation token"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/onboarding/steps/{kind} [post]
func (h *OnboardingHandler) SubmitStep(c *gin.Context) {
	token := continuationToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Onboarding token is missing"))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Request body is required"))
		return
	}

	state, err := h.onboardingService.SubmitStep(c.Request.Context(), token, c.Param("kind"), json.RawMessage(body))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"success": true, "state": state}))
}

// Finalize completes onboarding and invalidates the continuation token
// @Summary      Finalize onboarding
// @Tags         onboarding
// @Produce      json
// @Param        token  query  string  true  "Continuation token"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/onboarding/finalize [post]
func (h *OnboardingHandler) Finalize(c *gin.Context) {
	token := continuationToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Onboarding token is missing"))
		return
	}

	result, err := h.onboardingService.Finalize(c.Request.Context(), token)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
