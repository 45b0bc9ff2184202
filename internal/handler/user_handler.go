package handler

import (
	"net/http"

	"vendorhub/internal/middleware"
	"vendorhub/internal/model"
	"vendorhub/internal/service"
	"vendorhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", middleware.RequireRole(model.RoleAdmin, model.RoleProcurement), h.Logout)
		auth.GET("/me", middleware.RequireRole(model.RoleAdmin, model.RoleProcurement), h.Me)
	}

	users := router.Group("/api/users")
	{
		users.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateUser)
	}
}

// Login authenticates a procurement user and sets session cookies
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.LoginDTO  true  "Credentials"
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /api/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	auth, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	middleware.SetTokenCookies(c, auth.Token, auth.RefreshToken)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, auth))
}

// Refresh rotates the refresh token and issues a new access token
// @Summary      Refresh session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /api/auth/refresh [post]
func (h *UserHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Refresh token is missing"))
		return
	}

	auth, err := h.userService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		middleware.ClearTokenCookies(c)
		writeError(c, err)
		return
	}

	middleware.SetTokenCookies(c, auth.Token, auth.RefreshToken)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, auth))
}

// Logout invalidates the session and clears cookies
// @Summary      Logout
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	userID, _ := c.Get("userID")
	if id, ok := userID.(string); ok {
		if err := h.userService.Logout(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
	}

	middleware.ClearTokenCookies(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Logged out"}))
}

// Me returns the authenticated user
// @Summary      Current user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/auth/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := c.Get("userID")
	id, ok := userID.(string)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// CreateUser provisions a procurement account
// @Summary      Create user
// @Tags         auth
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateUserDTO  true  "User"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}
