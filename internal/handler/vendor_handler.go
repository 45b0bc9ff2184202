package handler

import (
	"net/http"

	"vendorhub/internal/middleware"
	"vendorhub/internal/model"
	"vendorhub/internal/repository"
	"vendorhub/internal/service"
	"vendorhub/pkg/pagination"
	"vendorhub/pkg/response"

	"github.com/gin-gonic/gin"
)

type VendorHandler struct {
	vendorService service.VendorService
}

func NewVendorHandler(vendorService service.VendorService) *VendorHandler {
	return &VendorHandler{vendorService: vendorService}
}

func (h *VendorHandler) RegisterRoutes(router *gin.RouterGroup) {
	procurement := middleware.RequireRole(model.RoleAdmin, model.RoleProcurement)
	vendors := router.Group("/api/vendor")
	{
		vendors.POST("/request", procurement, h.CreateRequest)
		vendors.GET("", procurement, h.List)
		vendors.GET("/stats", procurement, h.GetStats)
		vendors.GET("/:id", procurement, h.GetByID)
		vendors.POST("/:id/followup", procurement, h.SendFollowup)
		vendors.GET("/:id/timeline", procurement, h.GetTimeline)
		vendors.GET("/:id/export", procurement, h.ExportRecord)
	}
}

// CreateRequest files a new vendor request
// @Summary      Create vendor request
// @Tags         vendor
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body  service.CreateVendorRequestDTO  true  "Vendor request"
// @Success      201  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/vendor/request [post]
func (h *VendorHandler) CreateRequest(c *gin.Context) {
	var req service.CreateVendorRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vendor, err := h.vendorService.CreateRequest(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, vendor))
}

// List returns paginated vendors with filtering and sorting
// @Summary      List vendors
// @Tags         vendor
// @Security     BearerAuth
// @Produce      json
// @Param        page           query  int     false  "Page number (default: 1)"
// @Param        size           query  int     false  "Items per page (default: 20)"
// @Param        search         query  string  false  "Search by name or email"
// @Param        status         query  string  false  "Filter by status: requested, validated, pending, denied"
// @Param        category       query  string  false  "Filter by category"
// @Param        sortBy         query  string  false  "Sort key: name, email, category, status, createdDate"
// @Param        sortDirection  query  string  false  "asc or desc"
// @Success      200  {object}  response.Response
// @Router       /api/vendor [get]
func (h *VendorHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.VendorFilter{
		Status:        c.Query("status"),
		Category:      c.Query("category"),
		Search:        c.Query("search"),
		SortBy:        c.Query("sortBy"),
		SortDirection: c.Query("sortDirection"),
		Page:          params.Page,
		Limit:         params.Size,
	}

	vendors, total, err := h.vendorService.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, vendors, params.Page, params.Size, total))
}

// GetStats returns the per-status vendor counts
// @Summary      Dashboard statistics
// @Tags         vendor
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /api/vendor/stats [get]
func (h *VendorHandler) GetStats(c *gin.Context) {
	stats, err := h.vendorService.GetStats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// GetByID returns a single vendor
// @Summary      Get vendor
// @Tags         vendor
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Vendor ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/vendor/{id} [get]
func (h *VendorHandler) GetByID(c *gin.Context) {
	vendor, err := h.vendorService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, vendor))
}

// SendFollowup appends a followup entry to the vendor's timeline
// @Summary      Send follow-up
// @Tags         vendor
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path  string              true  "Vendor ID"
// @Param        payload  body  service.FollowupDTO  true  "Message"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/vendor/{id}/followup [post]
func (h *VendorHandler) SendFollowup(c *gin.Context) {
	var req service.FollowupDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	if err := h.vendorService.SendFollowup(c.Request.Context(), c.Param("id"), req.Message); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Follow-up sent"}))
}

// GetTimeline returns the vendor's activity timeline, oldest first
// @Summary      Get vendor timeline
// @Tags         vendor
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Vendor ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/vendor/{id}/timeline [get]
func (h *VendorHandler) GetTimeline(c *gin.Context) {
	timeline, err := h.vendorService.GetTimeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, timeline))
}

// ExportRecord downloads the vendor record as PDF
// @Summary      Export vendor record
// @Tags         vendor
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        id  path  string  true  "Vendor ID"
// @Success      200  {file}  binary
// @Failure      404  {object}  response.Response
// @Router       /api/vendor/{id}/export [get]
func (h *VendorHandler) ExportRecord(c *gin.Context) {
	doc, err := h.vendorService.ExportRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="vendor-`+c.Param("id")+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}
