package infrastructure

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"go-market/internal/catalog/application"
	"go-market/internal/catalog/domain"
	"go-market/pkg/errors"
	"go-market/pkg/middleware"
)

// HTTPHandler handles HTTP requests for the catalog
type HTTPHandler struct {
	useCase *application.CatalogUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.CatalogUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the catalog routes on a group that already resolves the acting profile
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	items := r.Group("/items")
	{
		items.POST("", h.CreateItem)
		items.GET("/:id", h.GetItem)
		items.PATCH("/:id/active", h.SetItemActive)
	}

	r.PUT("/options/default", h.PutDefaultOptions)
	r.POST("/delivery-events", h.CreateDeliveryEvent)
	r.POST("/pickup-locations", h.CreatePickupLocation)

	sellers := r.Group("/sellers/:id")
	{
		sellers.GET("/items", h.ListItems)
		sellers.GET("/options", h.GetDefaultOptions)
		sellers.GET("/delivery-events", h.ListDeliveryEvents)
		sellers.GET("/pickup-locations", h.ListPickupLocations)
	}
}

// SuccessResponse is the envelope of every successful response
type SuccessResponse struct {
	Data    interface{} `json:"data"`
	TraceID string      `json:"trace_id,omitempty"`
}

// CreateItemRequest is the request body for creating an item
type CreateItemRequest struct {
	Name             string                   `json:"name" binding:"required"`
	Description      string                   `json:"description"`
	Price            decimal.Decimal          `json:"price"`
	DiscountBrackets []domain.DiscountBracket `json:"discount_brackets"`
	UseInStock       bool                     `json:"use_in_stock"`
	InStock          int                      `json:"in_stock"`
	Options          *domain.ItemOptions      `json:"item_options"`
}

// PageQuery holds limit/offset query parameters
type PageQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// SetActiveRequest is the request body for toggling an item
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// DeliveryEventRequest is the request body for a delivery event
type DeliveryEventRequest struct {
	Title    string    `json:"title" binding:"required"`
	StartsAt time.Time `json:"starts_at" binding:"required"`
}

// PickupLocationRequest is the request body for a pickup location
type PickupLocationRequest struct {
	Label   string `json:"label" binding:"required"`
	Address string `json:"address" binding:"required"`
}

// CreateItem handles POST /items
// @Summary Create an item
// @Description The acting profile becomes the owner.
// @Tags catalog
// @Accept json
// @Produce json
// @Param X-Profile-ID header string true "Acting profile"
// @Param request body CreateItemRequest true "Item"
// @Success 201 {object} SuccessResponse{data=domain.Item}
// @Failure 400 {object} errors.ErrorResponse "Validation error"
// @Security BearerAuth
// @Router /api/v1/items [post]
func (h *HTTPHandler) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	item, err := h.useCase.CreateItem(c.Request.Context(), application.CreateItemInput{
		OwnerProfileID:   middleware.ActingProfile(c),
		Name:             req.Name,
		Description:      req.Description,
		Price:            req.Price,
		DiscountBrackets: req.DiscountBrackets,
		UseInStock:       req.UseInStock,
		InStock:          req.InStock,
		Options:          req.Options,
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusCreated, item)
}

// GetItem handles GET /items/:id
// @Summary Get an item
// @Tags catalog
// @Produce json
// @Param id path string true "Item ID"
// @Param X-Profile-ID header string true "Acting profile"
// @Success 200 {object} SuccessResponse{data=domain.Item}
// @Failure 404 {object} errors.ErrorResponse "Item not found"
// @Security BearerAuth
// @Router /api/v1/items/{id} [get]
func (h *HTTPHandler) GetItem(c *gin.Context) {
	id, ok := pathID(c, "invalid item id")
	if !ok {
		return
	}

	item, err := h.useCase.GetItem(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, item)
}

// SetItemActive handles PATCH /items/:id/active
// @Summary Activate or deactivate an item
// @Description Owner only.
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param X-Profile-ID header string true "Acting profile"
// @Param request body SetActiveRequest true "Active flag"
// @Success 200 {object} SuccessResponse{data=domain.Item}
// @Failure 400 {object} errors.ErrorResponse "Validation error"
// @Failure 403 {object} errors.ErrorResponse "Not the owner"
// @Failure 404 {object} errors.ErrorResponse "Item not found"
// @Security BearerAuth
// @Router /api/v1/items/{id}/active [patch]
func (h *HTTPHandler) SetItemActive(c *gin.Context) {
	id, ok := pathID(c, "invalid item id")
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	item, err := h.useCase.SetItemActive(c.Request.Context(), middleware.ActingProfile(c), id, *req.Active)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, item)
}

// ListItems handles GET /sellers/:id/items
// @Summary List a seller's items
// @Description Inactive items are only listed for their owner.
// @Tags catalog
// @Produce json
// @Param id path string true "Seller profile ID"
// @Param X-Profile-ID header string true "Acting profile"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} SuccessResponse{data=[]domain.Item}
// @Security BearerAuth
// @Router /api/v1/sellers/{id}/items [get]
func (h *HTTPHandler) ListItems(c *gin.Context) {
	owner, ok := pathID(c, "invalid seller id")
	if !ok {
		return
	}

	var page PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		c.Error(errors.NewValidation("invalid pagination", err.Error()))
		return
	}

	items, err := h.useCase.ListItemsByOwner(c.Request.Context(), owner, middleware.ActingProfile(c), application.Page{
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, items)
}

// PutDefaultOptions handles PUT /options/default
// @Summary Set default item options
// @Description Used for items without their own options.
// @Tags catalog
// @Accept json
// @Produce json
// @Param X-Profile-ID header string true "Acting profile"
// @Param request body domain.ItemOptions true "Options"
// @Success 200 {object} SuccessResponse{data=domain.ItemOptions}
// @Failure 400 {object} errors.ErrorResponse "Validation error"
// @Security BearerAuth
// @Router /api/v1/options/default [put]
func (h *HTTPHandler) PutDefaultOptions(c *gin.Context) {
	var req domain.ItemOptions
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	if err := h.useCase.PutDefaultOptions(c.Request.Context(), middleware.ActingProfile(c), &req); err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, req)
}

// GetDefaultOptions handles GET /sellers/:id/options
// @Summary Get a seller's default item options
// @Tags catalog
// @Produce json
// @Param id path string true "Seller profile ID"
// @Param X-Profile-ID header string true "Acting profile"
// @Success 200 {object} SuccessResponse{data=domain.ItemOptions}
// @Failure 404 {object} errors.ErrorResponse "No default options"
// @Security BearerAuth
// @Router /api/v1/sellers/{id}/options [get]
func (h *HTTPHandler) GetDefaultOptions(c *gin.Context) {
	owner, ok := pathID(c, "invalid seller id")
	if !ok {
		return
	}

	options, err := h.useCase.GetDefaultOptions(c.Request.Context(), owner)
	if err != nil {
		c.Error(err)
		return
	}
	if options == nil {
		c.Error(errors.NewNotFound("default options", owner))
		return
	}
	respond(c, http.StatusOK, options)
}

// CreateDeliveryEvent handles POST /delivery-events
// @Summary Create a delivery event
// @Tags catalog
// @Accept json
// @Produce json
// @Param X-Profile-ID header string true "Acting profile"
// @Param request body DeliveryEventRequest true "Event"
// @Success 201 {object} SuccessResponse{data=domain.DeliveryEvent}
// @Failure 400 {object} errors.ErrorResponse "Validation error"
// @Security BearerAuth
// @Router /api/v1/delivery-events [post]
func (h *HTTPHandler) CreateDeliveryEvent(c *gin.Context) {
	var req DeliveryEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	event, err := h.useCase.CreateDeliveryEvent(c.Request.Context(), middleware.ActingProfile(c), req.Title, req.StartsAt)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, event)
}

// ListDeliveryEvents handles GET /sellers/:id/delivery-events
// @Summary List a seller's delivery events
// @Tags catalog
// @Produce json
// @Param id path string true "Seller profile ID"
// @Param X-Profile-ID header string true "Acting profile"
// @Success 200 {object} SuccessResponse{data=[]domain.DeliveryEvent}
// @Security BearerAuth
// @Router /api/v1/sellers/{id}/delivery-events [get]
func (h *HTTPHandler) ListDeliveryEvents(c *gin.Context) {
	owner, ok := pathID(c, "invalid seller id")
	if !ok {
		return
	}

	events, err := h.useCase.ListDeliveryEvents(c.Request.Context(), owner)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, events)
}

// CreatePickupLocation handles POST /pickup-locations
// @Summary Create a pickup location
// @Tags catalog
// @Accept json
// @Produce json
// @Param X-Profile-ID header string true "Acting profile"
// @Param request body PickupLocationRequest true "Location"
// @Success 201 {object} SuccessResponse{data=domain.PickupLocation}
// @Failure 400 {object} errors.ErrorResponse "Validation error"
// @Security BearerAuth
// @Router /api/v1/pickup-locations [post]
func (h *HTTPHandler) CreatePickupLocation(c *gin.Context) {
	var req PickupLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	location, err := h.useCase.CreatePickupLocation(c.Request.Context(), middleware.ActingProfile(c), req.Label, req.Address)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, location)
}

// ListPickupLocations handles GET /sellers/:id/pickup-locations
// @Summary List a seller's pickup locations
// @Tags catalog
// @Produce json
// @Param id path string true "Seller profile ID"
// @Param X-Profile-ID header string true "Acting profile"
// @Success 200 {object} SuccessResponse{data=[]domain.PickupLocation}
// @Security BearerAuth
// @Router /api/v1/sellers/{id}/pickup-locations [get]
func (h *HTTPHandler) ListPickupLocations(c *gin.Context) {
	owner, ok := pathID(c, "invalid seller id")
	if !ok {
		return
	}

	locations, err := h.useCase.ListPickupLocations(c.Request.Context(), owner)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, locations)
}

func pathID(c *gin.Context, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(errors.NewValidation(message, nil))
		return uuid.Nil, false
	}
	return id, true
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{Data: data, TraceID: c.GetString(middleware.TraceIDKey)})
}
