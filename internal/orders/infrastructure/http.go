package infrastructure

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-market/internal/orders/application"
	"go-market/internal/orders/domain"
	"go-market/internal/orders/ports"
	"go-market/pkg/errors"
	"go-market/pkg/logger"
	"go-market/pkg/middleware"
	"go-market/pkg/payments"
)

const maxWebhookBody = 64 << 10

// HTTPHandler handles HTTP requests for orders
type HTTPHandler struct {
	useCase       *application.OrderUseCase
	webhookSecret string
	log           *logger.Logger
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.OrderUseCase, webhookSecret string, log *logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		useCase:       useCase,
		webhookSecret: webhookSecret,
		log:           log,
	}
}

// RegisterRoutes registers the order routes on a group that already resolves the acting profile.
// idempotent runs in front of the handlers that create orders or payment intents.
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup, idempotent ...gin.HandlerFunc) {
	with := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, idempotent...), handler)
	}

	orders := r.Group("/orders")
	{
		orders.POST("", with(h.CreateOrder)...)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/accept", h.AcceptOrder)
		orders.POST("/:id/reject", h.RejectOrder)
		orders.POST("/:id/cancel", h.CancelOrder)
		orders.POST("/:id/seller-delivery-confirmed", h.SellerDeliveryConfirmed)
		orders.POST("/:id/buyer-delivery-confirmed", h.BuyerDeliveryConfirmed)
		orders.POST("/:id/seller-payment-confirmed", h.SellerPaymentConfirmed)
		orders.POST("/:id/buyer-payment-confirmed", h.BuyerPaymentConfirmed)
		orders.PATCH("/:id/delivery-date", h.UpdateDeliveryDate)
		orders.POST("/:id/checkout", with(h.Checkout)...)
	}
}

// RegisterWebhook registers the payment gateway callback. It authenticates by signature, not by token.
func (h *HTTPHandler) RegisterWebhook(r *gin.RouterGroup) {
	r.POST("/orders/webhook/confirm-payment", h.ConfirmPaymentWebhook)
}

// SuccessResponse is the envelope of every successful response
type SuccessResponse struct {
	Data    interface{} `json:"data"`
	TraceID string      `json:"trace_id,omitempty"`
}

// OrderItemRequest is one requested line
type OrderItemRequest struct {
	ItemID   uuid.UUID `json:"item_id"`
	Quantity int       `json:"quantity"`
}

// CreateOrderRequest is the request body for creating an order
type CreateOrderRequest struct {
	Items            []OrderItemRequest `json:"items"`
	PaymentOption    string             `json:"payment_option"`
	ShippingLabel    string             `json:"shipping_label"`
	HomeDelivery     bool               `json:"home_delivery"`
	DeliveryEventID  *uuid.UUID         `json:"delivery_event_id"`
	PickupLocationID *uuid.UUID         `json:"pickup_location_id"`
}

// AcceptOrderRequest is the optional body for accepting an order
type AcceptOrderRequest struct {
	PaymentDetails        map[string]string `json:"payment_details"`
	EstimatedDeliveryDate string            `json:"estimated_delivery_date"`
}

// DeliveryDateRequest is the request body for moving the delivery date
type DeliveryDateRequest struct {
	EstimatedDeliveryDate string `json:"estimated_delivery_date" binding:"required"`
}

// ListOrdersQuery holds the list filters
type ListOrdersQuery struct {
	Role   string `form:"role"`
	Status string `form:"status"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
	Sort   string `form:"sort" binding:"omitempty,oneof=asc desc"`
}

// OrderListResponse is one page of orders
type OrderListResponse struct {
	Orders []*domain.Order `json:"orders"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// CheckoutResponse carries the payment intent for the client SDK
type CheckoutResponse struct {
	Order   *domain.Order         `json:"order"`
	Payment *domain.PaymentIntent `json:"payment"`
}

// CreateOrder creates a new order
// @Summary Create an order
// @Description Prices the requested items, reserves stock and opens the order for the acting buyer profile
// @Tags orders
// @Accept json
// @Produce json
// @Param X-Profile-ID header string true "Acting profile"
// @Param Idempotency-Key header string false "Replays the first response for the same key"
// @Param request body CreateOrderRequest true "Order creation request"
// @Success 201 {object} SuccessResponse{data=domain.Order} "Order created"
// @Failure 400 {object} errors.ErrorResponse "Validation error"
// @Failure 403 {object} errors.ErrorResponse "Items can not be ordered together"
// @Failure 404 {object} errors.ErrorResponse "Items missing or inactive"
// @Security BearerAuth
// @Router /api/v1/orders [post]
func (h *HTTPHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	items := make([]domain.RequestedItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.RequestedItem{ItemID: it.ItemID, Quantity: it.Quantity})
	}

	output, err := h.useCase.CreateOrder(c.Request.Context(), application.CreateOrderInput{
		BuyerProfileID:   middleware.ActingProfile(c),
		Items:            items,
		PaymentOption:    req.PaymentOption,
		ShippingLabel:    req.ShippingLabel,
		HomeDelivery:     req.HomeDelivery,
		DeliveryEventID:  req.DeliveryEventID,
		PickupLocationID: req.PickupLocationID,
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusCreated, output.Order)
}

// GetOrder retrieves an order by ID
// @Summary Get an order
// @Description Participants only
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Param X-Profile-ID header string true "Acting profile"
// @Success 200 {object} SuccessResponse{data=domain.Order}
// @Failure 401 {object} errors.ErrorResponse "Not a participant"
// @Failure 404 {object} errors.ErrorResponse "Order not found"
// @Security BearerAuth
// @Router /api/v1/orders/{id} [get]
func (h *HTTPHandler) GetOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	output, err := h.useCase.GetOrder(c.Request.Context(), application.GetOrderInput{
		ID:        id,
		ProfileID: middleware.ActingProfile(c),
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusOK, output.Order)
}

// ListOrders lists the acting profile's orders
// @Summary List orders
// @Tags orders
// @Produce json
// @Param X-Profile-ID header string true "Acting profile"
// @Param role query string false "any, buyer or seller"
// @Param status query string false "Order status"
// @Param limit query int false "Page size, at most 100"
// @Param offset query int false "Offset"
// @Param sort query string false "asc or desc by creation time"
// @Success 200 {object} SuccessResponse{data=OrderListResponse}
// @Security BearerAuth
// @Router /api/v1/orders [get]
func (h *HTTPHandler) ListOrders(c *gin.Context) {
	var q ListOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(errors.NewValidation("invalid query", err.Error()))
		return
	}

	output, err := h.useCase.ListOrders(c.Request.Context(), application.ListOrdersInput{
		ProfileID: middleware.ActingProfile(c),
		Role:      ports.Role(q.Role),
		Status:    domain.Status(q.Status),
		Limit:     q.Limit,
		Offset:    q.Offset,
		Ascending: q.Sort == "asc",
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusOK, OrderListResponse{
		Orders: output.Orders,
		Total:  output.Total,
		Limit:  output.Limit,
		Offset: output.Offset,
	})
}

// AcceptOrder accepts a pending order
// @Summary Accept an order
// @Description Seller only. Payment details default to the accepted option matching the buyer's choice.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param X-Profile-ID header string true "Acting profile"
// @Param request body AcceptOrderRequest false "Payment details and delivery date"
// @Success 200 {object} SuccessResponse{data=domain.Order}
// @Failure 409 {object} errors.ErrorResponse "Order is not pending"
// @Security BearerAuth
// @Router /api/v1/orders/{id}/accept [post]
func (h *HTTPHandler) AcceptOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req AcceptOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	output, err := h.useCase.AcceptOrder(c.Request.Context(), application.AcceptOrderInput{
		OrderID:               id,
		SellerProfileID:       middleware.ActingProfile(c),
		PaymentDetails:        req.PaymentDetails,
		EstimatedDeliveryDate: req.EstimatedDeliveryDate,
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusOK, output.Order)
}

// RejectOrder handles POST /orders/:id/reject
// @Summary Reject an order
// @Description Seller only. Reserved stock stays with the order.
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Param X-Profile-ID header string true "Acting profile"
// @Success 200 {object} SuccessResponse{data=domain.Order}
// @Failure 401 {object} errors.ErrorResponse "Not the seller"
// @Failure 409 {object} errors.ErrorResponse "Order is not pending"
// @Security BearerAuth
// @Router /api/v1/orders/{id}/reject [post]
func (h *HTTPHandler) RejectOrder(c *gin.Context) {
	h.transition(c, h.useCase.RejectOrder)
}

// CancelOrder handles POST /orders/:id/cancel
// @Summary Cancel an order
// @Description Buyer or seller. Releases the reserved stock.
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Param X-Profile-ID header string true "Acting profile"
// @Success 200 {object} SuccessResponse{data=domain.Order}
// @Failure 401 {object} errors.ErrorResponse "Not a participant"
// @Failure 409 {object} errors.ErrorResponse "Order is finalized"
// @Security BearerAuth
// @Router /api/v1/orders/{id}/cancel [post]
func (h *HTTPHandler) CancelOrder(c *gin.Context) {
	h.transition(c, h.useCase.CancelOrder)
}

// SellerDeliveryConfirmed handles POST /orders/:id/seller-delivery-confirmed
// @Summary Seller confirms delivery
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Param X-Profile-ID header string true "Acting profile"
// @Success 200 {object} SuccessResponse{data=domain.Order}
// @Failure 401 {object} errors.ErrorResponse "Not the seller"
// @Failure 409 {object} errors.ErrorResponse "Not accepted or already confirmed"
// @Security BearerAuth
// @Router /api/v1/orders/{id}/seller-delivery-confirmed [post]
func (h *HTTPHandler) SellerDeliveryConfirmed(c *gin.Context) {
	h.transition(c, h.useCase.SellerDeliveryConfirmed)
}

// BuyerDeliveryConfirmed handles POST /orders/:id/buyer-delivery-confirmed
// @Summary Buyer confirms delivery
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Param X-Profile-ID header string true "Acting profile"
// @Success 200 {object} SuccessResponse{data=domain.Order}
// @Failure 401 {object} errors.ErrorResponse "Not the buyer"
// @Failure 409 {object} errors.ErrorResponse "Not accepted or already confirmed"
// @Security BearerAuth
// @Router /api/v1/orders/{id}/buyer-delivery-confirmed [post]
func (h *HTTPHandler) BuyerDeliveryConfirmed(c *gin.Context) {
	h.transition(c, h.useCase.BuyerDeliveryConfirmed)
}

// SellerPaymentConfirmed handles POST /orders/:id/seller-payment-confirmed
// @Summary Seller confirms payment
// @Description Marks the order paid.
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Param X-Profile-ID header string true "Acting profile"
// @Success 200 {object} SuccessResponse{data=domain.Order}
// @Failure 401 {object} errors.ErrorResponse "Not the seller"
// @Failure 409 {object} errors.ErrorResponse "Not accepted or already confirmed"
// @Security BearerAuth
// @Router /api/v1/orders/{id}/seller-payment-confirmed [post]
func (h *HTTPHandler) SellerPaymentConfirmed(c *gin.Context) {
	h.transition(c, h.useCase.SellerPaymentConfirmed)
}

// BuyerPaymentConfirmed handles POST /orders/:id/buyer-payment-confirmed
// @Summary Buyer confirms payment
// @Description Does not mark the order paid.
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Param X-Profile-ID header string true "Acting profile"
// @Success 200 {object} SuccessResponse{data=domain.Order}
// @Failure 401 {object} errors.ErrorResponse "Not the buyer"
// @Failure 409 {object} errors.ErrorResponse "Not accepted or already confirmed"
// @Security BearerAuth
// @Router /api/v1/orders/{id}/buyer-payment-confirmed [post]
func (h *HTTPHandler) BuyerPaymentConfirmed(c *gin.Context) {
	h.transition(c, h.useCase.BuyerPaymentConfirmed)
}

// UpdateDeliveryDate handles PATCH /orders/:id/delivery-date
// @Summary Move the delivery date
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param X-Profile-ID header string true "Acting profile"
// @Param request body DeliveryDateRequest true "RFC 3339 or YYYY-MM-DD"
// @Success 200 {object} SuccessResponse{data=domain.Order}
// @Failure 400 {object} errors.ErrorResponse "Invalid date"
// @Failure 401 {object} errors.ErrorResponse "Not the seller"
// @Security BearerAuth
// @Router /api/v1/orders/{id}/delivery-date [patch]
func (h *HTTPHandler) UpdateDeliveryDate(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req DeliveryDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	output, err := h.useCase.UpdateDeliveryDate(c.Request.Context(), application.UpdateDeliveryDateInput{
		OrderID:               id,
		SellerProfileID:       middleware.ActingProfile(c),
		EstimatedDeliveryDate: req.EstimatedDeliveryDate,
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusOK, output.Order)
}

// Checkout starts an online payment
// @Summary Check out an order
// @Description Buyer only. Creates a payment intent once; later calls return the same intent.
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Param X-Profile-ID header string true "Acting profile"
// @Param Idempotency-Key header string false "Replays the first response for the same key"
// @Success 200 {object} SuccessResponse{data=CheckoutResponse}
// @Failure 409 {object} errors.ErrorResponse "Order not payable"
// @Failure 502 {object} errors.ErrorResponse "Payment gateway failure"
// @Security BearerAuth
// @Router /api/v1/orders/{id}/checkout [post]
func (h *HTTPHandler) Checkout(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	output, err := h.useCase.Checkout(c.Request.Context(), application.CheckoutInput{
		OrderID:        id,
		BuyerProfileID: middleware.ActingProfile(c),
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusOK, CheckoutResponse{Order: output.Order, Payment: output.Intent})
}

// ConfirmPaymentWebhook receives payment gateway events
// @Summary Payment gateway webhook
// @Description Verifies the Stripe-Signature header and marks the order in metadata.order_id paid
// @Tags webhooks
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "t=<unix>,v1=<hmac>"
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} errors.ErrorResponse "Bad signature"
// @Router /api/v1/orders/webhook/confirm-payment [post]
func (h *HTTPHandler) ConfirmPaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.Error(errors.NewValidation("unreadable webhook body", nil))
		return
	}

	event, err := payments.ConstructEvent(payload, c.GetHeader(payments.SignatureHeader), h.webhookSecret)
	if err != nil {
		c.Error(err)
		return
	}

	ctx := c.Request.Context()
	if event.Type != payments.EventPaymentIntentSucceeded {
		h.log.WithContext(ctx).Debug("ignoring webhook event", zap.String("event_type", string(event.Type)))
		respond(c, http.StatusOK, gin.H{"received": true})
		return
	}

	intent, err := payments.PaymentIntent(event)
	if err != nil {
		c.Error(err)
		return
	}
	id, err := uuid.Parse(intent.Metadata["order_id"])
	if err != nil {
		c.Error(errors.NewValidation("payment intent has no order_id metadata", nil))
		return
	}

	if _, err := h.useCase.ConfirmPayment(ctx, application.ConfirmPaymentInput{
		OrderID:         id,
		PaymentIntentID: intent.ID,
	}); err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusOK, gin.H{"received": true})
}

type transitionFunc func(ctx context.Context, input application.TransitionInput) (*application.TransitionOutput, error)

func (h *HTTPHandler) transition(c *gin.Context, fn transitionFunc) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	output, err := fn(c.Request.Context(), application.TransitionInput{
		OrderID:   id,
		ProfileID: middleware.ActingProfile(c),
	})
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusOK, output.Order)
}

func orderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(errors.NewValidation("invalid order id", nil))
		return uuid.Nil, false
	}
	return id, true
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{
		Data:    data,
		TraceID: c.GetString(middleware.TraceIDKey),
	})
}
