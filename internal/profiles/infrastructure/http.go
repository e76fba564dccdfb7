package infrastructure

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-market/internal/profiles/application"
	"go-market/internal/profiles/domain"
	"go-market/pkg/errors"
	"go-market/pkg/middleware"
)

// HTTPHandler handles HTTP requests for profiles
type HTTPHandler struct {
	useCase *application.ProfileUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.ProfileUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the profile routes on an authenticated group
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	profiles := r.Group("/profiles")
	{
		profiles.POST("", h.CreateProfile)
		profiles.GET("", h.ListProfiles)
		profiles.GET("/:id", h.GetProfile)
	}
}

// SuccessResponse is the envelope of every successful response
type SuccessResponse struct {
	Data    interface{} `json:"data"`
	TraceID string      `json:"trace_id,omitempty"`
}

// CreateProfileRequest is the request body for creating a profile
type CreateProfileRequest struct {
	Kind  string `json:"kind" binding:"required,oneof=business consumer provider"`
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

// ProfileResponse is the response body for profile operations
type ProfileResponse struct {
	ID                 string `json:"id"`
	Kind               string `json:"kind"`
	Name               string `json:"name"`
	Email              string `json:"email,omitempty"`
	HasPaymentAccount  bool   `json:"has_payment_account"`
	CompletedSales     int    `json:"completed_sales"`
	CompletedPurchases int    `json:"completed_purchases"`
	CreatedAt          string `json:"created_at"`
}

// CreateProfile handles POST /profiles
// @Summary Create a profile
// @Description Selling kinds get a payout account when the gateway is configured.
// @Tags profiles
// @Accept json
// @Produce json
// @Param request body CreateProfileRequest true "Profile"
// @Success 201 {object} SuccessResponse{data=ProfileResponse}
// @Failure 400 {object} errors.ErrorResponse "Validation error"
// @Failure 502 {object} errors.ErrorResponse "Payment gateway failure"
// @Security BearerAuth
// @Router /api/v1/profiles [post]
func (h *HTTPHandler) CreateProfile(c *gin.Context) {
	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	output, err := h.useCase.CreateProfile(c.Request.Context(), application.CreateProfileInput{
		UserID: c.GetString(middleware.UserIDKey),
		Kind:   domain.Kind(req.Kind),
		Name:   req.Name,
		Email:  req.Email,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Data: toResponse(output.Profile, true), TraceID: c.GetString(middleware.TraceIDKey)})
}

// ListProfiles handles GET /profiles and returns the caller's profiles
// @Summary List the caller's profiles
// @Tags profiles
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]ProfileResponse}
// @Security BearerAuth
// @Router /api/v1/profiles [get]
func (h *HTTPHandler) ListProfiles(c *gin.Context) {
	profiles, err := h.useCase.ListProfiles(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		c.Error(err)
		return
	}

	data := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		data = append(data, toResponse(p, true))
	}
	c.JSON(http.StatusOK, SuccessResponse{Data: data, TraceID: c.GetString(middleware.TraceIDKey)})
}

// GetProfile handles GET /profiles/:id. Email is only shown to the owner.
// @Summary Get a profile
// @Description Email is only shown to the owner.
// @Tags profiles
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} SuccessResponse{data=ProfileResponse}
// @Failure 404 {object} errors.ErrorResponse "Profile not found"
// @Security BearerAuth
// @Router /api/v1/profiles/{id} [get]
func (h *HTTPHandler) GetProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(errors.NewValidation("invalid profile id", nil))
		return
	}

	output, err := h.useCase.GetProfile(c.Request.Context(), application.GetProfileInput{ID: id})
	if err != nil {
		c.Error(err)
		return
	}

	owner := output.Profile.UserID == c.GetString(middleware.UserIDKey)
	c.JSON(http.StatusOK, SuccessResponse{Data: toResponse(output.Profile, owner), TraceID: c.GetString(middleware.TraceIDKey)})
}

func toResponse(p *domain.Profile, withEmail bool) ProfileResponse {
	resp := ProfileResponse{
		ID:                 p.ID.String(),
		Kind:               string(p.Kind),
		Name:               p.Name,
		HasPaymentAccount:  p.PaymentAccountID != "",
		CompletedSales:     p.CompletedSales,
		CompletedPurchases: p.CompletedPurchases,
		CreatedAt:          p.CreatedAt.Format(time.RFC3339),
	}
	if withEmail {
		resp.Email = p.Email
	}
	return resp
}
