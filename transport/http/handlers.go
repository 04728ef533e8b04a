package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/matehackers/badges-engine/core"
	"github.com/matehackers/badges-engine/service"
)

// AssertionHandlers contains HTTP handlers for assertion endpoints
type AssertionHandlers struct {
	assertionService *service.AssertionService
}

// NewAssertionHandlers creates new assertion handlers
func NewAssertionHandlers(assertionService *service.AssertionService) *AssertionHandlers {
	return &AssertionHandlers{
		assertionService: assertionService,
	}
}

// assertionResponse is the admin view of an assertion; the token never leaves the engine
type assertionResponse struct {
	ID       string `json:"id"`
	BadgeID  string `json:"badge_id"`
	UserID   string `json:"user_id"`
	IsBaked  bool   `json:"is_baked"`
	Evidence string `json:"evidence"`
	Expires  string `json:"expires"`
	IssuedOn string `json:"issued_on"`
}

func toAssertionResponse(a *core.Assertion) assertionResponse {
	return assertionResponse{
		ID:       a.ID,
		BadgeID:  a.BadgeID,
		UserID:   a.UserID,
		IsBaked:  a.IsBaked,
		Evidence: a.Evidence,
		Expires:  a.Expires,
		IssuedOn: a.IssuedOn,
	}
}

// Create handles assertion creation
func (h *AssertionHandlers) Create(c *gin.Context) {
	var req struct {
		BadgeID  string `json:"badge_id"`
		UserID   string `json:"user_id"`
		Evidence string `json:"evidence"`
		Expires  string `json:"expires"`
		IssuedOn string `json:"issued_on"`
	}

	// Parse request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Create the assertion
	assertion, err := h.assertionService.Create(c.Request.Context(), core.NewAssertionParams{
		BadgeID:  req.BadgeID,
		UserID:   req.UserID,
		Evidence: req.Evidence,
		Expires:  req.Expires,
		IssuedOn: req.IssuedOn,
	})
	if err != nil {
		var validationErr *core.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": validationErr.Error(),
				"field": validationErr.Field,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create assertion"})
		return
	}

	c.JSON(http.StatusCreated, toAssertionResponse(assertion))
}

// Get returns the admin view of an assertion
func (h *AssertionHandlers) Get(c *gin.Context) {
	assertion, err := h.assertionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Assertion not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load assertion"})
		return
	}

	c.JSON(http.StatusOK, toAssertionResponse(assertion))
}

// Bake triggers baking and answers with the baked image
func (h *AssertionHandlers) Bake(c *gin.Context) {
	result, err := h.assertionService.BakeByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Assertion not found"})
		case errors.Is(err, core.ErrBakingTransport):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to bake assertion"})
		}
		return
	}

	// Nothing to send back unless an image was baked
	c.Header("X-Bake-Status", result.Status.String())
	if result.Status != core.BakeBaked {
		c.Status(http.StatusNoContent)
		return
	}

	c.Data(http.StatusOK, http.DetectContentType(result.Image), result.Image)
}

// Show serves the public assertion JSON to holders of the assertion token
func (h *AssertionHandlers) Show(c *gin.Context) {
	view, err := h.assertionService.PublicView(c.Request.Context(), c.Param("id"), c.Query("token"))
	if err != nil {
		// Unknown IDs and wrong tokens look the same
		if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrInvalidToken) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Assertion not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render assertion"})
		return
	}

	c.JSON(http.StatusOK, view)
}
