package delivery

import (
	"errors"
	"log"
	"net/http"

	"reliance-backend/internal/valuezone/domain"
	"reliance-backend/internal/valuezone/dto"
	"reliance-backend/internal/valuezone/usecase"

	"github.com/gin-gonic/gin"
)

// ValueZoneHandler handles value zone HTTP requests
type ValueZoneHandler struct {
	valueZoneUsecase usecase.ValueZoneUsecase
}

func NewValueZoneHandler(valueZoneUsecase usecase.ValueZoneUsecase) *ValueZoneHandler {
	return &ValueZoneHandler{valueZoneUsecase: valueZoneUsecase}
}

func (h *ValueZoneHandler) RegisterRoutes(zones *gin.RouterGroup) {
	zones.GET("", h.ListValueZones)
	zones.POST("", h.CreateValueZone)
	zones.GET("/:id", h.GetValueZone)
	zones.PATCH("/:id", h.UpdateValueZone)
	zones.DELETE("/:id", h.DeleteValueZone)
}

// GET /v1/value-zones
func (h *ValueZoneHandler) ListValueZones(c *gin.Context) {
	zones, err := h.valueZoneUsecase.ListValueZones(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		handleValueZoneError(c, err)
		return
	}
	c.JSON(http.StatusOK, zones)
}

// POST /v1/value-zones
func (h *ValueZoneHandler) CreateValueZone(c *gin.Context) {
	var req dto.CreateValueZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	zone, err := h.valueZoneUsecase.CreateValueZone(c.Request.Context(), c.GetString("userID"), req.ToValueZone())
	if err != nil {
		handleValueZoneError(c, err)
		return
	}
	c.JSON(http.StatusCreated, zone)
}

// GET /v1/value-zones/:id
func (h *ValueZoneHandler) GetValueZone(c *gin.Context) {
	zone, err := h.valueZoneUsecase.GetValueZone(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		handleValueZoneError(c, err)
		return
	}
	c.JSON(http.StatusOK, zone)
}

// PATCH /v1/value-zones/:id
func (h *ValueZoneHandler) UpdateValueZone(c *gin.Context) {
	var req dto.UpdateValueZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	zone, err := h.valueZoneUsecase.UpdateValueZone(c.Request.Context(), c.GetString("userID"), c.Param("id"), req.ToPatch())
	if err != nil {
		handleValueZoneError(c, err)
		return
	}
	c.JSON(http.StatusOK, zone)
}

// DELETE /v1/value-zones/:id
func (h *ValueZoneHandler) DeleteValueZone(c *gin.Context) {
	if err := h.valueZoneUsecase.DeleteValueZone(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		handleValueZoneError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func handleValueZoneError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidValueZone):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrValueZoneNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Value zone not found"})
	default:
		log.Printf("[ValueZoneHandler] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
