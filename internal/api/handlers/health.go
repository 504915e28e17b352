package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck returns the health status of the API, including database
// connectivity
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	overall := "healthy"
	dbStatus := "healthy"
	status := http.StatusOK

	sqlDB, err := h.db.DB()
	if err != nil {
		dbStatus = "unavailable"
		overall = "degraded"
		status = http.StatusServiceUnavailable
	} else if pingErr := sqlDB.Ping(); pingErr != nil {
		dbStatus = "unreachable"
		overall = "degraded"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status": overall,
		"database": gin.H{
			"status": dbStatus,
		},
	})
}
