package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db      *gorm.DB
	version string
}

func NewHealthHandler(db *gorm.DB, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	dbStatus := "disabled"
	if h.db != nil {
		dbStatus = "connected"
		if sqlDB, err := h.db.DB(); err != nil || sqlDB.Ping() != nil {
			dbStatus = "unreachable"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"version":  h.version,
		"database": gin.H{"status": dbStatus},
	})
}
