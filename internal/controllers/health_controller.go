package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"occamy_tracker/internal/tracker"
)

func Health(t *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"policy":    t.Policy(),
		})
	}
}
