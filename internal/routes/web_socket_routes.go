package routes

import (
	"github.com/gin-gonic/gin"

	"occamy_tracker/internal/middleware"
	"occamy_tracker/internal/models"
)

func WebSocketRoutes(r *gin.Engine, d Dependencies) {
	if d.Hub == nil {
		return
	}
	wsRoutes := r.Group("/ws")
	wsRoutes.Use(middleware.RequireAuth(d.JWT), middleware.RequireRole(models.RoleAdmin))
	{
		wsRoutes.GET("/activities", d.Hub.HandleActivityWebSocket)
	}
}
