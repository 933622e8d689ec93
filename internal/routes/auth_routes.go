package routes

import (
	"github.com/gin-gonic/gin"

	"occamy_tracker/internal/controllers"
	"occamy_tracker/internal/middleware"
)

func AuthRoutes(r *gin.Engine, d Dependencies) {
	ctrl := controllers.NewAuthController(d.Tracker, d.JWT)
	auth := r.Group("/auth")
	{
		auth.POST("/login", ctrl.Login)
		auth.POST("/logout", middleware.RequireAuth(d.JWT), ctrl.Logout)
	}
}
