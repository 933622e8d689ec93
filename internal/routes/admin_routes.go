package routes

import (
	"github.com/gin-gonic/gin"

	"occamy_tracker/internal/controllers"
	"occamy_tracker/internal/middleware"
	"occamy_tracker/internal/models"
)

func AdminRoutes(r *gin.Engine, d Dependencies) {
	ctrl := controllers.NewDashboardController(d.Tracker, d.PhotoBaseURL)
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuth(d.JWT), middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/activities", ctrl.Activities)
		admin.GET("/activities/export", ctrl.Export)
		admin.GET("/dashboard", ctrl.Dashboard)
	}
}
