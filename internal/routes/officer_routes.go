package routes

import (
	"github.com/gin-gonic/gin"

	"occamy_tracker/internal/controllers"
	"occamy_tracker/internal/middleware"
)

func OfficerRoutes(r *gin.Engine, d Dependencies) {
	ctrl := controllers.NewDayController(d.Tracker)
	officer := r.Group("/officer")
	officer.Use(middleware.RequireAuth(d.JWT))
	{
		officer.GET("/day", ctrl.State)
		officer.POST("/day/start", ctrl.StartDay)
		officer.POST("/activities", ctrl.LogActivity)
		officer.POST("/day/end", ctrl.EndDay)
		officer.GET("/day/trail", ctrl.Trail)
	}
}
