package routes

import (
	"io"

	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"

	"occamy_tracker/internal/controllers"
	"occamy_tracker/internal/middleware"
	"occamy_tracker/internal/tracker"
)

// Dependencies are the collaborators shared by the route groups.
type Dependencies struct {
	Tracker        *tracker.Tracker
	JWT            *middleware.JWTManager
	Hub            *controllers.ActivityHub
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	PhotoBaseURL   string
	LogWriter      io.Writer
}

func SetupRouter(d Dependencies) *gin.Engine {
	r := gin.New()

	logOpts := []ginlog.Option{ginlog.WithSkipPath([]string{"/health"})}
	if d.LogWriter != nil {
		logOpts = append(logOpts, ginlog.WithWriter(d.LogWriter))
	}
	r.Use(ginlog.SetLogger(logOpts...), gin.Recovery(), middleware.CORS(d.AllowedOrigins))
	if d.RateLimiter != nil {
		r.Use(d.RateLimiter.Middleware())
	}

	r.GET("/health", controllers.Health(d.Tracker))
	AuthRoutes(r, d)
	OfficerRoutes(r, d)
	AdminRoutes(r, d)
	WebSocketRoutes(r, d)

	return r
}
