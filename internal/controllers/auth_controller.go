package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"occamy_tracker/internal/middleware"
	"occamy_tracker/internal/tracker"
)

type AuthController struct {
	tracker *tracker.Tracker
	jwt     *middleware.JWTManager
}

func NewAuthController(t *tracker.Tracker, jwt *middleware.JWTManager) *AuthController {
	return &AuthController{tracker: t, jwt: jwt}
}

type loginInput struct {
	OfficerID string `json:"officerId"`
	Name      string `json:"name"`
}

// Login opens a session and returns the bearer token for the following requests.
func (a *AuthController) Login(c *gin.Context) {
	var body loginInput
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	officer, err := a.tracker.Login(tracker.LoginRequest{OfficerID: body.OfficerID, Name: body.Name})
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := a.jwt.GenerateToken(officer)
	if err != nil {
		logrus.WithError(err).WithField("officer_id", officer.ID).Error("Could not generate token.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"officer": officer,
		"state":   a.tracker.State(officer.ID),
	})
}

func (a *AuthController) Logout(c *gin.Context) {
	if err := a.tracker.Logout(middleware.OfficerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}
