package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"occamy_tracker/internal/tracker"
)

// respondError maps tracker errors to HTTP statuses. Anything that is not the
// caller's fault is logged and reported as a 500.
func respondError(c *gin.Context, err error) {
	if !tracker.IsCallerError(err) {
		kind := tracker.Kind(err)
		if kind == "" {
			kind = "internal"
		}
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Request failed.")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error, please retry", "kind": kind})
		return
	}

	var ve *tracker.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "kind": string(ve.Kind), "field": ve.Field})
		return
	}
	var se *tracker.SequenceError
	if errors.As(err, &se) {
		c.JSON(http.StatusConflict, gin.H{"error": se.Error(), "kind": string(se.Reason), "phase": se.Phase})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "kind": "invalidBody"})
}
