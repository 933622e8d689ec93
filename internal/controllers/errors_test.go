package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"occamy_tracker/internal/tracker"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"validation", &tracker.ValidationError{Kind: tracker.MissingGPS, Field: "lat"}, http.StatusBadRequest, "missingGps"},
		{"wrapped validation", fmt.Errorf("log activity: %w", &tracker.ValidationError{Kind: tracker.InvalidEnum, Field: "mode"}), http.StatusBadRequest, "invalidEnum"},
		{"sequence", &tracker.SequenceError{Reason: tracker.DayNotStarted, Phase: tracker.PhaseLoggedIn}, http.StatusConflict, "dayNotStarted"},
		{"storage", &tracker.StorageError{Op: "append", Err: errors.New("connection refused")}, http.StatusInternalServerError, "storage"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			respondError(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body["kind"])
			if tt.wantCode == http.StatusInternalServerError {
				assert.NotContains(t, body["error"], "connection refused")
			}
		})
	}
}
