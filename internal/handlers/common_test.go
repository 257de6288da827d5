package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRespondServiceError_LogsUnknownErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/tasks", nil)

	respondServiceError(c, errors.New("disk failure writing attachment"))

	// The full error reaches the log but never the client
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, buf.String(), "disk failure writing attachment")
	require.NotContains(t, w.Body.String(), "disk failure")
}
