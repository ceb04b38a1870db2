package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/branchstock/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveSystem(t *testing.T, fn gin.HandlerFunc, path string) dto.Response {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET(path, fn)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	return resp
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler()
	assert.False(t, h.startedAt.IsZero())

	resp := serveSystem(t, h.GetSystemInfo, "/system/info")

	info, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "BranchStock API", info["name"])
	assert.Equal(t, "1.0.0", info["version"])
	assert.Contains(t, info["go_version"], "go")
	assert.NotEmpty(t, info["uptime"])
}

func TestSystemHandler_Ping(t *testing.T) {
	resp := serveSystem(t, NewSystemHandler().Ping, "/system/ping")

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "pong", data["message"])

	ts, ok := data["timestamp"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
}
