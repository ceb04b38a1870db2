package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func serve(t *testing.T, engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestRouterSetup_MountsUnderVersionedPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	stock := NewDomainGroup("stock", "/stock")
	stock.GET("/levels", okHandler)

	NewRouter(engine).Register(stock).Setup()

	assert.Equal(t, http.StatusOK, serve(t, engine, http.MethodGet, "/api/v1/stock/levels").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, engine, http.MethodGet, "/stock/levels").Code)
}

func TestRouterWithAPIVersion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	stock := NewDomainGroup("stock", "/stock")
	stock.GET("/ledger", okHandler)

	NewRouter(engine, WithAPIVersion("v2")).Register(stock).Setup()

	assert.Equal(t, http.StatusOK, serve(t, engine, http.MethodGet, "/api/v2/stock/ledger").Code)
	assert.Equal(t, http.StatusNotFound, serve(t, engine, http.MethodGet, "/api/v1/stock/ledger").Code)
}

func TestDomainGroup_Methods(t *testing.T) {
	cases := []struct {
		method   string
		register func(dg *DomainGroup)
	}{
		{http.MethodGet, func(dg *DomainGroup) { dg.GET("/levels", okHandler) }},
		{http.MethodPost, func(dg *DomainGroup) { dg.POST("/levels", okHandler) }},
		{http.MethodPut, func(dg *DomainGroup) { dg.PUT("/levels", okHandler) }},
		{http.MethodPatch, func(dg *DomainGroup) { dg.PATCH("/levels", okHandler) }},
		{http.MethodDelete, func(dg *DomainGroup) { dg.DELETE("/levels", okHandler) }},
	}

	for _, tc := range cases {
		t.Run(tc.method, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			engine := gin.New()

			stock := NewDomainGroup("stock", "/stock")
			tc.register(stock)
			NewRouter(engine).Register(stock).Setup()

			assert.Equal(t, http.StatusOK, serve(t, engine, tc.method, "/api/v1/stock/levels").Code)
		})
	}
}

func TestDomainGroup_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	var order []string
	stock := NewDomainGroup("stock", "/stock")
	stock.Use(func(c *gin.Context) {
		order = append(order, "middleware")
		c.Next()
	})
	stock.POST("/adjust", func(c *gin.Context) {
		order = append(order, "handler")
		c.Status(http.StatusOK)
	})

	NewRouter(engine).Register(stock).Setup()

	require.Equal(t, http.StatusOK, serve(t, engine, http.MethodPost, "/api/v1/stock/adjust").Code)
	assert.Equal(t, []string{"middleware", "handler"}, order)
}

func TestDomainGroup_Subgroups(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	stock := NewDomainGroup("stock", "/stock")
	batches := stock.Group("batches", "/batches")
	batches.GET("/expiring", okHandler)

	NewRouter(engine).Register(stock).Setup()

	assert.Equal(t, http.StatusOK, serve(t, engine, http.MethodGet, "/api/v1/stock/batches/expiring").Code)
}

func TestDomainGroup_SubgroupInheritsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	var hits int
	stock := NewDomainGroup("stock", "/stock")
	stock.Use(func(c *gin.Context) {
		hits++
		c.Next()
	})
	ledger := stock.Group("ledger", "/ledger")
	ledger.GET("/balance", okHandler)

	NewRouter(engine).Register(stock).Setup()

	require.Equal(t, http.StatusOK, serve(t, engine, http.MethodGet, "/api/v1/stock/ledger/balance").Code)
	assert.Equal(t, 1, hits)
}

func TestRouter_MultipleDomainGroups(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	stock := NewDomainGroup("stock", "/stock")
	stock.POST("/receive", okHandler)
	system := NewDomainGroup("system", "/system")
	system.GET("/ping", okHandler)

	NewRouter(engine).Register(stock).Register(system).Setup()

	assert.Equal(t, http.StatusOK, serve(t, engine, http.MethodPost, "/api/v1/stock/receive").Code)
	assert.Equal(t, http.StatusOK, serve(t, engine, http.MethodGet, "/api/v1/system/ping").Code)
}

func TestDomainGroup_ChainedRegistration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	stock := NewDomainGroup("stock", "/stock").
		GET("/levels", okHandler).
		POST("/adjust", okHandler).
		POST("/fulfill", okHandler)
	assert.Equal(t, "stock", stock.Name())

	NewRouter(engine).Register(stock).Setup()

	assert.Equal(t, http.StatusOK, serve(t, engine, http.MethodGet, "/api/v1/stock/levels").Code)
	assert.Equal(t, http.StatusOK, serve(t, engine, http.MethodPost, "/api/v1/stock/adjust").Code)
	assert.Equal(t, http.StatusOK, serve(t, engine, http.MethodPost, "/api/v1/stock/fulfill").Code)
}
