package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/branchstock/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTenantValidator struct {
	info *TenantInfo
	err  error
}

func (v *stubTenantValidator) ValidateTenant(string) (*TenantInfo, error) {
	return v.info, v.err
}

func tenantTestRouter(cfg TenantMiddlewareConfig) (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	var captured string
	router := gin.New()
	router.Use(TenantMiddlewareWithConfig(cfg))
	router.GET("/stock/levels", func(c *gin.Context) {
		captured = GetTenantID(c)
		c.Status(http.StatusOK)
	})
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router, &captured
}

func TestTenantMiddleware_HeaderExtraction(t *testing.T) {
	tenantID := uuid.New().String()

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantTenant string
	}{
		{"valid tenant header", tenantID, http.StatusOK, tenantID},
		{"missing header rejected", "", http.StatusUnauthorized, ""},
		{"non-uuid header rejected", "acme-retail", http.StatusUnauthorized, ""},
		{"sql injection rejected", "'; DROP TABLE stock_levels; --", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, captured := tenantTestRouter(DefaultTenantConfig())

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/stock/levels", nil)
			if tt.header != "" {
				req.Header.Set(TenantHeaderKey, tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantTenant, *captured)
		})
	}
}

func TestTenantMiddleware_SkipPaths(t *testing.T) {
	router, _ := tenantTestRouter(DefaultTenantConfig())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTenantMiddleware_Optional(t *testing.T) {
	cfg := DefaultTenantConfig()
	cfg.Required = false
	router, captured := tenantTestRouter(cfg)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stock/levels", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, *captured)
}

func TestTenantMiddleware_Validator(t *testing.T) {
	tenantID := uuid.New().String()

	t.Run("active tenant passes and exposes its code", func(t *testing.T) {
		cfg := DefaultTenantConfig()
		cfg.Validator = &stubTenantValidator{info: &TenantInfo{Code: "acme"}}

		gin.SetMode(gin.TestMode)
		var code string
		router := gin.New()
		router.Use(TenantMiddlewareWithConfig(cfg))
		router.GET("/stock/levels", func(c *gin.Context) {
			code = GetTenantCode(c)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/stock/levels", nil)
		req.Header.Set(TenantHeaderKey, tenantID)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "acme", code)
	})

	t.Run("suspended tenant gets 401", func(t *testing.T) {
		cfg := DefaultTenantConfig()
		cfg.Validator = &stubTenantValidator{err: errors.New("tenant suspended")}
		router, _ := tenantTestRouter(cfg)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/stock/levels", nil)
		req.Header.Set(TenantHeaderKey, tenantID)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
	})
}

func TestTenantFromSubdomain(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"simple subdomain", "acme.branchstock.io", "acme"},
		{"subdomain with port", "acme.branchstock.io:8080", "acme"},
		{"www is not a tenant", "www.branchstock.io", ""},
		{"bare base domain", "branchstock.io", ""},
		{"unrelated host", "other.example.com", ""},
		{"multi-level keeps leftmost", "warehouse.acme.branchstock.io", "warehouse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tenantFromSubdomain(tt.host, "branchstock.io"))
		})
	}
}

func TestTenantMiddleware_SubdomainDisabledByDefault(t *testing.T) {
	router, _ := tenantTestRouter(DefaultTenantConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stock/levels", nil)
	req.Host = "acme.branchstock.io"
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetTenantUUID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("parses stored tenant", func(t *testing.T) {
		tenantID := uuid.New()
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(TenantIDKey, tenantID.String())

		got, err := GetTenantUUID(c)
		require.NoError(t, err)
		assert.Equal(t, tenantID, got)
	})

	t.Run("missing tenant yields Nil without error", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())

		got, err := GetTenantUUID(c)
		require.NoError(t, err)
		assert.Equal(t, uuid.Nil, got)
	})
}

func TestDefaultTenantConfig(t *testing.T) {
	cfg := DefaultTenantConfig()
	assert.True(t, cfg.HeaderEnabled)
	assert.False(t, cfg.SubdomainEnabled)
	assert.True(t, cfg.Required)
	assert.Contains(t, cfg.SkipPaths, "/health")
}

func TestTenantMiddleware_RequestContextPropagation(t *testing.T) {
	tenantID := uuid.New().String()

	gin.SetMode(gin.TestMode)
	var contextTenant string
	router := gin.New()
	router.Use(TenantMiddlewareWithConfig(DefaultTenantConfig()))
	router.GET("/stock/levels", func(c *gin.Context) {
		// The service layer only sees c.Request.Context(), so the tenant
		// must survive the context swap done by the middleware.
		contextTenant = logger.GetTenantID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stock/levels", nil)
	req.Header.Set(TenantHeaderKey, tenantID)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tenantID, contextTenant)
}
