package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/branchstock/backend/internal/domain/inventory"
	"github.com/branchstock/backend/internal/domain/shared"
	"github.com/branchstock/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTenantID = "550e8400-e29b-41d4-a716-446655440001"

func newTestContext(t *testing.T, method, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-ID", testTenantID)
	c.Request = req

	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestStockHandler_Adjust_MissingTenant(t *testing.T) {
	h := NewStockHandler(nil)

	c, w := newTestContext(t, http.MethodPost, "/stock/adjust", `{}`)
	c.Request.Header.Del("X-Tenant-ID")

	h.Adjust(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
}

func TestStockHandler_Adjust_InvalidTenant(t *testing.T) {
	h := NewStockHandler(nil)

	c, w := newTestContext(t, http.MethodPost, "/stock/adjust", `{}`)
	c.Request.Header.Set("X-Tenant-ID", "not-a-uuid")

	h.Adjust(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStockHandler_Adjust_MissingReason(t *testing.T) {
	h := NewStockHandler(nil)

	body := `{
		"branch_id": "550e8400-e29b-41d4-a716-446655440002",
		"product_variant_id": "550e8400-e29b-41d4-a716-446655440003",
		"quantity": "5"
	}`
	c, w := newTestContext(t, http.MethodPost, "/stock/adjust", body)

	h.Adjust(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Contains(t, resp.Error.Message, "Reason")
}

func TestStockHandler_Transfer_MalformedBody(t *testing.T) {
	h := NewStockHandler(nil)

	c, w := newTestContext(t, http.MethodPost, "/stock/transfer", `{not json`)

	h.Transfer(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStockHandler_Allocate_InvalidPolicy(t *testing.T) {
	h := NewStockHandler(nil)

	body := `{
		"branch_id": "550e8400-e29b-41d4-a716-446655440002",
		"product_variant_id": "550e8400-e29b-41d4-a716-446655440003",
		"quantity": "10",
		"policy": "LIFO"
	}`
	c, w := newTestContext(t, http.MethodPost, "/stock/allocate", body)

	h.Allocate(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStockHandler_GetStockLevel_InvalidBranchID(t *testing.T) {
	h := NewStockHandler(nil)

	c, w := newTestContext(t, http.MethodGet, "/stock/levels/lookup?branch_id=bogus&product_variant_id=550e8400-e29b-41d4-a716-446655440003", "")
	c.Request.URL.RawQuery = "branch_id=bogus&product_variant_id=550e8400-e29b-41d4-a716-446655440003"

	h.GetStockLevel(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Contains(t, resp.Error.Message, "branch ID")
}

func TestStockHandler_ListExpiringBatches_InvalidWindow(t *testing.T) {
	h := NewStockHandler(nil)

	c, w := newTestContext(t, http.MethodGet, "/stock/batches/expiring", "")
	c.Request.URL.RawQuery = "within_days=-3"

	h.ListExpiringBatches(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStockHandler_ListLedger_InvalidDate(t *testing.T) {
	h := NewStockHandler(nil)

	c, w := newTestContext(t, http.MethodGet, "/stock/ledger", "")
	c.Request.URL.RawQuery = "start_date=32-13-2026"

	h.ListLedger(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBaseHandler_HandleDomainError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "not found",
			err:            shared.ErrNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   dto.ErrCodeNotFound,
		},
		{
			name:           "optimistic lock failure",
			err:            shared.NewDomainError("OPTIMISTIC_LOCK_FAILED", "Stock level was modified by another transaction"),
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeConcurrencyConflict,
		},
		{
			name:           "immutable ledger",
			err:            shared.ErrImmutableLedger,
			expectedStatus: http.StatusConflict,
			expectedCode:   dto.ErrCodeImmutableLedger,
		},
		{
			name:           "insufficient stock with quantities",
			err:            inventory.NewInsufficientStockError(decimal.NewFromInt(12), decimal.NewFromInt(7)),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   dto.ErrCodeInsufficientStock,
		},
		{
			name:           "insufficient available with quantities",
			err:            inventory.NewInsufficientAvailableError(decimal.NewFromInt(5), decimal.NewFromInt(2)),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   dto.ErrCodeInsufficientAvailable,
		},
		{
			name:           "unknown error",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext(t, http.MethodPost, "/", "")

			h.HandleDomainError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
		})
	}
}

func TestBaseHandler_HandleDomainError_ShortfallMessage(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t, http.MethodPost, "/", "")

	h.HandleDomainError(c, inventory.NewInsufficientStockError(decimal.NewFromInt(12), decimal.NewFromInt(7)))

	resp := decodeResponse(t, w)
	assert.Contains(t, resp.Error.Message, "requested 12")
	assert.Contains(t, resp.Error.Message, "available 7")
}
