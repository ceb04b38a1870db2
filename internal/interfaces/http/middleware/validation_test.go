package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adjustPayload struct {
	BranchID         string `json:"branch_id" binding:"required,uuid"`
	ProductVariantID string `json:"product_variant_id" binding:"required,uuid"`
	Quantity         string `json:"quantity" binding:"required"`
	Reason           string `json:"reason" binding:"omitempty,max=12"`
}

func TestSetupValidator_UsesJSONFieldNames(t *testing.T) {
	gin.SetMode(gin.TestMode)
	SetupValidator()

	router := gin.New()
	router.POST("/stock/adjust", func(c *gin.Context) {
		var payload adjustPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stock/adjust", strings.NewReader(`{"quantity":"5"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "branch_id")
	assert.Contains(t, body, "product_variant_id")
	assert.NotContains(t, body, "BranchID")
}

func TestHandleValidationError_Details(t *testing.T) {
	gin.SetMode(gin.TestMode)
	SetupValidator()

	router := gin.New()
	router.POST("/stock/adjust", func(c *gin.Context) {
		c.Set(RequestIDKey, "req-adjust-42")
		var payload adjustPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	payload := `{"branch_id":"not-a-uuid","product_variant_id":"also-not","quantity":"1","reason":"toolongforthelimit"}`
	req := httptest.NewRequest(http.MethodPost, "/stock/adjust", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Request validation failed")
	assert.Contains(t, body, "Invalid UUID format")
	assert.Contains(t, body, "Must be at most 12 characters")
	assert.Contains(t, body, "req-adjust-42")
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-1")
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "Request validation failed", resp.Error.Message)
}

func TestValidationMessage(t *testing.T) {
	v := validator.New()

	type quantityCheck struct {
		Quantity int `validate:"gte=0"`
	}
	err := v.Struct(quantityCheck{Quantity: -5})
	require.Error(t, err)
	verrs := err.(validator.ValidationErrors)
	assert.Equal(t, "Must be greater than or equal to 0", validationMessage(verrs[0]))

	type policyCheck struct {
		Policy string `validate:"oneof=fifo fefo"`
	}
	err = v.Struct(policyCheck{Policy: "lifo"})
	require.Error(t, err)
	verrs = err.(validator.ValidationErrors)
	assert.Equal(t, "Must be one of: fifo fefo", validationMessage(verrs[0]))
}
