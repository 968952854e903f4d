package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiclet/backend/internal/interfaces/http/dto"
)

type validationProbe struct {
	Email   string `json:"email" binding:"required,email"`
	Qty     int    `json:"quantity" binding:"required,min=1,max=99"`
	Color   string `json:"hex_code" binding:"omitempty,hexcolor"`
	OrderID string `json:"order_id" binding:"omitempty,order_id"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req validationProbe
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req))
	})
	return router
}

func postJSON(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleValidationError(t *testing.T) {
	router := newValidationRouter()

	t.Run("lists invalid fields by json name", func(t *testing.T) {
		w := postJSON(router, `{"email":"nope","quantity":120,"hex_code":"orange","order_id":"a b"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

		fields := map[string]string{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "Invalid email format", fields["email"])
		assert.Equal(t, "Must be at most 99", fields["quantity"])
		assert.Contains(t, fields, "hex_code")
		assert.Contains(t, fields["order_id"], "6-64")
	})

	t.Run("malformed json", func(t *testing.T) {
		w := postJSON(router, `{"email":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeInvalidJSON)
	})

	t.Run("valid request", func(t *testing.T) {
		w := postJSON(router, `{"email":"a@chiclet.in","quantity":2,"hex_code":"#ff8800","order_id":"ORD-20260101-ABCDEF12"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSetupValidator_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		SetupValidator()
		SetupValidator()
	})
}
