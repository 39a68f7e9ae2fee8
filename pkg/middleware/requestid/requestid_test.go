package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, inbound string) (string, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var seen string
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set(headerKey, inbound)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return seen, w.Header().Get(headerKey)
}

func TestMiddlewareKeepsInboundID(t *testing.T) {
	seen, header := serve(t, "req-42")
	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", header)
}

func TestMiddlewareGeneratesID(t *testing.T) {
	for _, inbound := range []string{"", strings.Repeat("x", maxLength+1)} {
		seen, header := serve(t, inbound)
		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, header)
	}
}
