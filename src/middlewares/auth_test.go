package middlewares

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestAuthMiddlewareRejectsMalformedHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	headers := []string{
		"",
		"Bearer",
		"Bearer ",
		"Token abc",
	}
	for _, header := range headers {
		w := httptest.NewRecorder()
		ctx, _ := gin.CreateTestContext(w)
		ctx.Request = httptest.NewRequest("GET", "/", nil)
		if header != "" {
			ctx.Request.Header.Set("Authorization", header)
		}

		AuthMiddleware(ctx)

		assert.True(t, ctx.IsAborted(), "header %q should abort", header)
		assert.Equal(t, 401, w.Code, "header %q should be unauthorized", header)
	}
}

func TestHostMiddlewareRequiresHostRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest("GET", "/", nil)
	ctx.Set("role", "guest")

	HostMiddleware(ctx)

	assert.True(t, ctx.IsAborted())
	assert.Equal(t, 403, w.Code)
}
