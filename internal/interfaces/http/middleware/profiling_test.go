package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestProfiling(t *testing.T) {
	labels := map[string]string{}
	r := gin.New()
	r.Use(Profiling(true))
	r.GET("/api/v1/businesses/:id", func(c *gin.Context) {
		pprof.ForLabels(c.Request.Context(), func(k, v string) bool {
			labels[k] = v
			return true
		})
		c.Status(http.StatusOK)
	})

	serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/businesses/abc", nil))

	assert.Equal(t, "/api/v1/businesses/:id", labels["route"])
	assert.Equal(t, http.MethodGet, labels["method"])
}

func TestProfiling_Disabled(t *testing.T) {
	w := serve(okRouter(Profiling(false)), httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
