package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newIdempotentRouter(t *testing.T, status int) (*gin.Engine, *miniredis.Miniredis, *int) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	calls := 0
	router := gin.New()
	router.Use(middleware.IdempotencyMiddleware(client, discardLogger()))
	handler := func(c *gin.Context) {
		calls++
		c.JSON(status, gin.H{"call": calls})
	}
	router.POST("/api/orders", handler)
	router.GET("/api/orders", handler)
	return router, mr, &calls
}

func do(router http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(`{}`))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	router, _, calls := newIdempotentRouter(t, http.StatusCreated)
	headers := map[string]string{middleware.IdempotencyHeader: "k1", middleware.CustomerIDHeader: "c1"}

	first := do(router, http.MethodPost, "/api/orders", headers)
	require.Equal(t, http.StatusCreated, first.Code)

	second := do(router, http.MethodPost, "/api/orders", headers)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, 1, *calls)
}

func TestIdempotency_KeyScopedToCaller(t *testing.T) {
	router, _, calls := newIdempotentRouter(t, http.StatusCreated)

	do(router, http.MethodPost, "/api/orders", map[string]string{middleware.IdempotencyHeader: "k1", middleware.CustomerIDHeader: "c1"})
	do(router, http.MethodPost, "/api/orders", map[string]string{middleware.IdempotencyHeader: "k1", middleware.CustomerIDHeader: "c2"})

	assert.Equal(t, 2, *calls)
}

func TestIdempotency_SkipsWithoutKeyOrForReads(t *testing.T) {
	router, _, calls := newIdempotentRouter(t, http.StatusOK)

	do(router, http.MethodPost, "/api/orders", nil)
	do(router, http.MethodPost, "/api/orders", nil)
	do(router, http.MethodGet, "/api/orders", map[string]string{middleware.IdempotencyHeader: "k1"})
	do(router, http.MethodGet, "/api/orders", map[string]string{middleware.IdempotencyHeader: "k1"})

	assert.Equal(t, 4, *calls)
}

func TestIdempotency_ServerErrorsNotCached(t *testing.T) {
	router, _, calls := newIdempotentRouter(t, http.StatusInternalServerError)
	headers := map[string]string{middleware.IdempotencyHeader: "k1"}

	do(router, http.MethodPost, "/api/orders", headers)
	do(router, http.MethodPost, "/api/orders", headers)

	assert.Equal(t, 2, *calls)
}

func TestIdempotency_InFlightDuplicateConflicts(t *testing.T) {
	router, mr, calls := newIdempotentRouter(t, http.StatusCreated)
	require.NoError(t, mr.Set("idempotency:c1:POST:/api/orders:k1:lock", "1"))

	rec := do(router, http.MethodPost, "/api/orders", map[string]string{middleware.IdempotencyHeader: "k1", middleware.CustomerIDHeader: "c1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Zero(t, *calls)
}

func TestIdempotency_RedisDownFallsThrough(t *testing.T) {
	router, mr, calls := newIdempotentRouter(t, http.StatusCreated)
	mr.Close()

	rec := do(router, http.MethodPost, "/api/orders", map[string]string{middleware.IdempotencyHeader: "k1"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, *calls)
}

func TestRequireIdentity(t *testing.T) {
	router := gin.New()
	router.GET("/rider", middleware.RequireRider(), func(c *gin.Context) {
		c.String(http.StatusOK, middleware.RiderID(c))
	})
	router.GET("/customer", middleware.RequireCustomer(), func(c *gin.Context) {
		c.String(http.StatusOK, middleware.CustomerID(c))
	})

	rec := do(router, http.MethodGet, "/rider", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(router, http.MethodGet, "/rider", map[string]string{middleware.RiderIDHeader: "r1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "r1", rec.Body.String())

	rec = do(router, http.MethodGet, "/customer", map[string]string{middleware.RiderIDHeader: "r1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(router, http.MethodGet, "/customer", map[string]string{middleware.CustomerIDHeader: "c1"})
	assert.Equal(t, "c1", rec.Body.String())
}

func TestNewRelicIdentity_NoTransaction(t *testing.T) {
	router := gin.New()
	router.Use(middleware.NewRelicIdentity())
	router.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := do(router, http.MethodGet, "/orders/o1", map[string]string{middleware.RiderIDHeader: "r1"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
