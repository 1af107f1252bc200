package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/app"
	"dispatch/internal/domain"
	"dispatch/internal/handler"
	"dispatch/internal/memory"
	"dispatch/internal/middleware"
	internalRedis "dispatch/internal/redis"
	"dispatch/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ledger := memory.NewOrderLedger()
	registry := memory.NewRiderRegistry()
	locations := internalRedis.NewLocationStore(client)
	journal := memory.NewOrderJournal()
	ledger.Subscribe(func(ev domain.OrderEvent) { _ = journal.Append(context.Background(), ev) })
	dispatcher := service.NewDispatcher(ledger, registry, locations, internalRedis.NewLockStore(client), service.DispatcherConfig{}, logger)

	return app.NewRouter(app.RouterDeps{
		RiderHandler:    handler.NewRiderHandler(service.NewRiderService(registry, locations, ledger, dispatcher, nil, logger)),
		OrderHandler:    handler.NewOrderHandler(service.NewOrderService(ledger, registry, dispatcher, journal, logger)),
		TrackingHandler: handler.NewTrackingHandler(service.NewTrackingGateway(ledger, registry, locations), 0, logger),
		RedisClient:     client,
		Logger:          logger,
	})
}

func send(router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Routes(t *testing.T) {
	router := newRouter(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodPut, "/api/riders/location", http.StatusUnauthorized},
		{http.MethodPut, "/api/riders/availability", http.StatusUnauthorized},
		{http.MethodGet, "/api/rider/current-order", http.StatusUnauthorized},
		{http.MethodGet, "/api/riders/me", http.StatusUnauthorized},
		{http.MethodGet, "/api/orders/o1/events", http.StatusNotFound},
		{http.MethodPost, "/api/orders", http.StatusUnauthorized},
		{http.MethodGet, "/api/orders/o1", http.StatusNotFound},
		{http.MethodGet, "/api/orders/o1/rider-location", http.StatusUnauthorized},
		{http.MethodGet, "/ws/orders/o1/track", http.StatusUnauthorized},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := send(router, tt.method, tt.path, nil, nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouter_IdempotentOrderCreation(t *testing.T) {
	router := newRouter(t)
	body := map[string]any{
		"restaurant_id":       "resto-1",
		"restaurant_location": map[string]any{"latitude": 14.5547, "longitude": 121.0244},
		"delivery_address":    map[string]any{"latitude": 14.5509, "longitude": 121.0503},
	}
	headers := map[string]string{
		middleware.CustomerIDHeader:  "c1",
		middleware.IdempotencyHeader: "checkout-42",
	}

	first := send(router, http.MethodPost, "/api/orders", body, headers)
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := send(router, http.MethodPost, "/api/orders", body, headers)
	require.Equal(t, http.StatusCreated, second.Code)

	var a, b domain.Order
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, a.ID, b.ID, "retry returns the first order instead of creating another")

	headers[middleware.IdempotencyHeader] = "checkout-43"
	third := send(router, http.MethodPost, "/api/orders", body, headers)
	require.Equal(t, http.StatusCreated, third.Code)
	var c domain.Order
	require.NoError(t, json.Unmarshal(third.Body.Bytes(), &c))
	assert.NotEqual(t, a.ID, c.ID)
}

func TestRouter_LocationUpdateThroughRedis(t *testing.T) {
	router := newRouter(t)

	rec := send(router, http.MethodPost, "/api/riders", map[string]any{"id": "r1", "name": "Juan", "phone": "1"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = send(router, http.MethodPut, "/api/riders/location", map[string]any{"latitude": 14.556, "longitude": 121.0244}, map[string]string{middleware.RiderIDHeader: "r1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var ack handler.LocationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.Equal(t, "r1", ack.Location.RiderID)
	assert.False(t, ack.Location.UpdatedAt.IsZero())
}
