package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"dispatch/internal/middleware"
	"dispatch/internal/service"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 5 * time.Second
)

// TrackingHandler serves rider tracking to customers.
type TrackingHandler struct {
	gateway      *service.TrackingGateway
	pushInterval time.Duration
	upgrader     websocket.Upgrader
	logger       *slog.Logger
}

// NewTrackingHandler creates a new TrackingHandler. pushInterval is how often
// the stream sends a snapshot.
func NewTrackingHandler(gateway *service.TrackingGateway, pushInterval time.Duration, logger *slog.Logger) *TrackingHandler {
	if pushInterval <= 0 {
		pushInterval = 2 * time.Second
	}
	return &TrackingHandler{
		gateway:      gateway,
		pushInterval: pushInterval,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With("component", "tracking_handler"),
	}
}

// StreamMessage is one frame on the tracking stream.
type StreamMessage struct {
	Type     string                    `json:"type"`
	Snapshot *service.TrackingSnapshot `json:"snapshot,omitempty"`
	Message  string                    `json:"message,omitempty"`
}

// RiderLocation handles GET /api/orders/:id/rider-location
func (h *TrackingHandler) RiderLocation(c *gin.Context) {
	snap, err := h.gateway.SnapshotFor(c.Request.Context(), c.Param("id"), middleware.CustomerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, snap)
}

// Stream handles GET /ws/orders/:id/track. It pushes a snapshot every push
// interval and closes once the order is delivered or cancelled.
func (h *TrackingHandler) Stream(c *gin.Context) {
	orderID := c.Param("id")
	customerID := middleware.CustomerID(c)

	// Ownership is checked before the upgrade so failures are plain HTTP errors.
	snap, err := h.gateway.SnapshotFor(c.Request.Context(), orderID, customerID)
	if err != nil {
		respondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", "order_id", orderID, "error", err)
		return
	}
	defer conn.Close()

	h.logger.Info("tracking stream opened", "order_id", orderID, "customer_id", customerID)

	// The read loop only drains control frames and notices the client leaving.
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	push := time.NewTicker(h.pushInterval)
	defer push.Stop()
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	ctx := c.Request.Context()
	for {
		if err := h.write(conn, StreamMessage{Type: "snapshot", Snapshot: snap}); err != nil {
			h.logger.Info("tracking stream write failed", "order_id", orderID, "error", err)
			return
		}
		if snap.Status.IsTerminal() {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(snap.Status)),
				time.Now().Add(writeWait))
			return
		}

	wait:
		for {
			select {
			case <-closed:
				h.logger.Info("tracking stream closed by client", "order_id", orderID)
				return
			case <-ctx.Done():
				return
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			case <-push.C:
				break wait
			}
		}

		snap, err = h.gateway.SnapshotFor(ctx, orderID, customerID)
		if err != nil {
			_ = h.write(conn, StreamMessage{Type: "error", Message: err.Error()})
			return
		}
	}
}

func (h *TrackingHandler) write(conn *websocket.Conn, msg StreamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}
