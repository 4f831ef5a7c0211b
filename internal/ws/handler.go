package ws

import (
	"bytes"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/loomui/loom/internal/engine"
	"github.com/loomui/loom/internal/infrastructure/config"
	"github.com/loomui/loom/internal/infrastructure/monitoring"
	"github.com/loomui/loom/internal/logging"
	"github.com/loomui/loom/internal/shared/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Producer connections are authenticated upstream
	},
}

// Frame is one WebSocket message from the producer. A connection carries
// the serial instruction stream plus channel lifecycle events.
type Frame struct {
	Type string `json:"type"`

	// instruction
	Instruction *types.Instruction `json:"instruction,omitempty"`

	// open_channel
	ChannelID types.ChannelID `json:"channel_id,omitempty"`
	GlobalID  types.GlobalID  `json:"global_id,omitempty"`
	Payload   []byte          `json:"payload,omitempty"`

	// close_channel
	WidgetID types.WidgetID `json:"widget_id,omitempty"`
}

// Handler manages producer WebSocket connections and feeds the engine.
type Handler struct {
	engine    *engine.Engine
	log       *logging.Logger
	metrics   *monitoring.Metrics
	rateLimit config.RateLimitConfig
}

// NewHandler creates a new WebSocket handler.
func NewHandler(eng *engine.Engine, log *logging.Logger, rateLimit config.RateLimitConfig) *Handler {
	return &Handler{
		engine:    eng,
		log:       log,
		rateLimit: rateLimit,
	}
}

// WithMetrics adds metrics tracking to the handler.
func (h *Handler) WithMetrics(m *monitoring.Metrics) *Handler {
	h.metrics = m
	return h
}

// HandleConnection upgrades the request and processes frames until the
// connection closes. Frames are processed strictly in arrival order; the
// engine is never invoked concurrently for one connection.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := uuid.New().String()
	log := &logging.Logger{Logger: h.log.With(zap.String("conn_id", connID))}
	log.Info("producer connected")

	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
		defer h.metrics.WSConnections.Dec()
	}

	var limiter *rate.Limiter
	if h.rateLimit.Enabled {
		limiter = rate.NewLimiter(rate.Limit(h.rateLimit.InstructionsPerSecond), h.rateLimit.Burst)
	}

	h.send(conn, gin.H{"type": "ready", "conn_id": connID})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Info("producer disconnected", zap.Error(err))
			return
		}

		var frame Frame
		if err := sonic.Unmarshal(data, &frame); err != nil {
			h.sendError(conn, "malformed frame")
			continue
		}
		if h.metrics != nil {
			h.metrics.WSMessages.WithLabelValues(frame.Type).Inc()
		}

		if limiter != nil && !limiter.Allow() {
			h.sendError(conn, "rate limited")
			continue
		}

		switch frame.Type {
		case "instruction":
			h.handleInstruction(conn, log, frame)
		case "open_channel":
			h.handleOpenChannel(conn, log, frame)
		case "close_channel":
			h.engine.ChannelClosed(frame.WidgetID)
		case "poll_frame":
			h.send(conn, gin.H{"type": "frame", "render": h.engine.ShouldRenderFrame()})
		case "ping":
			h.send(conn, gin.H{"type": "pong"})
		default:
			h.sendError(conn, "unknown frame type")
		}
	}
}

func (h *Handler) handleInstruction(conn *websocket.Conn, log *logging.Logger, frame Frame) {
	if frame.Instruction == nil {
		h.sendError(conn, "instruction frame without instruction")
		return
	}
	if err := h.engine.Dispatch(*frame.Instruction); err != nil {
		log.Error("dispatch failed",
			zap.String("op", string(frame.Instruction.Op)),
			zap.Error(err))
		h.sendError(conn, err.Error())
	}
}

func (h *Handler) handleOpenChannel(conn *websocket.Conn, log *logging.Logger, frame Frame) {
	bound, err := h.engine.MaterializeChannel(frame.ChannelID, frame.GlobalID, bytes.NewReader(frame.Payload))
	if err != nil {
		// The channel must fail loudly; the producer and consumer disagree
		// about class registration or the record is malformed.
		h.send(conn, gin.H{
			"type":       "channel_failed",
			"channel_id": frame.ChannelID,
			"message":    err.Error(),
			"timestamp":  time.Now().Unix(),
		})
		return
	}
	h.send(conn, gin.H{
		"type":       "channel_bound",
		"channel_id": frame.ChannelID,
		"bound_to":   bound,
	})
}

func (h *Handler) send(conn *websocket.Conn, data any) {
	payload, err := sonic.Marshal(data)
	if err != nil {
		h.log.Error("encode response failed", zap.Error(err))
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		h.log.Warn("write failed", zap.Error(err))
	}
}

func (h *Handler) sendError(conn *websocket.Conn, msg string) {
	h.send(conn, gin.H{
		"type":      "error",
		"message":   msg,
		"timestamp": time.Now().Unix(),
	})
}
