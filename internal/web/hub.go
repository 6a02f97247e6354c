package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/olahol/melody"
	"go.uber.org/zap"

	"github.com/etlefig/Bootschappenbot/internal/item"
)

// ChangeMessage is pushed to WebSocket clients when a list changes.
type ChangeMessage struct {
	Type string    `json:"type"`
	List item.List `json:"list"`
}

const changeType = "list_changed"

// Hub fans list changes out to connected browsers. It implements
// bot.Notifier.
type Hub struct {
	m      *melody.Melody
	logger *zap.Logger
}

// NewHub creates a hub. A nil logger discards logs.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("ws")

	m := melody.New()
	m.Config.MaxMessageSize = 1024
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		list, _ := s.Get("list")
		logger.Debug("client connected", zap.Any("list", list))
	})
	m.HandleDisconnect(func(s *melody.Session) {
		logger.Debug("client disconnected")
	})
	m.HandleError(func(s *melody.Session, err error) {
		logger.Debug("websocket error", zap.Error(err))
	})

	return &Hub{m: m, logger: logger}
}

// HandleWS upgrades the request. "?list=toko" subscribes to one list;
// without it the client hears about every list.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	keys := map[string]any{}
	if raw := r.URL.Query().Get("list"); raw != "" {
		l, ok := item.ParseList(raw)
		if !ok {
			http.Error(w, "unknown list", http.StatusNotFound)
			return
		}
		keys["list"] = l
	}
	if err := h.m.HandleRequestWithKeys(w, r, keys); err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
	}
}

// ListChanged broadcasts a change to every client subscribed to list.
func (h *Hub) ListChanged(list item.List) {
	msg, err := json.Marshal(ChangeMessage{Type: changeType, List: list})
	if err != nil {
		h.logger.Error("encode change message", zap.Error(err))
		return
	}
	err = h.m.BroadcastFilter(msg, func(s *melody.Session) bool {
		want, ok := s.Get("list")
		return !ok || want == list
	})
	if err != nil {
		h.logger.Warn("broadcast failed", zap.String("list", string(list)), zap.Error(err))
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	return h.m.Len()
}

// Close disconnects every client.
func (h *Hub) Close() error {
	return h.m.Close()
}
