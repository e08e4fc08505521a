package api

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"animai/internal/incubator"
	"animai/internal/logging"
	"animai/internal/metrics"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsSendBuffer = 16
	wsReadLimit  = 4096
)

// wsFrame is what clients send: the same body as the POST endpoint plus
// the target egg (0 resolves automatically).
type wsFrame struct {
	EggID   uint   `json:"eggId"`
	Message string `json:"message"`
}

type wsError struct {
	Type   string `json:"type"`
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// Hub fans egg events out to every websocket a user has open. Slow
// clients lose events rather than block the message pipeline.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*wsClient]struct{}
	metrics *metrics.Metrics
}

type wsClient struct {
	send chan incubator.Event
}

func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{clients: make(map[uint]map[*wsClient]struct{}), metrics: m}
}

func (h *Hub) Publish(userID uint, ev incubator.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for cl := range h.clients[userID] {
		select {
		case cl.send <- ev:
		default:
		}
	}
}

func (h *Hub) subscribe(userID uint) *wsClient {
	cl := &wsClient{send: make(chan incubator.Event, wsSendBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*wsClient]struct{})
	}
	h.clients[userID][cl] = struct{}{}
	h.metrics.WebsocketOpened()
	return cl
}

func (h *Hub) unsubscribe(userID uint, cl *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID][cl]; !ok {
		return
	}
	delete(h.clients[userID], cl)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
	close(cl.send)
	h.metrics.WebsocketClosed()
}

// Subscribers reports how many sockets a user has open.
func (h *Hub) Subscribers(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return len(allowedOrigins) == 0 || origin == "" || slices.Contains(allowedOrigins, origin)
		},
	}
}

// GET /api/ws/eggs?userId= streams message and hatch events for the user.
// Frames sent by the client are handled like POST messages, one at a time;
// their results arrive as "message" events, failures as "error" frames.
func WSEggHandler(hub *Hub, inc *incubator.Incubator, upgrader websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := queryUserID(c)
		if !ok {
			return
		}
		log := logging.From(c, zap.L())
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn("Websocket upgrade failed", zap.Error(err))
			return
		}

		cl := hub.subscribe(userID)
		defer hub.unsubscribe(userID, cl)

		ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
		defer cancel()

		failures := make(chan wsError, 1)
		done := make(chan struct{})
		go func() {
			defer close(done)
			conn.SetReadLimit(wsReadLimit)
			_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
			conn.SetPongHandler(func(string) error {
				return conn.SetReadDeadline(time.Now().Add(wsPongWait))
			})
			fail := func(status int, message string) bool {
				select {
				case failures <- wsError{Type: "error", Status: status, Error: message}:
					return true
				case <-ctx.Done():
					return false
				}
			}
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
				var frame wsFrame
				if err := json.Unmarshal(data, &frame); err != nil {
					if !fail(http.StatusBadRequest, "invalid frame") {
						return
					}
					continue
				}
				if strings.TrimSpace(frame.Message) == "" {
					if !fail(http.StatusBadRequest, "message is required") {
						return
					}
					continue
				}
				if _, err := inc.HandleMessage(ctx, userID, frame.EggID, frame.Message); err != nil {
					status, message := errorStatus(err)
					if status >= http.StatusInternalServerError {
						log.Error("Websocket message failed", zap.Uint("user_id", userID), zap.Error(err))
					}
					if !fail(status, message) {
						return
					}
				}
			}
		}()
		defer func() {
			conn.Close()
			cancel()
			<-done
		}()

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(gin.H{"type": "subscribed", "userId": userID}); err != nil {
			return
		}

		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		for {
			var out any
			select {
			case ev, ok := <-cl.send:
				if !ok {
					return
				}
				out = ev
			case f := <-failures:
				out = f
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				continue
			case <-done:
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(out); err != nil {
				log.Debug("Websocket write failed", zap.Uint("user_id", userID), zap.Error(err))
				return
			}
		}
	}
}
