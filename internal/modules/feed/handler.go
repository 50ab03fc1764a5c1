package feed

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"equiprent/internal/domain"
	"equiprent/internal/pkg/jwt"
	"equiprent/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
)

type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type Handler struct {
	hub      *Hub
	tokens   TokenValidator
	upgrader websocket.Upgrader
	log      *zap.Logger
}

// NewHandler accepts upgrades from the given origins; an empty list or "*" allows any.
func NewHandler(hub *Hub, tokens TokenValidator, origins []string, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		hub:    hub,
		tokens: tokens,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(origins),
		},
	}
}

// RegisterRoutes mounts the socket on a group without header auth; browsers pass the JWT as ?token=.
func (h *Handler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/ws", h.Serve)
}

// Serve
// @Summary		Live rental feed
// @Tags		Admin
// @Param		token	query	string	true	"Admin JWT"
// @Router		/admin/ws [GET]
func (h *Handler) Serve(c *gin.Context) {
	claims, err := h.authenticate(c)
	if err != nil {
		switch {
		case errors.Is(err, ErrTokenMissing):
			response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Token is required")
		case errors.Is(err, ErrForbidden):
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
		default:
			response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		}
		return
	}

	sub := h.hub.subscribe(claims.AdminID)
	if sub == nil {
		response.Error(c, http.StatusServiceUnavailable, "FEED_CLOSED", ErrHubClosed.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.hub.unsubscribe(sub.id)
		h.log.Debug("feed upgrade failed", zap.Error(err))
		return
	}

	h.log.Info("feed subscriber connected", zap.String("subscriber", sub.id), zap.Int64("admin_id", sub.adminID))

	done := make(chan struct{})
	go func() {
		defer close(done)
		writePump(conn, sub)
	}()

	readPump(conn)
	h.hub.unsubscribe(sub.id)
	<-done

	h.log.Info("feed subscriber disconnected", zap.String("subscriber", sub.id))
}

func (h *Handler) authenticate(c *gin.Context) (*jwt.Claims, error) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		if parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			token = strings.TrimSpace(parts[1])
		}
	}
	if token == "" {
		return nil, ErrTokenMissing
	}

	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	if claims.Role != domain.RoleAdmin {
		return nil, ErrForbidden
	}
	return claims, nil
}

// readPump discards client frames and returns once the peer goes away.
func readPump(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case ev, ok := <-sub.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			allowed[o] = struct{}{}
		}
	}
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
