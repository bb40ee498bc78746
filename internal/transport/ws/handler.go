package ws

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	authsvc "github.com/ivankudzin/swipematch/internal/services/auth"
	"github.com/ivankudzin/swipematch/internal/services/connections"
	httperrors "github.com/ivankudzin/swipematch/internal/transport/http/errors"
)

type Authenticator interface {
	ValidateAccessToken(ctx context.Context, accessToken string) (authsvc.AccessClaims, error)
}

type Registrar interface {
	Register(userID string, handle connections.Handle) error
	Unregister(handle connections.Handle) bool
}

type Options struct {
	SendBuffer        int
	WriteWait         time.Duration
	PongWait          time.Duration
	PingPeriod        time.Duration
	MaxMessageBytes   int64
	MessagesPerSecond float64
	MessageBurst      int
	AllowedOrigins    []string
}

func (o Options) withDefaults() Options {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 32
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = o.PongWait * 9 / 10
	}
	if o.MaxMessageBytes <= 0 {
		o.MaxMessageBytes = 4096
	}
	if o.MessagesPerSecond <= 0 {
		o.MessagesPerSecond = 5
	}
	if o.MessageBurst <= 0 {
		o.MessageBurst = 10
	}
	return o
}

// Handler upgrades authenticated requests to websocket sessions and keeps the
// connection registry in step with their lifetime.
type Handler struct {
	auth     Authenticator
	registry Registrar
	opts     Options
	logger   *zap.Logger
	upgrader websocket.Upgrader

	// mu orders session admission against Close so no session starts after
	// Close has begun waiting.
	mu       sync.Mutex
	closing  bool
	quit     chan struct{}
	quitOnce sync.Once
	wg       sync.WaitGroup
}

func NewHandler(auth Authenticator, registry Registrar, opts Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()

	h := &Handler{
		auth:     auth,
		registry: registry,
		opts:     opts,
		logger:   logger,
		quit:     make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil || h.registry == nil {
		httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
			Code:    "REALTIME_UNAVAILABLE",
			Message: "realtime service is unavailable",
		})
		return
	}

	token, ok := accessTokenFromRequest(r)
	if !ok {
		httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
			Code:    "UNAUTHORIZED",
			Message: "missing bearer token",
		})
		return
	}
	claims, err := h.auth.ValidateAccessToken(r.Context(), token)
	if err != nil {
		httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
			Code:    "UNAUTHORIZED",
			Message: "invalid access token",
		})
		return
	}

	if !h.admit() {
		httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{
			Code:    "SHUTTING_DOWN",
			Message: "server is shutting down",
		})
		return
	}
	defer h.wg.Done()

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	conn := newConn(wsConn, claims.UserID, h.opts, h.logger)
	if err := h.registry.Register(claims.UserID, conn); err != nil {
		h.logger.Error("register connection failed", zap.String("user_id", claims.UserID), zap.Error(err))
		_ = wsConn.Close()
		return
	}

	defer func() {
		conn.close()
		h.registry.Unregister(conn)
		h.logger.Info("websocket disconnected",
			zap.String("user_id", conn.UserID()),
			zap.String("connection_id", conn.ID()),
		)
	}()

	h.logger.Info("websocket connected",
		zap.String("user_id", conn.UserID()),
		zap.String("connection_id", conn.ID()),
	)

	go conn.writePump(h.quit)
	conn.readPump()
}

// Close asks every open session to close and waits until they are gone or
// ctx ends.
func (h *Handler) Close(ctx context.Context) error {
	h.mu.Lock()
	h.closing = true
	h.mu.Unlock()
	h.quitOnce.Do(func() { close(h.quit) })

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handler) admit() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return false
	}
	h.wg.Add(1)
	return true
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// Browsers cannot set headers on websocket requests, so the token may also
// come as the access_token query parameter.
func accessTokenFromRequest(r *http.Request) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(r.Header.Get("Authorization")), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && strings.TrimSpace(parts[1]) != "" {
		return strings.TrimSpace(parts[1]), true
	}
	if token := strings.TrimSpace(r.URL.Query().Get("access_token")); token != "" {
		return token, true
	}
	return "", false
}
