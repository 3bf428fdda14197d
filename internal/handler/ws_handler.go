package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/myadmit/admit-backend/internal/config"
	"github.com/myadmit/admit-backend/internal/service"
	ws "github.com/myadmit/admit-backend/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams essay generation progress.
type WSHandler struct {
	rdb                *redis.Client
	applicationService *service.ApplicationService
	log                zerolog.Logger
	upgrader           websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, applicationService *service.ApplicationService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:                rdb,
		applicationService: applicationService,
		log:                log.With().Str("component", "ws_handler").Logger(),
		upgrader:           buildUpgrader(allowedOrigins),
	}
}

// GenerationStream godoc
// WS /ws/v1/applications/:id/generation?token=
// Sends a snapshot of the generating flag, then forwards every progress
// event published for the application until the client disconnects.
func (h *WSHandler) GenerationStream(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	app, err := h.applicationService.Get(ctx, claims.UserID, id)
	if err != nil {
		failWithError(c, err)
		return
	}

	// Subscribe before the snapshot so no event slips between the two.
	pubsub := h.rdb.Subscribe(ctx, config.CacheKey.GenerationChannel(app.ID.String()))
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		failWithError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Str("user_id", claims.UserID.String()).
		Str("application_id", app.ID.String()).
		Logger()
	wsLog.Info().Msg("Client connected")

	ws.KeepAlive(conn)
	if err := ws.WriteTyped(conn, ws.SnapshotResponse{Event: ws.EventSnapshot, IsGenerating: app.IsGenerating}); err != nil {
		return
	}

	// Only this goroutine writes; the reader hands actions over.
	actions := make(chan ws.Action, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var env ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &env); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			select {
			case actions <- env.Action:
			default:
			}
		}
	}()

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()
	events := pubsub.Channel()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case msg, ok := <-events:
			if !ok {
				return
			}
			if err := ws.WriteRaw(conn, []byte(msg.Payload)); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}
		case action := <-actions:
			var err error
			switch action {
			case ws.ActionPing:
				err = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			default:
				err = ws.WriteError(conn, "unknown action: "+string(action))
			}
			if err != nil {
				return
			}
		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}
