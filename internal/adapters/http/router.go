package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/adapters/ws"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/app"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/config"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/store"
)

// ClientTokenMiddleware issues a durable per-browser token. It gates the
// signal socket; each upgraded connection still gets its own session id.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, st store.Store, d *app.Dispatcher) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	cookieStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ShadowSessions", cookieStore))
	r.Use(ClientTokenMiddleware())

	h := NewHandlers(st, d, cfg.Secret)
	signal := ws.NewController(d, cfg.ReadLimit, cfg.SendBuffer)

	log.Info().Str("module", "adapters.http").Msg("router setup")

	r.GET("/ws/signal", func(c *gin.Context) {
		signal.HandleSignal(ctx, c)
	})

	api := r.Group("/api")
	api.POST("/auth/shadow", h.CreateShadow)

	authed := api.Group("", AuthRequired(cfg.Secret))
	authed.GET("/rooms", h.ListRooms)
	authed.POST("/rooms", h.CreateRoom)
	authed.POST("/rooms/:id/join", h.JoinRoom)
	authed.GET("/rooms/:id/messages", h.RoomHistory)
	authed.POST("/rooms/:id/messages", h.SendMessage)
	authed.POST("/dms/:userId", h.SendDM)
	authed.GET("/dms/:userId", h.Conversation)
	authed.POST("/messages/:id/reactions", h.React)

	return r
}
