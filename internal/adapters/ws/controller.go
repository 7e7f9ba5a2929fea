// Package ws is the signal-socket adapter: one upgraded connection per
// client, a read pump dispatching typed events into the core, and a write
// pump draining a bounded send queue.
package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/app"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/core"
)

type Controller struct {
	Dispatcher *app.Dispatcher
	ReadLimit  int64
	SendBuffer int
}

func NewController(d *app.Dispatcher, readLimit int64, sendBuffer int) *Controller {
	if sendBuffer <= 0 {
		sendBuffer = 32
	}
	return &Controller{Dispatcher: d, ReadLimit: readLimit, SendBuffer: sendBuffer}
}

// wsConn wraps one websocket with a bounded send queue. TrySend never
// blocks: a full queue means the client is too slow and the frame is
// dropped, the store keeps the truth.
type wsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.Mutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrClosed
	}
	select {
	case c.send <- f:
		return nil
	default:
		return core.ErrBackpressure
	}
}

func (c *wsConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and binds the connection under a
// fresh session id. The client token identifies the browser, not the
// connection: two tabs share one token, and binding them to it would let
// one tab's disconnect purge the other's live state.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	if c.GetString("client_token") == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	sid := core.SessionID(uuid.NewString())
	wsc, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade")
		return
	}
	if ctl.ReadLimit > 0 {
		wsc.SetReadLimit(ctl.ReadLimit)
	}

	conn := &wsConn{conn: wsc, send: make(chan core.Frame, ctl.SendBuffer)}
	ctl.Dispatcher.Bind(sid, conn)
	log.Info().Str("module", "ws").Str("sid", string(sid)).Msg("signal connection open")

	connCtx, cancel := context.WithCancel(ctx)
	go ctl.writePump(connCtx, conn)
	go ctl.readPump(connCtx, cancel, sid, conn)
}
