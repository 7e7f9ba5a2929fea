package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/core"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/domain"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/protocol"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/store"
)

// Pusher is the slice of the dispatcher the write path needs: once an
// entity is durably written, push its broadcast. Satisfied by
// *app.Dispatcher.
type Pusher interface {
	BroadcastRoom(rid domain.RoomID, kind protocol.EventKind, payload any, except core.SessionID) core.PublishResult
	DeliverUser(uid domain.UserID, kind protocol.EventKind, payload any) bool
}

// Handlers is the durable write path. Every mutation persists first and
// pushes second; the push is a latency optimization, never the source of
// truth. Authorization (room membership) happens here, before any
// broadcast — the fan-out layer itself never authorizes.
type Handlers struct {
	Store  store.Store
	Push   Pusher
	Secret string

	// Reputation awarded per durable write.
	messagePoints int
}

func NewHandlers(st store.Store, push Pusher, secret string) *Handlers {
	return &Handlers{Store: st, Push: push, Secret: secret, messagePoints: 2}
}

func callerID(c *gin.Context) domain.UserID { return domain.UserID(c.GetString("user_id")) }

// CreateShadow registers a pseudonymous identity and issues its token.
func (h *Handlers) CreateShadow(c *gin.Context) {
	var req struct {
		Handle string `json:"anonymousId" binding:"required,max=36"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	u, err := domain.NewUser(req.Handle)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.CreateUser(c.Request.Context(), u); err != nil {
		log.Error().Err(err).Str("module", "http").Msg("create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	token, err := IssueToken(h.Secret, u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token failure"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u, "token": token})
}

func (h *Handlers) ListRooms(c *gin.Context) {
	rooms, err := h.Store.ListRooms(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("list rooms")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *Handlers) CreateRoom(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required,max=64"`
		Topic string `json:"topic" binding:"max=200"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	room := &domain.Room{
		ID:        domain.RoomID(uuid.NewString()),
		Name:      domain.RoomName(req.Name),
		Topic:     req.Topic,
		CreatorID: callerID(c),
		CreatedAt: time.Now(),
	}
	if err := h.Store.CreateRoom(c.Request.Context(), room); err != nil {
		log.Error().Err(err).Str("module", "http").Msg("create room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (h *Handlers) JoinRoom(c *gin.Context) {
	rid := domain.RoomID(c.Param("id"))
	if err := h.Store.AddRoomMember(c.Request.Context(), rid, callerID(c)); err != nil {
		log.Error().Err(err).Str("module", "http").Msg("join room")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) RoomHistory(c *gin.Context) {
	rid := domain.RoomID(c.Param("id"))
	msgs, err := h.Store.RoomMessages(c.Request.Context(), rid, 50)
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("room history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// SendMessage persists a room message (or a reply when parentId is set)
// and then broadcasts the confirmed entity. The response body carries the
// same entity so the client can reconcile against whichever arrives first.
func (h *Handlers) SendMessage(c *gin.Context) {
	var req struct {
		Content  string `json:"content" binding:"required,max=2000"`
		ParentID string `json:"parentId" binding:"max=36"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := domain.ValidateContent(req.Content); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	rid := domain.RoomID(c.Param("id"))
	uid := callerID(c)

	member, err := h.Store.IsRoomMember(ctx, rid, uid)
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("membership check")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room member"})
		return
	}

	msg := &domain.Message{
		ID:        domain.MessageID(uuid.NewString()),
		RoomID:    rid,
		SenderID:  uid,
		Shadow:    c.GetString("shadow"),
		Content:   req.Content,
		ParentID:  domain.MessageID(req.ParentID),
		CreatedAt: time.Now(),
	}
	if err := h.Store.SaveMessage(ctx, msg); err != nil {
		log.Error().Err(err).Str("module", "http").Msg("save message")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	if err := h.Store.AddPoints(ctx, uid, h.messagePoints); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Warn().Err(err).Str("module", "http").Msg("add points")
	}

	kind := protocol.EvNewMessage
	if msg.ParentID != "" {
		kind = protocol.EvNewReply
	}
	h.Push.BroadcastRoom(rid, kind, msg, "")
	c.JSON(http.StatusCreated, msg)
}

// SendDM persists the message, then pushes it to the recipient's live
// session and, when sender and recipient differ, to the sender's other
// registration as well. An offline recipient is fine: they see it on the
// next conversation fetch.
func (h *Handlers) SendDM(c *gin.Context) {
	var req struct {
		Content string `json:"content" binding:"required,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := domain.ValidateContent(req.Content); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	sender := callerID(c)
	recipient := domain.UserID(c.Param("userId"))

	dm := &domain.DirectMessage{
		ID:          domain.MessageID(uuid.NewString()),
		SenderID:    sender,
		RecipientID: recipient,
		Shadow:      c.GetString("shadow"),
		Content:     req.Content,
		CreatedAt:   time.Now(),
	}
	if err := h.Store.SaveDirectMessage(ctx, dm); err != nil {
		log.Error().Err(err).Str("module", "http").Msg("save dm")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	h.Push.DeliverUser(recipient, protocol.EvNewDM, dm)
	if sender != recipient {
		h.Push.DeliverUser(sender, protocol.EvNewDM, dm)
	}
	c.JSON(http.StatusCreated, dm)
}

func (h *Handlers) Conversation(c *gin.Context) {
	dms, err := h.Store.Conversation(c.Request.Context(), callerID(c), domain.UserID(c.Param("userId")), 50)
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("conversation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": dms})
}

// React upserts a reaction and broadcasts it to the message's room.
func (h *Handlers) React(c *gin.Context) {
	var req struct {
		Emoji string `json:"emoji" binding:"required,max=16"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	ctx := c.Request.Context()
	uid := callerID(c)
	mid := domain.MessageID(c.Param("id"))

	msg, err := h.Store.GetMessage(ctx, mid)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such message"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("get message")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	member, err := h.Store.IsRoomMember(ctx, msg.RoomID, uid)
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("membership check")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room member"})
		return
	}

	reaction := &domain.Reaction{
		MessageID: mid,
		UserID:    uid,
		Emoji:     req.Emoji,
		CreatedAt: time.Now(),
	}
	if err := h.Store.AddReaction(ctx, reaction); err != nil {
		log.Error().Err(err).Str("module", "http").Msg("add reaction")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
		return
	}

	h.Push.BroadcastRoom(msg.RoomID, protocol.EvMessageReacted, struct {
		MessageID domain.MessageID `json:"messageId"`
		Reaction  *domain.Reaction `json:"reaction"`
	}{mid, reaction}, "")
	c.JSON(http.StatusCreated, reaction)
}
