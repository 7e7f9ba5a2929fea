package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/core"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/domain"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/protocol"
	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/store"
)

const testSecret = "test-secret"

type pushCall struct {
	kind    protocol.EventKind
	roomID  domain.RoomID
	userID  domain.UserID
	payload any
}

type fakePusher struct {
	mu         sync.Mutex
	broadcasts []pushCall
	delivers   []pushCall
}

func (f *fakePusher) BroadcastRoom(rid domain.RoomID, kind protocol.EventKind, payload any, except core.SessionID) core.PublishResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, pushCall{kind: kind, roomID: rid, payload: payload})
	return core.PublishResult{}
}

func (f *fakePusher) DeliverUser(uid domain.UserID, kind protocol.EventKind, payload any) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delivers = append(f.delivers, pushCall{kind: kind, userID: uid, payload: payload})
	return true
}

type testServer struct {
	engine *gin.Engine
	store  *store.SQLite
	push   *fakePusher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	push := &fakePusher{}
	h := NewHandlers(st, push, testSecret)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/auth/shadow", h.CreateShadow)
	authed := api.Group("", AuthRequired(testSecret))
	authed.GET("/rooms", h.ListRooms)
	authed.POST("/rooms", h.CreateRoom)
	authed.POST("/rooms/:id/join", h.JoinRoom)
	authed.GET("/rooms/:id/messages", h.RoomHistory)
	authed.POST("/rooms/:id/messages", h.SendMessage)
	authed.POST("/dms/:userId", h.SendDM)
	authed.GET("/dms/:userId", h.Conversation)
	authed.POST("/messages/:id/reactions", h.React)

	return &testServer{engine: r, store: st, push: push}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

// signup registers a shadow identity and returns its user id and token.
func (ts *testServer) signup(t *testing.T, handle string) (domain.UserID, string) {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/auth/shadow", "", gin.H{"anonymousId": handle})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		User  domain.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.User.ID, resp.Token
}

func (ts *testServer) createRoom(t *testing.T, token, name string) domain.RoomID {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/rooms", token, gin.H{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var room domain.Room
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &room))
	return room.ID
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/rooms", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/api/rooms", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	_, token := ts.signup(t, "legit")
	w = ts.do(t, http.MethodGet, "/api/rooms", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSendMessage_PersistsThenBroadcasts(t *testing.T) {
	ts := newTestServer(t)
	uid, token := ts.signup(t, "sender")
	rid := ts.createRoom(t, token, "general")

	w := ts.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%s/messages", rid), token,
		gin.H{"content": "hello room"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var msg domain.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, uid, msg.SenderID)

	// Broadcast carries the same confirmed entity, id included.
	require.Len(t, ts.push.broadcasts, 1)
	call := ts.push.broadcasts[0]
	assert.Equal(t, protocol.EvNewMessage, call.kind)
	assert.Equal(t, rid, call.roomID)
	broadcasted := call.payload.(*domain.Message)
	assert.Equal(t, msg.ID, broadcasted.ID)
	assert.Equal(t, "hello room", broadcasted.Content)

	// Durably written: visible in history regardless of any push.
	hw := ts.do(t, http.MethodGet, fmt.Sprintf("/api/rooms/%s/messages", rid), token, nil)
	require.Equal(t, http.StatusOK, hw.Code)
	assert.Contains(t, hw.Body.String(), "hello room")
}

func TestSendMessage_NonMemberForbidden(t *testing.T) {
	ts := newTestServer(t)
	_, ownerToken := ts.signup(t, "owner")
	rid := ts.createRoom(t, ownerToken, "private")
	_, strangerToken := ts.signup(t, "stranger")

	w := ts.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%s/messages", rid), strangerToken,
		gin.H{"content": "let me in"})

	assert.Equal(t, http.StatusForbidden, w.Code)
	// Unauthorized writes never reach the fan-out.
	assert.Empty(t, ts.push.broadcasts)
}

func TestSendMessage_ReplyKind(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.signup(t, "threader")
	rid := ts.createRoom(t, token, "threads")

	w := ts.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%s/messages", rid), token,
		gin.H{"content": "root"})
	require.Equal(t, http.StatusCreated, w.Code)
	var root domain.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &root))

	w = ts.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%s/messages", rid), token,
		gin.H{"content": "child", "parentId": string(root.ID)})
	require.Equal(t, http.StatusCreated, w.Code)

	require.Len(t, ts.push.broadcasts, 2)
	assert.Equal(t, protocol.EvNewMessage, ts.push.broadcasts[0].kind)
	assert.Equal(t, protocol.EvNewReply, ts.push.broadcasts[1].kind)
}

func TestSendDM_PushesToBothParties(t *testing.T) {
	ts := newTestServer(t)
	sender, senderToken := ts.signup(t, "whisperer")
	recipient, _ := ts.signup(t, "listener")

	w := ts.do(t, http.MethodPost, fmt.Sprintf("/api/dms/%s", recipient), senderToken,
		gin.H{"content": "psst"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.Len(t, ts.push.delivers, 2)
	targets := []domain.UserID{ts.push.delivers[0].userID, ts.push.delivers[1].userID}
	assert.ElementsMatch(t, []domain.UserID{sender, recipient}, targets)
	for _, call := range ts.push.delivers {
		assert.Equal(t, protocol.EvNewDM, call.kind)
		dm := call.payload.(*domain.DirectMessage)
		assert.Equal(t, "psst", dm.Content)
		assert.NotEmpty(t, dm.ID)
	}

	// And the conversation fetch sees it too.
	cw := ts.do(t, http.MethodGet, fmt.Sprintf("/api/dms/%s", recipient), senderToken, nil)
	require.Equal(t, http.StatusOK, cw.Code)
	assert.Contains(t, cw.Body.String(), "psst")
}

func TestSendDM_ToSelfPushesOnce(t *testing.T) {
	ts := newTestServer(t)
	uid, token := ts.signup(t, "loner")

	w := ts.do(t, http.MethodPost, fmt.Sprintf("/api/dms/%s", uid), token,
		gin.H{"content": "note to self"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, ts.push.delivers, 1)
}

func TestReact_BroadcastsToMessageRoom(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.signup(t, "reactor")
	rid := ts.createRoom(t, token, "emoji")

	w := ts.do(t, http.MethodPost, fmt.Sprintf("/api/rooms/%s/messages", rid), token,
		gin.H{"content": "react to this"})
	require.Equal(t, http.StatusCreated, w.Code)
	var msg domain.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))

	w = ts.do(t, http.MethodPost, fmt.Sprintf("/api/messages/%s/reactions", msg.ID), token,
		gin.H{"emoji": "🔥"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.Len(t, ts.push.broadcasts, 2)
	last := ts.push.broadcasts[1]
	assert.Equal(t, protocol.EvMessageReacted, last.kind)
	assert.Equal(t, rid, last.roomID)
}

func TestReact_UnknownMessage(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.signup(t, "confused")

	w := ts.do(t, http.MethodPost, "/api/messages/nope/reactions", token, gin.H{"emoji": "?"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
