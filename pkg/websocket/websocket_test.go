package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pro-network/config"
	"pro-network/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, m *Manager, hooks Hooks) (*httptest.Server, *jwt.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc := jwt.NewJWTService(config.JWTConfig{Secret: "test", ExpireTime: time.Hour, Issuer: "test"})
	h := NewHandler(jwtSvc, config.WebSocketConfig{PingInterval: time.Second, ReadTimeout: 5 * time.Second}, m, hooks)

	r := gin.New()
	r.GET("/ws", h.Serve)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, jwtSvc
}

func dial(t *testing.T, srv *httptest.Server, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	return websocket.DefaultDialer.Dial(url, nil)
}

func TestServeRejectsMissingToken(t *testing.T) {
	srv, _ := newTestServer(t, NewManager(), Hooks{})

	_, resp, err := dial(t, srv, "")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServeWelcomePushAndAck(t *testing.T) {
	m := NewManager()
	acks := make(chan [2]uint, 1)
	touched := make(chan uint, 4)
	srv, jwtSvc := newTestServer(t, m, Hooks{
		Welcome: func(userID uint) []byte { return []byte(`{"type":"unread_count","count":2}`) },
		Touch:   func(userID uint) { touched <- userID },
		AckRead: func(userID, id uint) { acks <- [2]uint{userID, id} },
	})

	token, err := jwtSvc.GenerateToken(7, "ada")
	require.NoError(t, err)
	conn, _, err := dial(t, srv, token)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"unread_count","count":2}`, string(msg))
	assert.Equal(t, uint(7), <-touched)
	assert.True(t, m.IsOnline(7))

	assert.True(t, m.SendToUser(7, []byte(`{"type":"notification"}`)))
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"notification"}`, string(msg))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ack_read","notification_id":15}`)))
	select {
	case got := <-acks:
		assert.Equal(t, [2]uint{7, 15}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("ack not delivered")
	}
}

func TestManagerReplaceAndRemove(t *testing.T) {
	m := NewManager()
	first := NewClient(1, nil)
	second := NewClient(1, nil)

	m.AddClient(first)
	m.AddClient(second)
	assert.Equal(t, 1, m.Count())

	_, open := <-first.Send
	assert.False(t, open)

	// 旧连接退出时不能移除新连接
	assert.False(t, m.RemoveClient(first))
	assert.True(t, m.IsOnline(1))

	assert.True(t, m.RemoveClient(second))
	assert.False(t, m.IsOnline(1))
	assert.False(t, m.SendToUser(1, []byte("x")))
}
