package ws

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
)

func testCredential(t *testing.T) (*types.Credential, []byte) {
	t.Helper()
	seed := bytes.Repeat([]byte{0x07}, 32)
	tag, err := signing.PublicKeyFromSeed(seed)
	require.NoError(t, err)
	pub, err := signing.ParsePublicKey(tag)
	require.NoError(t, err)
	return &types.Credential{AccountID: "0xacct", PublicKey: tag, PrivateKey: seed}, pub
}

func boolPtr(b bool) *bool { return &b }

// fakeVenue 校验 auth 签名，订阅后发送一次 ping 和一条执行回报
func fakeVenue(t *testing.T, pub []byte, acceptAuth bool) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/ws/private/stream/0xacct" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var auth Message
		if err := conn.ReadJSON(&auth); err != nil {
			return
		}
		ok := acceptAuth && auth.Event == EventAuth && auth.Params != nil
		if ok {
			sig, err := signing.DecodeSignature(auth.Params.Sign)
			ok = err == nil && signing.VerifyEd25519([]byte(strconv.FormatInt(auth.Params.Timestamp, 10)), sig, pub)
		}
		// 认证回复前插入一个 ping
		_ = conn.WriteJSON(Message{Event: EventPing, Ts: 1})
		var pong Message
		if err := conn.ReadJSON(&pong); err != nil || pong.Event != EventPong {
			return
		}
		_ = conn.WriteJSON(Message{ID: auth.ID, Event: EventAuth, Success: boolPtr(ok), ErrorMsg: "bad key"})
		if !ok {
			return
		}

		var sub Message
		if err := conn.ReadJSON(&sub); err != nil || sub.Topic != TopicExecutionReport {
			return
		}
		_ = conn.WriteJSON(Message{ID: sub.ID, Event: EventSubscribe, Success: boolPtr(true)})
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"topic":"executionreport","ts":1700000000000,"data":{"symbol":"PERP_ETH_USDC","orderId":42,"side":"BUY","status":"FILLED","executedPrice":2500.5,"executedQuantity":0.01,"timestamp":1700000000000}}`))

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/v2/ws/private/stream"
}

func TestPrivateClient_AuthSubscribeAndReceive(t *testing.T) {
	cred, pub := testCredential(t)
	srv := fakeVenue(t, pub, true)

	c, err := NewPrivateClient(wsURL(srv), cred, Config{AuthTimeout: 2 * time.Second})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Start(ctx))
	defer c.Stop()

	select {
	case report := <-c.Reports():
		assert.Equal(t, int64(42), report.OrderID)
		assert.Equal(t, "FILLED", report.Status)
		assert.True(t, decimal.RequireFromString("2500.5").Equal(report.ExecutedPrice))
	case err := <-c.Errors():
		t.Fatalf("unexpected error: %v", err)
	case <-ctx.Done():
		t.Fatal("timed out waiting for execution report")
	}
}

func TestPrivateClient_AuthRejected(t *testing.T) {
	cred, pub := testCredential(t)
	srv := fakeVenue(t, pub, false)

	c, err := NewPrivateClient(wsURL(srv), cred, Config{AuthTimeout: 2 * time.Second})
	require.NoError(t, err)
	err = c.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}

func TestNewPrivateClient_URL(t *testing.T) {
	cred, _ := testCredential(t)
	c, err := NewPrivateClient("wss://example.com/stream/", cred, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, "wss://example.com/stream/0xacct", c.url)

	_, err = NewPrivateClient("wss://example.com", nil, DefaultConfig())
	assert.Error(t, err)
}
