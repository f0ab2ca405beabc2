package mockvenue

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamSession 一条私有流连接
type streamSession struct {
	venue     *Venue
	accountID string
	conn      *websocket.Conn
	writeMu   sync.Mutex
	authed    bool
	reports   chan ws.ExecutionReport
}

func (v *Venue) handleStream(c *gin.Context) {
	accountID := c.Param("accountID")
	v.mu.Lock()
	_, ok := v.accounts[accountID]
	v.mu.Unlock()
	if !ok {
		v.fail(c, http.StatusNotFound, CodeNotFound, "account not found")
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	v.mu.Lock()
	v.conns[conn] = struct{}{}
	v.mu.Unlock()

	s := &streamSession{venue: v, accountID: accountID, conn: conn}
	s.serve()
}

// CloseStreams 向所有私有流连接发送 close 帧并断开，返回断开的连接数
func (v *Venue) CloseStreams() int {
	v.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(v.conns))
	for conn := range v.conns {
		conns = append(conns, conn)
	}
	v.mu.Unlock()

	deadline := time.Now().Add(time.Second)
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "venue shutting down")
	for _, conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
		_ = conn.Close()
	}
	return len(conns)
}

func (s *streamSession) serve() {
	defer func() {
		s.venue.mu.Lock()
		delete(s.venue.conns, s.conn)
		s.venue.mu.Unlock()
		s.conn.Close()
	}()
	defer s.unsubscribe()

	for {
		var msg ws.Message
		if err := s.conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Event {
		case ws.EventPing:
			_ = s.write(ws.Message{Event: ws.EventPong, Ts: msg.Ts})
		case ws.EventPong:
		case ws.EventAuth:
			s.authed = s.verifyAuth(msg.Params)
			reply := ws.Message{ID: msg.ID, Event: ws.EventAuth, Success: boolPtr(s.authed), Ts: s.venue.nowMillis()}
			if !s.authed {
				reply.ErrorMsg = "auth failed"
			}
			_ = s.write(reply)
		case ws.EventSubscribe:
			ok := s.authed && msg.Topic == ws.TopicExecutionReport
			reply := ws.Message{ID: msg.ID, Event: ws.EventSubscribe, Success: boolPtr(ok), Ts: s.venue.nowMillis()}
			if !ok {
				reply.ErrorMsg = "subscribe rejected"
				_ = s.write(reply)
				continue
			}
			_ = s.write(reply)
			s.subscribe()
		}
	}
}

// verifyAuth 签名内容为毫秒时间戳字符串
func (s *streamSession) verifyAuth(p *ws.AuthParams) bool {
	if p == nil || !s.venue.fresh(p.Timestamp) {
		return false
	}
	s.venue.mu.Lock()
	acct := s.venue.accounts[s.accountID]
	key, ok := acct.keys[p.OrderlyKey]
	s.venue.mu.Unlock()
	if !ok || key.removed {
		return false
	}
	pub, err := signing.ParsePublicKey(p.OrderlyKey)
	if err != nil {
		return false
	}
	sig, err := signing.DecodeSignature(p.Sign)
	if err != nil {
		return false
	}
	return signing.VerifyEd25519([]byte(strconv.FormatInt(p.Timestamp, 10)), sig, pub)
}

func (s *streamSession) subscribe() {
	if s.reports != nil {
		return
	}
	s.reports = make(chan ws.ExecutionReport, 64)
	s.venue.mu.Lock()
	s.venue.subs[s.accountID] = append(s.venue.subs[s.accountID], s.reports)
	s.venue.mu.Unlock()

	go func(ch <-chan ws.ExecutionReport) {
		for report := range ch {
			data, err := json.Marshal(report)
			if err != nil {
				continue
			}
			if err := s.write(ws.Message{Topic: ws.TopicExecutionReport, Ts: s.venue.nowMillis(), Data: data}); err != nil {
				return
			}
		}
	}(s.reports)
}

func (s *streamSession) unsubscribe() {
	if s.reports == nil {
		return
	}
	s.venue.mu.Lock()
	subs := s.venue.subs[s.accountID]
	for i, ch := range subs {
		if ch == s.reports {
			s.venue.subs[s.accountID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	s.venue.mu.Unlock()
	close(s.reports)
}

func (s *streamSession) write(msg ws.Message) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(msg)
}

func boolPtr(b bool) *bool { return &b }
