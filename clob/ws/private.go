package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
)

// PrivateClient orderly 私有数据流客户端（需要 orderly key 认证）
// 连接建立后先 auth，再订阅 executionreport
type PrivateClient struct {
	url    string
	cred   *types.Credential
	config Config

	conn    *websocket.Conn
	writeMu sync.Mutex

	reports chan ExecutionReport
	errs    chan error

	cancel   context.CancelFunc
	doneCh   chan struct{}
	stopOnce sync.Once

	log *logrus.Entry
}

// NewPrivateClient 创建客户端，baseURL 为不含 account id 的私有流地址
func NewPrivateClient(baseURL string, cred *types.Credential, config Config) (*PrivateClient, error) {
	if cred == nil {
		return nil, errors.New("orderly key 凭证不能为空")
	}
	if config.PingInterval <= 0 {
		config.PingInterval = defaultPingInterval
	}
	if config.AuthTimeout <= 0 {
		config.AuthTimeout = defaultAuthTimeout
	}
	if config.HandshakeTimeout <= 0 {
		config.HandshakeTimeout = defaultHandshakeTimeout
	}
	if config.MessageBufferSize <= 0 {
		config.MessageBufferSize = defaultMessageBufferSize
	}
	return &PrivateClient{
		url:     strings.TrimSuffix(baseURL, "/") + "/" + cred.AccountID,
		cred:    cred,
		config:  config,
		reports: make(chan ExecutionReport, config.MessageBufferSize),
		errs:    make(chan error, defaultErrorBufferSize),
		doneCh:  make(chan struct{}),
		log:     logrus.WithField("component", "ws-private"),
	}, nil
}

// Reports 返回执行回报通道，连接结束时关闭
func (c *PrivateClient) Reports() <-chan ExecutionReport {
	return c.reports
}

// Errors 返回错误通道
func (c *PrivateClient) Errors() <-chan error {
	return c.errs
}

// Start 连接、认证并订阅执行回报
func (c *PrivateClient) Start(ctx context.Context) error {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: c.config.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("连接失败: %w", err)
	}
	c.conn = conn

	if err := c.authenticate(); err != nil {
		c.closeConn()
		return fmt.Errorf("认证失败: %w", err)
	}
	if err := c.request(Message{ID: uuid.NewString(), Event: EventSubscribe, Topic: TopicExecutionReport}); err != nil {
		c.closeConn()
		return fmt.Errorf("订阅失败: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	go c.readLoop(runCtx)
	go c.pingLoop(runCtx)
	go func() {
		<-runCtx.Done()
		c.Stop()
	}()

	c.log.Infof("已连接到 %s", c.url)
	return nil
}

// Stop 关闭连接并等待读取循环退出
func (c *PrivateClient) Stop() {
	c.stopOnce.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
		if c.conn == nil {
			return
		}
		c.writeMu.Lock()
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		c.conn.Close()

		select {
		case <-c.doneCh:
		case <-time.After(5 * time.Second):
			c.log.Warn("关闭超时")
		}
	})
}

func (c *PrivateClient) closeConn() {
	c.conn.Close()
	c.conn = nil
}

// authenticate 发送 auth 事件，签名内容为毫秒时间戳
func (c *PrivateClient) authenticate() error {
	ts := time.Now().UnixMilli()
	sig, err := signing.SignEd25519([]byte(strconv.FormatInt(ts, 10)), c.cred.PrivateKey)
	if err != nil {
		return err
	}
	return c.request(Message{
		ID:    uuid.NewString(),
		Event: EventAuth,
		Params: &AuthParams{
			OrderlyKey: c.cred.PublicKey,
			Sign:       signing.EncodeSignature(sig),
			Timestamp:  ts,
		},
	})
}

// request 发送请求并同步等待同一事件的回复，期间收到的 ping 直接回 pong
func (c *PrivateClient) request(msg Message) error {
	if err := c.write(msg); err != nil {
		return err
	}
	deadline := time.Now().Add(c.config.AuthTimeout)
	_ = c.conn.SetReadDeadline(deadline)
	defer c.conn.SetReadDeadline(time.Time{})

	for {
		var reply Message
		if err := c.conn.ReadJSON(&reply); err != nil {
			return err
		}
		if reply.Event == EventPing {
			if err := c.write(Message{Event: EventPong, Ts: reply.Ts}); err != nil {
				return err
			}
			continue
		}
		if reply.Event != msg.Event {
			continue
		}
		if reply.Success == nil || !*reply.Success {
			return fmt.Errorf("%s 被拒绝: %s", msg.Event, reply.ErrorMsg)
		}
		return nil
	}
}

func (c *PrivateClient) write(msg Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(msg)
}

func (c *PrivateClient) readLoop(ctx context.Context) {
	defer close(c.doneCh)
	defer close(c.reports)

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) && !errors.Is(err, net.ErrClosed) {
				c.pushErr(fmt.Errorf("读取失败: %w", err))
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.pushErr(fmt.Errorf("解析消息失败: %w", err))
			continue
		}
		switch {
		case msg.Event == EventPing:
			if err := c.write(Message{Event: EventPong, Ts: msg.Ts}); err != nil {
				c.pushErr(fmt.Errorf("回复 pong 失败: %w", err))
			}
		case msg.Event == EventPong:
		case msg.Topic == TopicExecutionReport && len(msg.Data) > 0:
			var report ExecutionReport
			if err := json.Unmarshal(msg.Data, &report); err != nil {
				c.pushErr(fmt.Errorf("解析执行回报失败: %w", err))
				continue
			}
			select {
			case c.reports <- report:
			case <-ctx.Done():
				return
			}
		default:
			c.log.Debugf("忽略消息: %s", raw)
		}
	}
}

func (c *PrivateClient) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.doneCh:
			return
		case <-ticker.C:
			if err := c.write(Message{Event: EventPing, Ts: time.Now().UnixMilli()}); err != nil {
				c.pushErr(fmt.Errorf("发送 ping 失败: %w", err))
				return
			}
		}
	}
}

// pushErr 错误通道满时丢弃
func (c *PrivateClient) pushErr(err error) {
	select {
	case c.errs <- err:
	default:
		c.log.Warnf("错误通道已满，丢弃: %v", err)
	}
}
