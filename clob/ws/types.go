// Package ws 提供 orderly 私有 WebSocket 客户端
package ws

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// 事件名
	EventAuth      = "auth"
	EventSubscribe = "subscribe"
	EventPing      = "ping"
	EventPong      = "pong"

	// TopicExecutionReport 订单执行回报
	TopicExecutionReport = "executionreport"

	defaultPingInterval      = 10 * time.Second
	defaultHandshakeTimeout  = 10 * time.Second
	defaultAuthTimeout       = 10 * time.Second
	defaultMessageBufferSize = 256
	defaultErrorBufferSize   = 16
)

// Config 客户端配置
type Config struct {
	HandshakeTimeout  time.Duration
	AuthTimeout       time.Duration // 等待 auth/subscribe 回复的时间
	PingInterval      time.Duration
	MessageBufferSize int
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout:  defaultHandshakeTimeout,
		AuthTimeout:       defaultAuthTimeout,
		PingInterval:      defaultPingInterval,
		MessageBufferSize: defaultMessageBufferSize,
	}
}

// Message 收发的通用消息格式
type Message struct {
	ID       string          `json:"id,omitempty"`
	Event    string          `json:"event,omitempty"`
	Topic    string          `json:"topic,omitempty"`
	Success  *bool           `json:"success,omitempty"`
	ErrorMsg string          `json:"errorMsg,omitempty"`
	Ts       int64           `json:"ts,omitempty"`
	Params   *AuthParams     `json:"params,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// AuthParams auth 事件参数，sign 为 ed25519(timestamp) 的 base64url
type AuthParams struct {
	OrderlyKey string `json:"orderly_key"`
	Sign       string `json:"sign"`
	Timestamp  int64  `json:"timestamp"`
}

// ExecutionReport 订单执行回报
type ExecutionReport struct {
	Symbol                string          `json:"symbol"`
	ClientOrderID         string          `json:"clientOrderId"`
	OrderID               int64           `json:"orderId"`
	Type                  string          `json:"type"`
	Side                  string          `json:"side"`
	Quantity              decimal.Decimal `json:"quantity"`
	Price                 decimal.Decimal `json:"price"`
	TradeID               int64           `json:"tradeId"`
	ExecutedPrice         decimal.Decimal `json:"executedPrice"`
	ExecutedQuantity      decimal.Decimal `json:"executedQuantity"`
	Fee                   decimal.Decimal `json:"fee"`
	FeeAsset              string          `json:"feeAsset"`
	TotalExecutedQuantity decimal.Decimal `json:"totalExecutedQuantity"`
	AvgPrice              decimal.Decimal `json:"avgPrice"`
	Status                string          `json:"status"`
	Reason                string          `json:"reason"`
	TotalFee              decimal.Decimal `json:"totalFee"`
	ReduceOnly            bool            `json:"reduceOnly"`
	Timestamp             int64           `json:"timestamp"`
}
