package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// OrderRequest 下单请求（转换为线上格式之前）
type OrderRequest struct {
	Symbol    string
	OrderType OrderType
	Side      Side

	// Price 限价，MARKET/ASK/BID 忽略
	Price decimal.Decimal

	// Quantity 基础币数量
	Quantity decimal.Decimal

	// Amount 报价币金额，仅用于不带 Quantity 的市价买单
	Amount decimal.Decimal

	// ClientOrderID 可选，最长 36 个字符
	ClientOrderID string

	ReduceOnly bool

	// VisibleQuantity 冰山单显示数量（可选）
	VisibleQuantity *decimal.Decimal
}

// Validate 校验交易所会直接拒绝的字段
func (r OrderRequest) Validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return errors.New("订单缺少 symbol")
	}
	if r.Side != SideBuy && r.Side != SideSell {
		return fmt.Errorf("无效的订单方向: %q", r.Side)
	}
	if r.OrderType == "" {
		return errors.New("订单缺少 order_type")
	}
	if r.OrderType.RequiresPrice() && !r.Price.IsPositive() {
		return fmt.Errorf("%s 订单需要正的价格", r.OrderType)
	}
	if !r.Quantity.IsPositive() && !r.Amount.IsPositive() {
		return errors.New("quantity 或 amount 必须为正")
	}
	if r.Amount.IsPositive() && (r.OrderType != OrderTypeMarket || r.Side != SideBuy) {
		return errors.New("amount 仅允许用于市价买单")
	}
	if len(r.ClientOrderID) > 36 {
		return fmt.Errorf("client_order_id 超过 36 个字符: %q", r.ClientOrderID)
	}
	return nil
}

// Wire 转换为 POST /v1/order 的请求体
func (r OrderRequest) Wire() OrderWire {
	w := OrderWire{
		Symbol:        r.Symbol,
		OrderType:     r.OrderType,
		Side:          r.Side,
		ClientOrderID: r.ClientOrderID,
		ReduceOnly:    r.ReduceOnly,
	}
	if r.OrderType.RequiresPrice() {
		w.OrderPrice = json.Number(r.Price.String())
	}
	if r.Quantity.IsPositive() {
		w.OrderQuantity = json.Number(r.Quantity.String())
	}
	if r.Amount.IsPositive() {
		w.OrderAmount = json.Number(r.Amount.String())
	}
	if r.VisibleQuantity != nil {
		w.VisibleQuantity = json.Number(r.VisibleQuantity.String())
	}
	return w
}

// OrderWire 下单线上格式，数值以 JSON number 发送
type OrderWire struct {
	Symbol          string      `json:"symbol"`
	ClientOrderID   string      `json:"client_order_id,omitempty"`
	OrderType       OrderType   `json:"order_type"`
	OrderPrice      json.Number `json:"order_price,omitempty"`
	OrderQuantity   json.Number `json:"order_quantity,omitempty"`
	OrderAmount     json.Number `json:"order_amount,omitempty"`
	VisibleQuantity json.Number `json:"visible_quantity,omitempty"`
	Side            Side        `json:"side"`
	ReduceOnly      bool        `json:"reduce_only,omitempty"`
}

// OrderResult data payload of POST /v1/order
type OrderResult struct {
	OrderID       int64           `json:"order_id"`
	ClientOrderID string          `json:"client_order_id"`
	OrderType     OrderType       `json:"order_type"`
	OrderPrice    decimal.Decimal `json:"order_price"`
	OrderQuantity decimal.Decimal `json:"order_quantity"`
	OrderAmount   decimal.Decimal `json:"order_amount"`
}

// CancelResult data payload of DELETE /v1/order
type CancelResult struct {
	Status string `json:"status"`
}

// Order GET /v1/orders 的一行
type Order struct {
	OrderID               int64           `json:"order_id"`
	Symbol                string          `json:"symbol"`
	Side                  Side            `json:"side"`
	Type                  OrderType       `json:"type"`
	Status                OrderStatus     `json:"status"`
	Price                 decimal.Decimal `json:"price"`
	Quantity              decimal.Decimal `json:"quantity"`
	Amount                decimal.Decimal `json:"amount"`
	Executed              decimal.Decimal `json:"executed"`
	Visible               decimal.Decimal `json:"visible"`
	TotalFee              decimal.Decimal `json:"total_fee"`
	FeeAsset              string          `json:"fee_asset"`
	ClientOrderID         string          `json:"client_order_id"`
	AverageExecutedPrice  decimal.Decimal `json:"average_executed_price"`
	TotalExecutedQuantity decimal.Decimal `json:"total_executed_quantity"`
	ReduceOnly            bool            `json:"reduce_only"`
	CreatedTime           int64           `json:"created_time"`
	UpdatedTime           int64           `json:"updated_time"`
}

// PageMeta 列表接口的分页信息
type PageMeta struct {
	Total          int `json:"total"`
	RecordsPerPage int `json:"records_per_page"`
	CurrentPage    int `json:"current_page"`
}

// OrderPage data payload of GET /v1/orders
type OrderPage struct {
	Meta PageMeta `json:"meta"`
	Rows []Order  `json:"rows"`
}

// OrderFilter GET /v1/orders 的查询参数，零值不发送
type OrderFilter struct {
	Symbol    string
	Side      Side
	OrderType OrderType
	Status    OrderStatus
	StartTime int64
	EndTime   int64
	Page      int
	Size      int
}

// Query 编码查询参数。url.Values.Encode 按键排序，结果稳定，可直接签名
func (f OrderFilter) Query() url.Values {
	q := url.Values{}
	if f.Symbol != "" {
		q.Set("symbol", f.Symbol)
	}
	if f.Side != "" {
		q.Set("side", string(f.Side))
	}
	if f.OrderType != "" {
		q.Set("order_type", string(f.OrderType))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.StartTime > 0 {
		q.Set("start_t", strconv.FormatInt(f.StartTime, 10))
	}
	if f.EndTime > 0 {
		q.Set("end_t", strconv.FormatInt(f.EndTime, 10))
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Size > 0 {
		q.Set("size", strconv.Itoa(f.Size))
	}
	return q
}
