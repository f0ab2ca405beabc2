package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/betbot/orderly/clob/types"
)

// CreateOrder 下单。未指定 client_order_id 时生成一个 uuid
func (c *Client) CreateOrder(ctx context.Context, req types.OrderRequest) (*types.OrderResult, error) {
	if req.ClientOrderID == "" {
		req.ClientOrderID = uuid.NewString()
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var result types.OrderResult
	if err := c.doSigned(ctx, http.MethodPost, EndpointOrder, req.Wire(), &result); err != nil {
		return nil, err
	}
	if result.ClientOrderID == "" {
		result.ClientOrderID = req.ClientOrderID
	}
	c.log.WithField("order_id", result.OrderID).WithField("symbol", req.Symbol).Info("下单成功")
	return &result, nil
}

// CancelOrder 撤单，参数放在查询串里
func (c *Client) CancelOrder(ctx context.Context, orderID int64, symbol string) (*types.CancelResult, error) {
	q := url.Values{}
	q.Set("order_id", strconv.FormatInt(orderID, 10))
	q.Set("symbol", symbol)

	var result types.CancelResult
	if err := c.doSigned(ctx, http.MethodDelete, withQuery(EndpointOrder, q.Encode()), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetOrders 按条件查询订单
func (c *Client) GetOrders(ctx context.Context, filter types.OrderFilter) (*types.OrderPage, error) {
	var page types.OrderPage
	if err := c.doSigned(ctx, http.MethodGet, withQuery(EndpointOrders, filter.Query().Encode()), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
