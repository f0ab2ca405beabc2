package operations

import (
	"context"
	"strconv"

	"github.com/betbot/orderly/clob/types"
)

// CreateOrder 下单
func CreateOrder(ctx context.Context, e *Env, req types.OrderRequest) (*types.OrderResult, error) {
	cred, err := e.credential()
	if err != nil {
		return nil, err
	}
	meta := map[string]string{
		"symbol": req.Symbol,
		"side":   string(req.Side),
		"type":   string(req.OrderType),
	}
	return record(ctx, e, "create-order", cred.AccountID, meta, func() (*types.OrderResult, error) {
		res, err := e.Client.CreateOrder(ctx, req)
		if err != nil {
			return nil, err
		}
		e.Log.WithField("order_id", res.OrderID).Infof("下单成功: %s %s %s", req.Side, req.OrderType, req.Symbol)
		return res, nil
	})
}

// CancelOrder 撤单
func CancelOrder(ctx context.Context, e *Env, orderID int64, symbol string) (*types.CancelResult, error) {
	cred, err := e.credential()
	if err != nil {
		return nil, err
	}
	meta := map[string]string{"order_id": strconv.FormatInt(orderID, 10), "symbol": symbol}
	return record(ctx, e, "cancel-order", cred.AccountID, meta, func() (*types.CancelResult, error) {
		return e.Client.CancelOrder(ctx, orderID, symbol)
	})
}

// ListOrders 按条件查询订单
func ListOrders(ctx context.Context, e *Env, filter types.OrderFilter) (*types.OrderPage, error) {
	cred, err := e.credential()
	if err != nil {
		return nil, err
	}
	return record(ctx, e, "list-orders", cred.AccountID, filter.Query(), func() (*types.OrderPage, error) {
		return e.Client.GetOrders(ctx, filter)
	})
}
