package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderRequest_Validate(t *testing.T) {
	valid := OrderRequest{
		Symbol:    "PERP_ETH_USDC",
		OrderType: OrderTypeLimit,
		Side:      SideBuy,
		Price:     decimal.RequireFromString("2500.5"),
		Quantity:  decimal.RequireFromString("0.01"),
	}
	require.NoError(t, valid.Validate())

	tests := map[string]func(r *OrderRequest){
		"missing symbol":      func(r *OrderRequest) { r.Symbol = " " },
		"bad side":            func(r *OrderRequest) { r.Side = "HOLD" },
		"missing type":        func(r *OrderRequest) { r.OrderType = "" },
		"limit without price": func(r *OrderRequest) { r.Price = decimal.Zero },
		"no size":             func(r *OrderRequest) { r.Quantity = decimal.Zero },
		"amount on limit":     func(r *OrderRequest) { r.Amount = decimal.NewFromInt(10) },
		"client id too long":  func(r *OrderRequest) { r.ClientOrderID = "0123456789012345678901234567890123456" },
		"negative quantity":   func(r *OrderRequest) { r.Quantity = decimal.NewFromInt(-1) },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			r := valid
			mutate(&r)
			assert.Error(t, r.Validate())
		})
	}

	market := OrderRequest{Symbol: "PERP_ETH_USDC", OrderType: OrderTypeMarket, Side: SideBuy, Amount: decimal.NewFromInt(25)}
	assert.NoError(t, market.Validate())
}

func TestOrderRequest_Wire(t *testing.T) {
	visible := decimal.RequireFromString("0.005")
	r := OrderRequest{
		Symbol:          "PERP_ETH_USDC",
		OrderType:       OrderTypeLimit,
		Side:            SideSell,
		Price:           decimal.RequireFromString("2500.50"),
		Quantity:        decimal.RequireFromString("0.01"),
		ClientOrderID:   "cid-1",
		VisibleQuantity: &visible,
	}
	raw, err := json.Marshal(r.Wire())
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"PERP_ETH_USDC","client_order_id":"cid-1","order_type":"LIMIT","order_price":2500.5,"order_quantity":0.01,"visible_quantity":0.005,"side":"SELL"}`, string(raw))

	market := OrderRequest{Symbol: "PERP_ETH_USDC", OrderType: OrderTypeMarket, Side: SideBuy, Price: decimal.NewFromInt(1), Quantity: decimal.NewFromInt(2), ReduceOnly: true}
	raw, err = json.Marshal(market.Wire())
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"PERP_ETH_USDC","order_type":"MARKET","order_quantity":2,"side":"BUY","reduce_only":true}`, string(raw))
}

func TestOrderFilter_Query(t *testing.T) {
	assert.Equal(t, "", OrderFilter{}.Query().Encode())

	f := OrderFilter{Symbol: "PERP_ETH_USDC", Status: OrderStatusNew, Side: SideBuy, Page: 2, Size: 50, StartTime: 10}
	assert.Equal(t, "page=2&side=BUY&size=50&start_t=10&status=NEW&symbol=PERP_ETH_USDC", f.Query().Encode())
}
