package main

import (
	"context"
	"flag"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/betbot/orderly/clob/types"
	"github.com/betbot/orderly/internal/cli"
	"github.com/betbot/orderly/internal/operations"
)

func main() {
	opts := cli.RegisterFlags(flag.CommandLine)
	var (
		symbol     = flag.String("symbol", "PERP_ETH_USDC", "交易对")
		side       = flag.String("side", "BUY", "BUY 或 SELL")
		orderType  = flag.String("type", "LIMIT", "LIMIT/MARKET/IOC/FOK/POST_ONLY/ASK/BID")
		price      = flag.String("price", "", "限价")
		quantity   = flag.String("quantity", "", "数量")
		amount     = flag.String("amount", "", "报价币金额（仅市价买单）")
		clientID   = flag.String("client-order-id", "", "自定义订单 ID，默认生成 UUID")
		reduceOnly = flag.Bool("reduce-only", false, "只减仓")
	)
	flag.Parse()

	req := types.OrderRequest{
		Symbol:        *symbol,
		Side:          types.Side(strings.ToUpper(*side)),
		OrderType:     types.OrderType(strings.ToUpper(*orderType)),
		ClientOrderID: *clientID,
		ReduceOnly:    *reduceOnly,
	}
	var err error
	if req.Price, err = parseDecimal(*price); err != nil {
		cli.Fatal(err)
	}
	if req.Quantity, err = parseDecimal(*quantity); err != nil {
		cli.Fatal(err)
	}
	if req.Amount, err = parseDecimal(*amount); err != nil {
		cli.Fatal(err)
	}

	app, err := cli.Bootstrap("create-order", opts)
	if err != nil {
		cli.Fatal(err)
	}
	defer app.Close()

	res, err := operations.CreateOrder(context.Background(), app.Env, req)
	if err != nil {
		cli.Fatal(err)
	}
	if err := app.Print("下单成功", res,
		cli.R("order_id", res.OrderID),
		cli.R("client_order_id", res.ClientOrderID),
		cli.R("type", res.OrderType),
		cli.R("price", res.OrderPrice),
		cli.R("quantity", res.OrderQuantity),
	); err != nil {
		cli.Fatal(err)
	}
}

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
