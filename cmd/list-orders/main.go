package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/betbot/orderly/clob/types"
	"github.com/betbot/orderly/internal/cli"
	"github.com/betbot/orderly/internal/operations"
)

func main() {
	opts := cli.RegisterFlags(flag.CommandLine)
	var (
		symbol    = flag.String("symbol", "", "交易对")
		side      = flag.String("side", "", "BUY 或 SELL")
		orderType = flag.String("type", "", "订单类型")
		status    = flag.String("status", "", "订单状态，例如 NEW、FILLED、INCOMPLETE")
		page      = flag.Int("page", 1, "页码")
		size      = flag.Int("size", 25, "每页数量")
	)
	flag.Parse()

	app, err := cli.Bootstrap("list-orders", opts)
	if err != nil {
		cli.Fatal(err)
	}
	defer app.Close()

	res, err := operations.ListOrders(context.Background(), app.Env, types.OrderFilter{
		Symbol:    *symbol,
		Side:      types.Side(strings.ToUpper(*side)),
		OrderType: types.OrderType(strings.ToUpper(*orderType)),
		Status:    types.OrderStatus(strings.ToUpper(*status)),
		Page:      *page,
		Size:      *size,
	})
	if err != nil {
		cli.Fatal(err)
	}

	rows := make([]cli.Row, 0, len(res.Rows))
	for _, o := range res.Rows {
		rows = append(rows, cli.R(fmt.Sprint(o.OrderID),
			fmt.Sprintf("%s %s %s %s @ %s [%s]", o.Symbol, o.Side, o.Type, o.Quantity, o.Price, o.Status)))
	}
	title := fmt.Sprintf("订单 %d/%d", len(res.Rows), res.Meta.Total)
	if err := app.Print(title, res, rows...); err != nil {
		cli.Fatal(err)
	}
}
