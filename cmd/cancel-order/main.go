package main

import (
	"context"
	"errors"
	"flag"

	"github.com/betbot/orderly/internal/cli"
	"github.com/betbot/orderly/internal/operations"
)

func main() {
	opts := cli.RegisterFlags(flag.CommandLine)
	orderID := flag.Int64("order-id", 0, "订单 ID")
	symbol := flag.String("symbol", "PERP_ETH_USDC", "交易对")
	flag.Parse()

	if *orderID <= 0 {
		cli.Fatal(errors.New("需要 -order-id"))
	}

	app, err := cli.Bootstrap("cancel-order", opts)
	if err != nil {
		cli.Fatal(err)
	}
	defer app.Close()

	res, err := operations.CancelOrder(context.Background(), app.Env, *orderID, *symbol)
	if err != nil {
		cli.Fatal(err)
	}
	if err := app.Print("撤单已提交", res,
		cli.R("order_id", *orderID),
		cli.R("symbol", *symbol),
		cli.R("status", res.Status),
	); err != nil {
		cli.Fatal(err)
	}
}
