package main

import (
	"context"
	"flag"

	"github.com/shopspring/decimal"

	"github.com/betbot/orderly/clob/client"
	"github.com/betbot/orderly/clob/types"
	"github.com/betbot/orderly/internal/cli"
	"github.com/betbot/orderly/internal/operations"
)

func main() {
	opts := cli.RegisterFlags(flag.CommandLine)
	amount := flag.String("amount", "", "提现数量，例如 10.5")
	receiver := flag.String("receiver", "", "接收地址，默认钱包地址")
	token := flag.String("token", types.TokenUSDC, "代币，目前只支持 USDC")
	flag.Parse()

	value, err := decimal.NewFromString(*amount)
	if err != nil {
		cli.Fatal(err)
	}

	app, err := cli.Bootstrap("withdraw", opts)
	if err != nil {
		cli.Fatal(err)
	}
	defer app.Close()

	if err := app.Config.RequireWallet(); err != nil {
		cli.Fatal(err)
	}
	res, err := operations.Withdraw(context.Background(), app.Env, client.WithdrawParams{
		Token:    *token,
		Amount:   value,
		Receiver: *receiver,
	})
	if err != nil {
		cli.Fatal(err)
	}
	if err := app.Print("提现申请已提交", res,
		cli.R("withdraw_id", res.WithdrawID),
		cli.R("amount", value),
		cli.R("token", *token),
	); err != nil {
		cli.Fatal(err)
	}
}
