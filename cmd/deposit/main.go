package main

import (
	"flag"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/betbot/orderly/internal/cli"
	"github.com/betbot/orderly/internal/operations"
)

func main() {
	opts := cli.RegisterFlags(flag.CommandLine)
	amount := flag.String("amount", "", "充值的 USDC 数量，例如 10.5")
	flag.Parse()

	value, err := decimal.NewFromString(*amount)
	if err != nil {
		cli.Fatal(err)
	}

	app, err := cli.Bootstrap("deposit", opts)
	if err != nil {
		cli.Fatal(err)
	}
	defer app.Close()

	if err := app.Config.RequireWallet(); err != nil {
		cli.Fatal(err)
	}

	// 授权轮询可能持续几十秒，允许 Ctrl+C 中断
	ctx, cancel := cli.SignalContext()
	defer cancel()

	res, err := operations.Deposit(ctx, app.Env, value)
	if err != nil {
		cli.Fatal(err)
	}
	approve := "-"
	if res.ApproveTx != (common.Hash{}) {
		approve = res.ApproveTx.Hex()
	}
	if err := app.Print("充值交易已发送", res,
		cli.R("amount", res.Amount),
		cli.R("fee_wei", res.Fee),
		cli.R("approve_tx", approve),
		cli.R("deposit_tx", res.DepositTx.Hex()),
	); err != nil {
		cli.Fatal(err)
	}
}
