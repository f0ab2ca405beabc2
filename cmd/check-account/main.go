package main

import (
	"context"
	"flag"

	"github.com/betbot/orderly/internal/cli"
	"github.com/betbot/orderly/internal/operations"
)

func main() {
	opts := cli.RegisterFlags(flag.CommandLine)
	address := flag.String("address", "", "要查询的钱包地址，默认使用配置的钱包")
	flag.Parse()

	app, err := cli.Bootstrap("check-account", opts)
	if err != nil {
		cli.Fatal(err)
	}
	defer app.Close()

	status, err := operations.CheckAccount(context.Background(), app.Env, *address)
	if err != nil {
		cli.Fatal(err)
	}
	if err := app.Print("账户状态", status,
		cli.R("address", status.Address),
		cli.R("broker_id", status.BrokerID),
		cli.R("registered", status.Registered),
		cli.R("account_id", status.AccountID),
	); err != nil {
		cli.Fatal(err)
	}
}
