package main

import (
	"context"
	"flag"

	"github.com/betbot/orderly/internal/cli"
	"github.com/betbot/orderly/internal/operations"
)

func main() {
	opts := cli.RegisterFlags(flag.CommandLine)
	flag.Parse()

	app, err := cli.Bootstrap("register-account", opts)
	if err != nil {
		cli.Fatal(err)
	}
	defer app.Close()

	if err := app.Config.RequireWallet(); err != nil {
		cli.Fatal(err)
	}
	status, err := operations.RegisterAccount(context.Background(), app.Env)
	if err != nil {
		cli.Fatal(err)
	}
	if err := app.Print("账户已注册", status,
		cli.R("address", status.Address),
		cli.R("broker_id", status.BrokerID),
		cli.R("account_id", status.AccountID),
	); err != nil {
		cli.Fatal(err)
	}
}
