package main

import (
	"context"
	"flag"
	"time"

	"github.com/betbot/orderly/clob/client"
	"github.com/betbot/orderly/clob/types"
	"github.com/betbot/orderly/internal/cli"
	"github.com/betbot/orderly/internal/operations"
)

func main() {
	opts := cli.RegisterFlags(flag.CommandLine)
	scope := flag.String("scope", types.DefaultKeyScope, "key 权限，逗号分隔：read,trading,asset")
	ttl := flag.Duration("ttl", client.DefaultKeyTTL, "key 有效期")
	flag.Parse()

	app, err := cli.Bootstrap("add-key", opts)
	if err != nil {
		cli.Fatal(err)
	}
	defer app.Close()

	if err := app.Config.RequireWallet(); err != nil {
		cli.Fatal(err)
	}
	res, err := operations.AddKey(context.Background(), app.Env, operations.AddKeyParams{Scope: *scope, TTL: *ttl})
	if err != nil {
		cli.Fatal(err)
	}
	if err := app.Print("orderly key 已添加", res,
		cli.R("account_id", res.AccountID),
		cli.R("orderly_key", res.OrderlyKey),
		cli.R("scope", res.Scope),
		cli.R("expiration", time.UnixMilli(res.Expiration).Format(time.RFC3339)),
		cli.R("persisted", res.Persisted),
	); err != nil {
		cli.Fatal(err)
	}
}
