package main

import (
	"context"
	"flag"
	"time"

	"github.com/betbot/orderly/internal/cli"
	"github.com/betbot/orderly/internal/operations"
)

func main() {
	opts := cli.RegisterFlags(flag.CommandLine)
	key := flag.String("key", "", "要查询的 orderly key，默认当前凭证")
	flag.Parse()

	app, err := cli.Bootstrap("key-info", opts)
	if err != nil {
		cli.Fatal(err)
	}
	defer app.Close()

	info, err := operations.KeyInfo(context.Background(), app.Env, *key)
	if err != nil {
		cli.Fatal(err)
	}
	if err := app.Print("orderly key", info,
		cli.R("orderly_key", info.OrderlyKey),
		cli.R("scope", info.Scope),
		cli.R("status", info.KeyStatus),
		cli.R("expiration", time.UnixMilli(info.Expiration).Format(time.RFC3339)),
	); err != nil {
		cli.Fatal(err)
	}
}
