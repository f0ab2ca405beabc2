package main

import (
	"context"
	"flag"

	"github.com/betbot/orderly/internal/cli"
	"github.com/betbot/orderly/internal/operations"
)

func main() {
	opts := cli.RegisterFlags(flag.CommandLine)
	key := flag.String("key", "", "要删除的 orderly key，默认当前凭证")
	flag.Parse()

	app, err := cli.Bootstrap("remove-key", opts)
	if err != nil {
		cli.Fatal(err)
	}
	defer app.Close()

	removed, err := operations.RemoveKey(context.Background(), app.Env, *key)
	if err != nil {
		cli.Fatal(err)
	}
	if err := app.Print("orderly key 已删除", map[string]string{"orderly_key": removed},
		cli.R("orderly_key", removed),
	); err != nil {
		cli.Fatal(err)
	}
}
