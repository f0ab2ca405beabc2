package main

import (
	"encoding/json"
	"flag"
	"fmt"

	"github.com/betbot/orderly/clob/ws"
	"github.com/betbot/orderly/internal/cli"
	"github.com/betbot/orderly/internal/operations"
)

func main() {
	opts := cli.RegisterFlags(flag.CommandLine)
	flag.Parse()

	app, err := cli.Bootstrap("watch-orders", opts)
	if err != nil {
		cli.Fatal(err)
	}
	defer app.Close()

	ctx, cancel := cli.SignalContext()
	defer cancel()

	err = operations.WatchOrders(ctx, app.Env, func(r ws.ExecutionReport) {
		if app.Options.JSON {
			b, _ := json.Marshal(r)
			fmt.Fprintln(app.Out, string(b))
			return
		}
		fmt.Fprintln(app.Out, cli.Render(fmt.Sprintf("%s #%d", r.Symbol, r.OrderID), []cli.Row{
			cli.R("status", r.Status),
			cli.R("side", r.Side),
			cli.R("price", r.Price),
			cli.R("executed", fmt.Sprintf("%s @ %s", r.ExecutedQuantity, r.ExecutedPrice)),
			cli.R("fee", fmt.Sprintf("%s %s", r.Fee, r.FeeAsset)),
		}))
	})
	if err != nil {
		cli.Fatal(err)
	}
}
