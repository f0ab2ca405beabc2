package operations

import (
	"context"
	"fmt"

	"github.com/betbot/orderly/clob/ws"
)

// WatchOrders 订阅私有流，把执行回报交给 handle，直到 ctx 结束或连接断开
func WatchOrders(ctx context.Context, e *Env, handle func(ws.ExecutionReport)) error {
	cred, err := e.credential()
	if err != nil {
		return err
	}
	log := e.Log.WithField("op", "watch-orders").WithField("account_id", cred.AccountID)

	stream, err := ws.NewPrivateClient(e.Config.WSURL, cred, ws.DefaultConfig())
	if err != nil {
		return err
	}
	if err := stream.Start(ctx); err != nil {
		return err
	}
	defer stream.Stop()
	log.Info("开始接收执行回报")

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-stream.Errors():
			log.Warnf("私有流错误: %v", err)
		case report, ok := <-stream.Reports():
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("私有流已断开")
			}
			handle(report)
		}
	}
}
