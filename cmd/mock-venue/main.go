package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/betbot/orderly/clob/types"
	"github.com/betbot/orderly/internal/mockvenue"
	"github.com/betbot/orderly/pkg/logger"
	"github.com/betbot/orderly/pkg/shutdown"
)

func main() {
	var (
		addr       = flag.String("addr", "127.0.0.1:8089", "监听地址")
		brokerID   = flag.String("broker-id", "demo_broker", "broker id")
		network    = flag.String("network", string(types.NetworkTestnet), "mainnet 或 testnet，决定提现 verifyingContract")
		nonceField = flag.String("nonce-field", types.WithdrawNonceField, "提现 nonce 字段名")
		logLevel   = flag.String("log-level", "info", "日志级别")
	)
	flag.Parse()

	if err := logger.Init(logger.Config{Level: *logLevel}); err != nil {
		logrus.Fatalf("初始化日志失败: %v", err)
	}

	venue := mockvenue.New(mockvenue.Config{
		BrokerID:   *brokerID,
		Network:    types.Network(*network),
		NonceField: *nonceField,
	})
	srv := &http.Server{Addr: *addr, Handler: venue.Router()}

	go func() {
		logger.Infof("mock venue 监听 http://%s (broker=%s)", *addr, *brokerID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("监听失败: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	logger.Infof("收到信号 %v，关闭中...", sig)

	// Shutdown 不管已经升级的 websocket 连接，需要单独断开
	sm := shutdown.NewManager()
	sm.OnShutdown("http", srv.Shutdown)
	sm.OnShutdown("streams", func(context.Context) error {
		n := venue.CloseStreams()
		logger.Infof("已断开 %d 条私有流", n)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sm.Shutdown(ctx); err != nil {
		logger.Errorf("关闭失败: %v", err)
	}
}
