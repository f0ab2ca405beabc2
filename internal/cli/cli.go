// Package cli 命令行入口的公共启动流程
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/betbot/orderly/internal/operations"
	"github.com/betbot/orderly/pkg/config"
	"github.com/betbot/orderly/pkg/journal"
	"github.com/betbot/orderly/pkg/logger"
	"github.com/betbot/orderly/pkg/secretstore"
)

// badger 中凭证的 key 前缀
const secretPrefix = "orderly/"

// Options 所有命令共用的参数
type Options struct {
	EnvFile    string
	ConfigFile string
	JSON       bool
}

// RegisterFlags 注册公共参数
func RegisterFlags(fs *flag.FlagSet) *Options {
	o := &Options{}
	fs.StringVar(&o.EnvFile, "env", ".env", ".env 文件路径，新生成的 key 也写回这里")
	fs.StringVar(&o.ConfigFile, "config", "", "YAML 配置文件路径（可选）")
	fs.BoolVar(&o.JSON, "json", false, "以 JSON 输出结果")
	return o
}

// App 一次命令执行的上下文
type App struct {
	Name    string
	Options *Options
	Config  *config.Config
	Env     *operations.Env
	Out     io.Writer

	closers []io.Closer
}

// Bootstrap 加载配置、初始化日志、打开凭证存储和操作日志
func Bootstrap(name string, opts *Options, envOpts ...operations.Option) (*App, error) {
	cfg, err := config.Load(opts.EnvFile, opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	}); err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	app := &App{Name: name, Options: opts, Config: cfg, Out: os.Stdout}

	store, err := app.openStore()
	if err != nil {
		app.Close()
		return nil, err
	}
	envOpts = append([]operations.Option{
		operations.WithStore(store),
		operations.WithLogger(logger.ForOperation(name)),
	}, envOpts...)

	if cfg.JournalDB != "" {
		j, err := journal.Open(cfg.JournalDB)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("打开操作日志失败: %w", err)
		}
		app.closers = append(app.closers, j)
		envOpts = append(envOpts, operations.WithJournal(j))
	}

	env, err := operations.NewEnv(cfg, envOpts...)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Env = env
	return app, nil
}

// openStore 配置了 SECRET_DB 时使用加密 badger，否则写回 .env
func (a *App) openStore() (secretstore.CredentialStore, error) {
	if a.Config.SecretDB == "" {
		return secretstore.NewDotenvStore(a.Options.EnvFile), nil
	}
	key, err := secretstore.ParseKey(a.Config.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("SECRET_KEY 无效: %w", err)
	}
	if key == nil {
		return nil, errors.New("配置了 SECRET_DB 时必须提供 SECRET_KEY")
	}
	s, err := secretstore.Open(secretstore.OpenOptions{Path: a.Config.SecretDB, EncryptionKey: key})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, s)
	return secretstore.NewBadgerStore(s, secretPrefix), nil
}

// Close 释放资源
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
	a.closers = nil
}

// SignalContext Ctrl+C / SIGTERM 时取消
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Fatal 打印错误并退出
func Fatal(err error) {
	fmt.Fprintln(os.Stderr, FormatError(err))
	os.Exit(1)
}
