// Package operations 每个命令对应的业务操作，依赖全部通过 Env 显式传入
package operations

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/betbot/orderly/clob/client"
	"github.com/betbot/orderly/clob/types"
	"github.com/betbot/orderly/pkg/config"
	"github.com/betbot/orderly/pkg/journal"
	"github.com/betbot/orderly/pkg/ratelimit"
	"github.com/betbot/orderly/pkg/secretstore"
)

// VaultFactory 创建充值用的链上服务
type VaultFactory func(ctx context.Context) (*client.VaultService, error)

// Env 一次进程调用所需的依赖
type Env struct {
	Config  *config.Config
	Client  *client.Client
	Store   secretstore.CredentialStore // 为 nil 时新 key 不落盘
	Journal journal.Recorder
	Log     *logrus.Entry
	Vault   VaultFactory

	limiter *ratelimit.Manager
}

// Option Env 选项
type Option func(*Env)

// WithStore 设置凭证存储
func WithStore(store secretstore.CredentialStore) Option {
	return func(e *Env) { e.Store = store }
}

// WithJournal 设置操作日志
func WithJournal(rec journal.Recorder) Option {
	return func(e *Env) { e.Journal = rec }
}

// WithLogger 设置日志 entry
func WithLogger(log *logrus.Entry) Option {
	return func(e *Env) { e.Log = log }
}

// WithLimiter 替换默认的按端点限频
func WithLimiter(m *ratelimit.Manager) Option {
	return func(e *Env) { e.limiter = m }
}

// WithVault 替换链上服务的创建方式
func WithVault(f VaultFactory) Option {
	return func(e *Env) { e.Vault = f }
}

// NewEnv 根据配置创建 Env
// 钱包和凭证都是可选的，具体操作再检查是否具备
func NewEnv(cfg *config.Config, opts ...Option) (*Env, error) {
	e := &Env{Config: cfg, Journal: journal.Nop{}}
	for _, opt := range opts {
		opt(e)
	}
	if e.Log == nil {
		e.Log = logrus.NewEntry(logrus.StandardLogger())
	}

	clientCfg := cfg.ClientConfig()
	clientCfg.Logger = e.Log
	if e.limiter == nil {
		e.limiter = ratelimit.NewOrderlyManager()
	}
	clientCfg.Limiter = e.limiter

	if cfg.RequireWallet() == nil {
		key, err := cfg.WalletKey()
		if err != nil {
			return nil, err
		}
		clientCfg.Wallet = key
	}

	cred, err := e.loadCredential()
	if err != nil {
		return nil, err
	}
	clientCfg.Credential = cred

	c, err := client.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("创建客户端失败: %w", err)
	}
	e.Client = c

	if e.Vault == nil {
		e.Vault = e.dialVault
	}
	return e, nil
}

// loadCredential 配置优先，其次凭证存储；都没有时返回 nil
func (e *Env) loadCredential() (*types.Credential, error) {
	cred, err := e.Config.Credential()
	if err == nil {
		return cred, nil
	}
	if !errors.Is(err, config.ErrMissingCredential) {
		return nil, err
	}
	if e.Store == nil {
		return nil, nil
	}
	cred, err = e.Store.Load()
	if errors.Is(err, secretstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取凭证失败: %w", err)
	}
	return cred, nil
}

func (e *Env) dialVault(ctx context.Context) (*client.VaultService, error) {
	if err := e.Config.RequireRPC(); err != nil {
		return nil, err
	}
	key, err := e.Config.WalletKey()
	if err != nil {
		return nil, err
	}
	return client.DialVaultService(ctx, e.Config.RPCURL, e.Config.ChainID, key,
		client.WithVaultLogger(e.Log))
}

// credential 需要 orderly key 的操作调用
func (e *Env) credential() (*types.Credential, error) {
	cred := e.Client.Credential()
	if cred == nil {
		return nil, config.ErrMissingCredential
	}
	return cred, nil
}

// record 把操作的开始和结果写入 journal，journal 失败只记录警告
func record[T any](ctx context.Context, e *Env, op string, accountID string, meta any, fn func() (T, error)) (T, error) {
	log := e.Log.WithField("op", op)
	runID, err := e.Journal.Start(ctx, op, accountID, meta)
	if err != nil {
		log.Warnf("写入操作日志失败: %v", err)
	}

	result, runErr := fn()
	if runErr != nil {
		log.Errorf("操作失败: %v", runErr)
	}
	if err == nil {
		if err := e.Journal.Finish(context.WithoutCancel(ctx), runID, runErr, nil); err != nil {
			log.Warnf("更新操作日志失败: %v", err)
		}
	}
	return result, runErr
}
