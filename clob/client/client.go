package client

import (
	"crypto/ecdsa"
	"errors"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
	"github.com/betbot/orderly/pkg/ratelimit"
)

var (
	// ErrNoCredential 调用需要 orderly key 但未配置
	ErrNoCredential = errors.New("未配置 orderly key 凭证")
	// ErrNoWallet 调用需要钱包签名但未配置私钥
	ErrNoWallet = errors.New("未配置钱包私钥")
)

// Config 客户端配置
type Config struct {
	Host       string // 为空时使用 Network 的默认地址
	Network    types.Network
	BrokerID   string
	ChainID    types.Chain // 为空时使用 Network 的默认链
	Credential *types.Credential
	Wallet     *ecdsa.PrivateKey
	Timeout    time.Duration
	Logger     *logrus.Entry
	Limiter    *ratelimit.Manager // 为空时不限频
}

// Client orderly REST 客户端
// 每次调用都是一次独立的请求，不做重试
type Client struct {
	host     string
	network  types.Network
	brokerID string
	chainID  types.Chain
	creds    *types.Credential
	wallet   *ecdsa.PrivateKey
	http     *resty.Client
	limiter  *ratelimit.Manager
	log      *logrus.Entry
}

// NewClient 创建客户端
func NewClient(cfg Config) (*Client, error) {
	if cfg.Network == "" {
		cfg.Network = types.NetworkTestnet
	}
	netCfg, err := GetNetworkConfig(cfg.Network)
	if err != nil {
		return nil, err
	}
	host := cfg.Host
	if host == "" {
		host = netCfg.APIURL
	}
	host = strings.TrimSuffix(host, "/")
	if cfg.ChainID == 0 {
		cfg.ChainID = netCfg.DefaultChain
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	// resty 会自动从环境变量读取代理配置（HTTP_PROXY, HTTPS_PROXY）
	rc := resty.New().
		SetBaseURL(host).
		SetTimeout(cfg.Timeout)

	return &Client{
		host:     host,
		network:  cfg.Network,
		brokerID: cfg.BrokerID,
		chainID:  cfg.ChainID,
		creds:    cfg.Credential,
		wallet:   cfg.Wallet,
		http:     rc,
		limiter:  cfg.Limiter,
		log:      log.WithField("component", "orderly-client"),
	}, nil
}

// GetHost 获取主机地址
func (c *Client) GetHost() string {
	return c.host
}

// GetNetwork 获取网络
func (c *Client) GetNetwork() types.Network {
	return c.network
}

// GetChainID 获取链 ID
func (c *Client) GetChainID() types.Chain {
	return c.chainID
}

// GetBrokerID 获取 broker id
func (c *Client) GetBrokerID() string {
	return c.brokerID
}

// Credential 当前使用的 orderly key 凭证
func (c *Client) Credential() *types.Credential {
	return c.creds
}

// SetCredential 替换凭证（例如刚添加了新 key）
func (c *Client) SetCredential(cred *types.Credential) {
	c.creds = cred
}

// WalletAddress 钱包地址
func (c *Client) WalletAddress() (string, error) {
	if c.wallet == nil {
		return "", ErrNoWallet
	}
	return signing.WalletAddress(c.wallet), nil
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
