package config

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
	"gopkg.in/yaml.v3"

	"github.com/betbot/orderly/clob/client"
	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
)

// DefaultDerivationPath 助记词默认派生路径
const DefaultDerivationPath = "m/44'/60'/0'/0/0"

var (
	ErrMissingBrokerID   = errors.New("缺少 broker id（ORDERLY_BROKER_ID）")
	ErrMissingWallet     = errors.New("缺少钱包私钥（WALLET_PRIVATE_KEY 或 WALLET_MNEMONIC）")
	ErrMissingCredential = errors.New("缺少 orderly key 凭证（ORDERLY_ACCOUNT_ID / ORDERLY_SECRET）")
	ErrMissingRPC        = errors.New("缺少 RPC 地址（RPC_URL）")
)

// WalletConfig 钱包配置
type WalletConfig struct {
	PrivateKey     string
	Mnemonic       string
	DerivationPath string
}

// OrderlyConfig orderly key 凭证配置
type OrderlyConfig struct {
	AccountID string
	Key       string // 公钥，"ed25519:<base58>"，为空时由 Secret 推导
	Secret    string // 私钥
}

// Config 应用配置
// 每次进程启动加载一次，显式传给各个操作
type Config struct {
	Network     types.Network
	APIURL      string
	WSURL       string
	BrokerID    string
	ChainID     types.Chain
	Orderly     OrderlyConfig
	Wallet      WalletConfig
	RPCURL      string
	SecretDB    string // badger 凭证库路径（可选）
	SecretKey   string // badger 加密密钥，32 字节 hex/base64
	JournalDB   string // sqlite 操作日志路径（可选）
	LogLevel    string
	LogFile     string
	HTTPTimeout time.Duration
}

// ConfigFile 配置文件结构（YAML）
type ConfigFile struct {
	Network  string `yaml:"network"`
	APIURL   string `yaml:"api_url"`
	WSURL    string `yaml:"ws_url"`
	BrokerID string `yaml:"broker_id"`
	ChainID  int64  `yaml:"chain_id"`
	Orderly  struct {
		AccountID string `yaml:"account_id"`
		Key       string `yaml:"key"`
		Secret    string `yaml:"secret"`
	} `yaml:"orderly"`
	Wallet struct {
		PrivateKey     string `yaml:"private_key"`
		Mnemonic       string `yaml:"mnemonic"`
		DerivationPath string `yaml:"derivation_path"`
	} `yaml:"wallet"`
	RPCURL    string `yaml:"rpc_url"`
	SecretDB  string `yaml:"secret_db"`
	JournalDB string `yaml:"journal_db"`
	Log       struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	HTTPTimeout string `yaml:"http_timeout"`
}

// Load 加载配置
// 优先级：环境变量（含 .env）> 配置文件 > 网络默认值
// envFile 不存在不算错误；filePath 为空时不读配置文件
func Load(envFile, filePath string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("加载 %s 失败: %w", envFile, err)
		}
	}

	cf := &ConfigFile{}
	if filePath != "" {
		loaded, err := loadConfigFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败 %s: %w", filePath, err)
		}
		cf = loaded
	}

	cfg := &Config{
		Network:  types.Network(strings.ToLower(getEnv("ORDERLY_NETWORK", cf.Network))),
		APIURL:   getEnv("ORDERLY_API_URL", cf.APIURL),
		WSURL:    getEnv("ORDERLY_WS_URL", cf.WSURL),
		BrokerID: getEnv("ORDERLY_BROKER_ID", cf.BrokerID),
		ChainID:  types.Chain(parseInt64Env("ORDERLY_CHAIN_ID", cf.ChainID)),
		Orderly: OrderlyConfig{
			AccountID: getEnv("ORDERLY_ACCOUNT_ID", cf.Orderly.AccountID),
			Key:       getEnv("ORDERLY_KEY", cf.Orderly.Key),
			Secret:    getEnv("ORDERLY_SECRET", cf.Orderly.Secret),
		},
		Wallet: WalletConfig{
			PrivateKey:     getEnv("WALLET_PRIVATE_KEY", cf.Wallet.PrivateKey),
			Mnemonic:       getEnv("WALLET_MNEMONIC", cf.Wallet.Mnemonic),
			DerivationPath: getEnv("WALLET_DERIVATION_PATH", cf.Wallet.DerivationPath),
		},
		RPCURL:    getEnv("RPC_URL", cf.RPCURL),
		SecretDB:  getEnv("SECRET_DB", cf.SecretDB),
		SecretKey: getEnv("SECRET_KEY", ""),
		JournalDB: getEnv("JOURNAL_DB", cf.JournalDB),
		LogLevel:  getEnv("LOG_LEVEL", cf.Log.Level),
		LogFile:   getEnv("LOG_FILE", cf.Log.File),
	}

	timeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", defaultString(cf.HTTPTimeout, "30s")))
	if err != nil {
		return nil, fmt.Errorf("无效的 HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(filePath string) (*ConfigFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var cf ConfigFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("解析 YAML 失败: %w", err)
	}
	return &cf, nil
}

func (c *Config) applyDefaults() error {
	if c.Network == "" {
		c.Network = types.NetworkTestnet
	}
	netCfg, err := client.GetNetworkConfig(c.Network)
	if err != nil {
		return err
	}
	if c.APIURL == "" {
		c.APIURL = netCfg.APIURL
	}
	if c.WSURL == "" {
		c.WSURL = netCfg.WSPrivateURL
	}
	if c.ChainID == 0 {
		c.ChainID = netCfg.DefaultChain
	}
	if c.Wallet.DerivationPath == "" {
		c.Wallet.DerivationPath = DefaultDerivationPath
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	return nil
}

// Validate 校验所有操作都需要的字段
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BrokerID) == "" {
		return ErrMissingBrokerID
	}
	if c.ChainID <= 0 {
		return fmt.Errorf("无效的链 ID: %d", c.ChainID)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("无效的 HTTP 超时: %s", c.HTTPTimeout)
	}
	return nil
}

// RequireWallet 需要钱包签名的操作调用
func (c *Config) RequireWallet() error {
	if c.Wallet.PrivateKey == "" && c.Wallet.Mnemonic == "" {
		return ErrMissingWallet
	}
	return nil
}

// RequireCredential 需要 orderly key 签名的操作调用
func (c *Config) RequireCredential() error {
	if c.Orderly.AccountID == "" || c.Orderly.Secret == "" {
		return ErrMissingCredential
	}
	return nil
}

// RequireRPC 需要链上交互的操作调用
func (c *Config) RequireRPC() error {
	if c.RPCURL == "" {
		return ErrMissingRPC
	}
	return nil
}

// WalletKey 解析钱包私钥，私钥优先，其次助记词
func (c *Config) WalletKey() (*ecdsa.PrivateKey, error) {
	if err := c.RequireWallet(); err != nil {
		return nil, err
	}
	if c.Wallet.PrivateKey != "" {
		key, err := signing.WalletKeyFromHex(c.Wallet.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("无效的钱包私钥: %w", err)
		}
		return key, nil
	}
	return deriveWalletKey(c.Wallet.Mnemonic, c.Wallet.DerivationPath)
}

func deriveWalletKey(mnemonic, derivationPath string) (*ecdsa.PrivateKey, error) {
	w, err := hdwallet.NewFromMnemonic(strings.TrimSpace(mnemonic))
	if err != nil {
		return nil, fmt.Errorf("无效的助记词: %w", err)
	}
	path, err := hdwallet.ParseDerivationPath(strings.TrimSpace(derivationPath))
	if err != nil {
		return nil, fmt.Errorf("无效的派生路径: %w", err)
	}
	acct, err := w.Derive(path, false)
	if err != nil {
		return nil, fmt.Errorf("派生账户失败: %w", err)
	}
	key, err := w.PrivateKey(acct)
	if err != nil {
		return nil, fmt.Errorf("获取私钥失败: %w", err)
	}
	return key, nil
}

// Credential 构造 orderly key 凭证，公钥未配置时由私钥推导
// 配置了公钥时原样使用，不校验与私钥是否匹配
func (c *Config) Credential() (*types.Credential, error) {
	if err := c.RequireCredential(); err != nil {
		return nil, err
	}
	seed, err := signing.ParsePrivateKey(c.Orderly.Secret)
	if err != nil {
		return nil, err
	}
	pub := c.Orderly.Key
	if pub == "" {
		if pub, err = signing.PublicKeyFromSeed(seed); err != nil {
			return nil, err
		}
	}
	return &types.Credential{AccountID: c.Orderly.AccountID, PublicKey: pub, PrivateKey: seed}, nil
}

// ClientConfig 转换为 REST 客户端配置
func (c *Config) ClientConfig() client.Config {
	return client.Config{
		Host:     c.APIURL,
		Network:  c.Network,
		BrokerID: c.BrokerID,
		ChainID:  c.ChainID,
		Timeout:  c.HTTPTimeout,
	}
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseInt64Env(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
		return n
	}
	return defaultValue
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
