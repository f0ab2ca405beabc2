package client

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
)

// ErrAllowanceNotReady 授权交易在轮询次数内没有生效
var ErrAllowanceNotReady = errors.New("授权额度未在轮询期间生效")

// ChainBackend 充值流程用到的链上接口，*ethclient.Client 满足该接口
type ChainBackend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
}

const erc20ABIJSON = `[
  {"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
  {"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

const vaultABIJSON = `[
  {"inputs":[{"components":[{"name":"accountId","type":"bytes32"},{"name":"brokerHash","type":"bytes32"},{"name":"tokenHash","type":"bytes32"},{"name":"tokenAmount","type":"uint128"}],"name":"data","type":"tuple"}],"name":"deposit","outputs":[],"stateMutability":"payable","type":"function"},
  {"inputs":[{"name":"receiver","type":"address"},{"components":[{"name":"accountId","type":"bytes32"},{"name":"brokerHash","type":"bytes32"},{"name":"tokenHash","type":"bytes32"},{"name":"tokenAmount","type":"uint128"}],"name":"data","type":"tuple"}],"name":"getDepositFee","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

var (
	erc20ABI = mustParseABI(erc20ABIJSON)
	vaultABI = mustParseABI(vaultABIJSON)
)

// mustParseABI 解析内置 ABI，失败属于编码错误
func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("解析ABI失败: %v", err))
	}
	return parsed
}

// VaultDepositData Vault.deposit 的 tuple 参数，字段名与 ABI components 对应
type VaultDepositData struct {
	AccountId   [32]byte
	BrokerHash  [32]byte
	TokenHash   [32]byte
	TokenAmount *big.Int
}

// DepositParams 充值参数
type DepositParams struct {
	AccountID string // 0x 开头的 32 字节账户 ID
	BrokerID  string
	Token     string          // 默认 USDC
	Amount    decimal.Decimal // 代币数量
}

// DepositResult 充值结果
type DepositResult struct {
	ApproveTx common.Hash // 未发送授权交易时为空
	DepositTx common.Hash
	Fee       *big.Int // 跨链手续费（wei）
	Amount    *big.Int // 代币最小单位
}

// VaultService 通过 Vault 合约充值
type VaultService struct {
	backend    ChainBackend
	privateKey *ecdsa.PrivateKey
	chainID    *big.Int

	vault common.Address
	usdc  common.Address

	pollAttempts int
	pollDelay    time.Duration

	log *logrus.Entry
}

// VaultOption 可选配置
type VaultOption func(*VaultService)

// WithAllowancePoll 设置授权后轮询 allowance 的次数和间隔
func WithAllowancePoll(attempts int, delay time.Duration) VaultOption {
	return func(s *VaultService) {
		s.pollAttempts = attempts
		s.pollDelay = delay
	}
}

// WithVaultLogger 设置日志
func WithVaultLogger(log *logrus.Entry) VaultOption {
	return func(s *VaultService) {
		s.log = log
	}
}

// NewVaultService 使用给定的链上后端创建充值服务
func NewVaultService(backend ChainBackend, chain types.Chain, privateKey *ecdsa.PrivateKey, opts ...VaultOption) (*VaultService, error) {
	if privateKey == nil {
		return nil, ErrNoWallet
	}
	cfg, err := GetContractConfig(chain)
	if err != nil {
		return nil, err
	}
	s := &VaultService{
		backend:      backend,
		privateKey:   privateKey,
		chainID:      big.NewInt(int64(chain)),
		vault:        common.HexToAddress(cfg.Vault),
		usdc:         common.HexToAddress(cfg.USDC),
		pollAttempts: 10,
		pollDelay:    3 * time.Second,
		log:          logrus.WithField("component", "vault"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DialVaultService 连接 RPC 节点并创建充值服务
func DialVaultService(ctx context.Context, rpcURL string, chain types.Chain, privateKey *ecdsa.PrivateKey, opts ...VaultOption) (*VaultService, error) {
	c, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("连接RPC节点失败: %w", err)
	}
	return NewVaultService(c, chain, privateKey, opts...)
}

func (s *VaultService) walletAddress() common.Address {
	return crypto.PubkeyToAddress(s.privateKey.PublicKey)
}

// Balance 钱包 USDC 余额（最小单位）
func (s *VaultService) Balance(ctx context.Context) (*big.Int, error) {
	data, err := erc20ABI.Pack("balanceOf", s.walletAddress())
	if err != nil {
		return nil, err
	}
	raw, err := s.backend.CallContract(ctx, ethereum.CallMsg{To: &s.usdc, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call usdc.balanceOf: %w", err)
	}
	var bal *big.Int
	if err := erc20ABI.UnpackIntoInterface(&bal, "balanceOf", raw); err != nil {
		return nil, err
	}
	return bal, nil
}

// Allowance 钱包对 Vault 的 USDC 授权额度
func (s *VaultService) Allowance(ctx context.Context) (*big.Int, error) {
	data, err := erc20ABI.Pack("allowance", s.walletAddress(), s.vault)
	if err != nil {
		return nil, err
	}
	raw, err := s.backend.CallContract(ctx, ethereum.CallMsg{To: &s.usdc, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call usdc.allowance: %w", err)
	}
	var allowance *big.Int
	if err := erc20ABI.UnpackIntoInterface(&allowance, "allowance", raw); err != nil {
		return nil, err
	}
	return allowance, nil
}

// Approve 授权 Vault 使用 amount 数量的 USDC
func (s *VaultService) Approve(ctx context.Context, amount *big.Int) (common.Hash, error) {
	data, err := erc20ABI.Pack("approve", s.vault, amount)
	if err != nil {
		return common.Hash{}, err
	}
	tx, err := s.buildSignedTx(ctx, s.usdc, data, big.NewInt(0), 120000)
	if err != nil {
		return common.Hash{}, err
	}
	if err := s.backend.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, fmt.Errorf("发送授权交易失败: %w", err)
	}
	return tx.Hash(), nil
}

// WaitForAllowance 固定次数轮询 allowance，直到不小于 amount
func (s *VaultService) WaitForAllowance(ctx context.Context, amount *big.Int) error {
	for i := 0; i < s.pollAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		allowance, err := s.Allowance(ctx)
		if err != nil {
			return err
		}
		if allowance.Cmp(amount) >= 0 {
			return nil
		}
		s.log.Debugf("等待授权生效 (%d/%d): 当前 %s，需要 %s", i+1, s.pollAttempts, allowance, amount)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.pollDelay):
		}
	}
	return ErrAllowanceNotReady
}

// DepositData 组装 Vault.deposit 参数
func DepositData(accountID, brokerID, token string, amount *big.Int) (VaultDepositData, error) {
	if !strings.HasPrefix(accountID, "0x") || len(accountID) != 66 {
		return VaultDepositData{}, fmt.Errorf("无效的 account id: %q", accountID)
	}
	return VaultDepositData{
		AccountId:   common.HexToHash(accountID),
		BrokerHash:  signing.BrokerHash(brokerID),
		TokenHash:   signing.TokenHash(token),
		TokenAmount: amount,
	}, nil
}

// DepositFee 查询充值需要附带的手续费
func (s *VaultService) DepositFee(ctx context.Context, data VaultDepositData) (*big.Int, error) {
	input, err := vaultABI.Pack("getDepositFee", s.walletAddress(), data)
	if err != nil {
		return nil, err
	}
	raw, err := s.backend.CallContract(ctx, ethereum.CallMsg{To: &s.vault, Data: input}, nil)
	if err != nil {
		return nil, fmt.Errorf("call vault.getDepositFee: %w", err)
	}
	var fee *big.Int
	if err := vaultABI.UnpackIntoInterface(&fee, "getDepositFee", raw); err != nil {
		return nil, err
	}
	return fee, nil
}

// Deposit 完整充值流程：检查授权 -> 不足则授权并轮询 -> 查询手续费 -> 调用 deposit
func (s *VaultService) Deposit(ctx context.Context, params DepositParams) (*DepositResult, error) {
	if params.Token == "" {
		params.Token = types.TokenUSDC
	}
	// Vault 目前只配置了 USDC 合约
	if params.Token != types.TokenUSDC {
		return nil, fmt.Errorf("%w: 充值只支持 %s，收到 %q", ErrUnsupportedToken, types.TokenUSDC, params.Token)
	}
	units, err := ToTokenUnits(params.Token, params.Amount)
	if err != nil {
		return nil, err
	}
	amount, ok := new(big.Int).SetString(units.String(), 10)
	if !ok {
		return nil, fmt.Errorf("无效的充值数量: %s", units)
	}

	data, err := DepositData(params.AccountID, params.BrokerID, params.Token, amount)
	if err != nil {
		return nil, err
	}
	result := &DepositResult{Amount: amount}

	allowance, err := s.Allowance(ctx)
	if err != nil {
		return nil, err
	}
	if allowance.Cmp(amount) < 0 {
		s.log.Infof("授权额度不足 (%s < %s)，发送授权交易", allowance, amount)
		hash, err := s.Approve(ctx, amount)
		if err != nil {
			return nil, err
		}
		result.ApproveTx = hash
		if err := s.WaitForAllowance(ctx, amount); err != nil {
			return result, err
		}
	}

	fee, err := s.DepositFee(ctx, data)
	if err != nil {
		return result, err
	}
	result.Fee = fee

	input, err := vaultABI.Pack("deposit", data)
	if err != nil {
		return result, err
	}
	tx, err := s.buildSignedTx(ctx, s.vault, input, fee, 300000)
	if err != nil {
		return result, err
	}
	if err := s.backend.SendTransaction(ctx, tx); err != nil {
		return result, fmt.Errorf("发送充值交易失败: %w", err)
	}
	result.DepositTx = tx.Hash()
	s.log.WithField("tx", tx.Hash().Hex()).Infof("充值交易已发送: %s %s", params.Amount, params.Token)
	return result, nil
}

func (s *VaultService) buildSignedTx(ctx context.Context, to common.Address, data []byte, value *big.Int, fallbackGas uint64) (*ethtypes.Transaction, error) {
	from := s.walletAddress()
	nonce, err := s.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("获取nonce失败: %w", err)
	}
	gasPrice, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取gas价格失败: %w", err)
	}
	gasLimit, err := s.backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  from,
		To:    &to,
		Data:  data,
		Value: value,
	})
	if err != nil {
		// 部分节点 EstimateGas 不稳定，使用保守兜底
		gasLimit = fallbackGas
	}
	tx := ethtypes.NewTransaction(nonce, to, value, gasLimit, gasPrice, data)
	signed, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(s.chainID), s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("签名交易失败: %w", err)
	}
	return signed, nil
}
