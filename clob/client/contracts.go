package client

import (
	"errors"
	"fmt"

	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
)

// NetworkConfig 交易所环境配置
type NetworkConfig struct {
	APIURL                   string // REST 地址
	WSPrivateURL             string // 私有 websocket 地址（不含 account id）
	OnChainVerifyingContract string // 提现 typed data 的 verifyingContract
	DefaultChain             types.Chain
}

// MainnetConfig 主网配置
var MainnetConfig = NetworkConfig{
	APIURL:                   "https://api.orderly.org",
	WSPrivateURL:             "wss://ws-private-evm.orderly.org/v2/ws/private/stream",
	OnChainVerifyingContract: signing.OnChainVerifyingContractMainnet,
	DefaultChain:             types.ChainArbitrum,
}

// TestnetConfig 测试网配置
var TestnetConfig = NetworkConfig{
	APIURL:                   "https://testnet-api.orderly.org",
	WSPrivateURL:             "wss://testnet-ws-private-evm.orderly.org/v2/ws/private/stream",
	OnChainVerifyingContract: signing.OnChainVerifyingContractTestnet,
	DefaultChain:             types.ChainArbitrumSepolia,
}

// GetNetworkConfig 根据环境获取配置
func GetNetworkConfig(network types.Network) (*NetworkConfig, error) {
	switch network {
	case types.NetworkMainnet:
		return &MainnetConfig, nil
	case types.NetworkTestnet:
		return &TestnetConfig, nil
	default:
		return nil, fmt.Errorf("不支持的网络: %q", network)
	}
}

// ErrUnsupportedToken 代币不在精度表中
var ErrUnsupportedToken = errors.New("不支持的代币")

// tokenDecimals 代币精度表，充值和提现都按这里换算最小单位
var tokenDecimals = map[string]int32{
	types.TokenUSDC: types.USDCDecimals,
}

// TokenDecimals 查询代币精度，未知代币返回 ErrUnsupportedToken
func TokenDecimals(token string) (int32, error) {
	d, ok := tokenDecimals[token]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedToken, token)
	}
	return d, nil
}

// ContractConfig 充值相关合约地址
type ContractConfig struct {
	Vault string // Orderly Vault 合约
	USDC  string // USDC 代币合约
}

// ArbitrumContracts Arbitrum One 合约地址
var ArbitrumContracts = ContractConfig{
	Vault: "0x816f722424B49Cf1275cc86DA9840Fbd5a6167e9",
	USDC:  "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
}

// ArbitrumSepoliaContracts Arbitrum Sepolia 测试网合约地址
var ArbitrumSepoliaContracts = ContractConfig{
	Vault: "0x0EaC556c0C2321BA25b9DC01e4e3c95aD5CDCd2f",
	USDC:  "0x75faf114eafb1BDbe2F0316DF893fd58CE46AA4d",
}

// GetContractConfig 根据链 ID 获取合约配置
func GetContractConfig(chainID types.Chain) (*ContractConfig, error) {
	switch chainID {
	case types.ChainArbitrum:
		return &ArbitrumContracts, nil
	case types.ChainArbitrumSepolia:
		return &ArbitrumSepoliaContracts, nil
	default:
		return nil, fmt.Errorf("不支持的链 ID: %d", chainID)
	}
}
