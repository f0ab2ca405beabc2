package signing

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/betbot/orderly/clob/types"
)

var domainTypes = []apitypes.Type{
	{Name: "name", Type: "string"},
	{Name: "version", Type: "string"},
	{Name: "chainId", Type: "uint256"},
	{Name: "verifyingContract", Type: "address"},
}

// 各操作的字段定义，字段顺序参与 type hash 计算
var (
	RegistrationTypes = []apitypes.Type{
		{Name: "brokerId", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "timestamp", Type: "uint64"},
		{Name: "registrationNonce", Type: "uint256"},
	}

	AddOrderlyKeyTypes = []apitypes.Type{
		{Name: "brokerId", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "orderlyKey", Type: "string"},
		{Name: "scope", Type: "string"},
		{Name: "timestamp", Type: "uint64"},
		{Name: "expiration", Type: "uint64"},
	}

	WithdrawTypes = []apitypes.Type{
		{Name: "brokerId", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "receiver", Type: "address"},
		{Name: "token", Type: "string"},
		{Name: "amount", Type: "uint256"},
		{Name: "withdrawNonce", Type: "uint64"},
		{Name: "timestamp", Type: "uint64"},
	}
)

func domain(chainID int64, verifyingContract string) apitypes.TypedDataDomain {
	return apitypes.TypedDataDomain{
		Name:              DomainName,
		Version:           DomainVersion,
		ChainId:           math.NewHexOrDecimal256(chainID),
		VerifyingContract: verifyingContract,
	}
}

func typedData(primaryType string, fields []apitypes.Type, chainID int64, verifyingContract string, message apitypes.TypedDataMessage) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			primaryType:    fields,
			"EIP712Domain": domainTypes,
		},
		PrimaryType: primaryType,
		Domain:      domain(chainID, verifyingContract),
		Message:     message,
	}
}

// RegistrationTypedData 构造注册账户的 typed data
func RegistrationTypedData(msg types.RegistrationMessage) (apitypes.TypedData, error) {
	nonce, ok := new(big.Int).SetString(msg.RegistrationNonce, 10)
	if !ok {
		return apitypes.TypedData{}, fmt.Errorf("无效的 registration nonce: %q", msg.RegistrationNonce)
	}
	return typedData(PrimaryTypeRegistration, RegistrationTypes, msg.ChainID, OffChainVerifyingContract, apitypes.TypedDataMessage{
		"brokerId":          msg.BrokerID,
		"chainId":           big.NewInt(msg.ChainID),
		"timestamp":         big.NewInt(msg.Timestamp),
		"registrationNonce": nonce,
	}), nil
}

// AddOrderlyKeyTypedData 构造添加 orderly key 的 typed data
func AddOrderlyKeyTypedData(msg types.AddOrderlyKeyMessage) apitypes.TypedData {
	return typedData(PrimaryTypeAddOrderlyKey, AddOrderlyKeyTypes, msg.ChainID, OffChainVerifyingContract, apitypes.TypedDataMessage{
		"brokerId":   msg.BrokerID,
		"chainId":    big.NewInt(msg.ChainID),
		"orderlyKey": msg.OrderlyKey,
		"scope":      msg.Scope,
		"timestamp":  big.NewInt(msg.Timestamp),
		"expiration": big.NewInt(msg.Expiration),
	})
}

// WithdrawTypedData 构造提现授权的 typed data
func WithdrawTypedData(msg types.WithdrawMessage, verifyingContract string) (apitypes.TypedData, error) {
	amount, ok := new(big.Int).SetString(msg.Amount.String(), 10)
	if !ok {
		return apitypes.TypedData{}, fmt.Errorf("无效的提现数量: %q", msg.Amount)
	}
	if !common.IsHexAddress(msg.Receiver) {
		return apitypes.TypedData{}, fmt.Errorf("无效的接收地址: %q", msg.Receiver)
	}
	return typedData(PrimaryTypeWithdraw, WithdrawTypes, msg.ChainID, verifyingContract, apitypes.TypedDataMessage{
		"brokerId":      msg.BrokerID,
		"chainId":       big.NewInt(msg.ChainID),
		"receiver":      common.HexToAddress(msg.Receiver).Hex(),
		"token":         msg.Token,
		"amount":        amount,
		"withdrawNonce": new(big.Int).SetUint64(msg.WithdrawNonce),
		"timestamp":     big.NewInt(msg.Timestamp),
	}), nil
}

// TypedDataHash computes keccak256("\x19\x01" || domainSeparator || hashStruct(message)).
func TypedDataHash(td apitypes.TypedData) ([]byte, error) {
	domainSeparator, err := td.HashStruct("EIP712Domain", td.Domain.Map())
	if err != nil {
		return nil, fmt.Errorf("计算 domain hash 失败: %w", err)
	}
	messageHash, err := td.HashStruct(td.PrimaryType, td.Message)
	if err != nil {
		return nil, fmt.Errorf("计算 message hash 失败: %w", err)
	}
	rawData := []byte{0x19, 0x01}
	rawData = append(rawData, domainSeparator...)
	rawData = append(rawData, messageHash...)
	return crypto.Keccak256(rawData), nil
}

// SignTypedData 使用钱包私钥签名 typed data，返回 0x 十六进制 r||s||v（v 为 27/28）
func SignTypedData(privateKey *ecdsa.PrivateKey, td apitypes.TypedData) (string, error) {
	hash, err := TypedDataHash(td)
	if err != nil {
		return "", err
	}
	sig, err := crypto.Sign(hash, privateKey)
	if err != nil {
		return "", fmt.Errorf("签名失败: %w", err)
	}
	// 钱包签名使用 27/28 而不是 0/1
	sig[64] += 27
	return hexutil.Encode(sig), nil
}

// RecoverTypedDataSigner 从签名恢复签名者地址
func RecoverTypedDataSigner(td apitypes.TypedData, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("解码签名失败: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("签名长度 %d，需要 %d", len(sig), crypto.SignatureLength)
	}
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	hash, err := TypedDataHash(td)
	if err != nil {
		return common.Address{}, err
	}
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("恢复签名者失败: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// WalletAddress 返回钱包私钥对应的校验和地址
func WalletAddress(privateKey *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(privateKey.PublicKey).Hex()
}

// WalletKeyFromHex 解析十六进制 ECDSA 私钥（0x 前缀可选）
func WalletKeyFromHex(hexKey string) (*ecdsa.PrivateKey, error) {
	return crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
}
