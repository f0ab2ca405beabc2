package signing

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var accountIDArgs = func() abi.Arguments {
	addressType, _ := abi.NewType("address", "", nil)
	bytes32Type, _ := abi.NewType("bytes32", "", nil)
	return abi.Arguments{{Type: addressType}, {Type: bytes32Type}}
}()

// BrokerHash broker id 的 keccak256
func BrokerHash(brokerID string) common.Hash {
	return crypto.Keccak256Hash([]byte(brokerID))
}

// TokenHash 代币符号的 keccak256
func TokenHash(token string) common.Hash {
	return crypto.Keccak256Hash([]byte(token))
}

// AccountID 计算钱包在某个 broker 下的账户 ID：
// keccak256(abi.encode(address, keccak256(brokerId)))
func AccountID(address string, brokerID string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("无效的地址: %q", address)
	}
	encoded, err := accountIDArgs.Pack(common.HexToAddress(address), [32]byte(BrokerHash(brokerID)))
	if err != nil {
		return "", fmt.Errorf("编码 account id 失败: %w", err)
	}
	return crypto.Keccak256Hash(encoded).Hex(), nil
}
