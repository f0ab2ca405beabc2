package signing

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/orderly/clob/types"
)

const testWalletKeyHex = "0x0123456789012345678901234567890123456789012345678901234567890123"

func TestSignTypedData_RecoversSigner(t *testing.T) {
	key, err := WalletKeyFromHex(testWalletKeyHex)
	require.NoError(t, err)
	addr := WalletAddress(key)

	reg, err := RegistrationTypedData(types.RegistrationMessage{
		BrokerID:          "woofi_pro",
		ChainID:           int64(types.ChainArbitrumSepolia),
		Timestamp:         1700000000000,
		RegistrationNonce: "194528949540",
	})
	require.NoError(t, err)

	withdraw, err := WithdrawTypedData(types.WithdrawMessage{
		BrokerID:      "woofi_pro",
		ChainID:       int64(types.ChainArbitrum),
		Receiver:      addr,
		Token:         types.TokenUSDC,
		Amount:        json.Number("1000000"),
		WithdrawNonce: 3,
		Timestamp:     1700000000000,
	}, OnChainVerifyingContractMainnet)
	require.NoError(t, err)

	addKey := AddOrderlyKeyTypedData(types.AddOrderlyKeyMessage{
		BrokerID:   "woofi_pro",
		ChainID:    int64(types.ChainArbitrumSepolia),
		OrderlyKey: "ed25519:8tm8Ev3p1yHFT8C2Hb4JD4Ub4d1AmMuaTaTzSg3pT1Hz",
		Scope:      types.DefaultKeyScope,
		Timestamp:  1700000000000,
		Expiration: 1731536000000,
	})

	tests := []struct {
		name     string
		td       apitypes.TypedData
		primary  string
		contract string
	}{
		{"registration", reg, PrimaryTypeRegistration, OffChainVerifyingContract},
		{"add orderly key", addKey, PrimaryTypeAddOrderlyKey, OffChainVerifyingContract},
		{"withdraw", withdraw, PrimaryTypeWithdraw, OnChainVerifyingContractMainnet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.primary, tt.td.PrimaryType)
			assert.Equal(t, tt.contract, tt.td.Domain.VerifyingContract)
			assert.Equal(t, DomainName, tt.td.Domain.Name)

			sig, err := SignTypedData(key, tt.td)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(sig, "0x"))
			require.Len(t, sig, 2+65*2)
			v := sig[len(sig)-2:]
			assert.Contains(t, []string{"1b", "1c"}, v)

			signer, err := RecoverTypedDataSigner(tt.td, sig)
			require.NoError(t, err)
			assert.Equal(t, addr, signer.Hex())
		})
	}
}

func TestTypedDataHash_ChainBound(t *testing.T) {
	msg := types.AddOrderlyKeyMessage{BrokerID: "b", ChainID: 42161, OrderlyKey: "ed25519:k", Scope: "read", Timestamp: 1, Expiration: 2}
	h1, err := TypedDataHash(AddOrderlyKeyTypedData(msg))
	require.NoError(t, err)

	msg.ChainID = 421614
	h2, err := TypedDataHash(AddOrderlyKeyTypedData(msg))
	require.NoError(t, err)

	assert.Len(t, h1, 32)
	assert.NotEqual(t, h1, h2)
}

func TestTypedData_InvalidInputs(t *testing.T) {
	_, err := RegistrationTypedData(types.RegistrationMessage{RegistrationNonce: "not-a-number"})
	assert.Error(t, err)

	_, err = WithdrawTypedData(types.WithdrawMessage{Amount: json.Number("1.5"), Receiver: "0x0000000000000000000000000000000000000001"}, OnChainVerifyingContractTestnet)
	assert.Error(t, err)

	_, err = WithdrawTypedData(types.WithdrawMessage{Amount: json.Number("1"), Receiver: "nope"}, OnChainVerifyingContractTestnet)
	assert.Error(t, err)
}

func TestRecoverTypedDataSigner_BadSignature(t *testing.T) {
	td := AddOrderlyKeyTypedData(types.AddOrderlyKeyMessage{BrokerID: "b", ChainID: 1})
	_, err := RecoverTypedDataSigner(td, "0x1234")
	assert.Error(t, err)
	_, err = RecoverTypedDataSigner(td, "zz")
	assert.Error(t, err)
}

func TestOnChainVerifyingContract(t *testing.T) {
	assert.Equal(t, OnChainVerifyingContractMainnet, OnChainVerifyingContract(types.NetworkMainnet))
	assert.Equal(t, OnChainVerifyingContractTestnet, OnChainVerifyingContract(types.NetworkTestnet))
}
