package client

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
)

// fakeChain 按调用顺序返回 allowance，记录发送的交易
type fakeChain struct {
	t          *testing.T
	allowances []*big.Int
	allowCalls int
	fee        *big.Int
	sent       []*ethtypes.Transaction
}

func (f *fakeChain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	selector := msg.Data[:4]
	switch {
	case bytes.Equal(selector, erc20ABI.Methods["allowance"].ID):
		i := f.allowCalls
		if i >= len(f.allowances) {
			i = len(f.allowances) - 1
		}
		f.allowCalls++
		return erc20ABI.Methods["allowance"].Outputs.Pack(f.allowances[i])
	case bytes.Equal(selector, erc20ABI.Methods["balanceOf"].ID):
		return erc20ABI.Methods["balanceOf"].Outputs.Pack(big.NewInt(5_000_000))
	case bytes.Equal(selector, vaultABI.Methods["getDepositFee"].ID):
		return vaultABI.Methods["getDepositFee"].Outputs.Pack(f.fee)
	}
	f.t.Errorf("unexpected call to %s", msg.To.Hex())
	return nil, errors.New("unexpected call")
}

func (f *fakeChain) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return uint64(len(f.sent)), nil
}

func (f *fakeChain) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(100_000_000), nil
}

func (f *fakeChain) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 0, errors.New("estimate not supported")
}

func (f *fakeChain) SendTransaction(_ context.Context, tx *ethtypes.Transaction) error {
	f.sent = append(f.sent, tx)
	return nil
}

func newTestVault(t *testing.T, chain *fakeChain, attempts int) *VaultService {
	t.Helper()
	key, err := signing.WalletKeyFromHex(testWalletKeyHex)
	require.NoError(t, err)
	s, err := NewVaultService(chain, types.ChainArbitrumSepolia, key, WithAllowancePoll(attempts, 0))
	require.NoError(t, err)
	return s
}

const testAccountID = "0x1111111111111111111111111111111111111111111111111111111111111111"

func TestDeposit_ApprovesThenDeposits(t *testing.T) {
	chain := &fakeChain{
		t:          t,
		allowances: []*big.Int{big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(10_000_000)},
		fee:        big.NewInt(12345),
	}
	s := newTestVault(t, chain, 5)

	res, err := s.Deposit(context.Background(), DepositParams{AccountID: testAccountID, BrokerID: "woofi_pro", Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)

	require.Len(t, chain.sent, 2)
	approve, deposit := chain.sent[0], chain.sent[1]
	assert.Equal(t, common.HexToAddress(ArbitrumSepoliaContracts.USDC), *approve.To())
	assert.Equal(t, erc20ABI.Methods["approve"].ID, approve.Data()[:4])
	assert.Equal(t, uint64(120000), approve.Gas())

	assert.Equal(t, common.HexToAddress(ArbitrumSepoliaContracts.Vault), *deposit.To())
	assert.Equal(t, vaultABI.Methods["deposit"].ID, deposit.Data()[:4])
	assert.Equal(t, 0, deposit.Value().Cmp(big.NewInt(12345)))
	assert.Equal(t, uint64(1), deposit.Nonce())
	assert.Equal(t, 0, deposit.ChainId().Cmp(big.NewInt(421614)))

	assert.Equal(t, approve.Hash(), res.ApproveTx)
	assert.Equal(t, deposit.Hash(), res.DepositTx)
	assert.Equal(t, 0, res.Amount.Cmp(big.NewInt(10_000_000)))
}

func TestDeposit_SkipsApproveWhenAllowed(t *testing.T) {
	chain := &fakeChain{t: t, allowances: []*big.Int{big.NewInt(50_000_000)}, fee: big.NewInt(1)}
	s := newTestVault(t, chain, 5)

	res, err := s.Deposit(context.Background(), DepositParams{AccountID: testAccountID, BrokerID: "woofi_pro", Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	require.Len(t, chain.sent, 1)
	assert.Equal(t, common.Hash{}, res.ApproveTx)
}

func TestDeposit_AllowanceNeverArrives(t *testing.T) {
	chain := &fakeChain{t: t, allowances: []*big.Int{big.NewInt(0)}, fee: big.NewInt(1)}
	s := newTestVault(t, chain, 3)

	res, err := s.Deposit(context.Background(), DepositParams{AccountID: testAccountID, BrokerID: "woofi_pro", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrAllowanceNotReady)
	require.NotNil(t, res)
	assert.NotEqual(t, common.Hash{}, res.ApproveTx)
	assert.Len(t, chain.sent, 1)
	// 初始检查一次 + 轮询三次
	assert.Equal(t, 4, chain.allowCalls)
}

func TestWaitForAllowance_ContextCancelled(t *testing.T) {
	chain := &fakeChain{t: t, allowances: []*big.Int{big.NewInt(0)}}
	s := newTestVault(t, chain, 100)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.WaitForAllowance(ctx, big.NewInt(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDepositData(t *testing.T) {
	data, err := DepositData(testAccountID, "woofi_pro", "USDC", big.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, [32]byte(signing.BrokerHash("woofi_pro")), data.BrokerHash)
	assert.Equal(t, [32]byte(signing.TokenHash("USDC")), data.TokenHash)

	_, err = DepositData("0x1234", "woofi_pro", "USDC", big.NewInt(5))
	assert.Error(t, err)

	// tuple 参数能被 ABI 编码
	_, err = vaultABI.Pack("deposit", data)
	assert.NoError(t, err)
}

func TestVaultBalance(t *testing.T) {
	chain := &fakeChain{t: t, allowances: []*big.Int{big.NewInt(0)}}
	s := newTestVault(t, chain, 1)
	bal, err := s.Balance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5_000_000), bal.Int64())
}

func TestGetContractConfig(t *testing.T) {
	for _, chain := range []types.Chain{types.ChainArbitrum, types.ChainArbitrumSepolia} {
		cfg, err := GetContractConfig(chain)
		require.NoError(t, err)
		assert.True(t, common.IsHexAddress(cfg.Vault))
		assert.True(t, common.IsHexAddress(cfg.USDC))
	}
	_, err := GetContractConfig(types.ChainBase)
	assert.Error(t, err)
}

func TestDeposit_RejectsNonUSDCToken(t *testing.T) {
	chain := &fakeChain{t: t, allowances: []*big.Int{big.NewInt(0)}, fee: big.NewInt(1)}
	s := newTestVault(t, chain, 1)

	_, err := s.Deposit(context.Background(), DepositParams{
		AccountID: testAccountID,
		BrokerID:  "woofi_pro",
		Token:     "USDT",
		Amount:    decimal.NewFromInt(10),
	})
	require.ErrorIs(t, err, ErrUnsupportedToken)
	assert.Zero(t, chain.allowCalls)
	assert.Empty(t, chain.sent)
}
