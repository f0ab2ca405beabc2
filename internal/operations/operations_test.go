package operations

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/orderly/clob/client"
	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
	"github.com/betbot/orderly/clob/ws"
	"github.com/betbot/orderly/internal/mockvenue"
	"github.com/betbot/orderly/pkg/config"
	"github.com/betbot/orderly/pkg/journal"
	"github.com/betbot/orderly/pkg/secretstore"
)

const (
	testBroker    = "demo_broker"
	testWalletHex = "0x0123012301230123012301230123012301230123012301230123012301230123"
)

func startVenue(t *testing.T) (*mockvenue.Venue, *httptest.Server) {
	t.Helper()
	v := mockvenue.New(mockvenue.Config{BrokerID: testBroker})
	srv := httptest.NewServer(v.Router())
	t.Cleanup(srv.Close)
	return v, srv
}

func testConfig(srv *httptest.Server) *config.Config {
	return &config.Config{
		Network:     types.NetworkTestnet,
		APIURL:      srv.URL,
		WSURL:       "ws" + strings.TrimPrefix(srv.URL, "http") + "/v2/ws/private/stream",
		BrokerID:    testBroker,
		ChainID:     types.ChainArbitrumSepolia,
		Wallet:      config.WalletConfig{PrivateKey: testWalletHex},
		HTTPTimeout: 5 * time.Second,
	}
}

func walletAddress(t *testing.T) string {
	t.Helper()
	key, err := signing.WalletKeyFromHex(testWalletHex)
	require.NoError(t, err)
	return signing.WalletAddress(key)
}

func TestOperations_FullFlow(t *testing.T) {
	ctx := context.Background()
	v, srv := startVenue(t)

	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer j.Close()
	store := secretstore.NewMemoryStore(nil)

	env, err := NewEnv(testConfig(srv), WithStore(store), WithJournal(j))
	require.NoError(t, err)

	status, err := CheckAccount(ctx, env, "")
	require.NoError(t, err)
	assert.False(t, status.Registered)
	assert.Equal(t, walletAddress(t), status.Address)

	status, err = RegisterAccount(ctx, env)
	require.NoError(t, err)
	assert.True(t, status.Registered)

	// 再次注册直接返回现有账户
	again, err := RegisterAccount(ctx, env)
	require.NoError(t, err)
	assert.Equal(t, status.AccountID, again.AccountID)

	added, err := AddKey(ctx, env, AddKeyParams{})
	require.NoError(t, err)
	assert.True(t, added.Persisted)
	assert.Equal(t, types.DefaultKeyScope, added.Scope)
	assert.Greater(t, added.Expiration, time.Now().Add(364*24*time.Hour).UnixMilli())

	stored, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, status.AccountID, stored.AccountID)
	assert.Equal(t, added.OrderlyKey, stored.PublicKey)

	order, err := CreateOrder(ctx, env, types.OrderRequest{
		Symbol:    "PERP_ETH_USDC",
		OrderType: types.OrderTypeLimit,
		Side:      types.SideSell,
		Price:     decimal.RequireFromString("3100"),
		Quantity:  decimal.RequireFromString("0.5"),
	})
	require.NoError(t, err)

	page, err := ListOrders(ctx, env, types.OrderFilter{Symbol: "PERP_ETH_USDC"})
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, order.OrderID, page.Rows[0].OrderID)

	cancelled, err := CancelOrder(ctx, env, order.OrderID, "PERP_ETH_USDC")
	require.NoError(t, err)
	assert.Equal(t, "CANCEL_SENT", cancelled.Status)

	_, err = Withdraw(ctx, env, client.WithdrawParams{Amount: decimal.RequireFromString("2.25")})
	require.NoError(t, err)
	withdrawals := v.Withdrawals(status.AccountID)
	require.Len(t, withdrawals, 1)
	assert.Equal(t, "2250000", withdrawals[0].Amount.String())

	info, err := KeyInfo(ctx, env, "")
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", info.KeyStatus)

	removed, err := RemoveKey(ctx, env, "")
	require.NoError(t, err)
	assert.Equal(t, added.OrderlyKey, removed)

	_, err = ListOrders(ctx, env, types.OrderFilter{})
	_, rejected := client.AsAPIError(err)
	assert.True(t, rejected)

	runs, err := j.List(ctx, 0)
	require.NoError(t, err)
	ops := make([]string, 0, len(runs))
	for _, r := range runs {
		ops = append(ops, r.Op)
	}
	assert.Equal(t, []string{
		"list-orders", "remove-key", "key-info", "withdraw", "cancel-order", "list-orders",
		"create-order", "add-key", "register-account", "register-account", "check-account",
	}, ops)
	require.NotNil(t, runs[0].OK)
	assert.False(t, *runs[0].OK)
}

func TestAddKey_RequiresRegistration(t *testing.T) {
	_, srv := startVenue(t)
	env, err := NewEnv(testConfig(srv))
	require.NoError(t, err)

	_, err = AddKey(context.Background(), env, AddKeyParams{})
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestAddKey_WithoutStoreStillSwitchesCredential(t *testing.T) {
	ctx := context.Background()
	v, srv := startVenue(t)
	_, err := v.RegisterAccount(walletAddress(t))
	require.NoError(t, err)

	env, err := NewEnv(testConfig(srv))
	require.NoError(t, err)
	added, err := AddKey(ctx, env, AddKeyParams{Scope: "read"})
	require.NoError(t, err)
	assert.False(t, added.Persisted)
	require.NotNil(t, env.Client.Credential())
	assert.Equal(t, added.OrderlyKey, env.Client.Credential().PublicKey)
}

func TestNewEnv_CredentialFromStore(t *testing.T) {
	_, srv := startVenue(t)
	seed := bytes.Repeat([]byte{0x31}, 32)
	pub, err := signing.PublicKeyFromSeed(seed)
	require.NoError(t, err)
	cred := &types.Credential{AccountID: "0xfeed", PublicKey: pub, PrivateKey: seed}

	env, err := NewEnv(testConfig(srv), WithStore(secretstore.NewMemoryStore(cred)))
	require.NoError(t, err)
	assert.Equal(t, cred, env.Client.Credential())

	// 配置里的凭证优先
	cfg := testConfig(srv)
	cfg.Orderly = config.OrderlyConfig{AccountID: "0xconfig", Secret: signing.EncodePrivateKey(seed)}
	env, err = NewEnv(cfg, WithStore(secretstore.NewMemoryStore(cred)))
	require.NoError(t, err)
	assert.Equal(t, "0xconfig", env.Client.Credential().AccountID)
}

func TestOperations_RequireCredential(t *testing.T) {
	ctx := context.Background()
	_, srv := startVenue(t)
	env, err := NewEnv(testConfig(srv))
	require.NoError(t, err)

	_, err = CreateOrder(ctx, env, types.OrderRequest{})
	assert.ErrorIs(t, err, config.ErrMissingCredential)
	_, err = ListOrders(ctx, env, types.OrderFilter{})
	assert.ErrorIs(t, err, config.ErrMissingCredential)
	_, err = Withdraw(ctx, env, client.WithdrawParams{Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, config.ErrMissingCredential)
	_, err = RemoveKey(ctx, env, "")
	assert.ErrorIs(t, err, config.ErrMissingCredential)
	assert.ErrorIs(t, WatchOrders(ctx, env, func(ws.ExecutionReport) {}), config.ErrMissingCredential)
}

func TestCheckAccount_ExplicitAddressWithoutWallet(t *testing.T) {
	v, srv := startVenue(t)
	address := walletAddress(t)
	accountID, err := v.RegisterAccount(address)
	require.NoError(t, err)

	cfg := testConfig(srv)
	cfg.Wallet = config.WalletConfig{}
	env, err := NewEnv(cfg)
	require.NoError(t, err)

	_, err = CheckAccount(context.Background(), env, "")
	assert.ErrorIs(t, err, client.ErrNoWallet)

	status, err := CheckAccount(context.Background(), env, address)
	require.NoError(t, err)
	assert.True(t, status.Registered)
	assert.Equal(t, accountID, status.AccountID)
}

func TestCheckAccount_TransportError(t *testing.T) {
	_, srv := startVenue(t)
	cfg := testConfig(srv)
	srv.Close()

	env, err := NewEnv(cfg)
	require.NoError(t, err)
	_, err = CheckAccount(context.Background(), env, "")
	require.Error(t, err)
	_, isAPI := client.AsAPIError(err)
	assert.False(t, isAPI)
}

// stubChain 所有查询返回同一个 uint256，交易只记录不广播
type stubChain struct {
	value *big.Int
	sent  []*ethtypes.Transaction
}

func (s *stubChain) CallContract(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error) {
	return common.LeftPadBytes(s.value.Bytes(), 32), nil
}

func (s *stubChain) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return uint64(len(s.sent)), nil
}

func (s *stubChain) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(1), nil
}

func (s *stubChain) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 100000, nil
}

func (s *stubChain) SendTransaction(_ context.Context, tx *ethtypes.Transaction) error {
	s.sent = append(s.sent, tx)
	return nil
}

func TestDeposit_UsesVault(t *testing.T) {
	_, srv := startVenue(t)
	cfg := testConfig(srv)
	chain := &stubChain{value: big.NewInt(1_000_000_000_000)}

	env, err := NewEnv(cfg, WithVault(func(context.Context) (*client.VaultService, error) {
		key, err := cfg.WalletKey()
		if err != nil {
			return nil, err
		}
		return client.NewVaultService(chain, cfg.ChainID, key, client.WithAllowancePoll(1, 0))
	}))
	require.NoError(t, err)

	res, err := Deposit(context.Background(), env, decimal.NewFromInt(5))
	require.NoError(t, err)
	require.Len(t, chain.sent, 1)
	assert.Equal(t, chain.sent[0].Hash(), res.DepositTx)
	assert.Equal(t, 0, res.Amount.Cmp(big.NewInt(5_000_000)))
	assert.Equal(t, 0, chain.sent[0].Value().Cmp(chain.value))

	// data 中携带由钱包推导的 account id
	accountID, err := signing.AccountID(walletAddress(t), testBroker)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(chain.sent[0].Data(), common.HexToHash(accountID).Bytes()))
}

func TestDeposit_VaultError(t *testing.T) {
	_, srv := startVenue(t)
	boom := errors.New("rpc down")
	env, err := NewEnv(testConfig(srv), WithVault(func(context.Context) (*client.VaultService, error) {
		return nil, boom
	}))
	require.NoError(t, err)

	_, err = Deposit(context.Background(), env, decimal.NewFromInt(5))
	assert.ErrorIs(t, err, boom)
}

func TestDeposit_DefaultVaultNeedsRPC(t *testing.T) {
	_, srv := startVenue(t)
	env, err := NewEnv(testConfig(srv))
	require.NoError(t, err)

	_, err = Deposit(context.Background(), env, decimal.NewFromInt(5))
	assert.ErrorIs(t, err, config.ErrMissingRPC)
}

func TestWatchOrders_ReceivesReports(t *testing.T) {
	v, srv := startVenue(t)
	accountID, err := v.RegisterAccount(walletAddress(t))
	require.NoError(t, err)
	seed := bytes.Repeat([]byte{0x41}, 32)
	pub, err := signing.PublicKeyFromSeed(seed)
	require.NoError(t, err)
	require.True(t, v.AddKey(accountID, pub, types.DefaultKeyScope, time.Now().Add(time.Hour).UnixMilli()))

	cfg := testConfig(srv)
	cfg.Orderly = config.OrderlyConfig{AccountID: accountID, Key: pub, Secret: signing.EncodePrivateKey(seed)}
	env, err := NewEnv(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reports := make(chan ws.ExecutionReport, 4)
	done := make(chan error, 1)
	go func() {
		done <- WatchOrders(ctx, env, func(r ws.ExecutionReport) { reports <- r })
	}()
	require.Eventually(t, func() bool { return v.StreamCount(accountID) == 1 }, 5*time.Second, 10*time.Millisecond)

	res, err := CreateOrder(context.Background(), env, types.OrderRequest{
		Symbol:    "PERP_BTC_USDC",
		OrderType: types.OrderTypeMarket,
		Side:      types.SideBuy,
		Quantity:  decimal.RequireFromString("0.001"),
	})
	require.NoError(t, err)

	select {
	case r := <-reports:
		assert.Equal(t, res.OrderID, r.OrderID)
		assert.Equal(t, "NEW", r.Status)
		assert.Equal(t, "PERP_BTC_USDC", r.Symbol)
	case <-time.After(5 * time.Second):
		t.Fatal("没有收到执行回报")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("WatchOrders 没有退出")
	}
}
