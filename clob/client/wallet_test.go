package client

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
)

func TestRegisterAccount_WalletSignatureRecovers(t *testing.T) {
	srv, captured := signedServer(t, nil, map[string]string{
		"GET /v1/registration_nonce": `{"success":true,"data":{"registration_nonce":"194528949540"}}`,
		"POST /v1/register_account":  `{"success":true,"data":{"account_id":"0xnew"}}`,
	})
	c := newTestClient(t, srv.URL, nil, true)

	res, err := c.RegisterAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0xnew", res.AccountID)

	require.Len(t, *captured, 2)
	var req types.RegisterAccountRequest
	require.NoError(t, json.Unmarshal([]byte((*captured)[1].Body), &req))
	assert.Equal(t, "194528949540", req.Message.RegistrationNonce)
	assert.Equal(t, int64(types.ChainArbitrumSepolia), req.Message.ChainID)
	assert.Equal(t, "woofi_pro", req.Message.BrokerID)

	td, err := signing.RegistrationTypedData(req.Message)
	require.NoError(t, err)
	signer, err := signing.RecoverTypedDataSigner(td, req.Signature)
	require.NoError(t, err)
	assert.Equal(t, req.UserAddress, signer.Hex())
}

func TestRegisterAccount_RequiresWallet(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1", nil, false)
	_, err := c.RegisterAccount(context.Background())
	assert.ErrorIs(t, err, ErrNoWallet)
}

func TestAddOrderlyKey_ScopeAndExpiration(t *testing.T) {
	srv, captured := signedServer(t, nil, map[string]string{
		"POST /v1/orderly_key": `{"success":true,"data":{"id":1,"orderly_key":"ed25519:new"}}`,
	})
	c := newTestClient(t, srv.URL, nil, true)

	res, err := c.AddOrderlyKey(context.Background(), "ed25519:new", "", 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "ed25519:new", res.OrderlyKey)

	var req types.AddOrderlyKeyRequest
	require.NoError(t, json.Unmarshal([]byte((*captured)[0].Body), &req))
	assert.Equal(t, types.DefaultKeyScope, req.Message.Scope)
	assert.Equal(t, int64(24*time.Hour/time.Millisecond), req.Message.Expiration-req.Message.Timestamp)

	signer, err := signing.RecoverTypedDataSigner(signing.AddOrderlyKeyTypedData(req.Message), req.Signature)
	require.NoError(t, err)
	assert.Equal(t, req.UserAddress, signer.Hex())
}

func TestWithdraw_NonceAliasAndSignatures(t *testing.T) {
	cred, pub := testCredential(t)
	srv, captured := signedServer(t, pub, map[string]string{
		"GET /v1/withdraw_nonce":    `{"success":true,"data":{"nonce":"4"}}`,
		"POST /v1/withdraw_request": `{"success":true,"data":{"withdraw_id":99}}`,
	})
	c := newTestClient(t, srv.URL, cred, true)

	res, err := c.Withdraw(context.Background(), WithdrawParams{Amount: decimal.RequireFromString("12.5")})
	require.NoError(t, err)
	assert.Equal(t, int64(99), res.WithdrawID)

	require.Len(t, *captured, 2)
	assert.True(t, (*captured)[0].SigValid)
	assert.True(t, (*captured)[1].SigValid)

	var req types.WithdrawRequest
	require.NoError(t, json.Unmarshal([]byte((*captured)[1].Body), &req))
	assert.Equal(t, json.Number("12500000"), req.Message.Amount)
	assert.Equal(t, uint64(4), req.Message.WithdrawNonce)
	assert.Equal(t, types.TokenUSDC, req.Message.Token)
	assert.Equal(t, req.UserAddress, req.Message.Receiver)
	assert.Equal(t, signing.OnChainVerifyingContractTestnet, req.VerifyingContract)

	td, err := signing.WithdrawTypedData(req.Message, req.VerifyingContract)
	require.NoError(t, err)
	signer, err := signing.RecoverTypedDataSigner(td, req.Signature)
	require.NoError(t, err)
	assert.Equal(t, req.UserAddress, signer.Hex())
}

func TestToTokenUnits(t *testing.T) {
	tests := []struct {
		in      string
		want    json.Number
		wantErr bool
	}{
		{"1", "1000000", false},
		{"0.000001", "1", false},
		{"12.5", "12500000", false},
		{"0.0000001", "", true},
		{"0", "", true},
		{"-3", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToTokenUnits(types.TokenUSDC, decimal.RequireFromString(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToTokenUnits_UnknownToken(t *testing.T) {
	_, err := ToTokenUnits("ETH", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrUnsupportedToken)

	d, err := TokenDecimals(types.TokenUSDC)
	require.NoError(t, err)
	assert.Equal(t, int32(types.USDCDecimals), d)
}

func TestWithdraw_UnknownTokenNotSent(t *testing.T) {
	cred, pub := testCredential(t)
	srv, captured := signedServer(t, pub, map[string]string{
		"GET /v1/withdraw_nonce":    `{"success":true,"data":{"withdraw_nonce":4}}`,
		"POST /v1/withdraw_request": `{"success":true,"data":{"withdraw_id":99}}`,
	})
	c := newTestClient(t, srv.URL, cred, true)

	_, err := c.Withdraw(context.Background(), WithdrawParams{Token: "ETH", Amount: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, ErrUnsupportedToken)
	assert.Empty(t, *captured)
}
