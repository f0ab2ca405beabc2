package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
)

// WithdrawParams 提现参数
type WithdrawParams struct {
	Token    string          // 默认 USDC
	Amount   decimal.Decimal // 代币数量，例如 12.5
	Receiver string          // 默认钱包地址
}

// GetWithdrawNonce 获取提现 nonce
func (c *Client) GetWithdrawNonce(ctx context.Context) (*types.WithdrawNonce, error) {
	var nonce types.WithdrawNonce
	if err := c.doSigned(ctx, http.MethodGet, EndpointWithdrawNonce, nil, &nonce); err != nil {
		return nil, err
	}
	if nonce.Deprecated() {
		c.log.Warnf("提现 nonce 来自废弃字段 %q，标准字段为 %q", nonce.Source, types.WithdrawNonceField)
	}
	return &nonce, nil
}

// ToTokenUnits 按代币精度把数量转换为最小单位，未知代币或超出精度时报错
func ToTokenUnits(token string, amount decimal.Decimal) (json.Number, error) {
	decimals, err := TokenDecimals(token)
	if err != nil {
		return "", err
	}
	if !amount.IsPositive() {
		return "", fmt.Errorf("数量必须为正: %s", amount)
	}
	units := amount.Shift(decimals)
	if !units.Equal(units.Truncate(0)) {
		return "", fmt.Errorf("数量 %s 超过 %d 位精度", amount, decimals)
	}
	return json.Number(units.StringFixed(0)), nil
}

// Withdraw 申请提现：请求由 orderly key 签名，消息本身由钱包签名
func (c *Client) Withdraw(ctx context.Context, params WithdrawParams) (*types.WithdrawResult, error) {
	if c.wallet == nil {
		return nil, ErrNoWallet
	}
	if c.creds == nil {
		return nil, ErrNoCredential
	}
	if params.Token == "" {
		params.Token = types.TokenUSDC
	}
	wallet := signing.WalletAddress(c.wallet)
	if params.Receiver == "" {
		params.Receiver = wallet
	}
	if !common.IsHexAddress(params.Receiver) {
		return nil, fmt.Errorf("无效的接收地址: %q", params.Receiver)
	}
	amount, err := ToTokenUnits(params.Token, params.Amount)
	if err != nil {
		return nil, err
	}

	nonce, err := c.GetWithdrawNonce(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取提现 nonce 失败: %w", err)
	}

	msg := types.WithdrawMessage{
		BrokerID:      c.brokerID,
		ChainID:       int64(c.chainID),
		Receiver:      common.HexToAddress(params.Receiver).Hex(),
		Token:         params.Token,
		Amount:        amount,
		WithdrawNonce: nonce.Nonce,
		Timestamp:     nowMillis(),
	}
	verifyingContract := signing.OnChainVerifyingContract(c.network)
	td, err := signing.WithdrawTypedData(msg, verifyingContract)
	if err != nil {
		return nil, err
	}
	sig, err := signing.SignTypedData(c.wallet, td)
	if err != nil {
		return nil, err
	}

	req := types.WithdrawRequest{
		Message:           msg,
		Signature:         sig,
		UserAddress:       wallet,
		VerifyingContract: verifyingContract,
	}
	var result types.WithdrawResult
	if err := c.doSigned(ctx, http.MethodPost, EndpointWithdrawRequest, req, &result); err != nil {
		return nil, err
	}
	c.log.WithField("withdraw_id", result.WithdrawID).Infof("提现申请成功: %s %s", params.Amount, params.Token)
	return &result, nil
}
