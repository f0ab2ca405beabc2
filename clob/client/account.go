package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
)

// GetAccount 查询钱包在 broker 下的账户，未注册时服务端返回 success=false
func (c *Client) GetAccount(ctx context.Context, address, brokerID string) (*types.AccountInfo, error) {
	q := url.Values{}
	q.Set("address", address)
	q.Set("broker_id", brokerID)

	var info types.AccountInfo
	if err := c.doPublic(ctx, http.MethodGet, withQuery(EndpointGetAccount, q.Encode()), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// GetRegistrationNonce 获取注册用 nonce
func (c *Client) GetRegistrationNonce(ctx context.Context) (string, error) {
	var data types.RegistrationNonce
	if err := c.doPublic(ctx, http.MethodGet, EndpointRegistrationNonce, nil, &data); err != nil {
		return "", err
	}
	if data.RegistrationNonce == "" {
		return "", fmt.Errorf("响应缺少 registration_nonce")
	}
	return data.RegistrationNonce.String(), nil
}

// RegisterAccount 用钱包签名 Registration 消息注册账户
func (c *Client) RegisterAccount(ctx context.Context) (*types.RegisterAccountResult, error) {
	if c.wallet == nil {
		return nil, ErrNoWallet
	}
	nonce, err := c.GetRegistrationNonce(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取 registration nonce 失败: %w", err)
	}

	msg := types.RegistrationMessage{
		BrokerID:          c.brokerID,
		ChainID:           int64(c.chainID),
		Timestamp:         nowMillis(),
		RegistrationNonce: nonce,
	}
	td, err := signing.RegistrationTypedData(msg)
	if err != nil {
		return nil, err
	}
	sig, err := signing.SignTypedData(c.wallet, td)
	if err != nil {
		return nil, err
	}

	req := types.RegisterAccountRequest{
		Message:     msg,
		Signature:   sig,
		UserAddress: signing.WalletAddress(c.wallet),
	}
	var result types.RegisterAccountResult
	if err := c.doPublic(ctx, http.MethodPost, EndpointRegisterAccount, req, &result); err != nil {
		return nil, err
	}
	c.log.WithField("account_id", result.AccountID).Info("账户注册成功")
	return &result, nil
}
