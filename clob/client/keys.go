package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
)

// DefaultKeyTTL 新 orderly key 的默认有效期
const DefaultKeyTTL = 365 * 24 * time.Hour

// AddOrderlyKey 用钱包签名 AddOrderlyKey 消息，向服务端登记一个 ed25519 公钥
func (c *Client) AddOrderlyKey(ctx context.Context, publicKey, scope string, ttl time.Duration) (*types.AddOrderlyKeyResult, error) {
	if c.wallet == nil {
		return nil, ErrNoWallet
	}
	if scope == "" {
		scope = types.DefaultKeyScope
	}
	if ttl <= 0 {
		ttl = DefaultKeyTTL
	}

	now := nowMillis()
	msg := types.AddOrderlyKeyMessage{
		BrokerID:   c.brokerID,
		ChainID:    int64(c.chainID),
		OrderlyKey: publicKey,
		Scope:      scope,
		Timestamp:  now,
		Expiration: now + ttl.Milliseconds(),
	}
	sig, err := signing.SignTypedData(c.wallet, signing.AddOrderlyKeyTypedData(msg))
	if err != nil {
		return nil, err
	}

	req := types.AddOrderlyKeyRequest{
		Message:     msg,
		Signature:   sig,
		UserAddress: signing.WalletAddress(c.wallet),
	}
	var result types.AddOrderlyKeyResult
	if err := c.doPublic(ctx, http.MethodPost, EndpointAddOrderlyKey, req, &result); err != nil {
		return nil, err
	}
	if result.OrderlyKey == "" {
		result.OrderlyKey = publicKey
	}
	return &result, nil
}

// GetOrderlyKey 查询 orderly key 的状态
func (c *Client) GetOrderlyKey(ctx context.Context, accountID, orderlyKey string) (*types.OrderlyKeyInfo, error) {
	q := url.Values{}
	q.Set("account_id", accountID)
	q.Set("orderly_key", orderlyKey)

	var info types.OrderlyKeyInfo
	if err := c.doPublic(ctx, http.MethodGet, withQuery(EndpointGetOrderlyKey, q.Encode()), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// RemoveOrderlyKey 删除 orderly key，请求由当前凭证签名
func (c *Client) RemoveOrderlyKey(ctx context.Context, orderlyKey string) error {
	return c.doSigned(ctx, http.MethodPost, EndpointRemoveOrderlyKey, types.RemoveOrderlyKeyRequest{OrderlyKey: orderlyKey}, nil)
}
