package operations

import (
	"context"
	"fmt"
	"time"

	"github.com/betbot/orderly/clob/client"
	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
)

// AddKeyParams 新 key 参数
type AddKeyParams struct {
	Scope string        // 默认 read,trading
	TTL   time.Duration // 默认 365 天
}

// AddKeyResult 新 key 信息，不包含私钥
type AddKeyResult struct {
	AccountID  string `json:"account_id"`
	OrderlyKey string `json:"orderly_key"`
	Scope      string `json:"scope"`
	Expiration int64  `json:"expiration"`
	Persisted  bool   `json:"persisted"`
}

// AddKey 生成 ed25519 密钥，用钱包签名登记到服务端，并写入凭证存储
// 之后本进程的签名请求使用新 key
func AddKey(ctx context.Context, e *Env, params AddKeyParams) (*AddKeyResult, error) {
	if params.Scope == "" {
		params.Scope = types.DefaultKeyScope
	}
	if params.TTL <= 0 {
		params.TTL = client.DefaultKeyTTL
	}
	return record(ctx, e, "add-key", "", map[string]string{"scope": params.Scope}, func() (*AddKeyResult, error) {
		accountID, err := registeredAccountID(ctx, e)
		if err != nil {
			return nil, err
		}
		kp, err := signing.GenerateKeyPair(nil)
		if err != nil {
			return nil, err
		}
		if _, err := e.Client.AddOrderlyKey(ctx, kp.PublicKey, params.Scope, params.TTL); err != nil {
			return nil, err
		}
		log := e.Log.WithField("account_id", accountID).WithField("orderly_key", kp.PublicKey)
		log.Info("orderly key 已登记")

		cred := &types.Credential{AccountID: accountID, PublicKey: kp.PublicKey, PrivateKey: kp.PrivateKey}
		e.Client.SetCredential(cred)

		result := &AddKeyResult{AccountID: accountID, OrderlyKey: kp.PublicKey, Scope: params.Scope}
		if info, err := e.Client.GetOrderlyKey(ctx, accountID, kp.PublicKey); err == nil {
			result.Expiration = info.Expiration
		} else {
			log.Warnf("查询新 key 失败: %v", err)
		}

		if e.Store == nil {
			log.Warn("未配置凭证存储，新 key 未保存")
			return result, nil
		}
		if err := e.Store.Save(cred); err != nil {
			// key 已经登记，保存失败时仍返回结果供人工处理
			return result, fmt.Errorf("保存凭证失败: %w", err)
		}
		result.Persisted = true
		return result, nil
	})
}

// KeyInfo 查询 orderly key 状态，key 为空时查询当前凭证的 key
func KeyInfo(ctx context.Context, e *Env, key string) (*types.OrderlyKeyInfo, error) {
	cred, err := e.credential()
	if err != nil {
		return nil, err
	}
	if key == "" {
		key = cred.PublicKey
	}
	return record(ctx, e, "key-info", cred.AccountID, map[string]string{"orderly_key": key}, func() (*types.OrderlyKeyInfo, error) {
		return e.Client.GetOrderlyKey(ctx, cred.AccountID, key)
	})
}

// RemoveKey 删除 orderly key，key 为空时删除当前凭证的 key
func RemoveKey(ctx context.Context, e *Env, key string) (string, error) {
	cred, err := e.credential()
	if err != nil {
		return "", err
	}
	if key == "" {
		key = cred.PublicKey
	}
	return record(ctx, e, "remove-key", cred.AccountID, map[string]string{"orderly_key": key}, func() (string, error) {
		if err := e.Client.RemoveOrderlyKey(ctx, key); err != nil {
			return "", err
		}
		e.Log.WithField("orderly_key", key).Info("orderly key 已删除")
		return key, nil
	})
}
