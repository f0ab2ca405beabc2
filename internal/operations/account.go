package operations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/betbot/orderly/clob/client"
	"github.com/betbot/orderly/clob/signing"
)

var (
	// ErrNotRegistered 钱包在 broker 下还没有账户
	ErrNotRegistered = errors.New("账户未注册")
	// ErrAccountIDMismatch 服务端返回的 account id 与本地推导不一致
	ErrAccountIDMismatch = errors.New("服务端 account id 与本地推导不一致")
)

// AccountStatus 账户查询结果
type AccountStatus struct {
	Address    string `json:"address"`
	BrokerID   string `json:"broker_id"`
	Registered bool   `json:"registered"`
	AccountID  string `json:"account_id"`
	UserID     int64  `json:"user_id,omitempty"`
}

// CheckAccount 查询地址是否已在 broker 下注册，address 为空时使用钱包地址
// 服务端拒绝视为未注册，传输错误直接返回
func CheckAccount(ctx context.Context, e *Env, address string) (*AccountStatus, error) {
	if address == "" {
		addr, err := e.Client.WalletAddress()
		if err != nil {
			return nil, err
		}
		address = addr
	}
	return record(ctx, e, "check-account", "", map[string]string{"address": address}, func() (*AccountStatus, error) {
		return checkAccount(ctx, e, address)
	})
}

func checkAccount(ctx context.Context, e *Env, address string) (*AccountStatus, error) {
	brokerID := e.Config.BrokerID
	expected, err := signing.AccountID(address, brokerID)
	if err != nil {
		return nil, err
	}
	status := &AccountStatus{Address: address, BrokerID: brokerID, AccountID: expected}

	info, err := e.Client.GetAccount(ctx, address, brokerID)
	if err != nil {
		if apiErr, ok := client.AsAPIError(err); ok {
			e.Log.WithField("address", address).Debugf("账户不存在: %s", apiErr.Message)
			return status, nil
		}
		return nil, err
	}
	if !strings.EqualFold(info.AccountID, expected) {
		return nil, fmt.Errorf("%w: 服务端 %s，本地 %s", ErrAccountIDMismatch, info.AccountID, expected)
	}
	status.Registered = true
	status.UserID = info.UserID
	return status, nil
}

// RegisterAccount 用钱包注册账户，已注册时直接返回现有账户
func RegisterAccount(ctx context.Context, e *Env) (*AccountStatus, error) {
	address, err := e.Client.WalletAddress()
	if err != nil {
		return nil, err
	}
	return record(ctx, e, "register-account", "", map[string]string{"address": address}, func() (*AccountStatus, error) {
		status, err := checkAccount(ctx, e, address)
		if err != nil {
			return nil, err
		}
		if status.Registered {
			e.Log.WithField("account_id", status.AccountID).Info("账户已注册，跳过")
			return status, nil
		}

		res, err := e.Client.RegisterAccount(ctx)
		if err != nil {
			return nil, err
		}
		if !strings.EqualFold(res.AccountID, status.AccountID) {
			return nil, fmt.Errorf("%w: 服务端 %s，本地 %s", ErrAccountIDMismatch, res.AccountID, status.AccountID)
		}
		status.Registered = true
		return status, nil
	})
}

// registeredAccountID 返回钱包对应的已注册 account id
func registeredAccountID(ctx context.Context, e *Env) (string, error) {
	address, err := e.Client.WalletAddress()
	if err != nil {
		return "", err
	}
	status, err := checkAccount(ctx, e, address)
	if err != nil {
		return "", err
	}
	if !status.Registered {
		return "", fmt.Errorf("%w: %s", ErrNotRegistered, address)
	}
	return status.AccountID, nil
}
