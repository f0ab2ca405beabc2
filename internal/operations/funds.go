package operations

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/betbot/orderly/clob/client"
	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
)

// Deposit 把钱包里的 USDC 充值到账户
// 账户 ID 优先取当前凭证，否则由钱包地址和 broker 推导
func Deposit(ctx context.Context, e *Env, amount decimal.Decimal) (*client.DepositResult, error) {
	address, err := e.Client.WalletAddress()
	if err != nil {
		return nil, err
	}
	accountID, err := signing.AccountID(address, e.Config.BrokerID)
	if err != nil {
		return nil, err
	}
	if cred := e.Client.Credential(); cred != nil {
		accountID = cred.AccountID
	}

	meta := map[string]string{"amount": amount.String(), "token": types.TokenUSDC}
	return record(ctx, e, "deposit", accountID, meta, func() (*client.DepositResult, error) {
		vault, err := e.Vault(ctx)
		if err != nil {
			return nil, err
		}
		return vault.Deposit(ctx, client.DepositParams{
			AccountID: accountID,
			BrokerID:  e.Config.BrokerID,
			Token:     types.TokenUSDC,
			Amount:    amount,
		})
	})
}

// Withdraw 申请提现到 receiver，receiver 为空时提到钱包地址
func Withdraw(ctx context.Context, e *Env, params client.WithdrawParams) (*types.WithdrawResult, error) {
	cred, err := e.credential()
	if err != nil {
		return nil, err
	}
	meta := map[string]string{"amount": params.Amount.String(), "receiver": params.Receiver}
	return record(ctx, e, "withdraw", cred.AccountID, meta, func() (*types.WithdrawResult, error) {
		return e.Client.Withdraw(ctx, params)
	})
}
