package types

import "encoding/json"

// AccountInfo data payload of GET /v1/get_account
type AccountInfo struct {
	UserID    int64  `json:"user_id"`
	AccountID string `json:"account_id"`
}

// RegistrationMessage Registration 的 typed-data 消息
type RegistrationMessage struct {
	BrokerID          string `json:"brokerId"`
	ChainID           int64  `json:"chainId"`
	Timestamp         int64  `json:"timestamp"`
	RegistrationNonce string `json:"registrationNonce"`
}

// RegisterAccountRequest body of POST /v1/register_account
type RegisterAccountRequest struct {
	Message     RegistrationMessage `json:"message"`
	Signature   string              `json:"signature"`
	UserAddress string              `json:"userAddress"`
}

// RegisterAccountResult data payload of POST /v1/register_account
type RegisterAccountResult struct {
	AccountID string `json:"account_id"`
}

// AddOrderlyKeyMessage AddOrderlyKey 的 typed-data 消息
type AddOrderlyKeyMessage struct {
	BrokerID   string `json:"brokerId"`
	ChainID    int64  `json:"chainId"`
	OrderlyKey string `json:"orderlyKey"`
	Scope      string `json:"scope"`
	Timestamp  int64  `json:"timestamp"`
	Expiration int64  `json:"expiration"`
}

// AddOrderlyKeyRequest body of POST /v1/orderly_key
type AddOrderlyKeyRequest struct {
	Message     AddOrderlyKeyMessage `json:"message"`
	Signature   string               `json:"signature"`
	UserAddress string               `json:"userAddress"`
}

// AddOrderlyKeyResult data payload of POST /v1/orderly_key
type AddOrderlyKeyResult struct {
	ID         int64  `json:"id"`
	OrderlyKey string `json:"orderly_key"`
}

// OrderlyKeyInfo data payload of GET /v1/get_orderly_key
type OrderlyKeyInfo struct {
	OrderlyKey string `json:"orderly_key"`
	Scope      string `json:"scope"`
	Expiration int64  `json:"expiration"`
	KeyStatus  string `json:"key_status"`
}

// RemoveOrderlyKeyRequest body of POST /v1/client/remove_orderly_key
type RemoveOrderlyKeyRequest struct {
	OrderlyKey string `json:"orderly_key"`
}

// WithdrawMessage Withdraw 的 typed-data 消息
// Amount 为代币最小单位（USDC 为 6 位精度）
type WithdrawMessage struct {
	BrokerID      string      `json:"brokerId"`
	ChainID       int64       `json:"chainId"`
	Receiver      string      `json:"receiver"`
	Token         string      `json:"token"`
	Amount        json.Number `json:"amount"`
	WithdrawNonce uint64      `json:"withdrawNonce"`
	Timestamp     int64       `json:"timestamp"`
}

// WithdrawRequest body of POST /v1/withdraw_request
type WithdrawRequest struct {
	Message           WithdrawMessage `json:"message"`
	Signature         string          `json:"signature"`
	UserAddress       string          `json:"userAddress"`
	VerifyingContract string          `json:"verifyingContract"`
}

// WithdrawResult data payload of POST /v1/withdraw_request
type WithdrawResult struct {
	WithdrawID int64 `json:"withdraw_id"`
}
