package client

// API 端点常量
const (
	// Account
	EndpointGetAccount        = "/v1/get_account"
	EndpointRegistrationNonce = "/v1/registration_nonce"
	EndpointRegisterAccount   = "/v1/register_account"

	// Orderly key
	EndpointAddOrderlyKey    = "/v1/orderly_key"
	EndpointGetOrderlyKey    = "/v1/get_orderly_key"
	EndpointRemoveOrderlyKey = "/v1/client/remove_orderly_key"

	// Orders
	EndpointOrder  = "/v1/order"
	EndpointOrders = "/v1/orders"

	// Withdraw
	EndpointWithdrawNonce   = "/v1/withdraw_nonce"
	EndpointWithdrawRequest = "/v1/withdraw_request"
)

// withQuery 把查询串拼进 path，签名和发送使用同一个字符串
func withQuery(path, rawQuery string) string {
	if rawQuery == "" {
		return path
	}
	return path + "?" + rawQuery
}
