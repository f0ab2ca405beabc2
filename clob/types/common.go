package types

// Side 订单方向
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType 订单类型
type OrderType string

const (
	OrderTypeLimit    OrderType = "LIMIT"
	OrderTypeMarket   OrderType = "MARKET"
	OrderTypeIOC      OrderType = "IOC"
	OrderTypeFOK      OrderType = "FOK"
	OrderTypePostOnly OrderType = "POST_ONLY"
	OrderTypeAsk      OrderType = "ASK"
	OrderTypeBid      OrderType = "BID"
)

// RequiresPrice 该订单类型是否必须带 order_price
func (t OrderType) RequiresPrice() bool {
	switch t {
	case OrderTypeLimit, OrderTypeIOC, OrderTypeFOK, OrderTypePostOnly:
		return true
	}
	return false
}

// OrderStatus 订单状态
type OrderStatus string

const (
	OrderStatusNew           OrderStatus = "NEW"
	OrderStatusPartialFilled OrderStatus = "PARTIAL_FILLED"
	OrderStatusFilled        OrderStatus = "FILLED"
	OrderStatusCancelled     OrderStatus = "CANCELLED"
	OrderStatusRejected      OrderStatus = "REJECTED"
	OrderStatusIncomplete    OrderStatus = "INCOMPLETE"
	OrderStatusCompleted     OrderStatus = "COMPLETED"
	OrderStatusCancelSent    OrderStatus = "CANCEL_SENT"
	OrderStatusCancelAllSent OrderStatus = "CANCEL_ALL_SENT"
)

// Chain 钱包所在的 EVM 链
type Chain int64

const (
	ChainArbitrum        Chain = 42161
	ChainArbitrumSepolia Chain = 421614
	ChainOptimism        Chain = 10
	ChainOptimismSepolia Chain = 11155420
	ChainBase            Chain = 8453
)

// Network 交易所环境
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

// orderly key 权限范围
const (
	ScopeRead    = "read"
	ScopeTrading = "trading"
	ScopeAsset   = "asset"

	DefaultKeyScope = "read,trading"
)

// TokenUSDC 结算代币
const TokenUSDC = "USDC"

// USDCDecimals 充值/提现使用的代币精度
const USDCDecimals = 6
