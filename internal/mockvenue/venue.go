// Package mockvenue 本地模拟交易所，按真实规则校验 ed25519 请求签名和钱包 typed-data 签名
package mockvenue

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
	"github.com/betbot/orderly/clob/ws"
)

// 错误码
const (
	CodeUnknown          = -1000
	CodeInvalidSignature = -1001
	CodeUnauthorized     = -1002
	CodeBadRequest       = -1003
	CodeNotFound         = -1004
)

// Config 模拟交易所配置
type Config struct {
	BrokerID string
	Network  types.Network // 决定提现 verifyingContract
	// MaxClockSkew 请求时间戳允许的最大偏差，默认 5 分钟
	MaxClockSkew time.Duration
	// NonceField 提现 nonce 接口返回的字段名，默认 withdraw_nonce
	NonceField string
	Logger     *logrus.Entry
}

type orderlyKey struct {
	info    types.OrderlyKeyInfo
	removed bool
}

type account struct {
	id            string
	userID        int64
	address       string // 小写
	keys          map[string]*orderlyKey
	orders        []*types.Order
	withdrawNonce uint64
	withdrawals   []types.WithdrawMessage
}

// Venue 模拟交易所，所有状态保存在内存中
type Venue struct {
	cfg Config
	log *logrus.Entry

	mu        sync.Mutex
	nextID    int64
	accounts  map[string]*account // account id -> account
	byAddress map[string]string   // 小写地址 -> account id
	regNonces map[string]bool     // 已发放未使用的注册 nonce
	subs      map[string][]chan ws.ExecutionReport
	conns     map[*websocket.Conn]struct{}
	nowFn     func() time.Time
}

// New 创建模拟交易所
func New(cfg Config) *Venue {
	if cfg.Network == "" {
		cfg.Network = types.NetworkTestnet
	}
	if cfg.MaxClockSkew <= 0 {
		cfg.MaxClockSkew = 5 * time.Minute
	}
	if cfg.NonceField == "" {
		cfg.NonceField = types.WithdrawNonceField
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.WithField("component", "mock-venue")
	}
	return &Venue{
		cfg:       cfg,
		log:       log,
		nextID:    1000,
		accounts:  map[string]*account{},
		byAddress: map[string]string{},
		regNonces: map[string]bool{},
		subs:      map[string][]chan ws.ExecutionReport{},
		conns:     map[*websocket.Conn]struct{}{},
		nowFn:     time.Now,
	}
}

// Router 返回 HTTP 路由
func (v *Venue) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	v1 := r.Group("/v1")
	v1.GET("/get_account", v.handleGetAccount)
	v1.GET("/registration_nonce", v.handleRegistrationNonce)
	v1.POST("/register_account", v.handleRegisterAccount)
	v1.POST("/orderly_key", v.handleAddOrderlyKey)
	v1.GET("/get_orderly_key", v.handleGetOrderlyKey)

	signed := v1.Group("", v.requireSignature)
	signed.POST("/client/remove_orderly_key", v.handleRemoveOrderlyKey)
	signed.POST("/order", v.requireScope(types.ScopeTrading), v.handleCreateOrder)
	signed.DELETE("/order", v.requireScope(types.ScopeTrading), v.handleCancelOrder)
	signed.GET("/orders", v.requireScope(types.ScopeRead), v.handleListOrders)
	signed.GET("/withdraw_nonce", v.handleWithdrawNonce)
	signed.POST("/withdraw_request", v.handleWithdrawRequest)

	r.GET("/v2/ws/private/stream/:accountID", v.handleStream)
	return r
}

// RegisterAccount 直接登记账户，便于测试预置状态
func (v *Venue) RegisterAccount(address string) (string, error) {
	accountID, err := signing.AccountID(address, v.cfg.BrokerID)
	if err != nil {
		return "", err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.registerLocked(accountID, address)
	return accountID, nil
}

// AddKey 直接登记 orderly key
func (v *Venue) AddKey(accountID, publicKey, scope string, expiration int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	acct, ok := v.accounts[accountID]
	if !ok {
		return false
	}
	acct.keys[publicKey] = &orderlyKey{info: types.OrderlyKeyInfo{
		OrderlyKey: publicKey,
		Scope:      scope,
		Expiration: expiration,
		KeyStatus:  "ACTIVE",
	}}
	return true
}

// Withdrawals 返回账户已受理的提现
func (v *Venue) Withdrawals(accountID string) []types.WithdrawMessage {
	v.mu.Lock()
	defer v.mu.Unlock()
	acct, ok := v.accounts[accountID]
	if !ok {
		return nil
	}
	return append([]types.WithdrawMessage(nil), acct.withdrawals...)
}

// StreamCount 账户当前订阅执行回报的连接数
func (v *Venue) StreamCount(accountID string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs[accountID])
}

func (v *Venue) registerLocked(accountID, address string) *account {
	if acct, ok := v.accounts[accountID]; ok {
		return acct
	}
	v.nextID++
	acct := &account{
		id:      accountID,
		userID:  v.nextID,
		address: strings.ToLower(address),
		keys:    map[string]*orderlyKey{},
	}
	v.accounts[accountID] = acct
	v.byAddress[acct.address] = accountID
	return acct
}

func (v *Venue) nowMillis() int64 {
	return v.nowFn().UnixMilli()
}

func (v *Venue) ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data, "timestamp": v.nowMillis()})
}

func (v *Venue) fail(c *gin.Context, status, code int, message string) {
	v.log.WithField("path", c.Request.URL.Path).Debugf("拒绝请求: %s", message)
	c.AbortWithStatusJSON(status, gin.H{"success": false, "code": code, "message": message, "timestamp": v.nowMillis()})
}
