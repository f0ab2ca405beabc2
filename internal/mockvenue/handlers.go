package mockvenue

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
	"github.com/betbot/orderly/clob/ws"
)

const (
	defaultPageSize = 25
	maxPageSize     = 500
)

func (v *Venue) handleGetAccount(c *gin.Context) {
	address := c.Query("address")
	if !common.IsHexAddress(address) {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, "address 无效")
		return
	}
	if c.Query("broker_id") != v.cfg.BrokerID {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, "broker_id 不存在")
		return
	}
	v.mu.Lock()
	accountID, ok := v.byAddress[strings.ToLower(address)]
	var userID int64
	if ok {
		userID = v.accounts[accountID].userID
	}
	v.mu.Unlock()
	if !ok {
		v.fail(c, http.StatusBadRequest, CodeNotFound, "account not found")
		return
	}
	v.ok(c, types.AccountInfo{UserID: userID, AccountID: accountID})
}

func (v *Venue) handleRegistrationNonce(c *gin.Context) {
	v.mu.Lock()
	v.nextID++
	nonce := strconv.FormatInt(v.nowMillis(), 10) + strconv.FormatInt(v.nextID, 10)
	v.regNonces[nonce] = true
	v.mu.Unlock()
	v.ok(c, gin.H{"registration_nonce": nonce})
}

func (v *Venue) handleRegisterAccount(c *gin.Context) {
	var req types.RegisterAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, "请求体无效: "+err.Error())
		return
	}
	if req.Message.BrokerID != v.cfg.BrokerID {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, "broker_id 不存在")
		return
	}
	if !v.fresh(req.Message.Timestamp) {
		v.fail(c, http.StatusBadRequest, CodeInvalidSignature, "消息时间戳过期")
		return
	}
	td, err := signing.RegistrationTypedData(req.Message)
	if err != nil {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if !v.signedBy(td, req.Signature, req.UserAddress) {
		v.fail(c, http.StatusBadRequest, CodeInvalidSignature, "钱包签名校验失败")
		return
	}
	accountID, err := signing.AccountID(req.UserAddress, v.cfg.BrokerID)
	if err != nil {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.regNonces[req.Message.RegistrationNonce] {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, "registration nonce 无效或已使用")
		return
	}
	delete(v.regNonces, req.Message.RegistrationNonce)
	if _, exists := v.accounts[accountID]; exists {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, "账户已注册")
		return
	}
	v.registerLocked(accountID, req.UserAddress)
	v.log.WithField("account_id", accountID).Info("账户已注册")
	v.ok(c, types.RegisterAccountResult{AccountID: accountID})
}

func (v *Venue) handleAddOrderlyKey(c *gin.Context) {
	var req types.AddOrderlyKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, "请求体无效: "+err.Error())
		return
	}
	msg := req.Message
	if msg.BrokerID != v.cfg.BrokerID {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, "broker_id 不存在")
		return
	}
	if !v.fresh(msg.Timestamp) || msg.Expiration <= v.nowMillis() {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, "时间戳或过期时间无效")
		return
	}
	if _, err := signing.ParsePublicKey(msg.OrderlyKey); err != nil {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	if !v.signedBy(signing.AddOrderlyKeyTypedData(msg), req.Signature, req.UserAddress) {
		v.fail(c, http.StatusBadRequest, CodeInvalidSignature, "钱包签名校验失败")
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	accountID, ok := v.byAddress[strings.ToLower(req.UserAddress)]
	if !ok {
		v.fail(c, http.StatusBadRequest, CodeNotFound, "account not found")
		return
	}
	v.nextID++
	v.accounts[accountID].keys[msg.OrderlyKey] = &orderlyKey{info: types.OrderlyKeyInfo{
		OrderlyKey: msg.OrderlyKey,
		Scope:      msg.Scope,
		Expiration: msg.Expiration,
		KeyStatus:  "ACTIVE",
	}}
	v.ok(c, types.AddOrderlyKeyResult{ID: v.nextID, OrderlyKey: msg.OrderlyKey})
}

func (v *Venue) handleGetOrderlyKey(c *gin.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	acct, ok := v.accounts[c.Query("account_id")]
	if !ok {
		v.fail(c, http.StatusBadRequest, CodeNotFound, "account not found")
		return
	}
	key, ok := acct.keys[c.Query("orderly_key")]
	if !ok {
		v.fail(c, http.StatusBadRequest, CodeNotFound, "orderly key not found")
		return
	}
	info := key.info
	if key.removed {
		info.KeyStatus = "REMOVED"
	}
	v.ok(c, info)
}

func (v *Venue) handleRemoveOrderlyKey(c *gin.Context) {
	var req types.RemoveOrderlyKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderlyKey == "" {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, "缺少 orderly_key")
		return
	}
	acct := currentAccount(c)
	v.mu.Lock()
	defer v.mu.Unlock()
	key, ok := acct.keys[req.OrderlyKey]
	if !ok || key.removed {
		v.fail(c, http.StatusBadRequest, CodeNotFound, "orderly key not found")
		return
	}
	key.removed = true
	v.ok(c, gin.H{})
}

func (v *Venue) handleCreateOrder(c *gin.Context) {
	var wire types.OrderWire
	if err := c.ShouldBindJSON(&wire); err != nil {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, "请求体无效: "+err.Error())
		return
	}
	req, err := orderRequestFromWire(wire)
	if err == nil {
		err = req.Validate()
	}
	if err != nil {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}

	acct := currentAccount(c)
	v.mu.Lock()
	if req.ClientOrderID != "" {
		for _, o := range acct.orders {
			if o.ClientOrderID == req.ClientOrderID {
				v.mu.Unlock()
				v.fail(c, http.StatusBadRequest, CodeBadRequest, "client_order_id 重复")
				return
			}
		}
	}
	v.nextID++
	now := v.nowMillis()
	order := &types.Order{
		OrderID:       v.nextID,
		Symbol:        req.Symbol,
		Side:          req.Side,
		Type:          req.OrderType,
		Status:        types.OrderStatusNew,
		Price:         req.Price,
		Quantity:      req.Quantity,
		Amount:        req.Amount,
		ClientOrderID: req.ClientOrderID,
		ReduceOnly:    req.ReduceOnly,
		CreatedTime:   now,
		UpdatedTime:   now,
	}
	acct.orders = append(acct.orders, order)
	v.publishLocked(acct.id, order)
	v.mu.Unlock()

	v.ok(c, types.OrderResult{
		OrderID:       order.OrderID,
		ClientOrderID: order.ClientOrderID,
		OrderType:     order.Type,
		OrderPrice:    order.Price,
		OrderQuantity: order.Quantity,
		OrderAmount:   order.Amount,
	})
}

func (v *Venue) handleCancelOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Query("order_id"), 10, 64)
	symbol := c.Query("symbol")
	if err != nil || symbol == "" {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, "需要 order_id 和 symbol")
		return
	}
	acct := currentAccount(c)
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, o := range acct.orders {
		if o.OrderID != orderID || o.Symbol != symbol {
			continue
		}
		if o.Status != types.OrderStatusNew && o.Status != types.OrderStatusPartialFilled {
			v.fail(c, http.StatusBadRequest, CodeBadRequest, "订单已结束: "+string(o.Status))
			return
		}
		o.Status = types.OrderStatusCancelled
		o.UpdatedTime = v.nowMillis()
		v.publishLocked(acct.id, o)
		v.ok(c, types.CancelResult{Status: string(types.OrderStatusCancelSent)})
		return
	}
	v.fail(c, http.StatusBadRequest, CodeNotFound, "order not found")
}

func (v *Venue) handleListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}

	acct := currentAccount(c)
	v.mu.Lock()
	var rows []types.Order
	// 新订单在前
	for i := len(acct.orders) - 1; i >= 0; i-- {
		o := acct.orders[i]
		if !matchFilter(c, o) {
			continue
		}
		rows = append(rows, *o)
	}
	v.mu.Unlock()

	total := len(rows)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	v.ok(c, types.OrderPage{
		Meta: types.PageMeta{Total: total, RecordsPerPage: size, CurrentPage: page},
		Rows: append([]types.Order{}, rows[start:end]...),
	})
}

func (v *Venue) handleWithdrawNonce(c *gin.Context) {
	acct := currentAccount(c)
	v.mu.Lock()
	nonce := acct.withdrawNonce
	v.mu.Unlock()
	v.ok(c, gin.H{v.cfg.NonceField: nonce})
}

func (v *Venue) handleWithdrawRequest(c *gin.Context) {
	var req types.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, "请求体无效: "+err.Error())
		return
	}
	msg := req.Message
	if msg.BrokerID != v.cfg.BrokerID {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, "broker_id 不存在")
		return
	}
	if !strings.EqualFold(req.VerifyingContract, signing.OnChainVerifyingContract(v.cfg.Network)) {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, "verifyingContract 错误")
		return
	}
	amount, err := decimal.NewFromString(msg.Amount.String())
	if err != nil || !amount.IsPositive() {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, "amount 无效")
		return
	}
	td, err := signing.WithdrawTypedData(msg, req.VerifyingContract)
	if err != nil {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, err.Error())
		return
	}
	acct := currentAccount(c)
	if !strings.EqualFold(req.UserAddress, acct.address) || !v.signedBy(td, req.Signature, req.UserAddress) {
		v.fail(c, http.StatusBadRequest, CodeInvalidSignature, "钱包签名校验失败")
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if msg.WithdrawNonce != acct.withdrawNonce {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, "withdraw nonce 错误")
		return
	}
	acct.withdrawNonce++
	acct.withdrawals = append(acct.withdrawals, msg)
	v.nextID++
	v.ok(c, types.WithdrawResult{WithdrawID: v.nextID})
}

// signedBy 恢复 typed-data 签名者并与地址比较
func (v *Venue) signedBy(td apitypes.TypedData, signature, address string) bool {
	if !common.IsHexAddress(address) {
		return false
	}
	signer, err := signing.RecoverTypedDataSigner(td, signature)
	if err != nil {
		return false
	}
	return signer == common.HexToAddress(address)
}

func (v *Venue) fresh(tsMillis int64) bool {
	skew := time.Duration(v.nowMillis()-tsMillis) * time.Millisecond
	if skew < 0 {
		skew = -skew
	}
	return skew <= v.cfg.MaxClockSkew
}

func (v *Venue) publishLocked(accountID string, o *types.Order) {
	report := ws.ExecutionReport{
		Symbol:        o.Symbol,
		ClientOrderID: o.ClientOrderID,
		OrderID:       o.OrderID,
		Type:          string(o.Type),
		Side:          string(o.Side),
		Quantity:      o.Quantity,
		Price:         o.Price,
		Status:        string(o.Status),
		ReduceOnly:    o.ReduceOnly,
		Timestamp:     o.UpdatedTime,
	}
	for _, ch := range v.subs[accountID] {
		select {
		case ch <- report:
		default:
			v.log.Warn("回报通道已满，丢弃")
		}
	}
}

func matchFilter(c *gin.Context, o *types.Order) bool {
	if s := c.Query("symbol"); s != "" && s != o.Symbol {
		return false
	}
	if s := c.Query("side"); s != "" && s != string(o.Side) {
		return false
	}
	if s := c.Query("order_type"); s != "" && s != string(o.Type) {
		return false
	}
	if s := c.Query("status"); s != "" && s != string(o.Status) {
		return false
	}
	if s := c.Query("start_t"); s != "" {
		if t, err := strconv.ParseInt(s, 10, 64); err == nil && o.CreatedTime < t {
			return false
		}
	}
	if s := c.Query("end_t"); s != "" {
		if t, err := strconv.ParseInt(s, 10, 64); err == nil && o.CreatedTime > t {
			return false
		}
	}
	return true
}

func orderRequestFromWire(w types.OrderWire) (types.OrderRequest, error) {
	req := types.OrderRequest{
		Symbol:        w.Symbol,
		OrderType:     w.OrderType,
		Side:          w.Side,
		ClientOrderID: w.ClientOrderID,
		ReduceOnly:    w.ReduceOnly,
	}
	var err error
	if req.Price, err = parseNumber(w.OrderPrice); err != nil {
		return req, err
	}
	if req.Quantity, err = parseNumber(w.OrderQuantity); err != nil {
		return req, err
	}
	if req.Amount, err = parseNumber(w.OrderAmount); err != nil {
		return req, err
	}
	return req, nil
}

func parseNumber(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(n.String())
}
