package mockvenue

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
)

const ctxAccount = "mockvenue.account"
const ctxKey = "mockvenue.key"

// requireSignature 校验 orderly-* Header，通过后把账户放进 gin context
func (v *Venue) requireSignature(c *gin.Context) {
	method := c.Request.Method
	accountID := c.GetHeader(types.HeaderAccountID)
	publicKey := c.GetHeader(types.HeaderOrderlyKey)
	tsRaw := c.GetHeader(types.HeaderTimestamp)
	sigRaw := c.GetHeader(types.HeaderSignature)
	if accountID == "" || publicKey == "" || tsRaw == "" || sigRaw == "" {
		v.fail(c, http.StatusUnauthorized, CodeUnauthorized, "缺少鉴权 Header")
		return
	}
	if ct := c.GetHeader(types.HeaderContentType); ct != signing.ContentTypeFor(method) {
		v.fail(c, http.StatusBadRequest, CodeBadRequest, "Content-Type 错误: "+ct)
		return
	}

	ts, err := strconv.ParseInt(tsRaw, 10, 64)
	if err != nil {
		v.fail(c, http.StatusUnauthorized, CodeInvalidSignature, "时间戳无效")
		return
	}
	skew := time.Duration(v.nowMillis()-ts) * time.Millisecond
	if skew < 0 {
		skew = -skew
	}
	if skew > v.cfg.MaxClockSkew {
		v.fail(c, http.StatusUnauthorized, CodeInvalidSignature, "时间戳过期")
		return
	}

	body := ""
	if signing.MethodHasBody(method) {
		raw, err := io.ReadAll(c.Request.Body)
		if err != nil {
			v.fail(c, http.StatusBadRequest, CodeBadRequest, "读取请求体失败")
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		body = string(raw)
	}

	pub, err := signing.ParsePublicKey(publicKey)
	if err != nil {
		v.fail(c, http.StatusUnauthorized, CodeUnauthorized, "orderly key 格式错误")
		return
	}
	sig, err := signing.DecodeSignature(sigRaw)
	if err != nil {
		v.fail(c, http.StatusUnauthorized, CodeInvalidSignature, "签名编码错误")
		return
	}
	msg := signing.NormalizeMessage(ts, method, c.Request.URL.RequestURI(), body)
	if !signing.VerifyEd25519([]byte(msg), sig, pub) {
		v.fail(c, http.StatusUnauthorized, CodeInvalidSignature, "签名校验失败")
		return
	}

	v.mu.Lock()
	acct, ok := v.accounts[accountID]
	var key *orderlyKey
	if ok {
		key = acct.keys[publicKey]
	}
	v.mu.Unlock()
	if !ok {
		v.fail(c, http.StatusUnauthorized, CodeUnauthorized, "账户不存在")
		return
	}
	if key == nil || key.removed {
		v.fail(c, http.StatusUnauthorized, CodeUnauthorized, "orderly key 未登记")
		return
	}
	if key.info.Expiration > 0 && key.info.Expiration < v.nowMillis() {
		v.fail(c, http.StatusUnauthorized, CodeUnauthorized, "orderly key 已过期")
		return
	}

	c.Set(ctxAccount, acct)
	c.Set(ctxKey, key)
	c.Next()
}

// requireScope 要求当前 key 拥有指定权限
func (v *Venue) requireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.MustGet(ctxKey).(*orderlyKey)
		for _, s := range strings.Split(key.info.Scope, ",") {
			if strings.TrimSpace(s) == scope {
				c.Next()
				return
			}
		}
		v.fail(c, http.StatusForbidden, CodeUnauthorized, "orderly key 缺少权限 "+scope)
	}
}

func currentAccount(c *gin.Context) *account {
	return c.MustGet(ctxAccount).(*account)
}
