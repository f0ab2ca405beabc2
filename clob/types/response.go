package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Envelope 所有接口通用的响应包装
type Envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Code      int             `json:"code,omitempty"`
	Message   string          `json:"message,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// HasData data 是否存在且不为 null
func (e *Envelope) HasData() bool {
	d := bytes.TrimSpace(e.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// 提现 nonce 字段名。标准字段为 withdraw_nonce，其余为旧版本 API 的字段，仅作为废弃别名兼容
const (
	WithdrawNonceField          = "withdraw_nonce"
	withdrawNonceAliasNonce     = "nonce"
	withdrawNonceAliasCamelCase = "withdrawNonce"
)

// WithdrawNonce 提现 nonce 接口的 data
type WithdrawNonce struct {
	Nonce uint64
	// Source 实际读取的字段名
	Source string
}

// Deprecated 是否从废弃别名读取
func (n WithdrawNonce) Deprecated() bool {
	return n.Source != WithdrawNonceField
}

func (n *WithdrawNonce) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("解析提现 nonce 失败: %w", err)
	}
	for _, field := range []string{WithdrawNonceField, withdrawNonceAliasNonce, withdrawNonceAliasCamelCase} {
		v, ok := raw[field]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			continue
		}
		nonce, err := parseUintValue(v)
		if err != nil {
			return fmt.Errorf("提现 nonce 字段 %q 无效: %w", field, err)
		}
		n.Nonce = nonce
		n.Source = field
		return nil
	}
	return fmt.Errorf("提现 nonce 缺少字段 %q", WithdrawNonceField)
}

// parseUintValue 接受 JSON 数字或数字字符串
func parseUintValue(v json.RawMessage) (uint64, error) {
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		var num json.Number
		dec := json.NewDecoder(bytes.NewReader(v))
		dec.UseNumber()
		if err := dec.Decode(&num); err != nil {
			return 0, err
		}
		s = num.String()
	}
	return strconv.ParseUint(s, 10, 64)
}

// RegistrationNonce data payload of GET /v1/registration_nonce
type RegistrationNonce struct {
	RegistrationNonce json.Number `json:"registration_nonce"`
}
