package types

import "net/http"

// ed25519 请求鉴权所需的 Header 名称
const (
	HeaderTimestamp   = "orderly-timestamp"
	HeaderAccountID   = "orderly-account-id"
	HeaderOrderlyKey  = "orderly-key"
	HeaderSignature   = "orderly-signature"
	HeaderContentType = "Content-Type"
)

// 按请求方法选择的 Content-Type
const (
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"
)

// Credential 用于签名请求的 orderly 账户身份
// 本地不校验私钥与公钥是否匹配，不匹配时由服务端拒绝
type Credential struct {
	AccountID  string
	PublicKey  string // 带前缀，例如 "ed25519:<base58>"
	PrivateKey []byte // 32 字节 ed25519 种子
}

// SignedHeader 鉴权请求附带的 Header 集合
type SignedHeader struct {
	ContentType string `json:"Content-Type"`
	Timestamp   string `json:"orderly-timestamp"`
	AccountID   string `json:"orderly-account-id"`
	OrderlyKey  string `json:"orderly-key"`
	Signature   string `json:"orderly-signature"`
}

// Map 以 Header 名称为键返回
func (h SignedHeader) Map() map[string]string {
	return map[string]string{
		HeaderContentType: h.ContentType,
		HeaderTimestamp:   h.Timestamp,
		HeaderAccountID:   h.AccountID,
		HeaderOrderlyKey:  h.OrderlyKey,
		HeaderSignature:   h.Signature,
	}
}

// Apply 写入到 http.Header
func (h SignedHeader) Apply(dst http.Header) {
	for k, v := range h.Map() {
		dst.Set(k, v)
	}
}

// SignedRequest 已签名、可直接发送的请求描述
// 方法不带请求体时 Body 为 nil
type SignedRequest struct {
	Method  string
	Path    string
	Headers SignedHeader
	Body    *string
}

// HasBody 是否附带请求体
func (r *SignedRequest) HasBody() bool {
	return r != nil && r.Body != nil
}
