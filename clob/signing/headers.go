package signing

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/betbot/orderly/clob/types"
)

// ContentTypeFor 仅根据方法选择 Content-Type
func ContentTypeFor(method string) string {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodDelete:
		return types.ContentTypeForm
	default:
		return types.ContentTypeJSON
	}
}

// MethodHasBody 该方法是否携带请求体
func MethodHasBody(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut:
		return true
	}
	return false
}

// EncodeSignature 把签名编码为无填充的 base64url
func EncodeSignature(sig []byte) string {
	return base64.RawURLEncoding.EncodeToString(sig)
}

// DecodeSignature EncodeSignature 的逆操作
func DecodeSignature(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}

// SerializeBody 返回请求体的发送形式：字符串和字节切片原样返回，
// 其他类型做 JSON 序列化，nil 返回 ""
func SerializeBody(body any) (string, error) {
	switch b := body.(type) {
	case nil:
		return "", nil
	case string:
		return b, nil
	case *string:
		if b == nil {
			return "", nil
		}
		return *b, nil
	case []byte:
		return string(b), nil
	case json.RawMessage:
		return string(b), nil
	default:
		raw, err := json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("序列化请求体失败: %w", err)
		}
		return string(raw), nil
	}
}

// BuildSignedRequest 使用凭证的 ed25519 密钥为一次 HTTP 调用签名
// 时间戳取调用时刻的本地时间。GET/DELETE 不附带也不签名请求体，
// 查询参数必须已经拼进 path
func BuildSignedRequest(method, path string, body any, cred *types.Credential) (*types.SignedRequest, error) {
	return buildSignedRequest(time.Now().UnixMilli(), method, path, body, cred)
}

func buildSignedRequest(ts int64, method, path string, body any, cred *types.Credential) (*types.SignedRequest, error) {
	if cred == nil {
		return nil, fmt.Errorf("%w: 缺少凭证", ErrInvalidPrivateKey)
	}
	method = strings.ToUpper(method)

	var sent *string
	payload := ""
	if MethodHasBody(method) {
		s, err := SerializeBody(body)
		if err != nil {
			return nil, err
		}
		payload = s
		sent = &s
	}

	message := NormalizeMessage(ts, method, path, payload)
	sig, err := SignEd25519([]byte(message), cred.PrivateKey)
	if err != nil {
		return nil, err
	}

	return &types.SignedRequest{
		Method: method,
		Path:   path,
		Headers: types.SignedHeader{
			ContentType: ContentTypeFor(method),
			Timestamp:   strconv.FormatInt(ts, 10),
			AccountID:   cred.AccountID,
			OrderlyKey:  cred.PublicKey,
			Signature:   EncodeSignature(sig),
		},
		Body: sent,
	}, nil
}
