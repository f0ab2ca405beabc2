package client

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/betbot/orderly/clob/signing"
	"github.com/betbot/orderly/clob/types"
)

// APIError 服务端拒绝：HTTP 非 2xx 或 success=false
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	Body       string // 原始响应体，便于排查
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("orderly api error: status=%d code=%d message=%s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("orderly api error: status=%d body=%s", e.StatusCode, e.Body)
}

// AsAPIError 判断 err 是否为服务端拒绝
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// 仅设置本次请求的默认 Header（不要再改 client 级 Header）
func (c *Client) newRequest(ctx context.Context) *resty.Request {
	r := c.http.R()
	if ctx != nil {
		r.SetContext(ctx)
	}
	r.SetHeader("Accept", "application/json")
	r.SetHeader("User-Agent", "betbot-orderly/1.0")
	return r
}

// doPublic 发送不需要 ed25519 签名的请求
func (c *Client) doPublic(ctx context.Context, method, path string, body any, out any) error {
	method = strings.ToUpper(method)
	if err := c.wait(ctx, method, path); err != nil {
		return err
	}
	r := c.newRequest(ctx)
	r.SetHeader(types.HeaderContentType, signing.ContentTypeFor(method))
	if signing.MethodHasBody(method) {
		payload, err := signing.SerializeBody(body)
		if err != nil {
			return err
		}
		r.SetBody(payload)
	}
	return c.execute(r, method, path, out)
}

// doSigned 发送带 orderly key 签名的请求
// path 必须已经包含查询串
func (c *Client) doSigned(ctx context.Context, method, path string, body any, out any) error {
	if c.creds == nil {
		return ErrNoCredential
	}
	// 先过限频再签名，时间戳要贴近实际发送时间
	if err := c.wait(ctx, method, path); err != nil {
		return err
	}
	signed, err := signing.BuildSignedRequest(method, path, body, c.creds)
	if err != nil {
		return err
	}
	r := c.newRequest(ctx)
	r.SetHeaders(signed.Headers.Map())
	if signed.HasBody() {
		r.SetBody(*signed.Body)
	}
	return c.execute(r, signed.Method, signed.Path, out)
}

// wait 按 "METHOD /path" 等待限频，不含查询串
func (c *Client) wait(ctx context.Context, method, path string) error {
	if c.limiter == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := strings.ToUpper(method) + " " + strings.SplitN(path, "?", 2)[0]
	return c.limiter.Wait(ctx, endpoint)
}

func (c *Client) execute(r *resty.Request, method, path string, out any) error {
	log := c.log.WithField("method", method).WithField("path", path)
	log.Debug("发送请求")

	resp, err := r.Execute(method, path)
	if err != nil {
		// 传输错误原样返回
		log.Warnf("请求失败: %v", err)
		return err
	}

	if err := decodeResponse(resp, out); err != nil {
		if apiErr, ok := AsAPIError(err); ok {
			log.Warnf("服务端拒绝: status=%d code=%d message=%s", apiErr.StatusCode, apiErr.Code, apiErr.Message)
		}
		return err
	}
	return nil
}

// decodeResponse 解析通用响应包装，并把 data 解到 out
func decodeResponse(resp *resty.Response, out any) error {
	raw := resp.Body()

	var env types.Envelope
	jsonErr := json.Unmarshal(raw, &env)

	if !resp.IsSuccess() {
		apiErr := &APIError{StatusCode: resp.StatusCode(), Body: string(raw)}
		if jsonErr == nil {
			apiErr.Code = env.Code
			apiErr.Message = env.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode())
		}
		return apiErr
	}
	if jsonErr != nil {
		return errors.Wrapf(jsonErr, "解析响应失败: %s", truncate(string(raw), 256))
	}
	if !env.Success {
		return &APIError{
			StatusCode: resp.StatusCode(),
			Code:       env.Code,
			Message:    env.Message,
			Body:       string(raw),
		}
	}
	if out == nil || !env.HasData() {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Wrap(err, "解析 data 失败")
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
