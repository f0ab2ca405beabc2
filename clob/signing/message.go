package signing

import (
	"strconv"
	"strings"
)

// NormalizeMessage 构造鉴权请求的待签名消息：
// 时间戳 + 大写方法 + 路径（含查询串）+ 请求体，中间没有分隔符。
//
// path 必须已经带上实际发送顺序的查询串，body 必须是实际发送的请求体（没有时为 ""）。
func NormalizeMessage(timestampMillis int64, method, path, body string) string {
	var b strings.Builder
	ts := strconv.FormatInt(timestampMillis, 10)
	b.Grow(len(ts) + len(method) + len(path) + len(body))
	b.WriteString(ts)
	b.WriteString(strings.ToUpper(method))
	b.WriteString(path)
	b.WriteString(body)
	return b.String()
}
