package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/betbot/orderly/clob/client"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	valueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("1")) // 红色

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

// Row 结果中的一行
type Row struct {
	Key   string
	Value any
}

// R 构造一行
func R(key string, value any) Row {
	return Row{Key: key, Value: value}
}

// Render 渲染标题和键值行
func Render(title string, rows []Row) string {
	width := 0
	for _, r := range rows {
		if len(r.Key) > width {
			width = len(r.Key)
		}
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		key := keyStyle.Render(fmt.Sprintf("%-*s", width, r.Key))
		lines = append(lines, key+"  "+valueStyle.Render(fmt.Sprint(r.Value)))
	}
	body := strings.Join(lines, "\n")
	if len(rows) == 0 {
		body = keyStyle.Render("(空)")
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), boxStyle.Render(body))
}

// Print 输出结果；-json 时输出 v 的 JSON，否则输出渲染后的行
func (a *App) Print(title string, v any, rows ...Row) error {
	if a.Options.JSON {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.Out, string(b))
		return err
	}
	_, err := fmt.Fprintln(a.Out, Render(title, rows))
	return err
}

// FormatError 服务端拒绝时附带错误码和原始响应
func FormatError(err error) string {
	if apiErr, ok := client.AsAPIError(err); ok {
		lines := []string{
			errorStyle.Render("请求被拒绝"),
			fmt.Sprintf("status:  %d", apiErr.StatusCode),
			fmt.Sprintf("code:    %d", apiErr.Code),
			fmt.Sprintf("message: %s", apiErr.Message),
		}
		if apiErr.Body != "" {
			lines = append(lines, "body:    "+apiErr.Body)
		}
		return strings.Join(lines, "\n")
	}
	return errorStyle.Render("错误: ") + err.Error()
}
