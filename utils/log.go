package utils

import (
	"strings"
	"unicode"
)

// maxLogValueLength 写入日志的外部输入最大长度
const maxLogValueLength = 256

// SanitizeLogMessage 去除不可打印字符和换行，防止外部输入伪造日志行
func SanitizeLogMessage(msg string) string {
	var sb strings.Builder
	count := 0
	for _, r := range msg {
		if count >= maxLogValueLength {
			sb.WriteString("...")
			break
		}
		if r == '\n' || r == '\r' || r == '\t' {
			sb.WriteRune(' ')
		} else if unicode.IsPrint(r) {
			sb.WriteRune(r)
		} else {
			continue
		}
		count++
	}
	return sb.String()
}
