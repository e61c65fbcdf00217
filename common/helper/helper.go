package helper

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenRequestID returns timestamp(YYYYMMDDHHmmss) + 8 chars of a UUID, the same
// shape clients see in the X-Request-Id header.
func GenRequestID() string {
	return time.Now().Format("20060102150405") + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

func GetTimestamp() int64 {
	return time.Now().Unix()
}

func MessageWithRequestId(message string, id string) string {
	if id == "" {
		return message
	}
	return fmt.Sprintf("%s (request id: %s)", message, id)
}

// Truncate cuts s to at most n runes, appending an ellipsis when shortened.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}
