package tokenizer

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/prismstudio/director-core/common/logger"
)

var encoder *tiktoken.Tiktoken
var initOnce sync.Once

// InitTokenEncoder warms the cl100k_base encoding used for the audit-log token
// estimate. Failure is tolerated: counting falls back to a chars/4 estimate.
func InitTokenEncoder() {
	initOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			logger.SysError("failed to init token encoder: " + err.Error())
			return
		}
		encoder = enc
		logger.SysLog("token encoder initialized")
	})
}

// CountTokens estimates the token count of text for logging purposes only.
func CountTokens(text string) int {
	if encoder == nil {
		return len(text) / 4
	}
	return len(encoder.Encode(text, nil, nil))
}
