package model

import (
	"github.com/prismstudio/director-core/common/config"
	"github.com/prismstudio/director-core/common/helper"
	"github.com/prismstudio/director-core/common/logger"
)

// RequestLog is one audit row per director request. No credentials, no request
// bodies: just enough to answer "what ran, for how long, and did it work".
type RequestLog struct {
	Id           int    `json:"id"`
	RequestId    string `json:"request_id" gorm:"index"`
	CreatedAt    int64  `json:"created_at" gorm:"bigint;index"`
	Mode         string `json:"mode" gorm:"index;default:''"`
	Provider     string `json:"provider" gorm:"index;default:''"`
	Stage        string `json:"stage" gorm:"default:''"`
	StatusCode   int    `json:"status_code" gorm:"default:0"`
	Success      bool   `json:"success"`
	Degraded     bool   `json:"degraded"`
	DurationMs   int64  `json:"duration_ms" gorm:"default:0"`
	PromptTokens int    `json:"prompt_tokens" gorm:"default:0"`
}

// RecordRequestLog persists one audit row. Best-effort: a missing database or
// a write failure never affects the request outcome.
func RecordRequestLog(entry *RequestLog) {
	if !config.RequestLogEnabled || DB == nil {
		return
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = helper.GetTimestamp()
	}
	if err := DB.Create(entry).Error; err != nil {
		logger.SysError("failed to record request log: " + err.Error())
	}
}

// SearchRequestLogs returns the most recent rows, optionally filtered by mode.
func SearchRequestLogs(mode string, limit int) ([]*RequestLog, error) {
	if DB == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var logs []*RequestLog
	tx := DB.Order("created_at desc").Limit(limit)
	if mode != "" {
		tx = tx.Where("mode = ?", mode)
	}
	err := tx.Find(&logs).Error
	return logs, err
}
