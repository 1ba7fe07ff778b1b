// Package service 业务层：调用方身份已由路由层的 gate 解析，这里只做归属过滤和业务规则
package service

import (
	"strings"
	"time"

	"gin-todo-rpc/internal/domain"
)

const (
	defaultLimit = 50
	maxLimit     = 100

	userStatsKey = "user:stats"
)

// Clock 测试里替换成可控时钟
type Clock func() time.Time

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}

func stamp(now Clock, prev time.Time) time.Time { return domain.NextUpdatedAt(now(), prev) }
