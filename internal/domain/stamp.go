package domain

import "time"

// NextUpdatedAt 返回 now（UTC），不晚于 prev 时取 prev+1ms，保证 updatedAt 严格递增
func NextUpdatedAt(now, prev time.Time) time.Time {
	at := now.UTC()
	if !at.After(prev) {
		at = prev.Add(time.Millisecond)
	}
	return at
}
