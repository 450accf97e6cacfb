package dto

import "time"

// ── 时钟模块 DTO ──

// ClockStatusResponse 校时状态
type ClockStatusResponse struct {
	Now           time.Time  `json:"now"`
	Source        string     `json:"source"` // network | local
	IsNetworkTime bool       `json:"is_network_time"`
	LastSyncTime  *time.Time `json:"last_sync_time"`
	Error         *string    `json:"error"`
	OffsetMs      int64      `json:"offset_ms"`
	Syncing       bool       `json:"syncing"`
	Week          int        `json:"week"`
	Weekday       int        `json:"weekday"`
}

// ClockSyncResponse 手动校时结果
type ClockSyncResponse struct {
	Success bool                `json:"success"`
	Status  ClockStatusResponse `json:"status"`
}
