package model

import "time"

// KVEntry 键值表，对应 kv_entries（当前仅存放网络校时状态）
type KVEntry struct {
	Key       string    `gorm:"type:varchar(100);primaryKey"       json:"key"`
	Value     string    `gorm:"type:text;not null"                 json:"value"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (KVEntry) TableName() string { return "kv_entries" }
