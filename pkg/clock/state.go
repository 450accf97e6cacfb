package clock

import (
	"encoding/json"
	"fmt"
	"time"
)

// State 网络校时状态
// Offset 为上次成功校时时「网络时间 - 本地时间」，精度为毫秒
type State struct {
	IsNetworkTime bool
	LastSyncTime  *time.Time
	Error         *string
	Offset        time.Duration
}

// clone 深拷贝，调用方修改返回值不影响内部状态
func (s State) clone() State {
	c := s
	if s.LastSyncTime != nil {
		t := *s.LastSyncTime
		c.LastSyncTime = &t
	}
	if s.Error != nil {
		e := *s.Error
		c.Error = &e
	}
	return c
}

// stateRecord 持久化布局：{isNetworkTime, lastSyncTime, error, offset(ms)}
type stateRecord struct {
	IsNetworkTime bool    `json:"isNetworkTime"`
	LastSyncTime  *string `json:"lastSyncTime"`
	Error         *string `json:"error"`
	Offset        float64 `json:"offset"`
}

// EncodeState 将状态编码为持久化 JSON
func EncodeState(s State) ([]byte, error) {
	rec := stateRecord{
		IsNetworkTime: s.IsNetworkTime,
		Error:         s.Error,
		Offset:        float64(s.Offset) / float64(time.Millisecond),
	}
	if s.LastSyncTime != nil {
		ts := s.LastSyncTime.Format(time.RFC3339Nano)
		rec.LastSyncTime = &ts
	}
	return json.Marshal(rec)
}

// DecodeState 解析持久化 JSON；内容损坏时返回错误，由调用方回退为默认状态
func DecodeState(raw []byte) (State, error) {
	var rec stateRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return State{}, fmt.Errorf("解析校时状态失败: %w", err)
	}

	s := State{
		IsNetworkTime: rec.IsNetworkTime,
		Error:         rec.Error,
		Offset:        time.Duration(rec.Offset * float64(time.Millisecond)),
	}
	if rec.LastSyncTime != nil {
		t, err := time.Parse(time.RFC3339Nano, *rec.LastSyncTime)
		if err != nil {
			return State{}, fmt.Errorf("解析 lastSyncTime 失败: %w", err)
		}
		s.LastSyncTime = &t
	}
	return s, nil
}
