package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock 将 "H:MM" / "HH:MM" 解析为当日分钟数
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[1]) != 2 || len(parts[0]) == 0 || len(parts[0]) > 2 {
		return 0, fmt.Errorf("时间格式无效 %q，应为 H:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("小时无效 %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("分钟无效 %q", s)
	}
	return h*60 + m, nil
}

// Minutes 返回时间段起止的当日分钟数
func (t TimeSlot) Minutes() (start, end int, err error) {
	if start, err = ParseClock(t.StartTime); err != nil {
		return 0, 0, err
	}
	if end, err = ParseClock(t.EndTime); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
