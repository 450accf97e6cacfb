package clock

import (
	"encoding/json"
	"fmt"
	"time"
)

// Provider 外部时间接口：按顺序尝试，第一个成功者生效
type Provider struct {
	Name  string
	URL   string
	Parse func(body []byte, loc *time.Location) (time.Time, error)
}

// DefaultProviders 默认时间接口列表（按优先级排序）
func DefaultProviders() []Provider {
	return []Provider{
		{
			Name:  "worldtimeapi",
			URL:   "https://worldtimeapi.org/api/timezone/Asia/Taipei",
			Parse: ParseWorldTimeAPI,
		},
		{
			Name:  "timeapi.io",
			URL:   "https://timeapi.io/api/Time/current/zone?timeZone=Asia/Taipei",
			Parse: ParseTimeAPIIO,
		},
		{
			Name:  "worldclockapi",
			URL:   "https://worldclockapi.com/api/json/utc/now",
			Parse: ParseWorldClockAPI,
		},
	}
}

// ParseWorldTimeAPI 解析 {"datetime": "2025-10-04T10:30:00.123456+08:00"}
func ParseWorldTimeAPI(body []byte, _ *time.Location) (time.Time, error) {
	v, err := stringField(body, "datetime")
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, v)
}

// ParseTimeAPIIO 解析 {"dateTime": "2025-10-04T10:30:00.1234567"}，不带时区，按 loc 解释
func ParseTimeAPIIO(body []byte, loc *time.Location) (time.Time, error) {
	v, err := stringField(body, "dateTime")
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation("2006-01-02T15:04:05", v, loc)
}

// ParseWorldClockAPI 解析 {"currentDateTime": "2025-10-04T02:30Z"}（UTC 时刻）
func ParseWorldClockAPI(body []byte, _ *time.Location) (time.Time, error) {
	v, err := stringField(body, "currentDateTime")
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse("2006-01-02T15:04Z07:00", v)
}

func stringField(body []byte, field string) (string, error) {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("响应不是合法 JSON: %w", err)
	}
	v, ok := payload[field].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("响应缺少字段 %q", field)
	}
	return v, nil
}
