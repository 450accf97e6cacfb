package clock

import (
	"testing"
	"time"
)

func TestEncodeDecodeState_RoundTrip(t *testing.T) {
	last := time.Date(2025, 10, 4, 10, 30, 15, 123000000, taipei)
	msg := "p0: HTTP 503"

	tests := []struct {
		name  string
		state State
	}{
		{"默认状态", State{}},
		{"网络时间", State{IsNetworkTime: true, LastSyncTime: &last, Offset: -1500 * time.Millisecond}},
		{"带错误", State{LastSyncTime: &last, Error: &msg, Offset: 42 * time.Millisecond}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := EncodeState(tt.state)
			if err != nil {
				t.Fatalf("EncodeState 应成功: %v", err)
			}
			got, err := DecodeState(raw)
			if err != nil {
				t.Fatalf("DecodeState 应成功: %v", err)
			}

			if got.IsNetworkTime != tt.state.IsNetworkTime {
				t.Errorf("IsNetworkTime 不一致")
			}
			if got.Offset != tt.state.Offset {
				t.Errorf("期望Offset=%s，实际=%s", tt.state.Offset, got.Offset)
			}
			if (got.LastSyncTime == nil) != (tt.state.LastSyncTime == nil) {
				t.Fatalf("LastSyncTime 是否为空不一致")
			}
			if got.LastSyncTime != nil && !got.LastSyncTime.Equal(*tt.state.LastSyncTime) {
				t.Errorf("期望LastSyncTime=%s，实际=%s", tt.state.LastSyncTime, got.LastSyncTime)
			}
			if (got.Error == nil) != (tt.state.Error == nil) {
				t.Fatalf("Error 是否为空不一致")
			}
			if got.Error != nil && *got.Error != *tt.state.Error {
				t.Errorf("期望Error=%s，实际=%s", *tt.state.Error, *got.Error)
			}
		})
	}
}

func TestDecodeState_BrowserLayout(t *testing.T) {
	raw := []byte(`{"isNetworkTime":true,"lastSyncTime":"2025-10-04T02:30:00.000Z","error":null,"offset":1234.5}`)

	st, err := DecodeState(raw)
	if err != nil {
		t.Fatalf("DecodeState 应成功: %v", err)
	}
	want := time.Date(2025, 10, 4, 2, 30, 0, 0, time.UTC)
	if st.LastSyncTime == nil || !st.LastSyncTime.Equal(want) {
		t.Errorf("期望LastSyncTime=%s", want)
	}
	if st.Offset != 1234500*time.Microsecond {
		t.Errorf("期望Offset=1234.5ms，实际=%s", st.Offset)
	}
}

func TestDecodeState_Invalid(t *testing.T) {
	inputs := []string{
		`not json`,
		`{"lastSyncTime": "yesterday"}`,
	}
	for _, in := range inputs {
		if _, err := DecodeState([]byte(in)); err == nil {
			t.Errorf("输入 %q 应解析失败", in)
		}
	}
}

func TestProviders_Parse(t *testing.T) {
	want := time.Date(2025, 10, 4, 2, 30, 0, 0, time.UTC)

	got, err := ParseWorldTimeAPI([]byte(`{"datetime":"2025-10-04T10:30:00.000000+08:00"}`), nil)
	if err != nil || !got.Equal(want) {
		t.Errorf("worldtimeapi 解析错误: %v, %s", err, got)
	}

	got, err = ParseTimeAPIIO([]byte(`{"dateTime":"2025-10-04T10:30:00.1234567"}`), taipei)
	if err != nil || !got.Truncate(time.Second).Equal(want) {
		t.Errorf("timeapi.io 解析错误: %v, %s", err, got)
	}

	got, err = ParseWorldClockAPI([]byte(`{"currentDateTime":"2025-10-04T02:30Z"}`), nil)
	if err != nil || !got.Equal(want) {
		t.Errorf("worldclockapi 解析错误: %v, %s", err, got)
	}

	if _, err := ParseWorldTimeAPI([]byte(`{"dateTime":"2025-10-04T10:30:00+08:00"}`), nil); err == nil {
		t.Error("缺少字段应返回错误")
	}
}
