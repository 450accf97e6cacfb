package service

import (
	"testing"
	"time"
)

var taipei = time.FixedZone("Asia/Taipei", 8*3600)

// fixedClock 固定时间的测试时钟
type fixedClock struct {
	t time.Time
}

func (f *fixedClock) Now() time.Time { return f.t }

func newTestCalendar(now time.Time) (*Calendar, *fixedClock) {
	clk := &fixedClock{t: now}
	start := time.Date(2025, 9, 15, 0, 0, 0, 0, taipei)
	return NewCalendar(clk, start, taipei), clk
}

func TestCalendar_CurrentWeekAndWeekday(t *testing.T) {
	cal, _ := newTestCalendar(time.Date(2025, 10, 4, 10, 30, 0, 0, taipei))

	if w := cal.CurrentWeek(); w != 3 {
		t.Errorf("期望第 3 周，实际=%d", w)
	}
	if d := cal.CurrentWeekday(); d != 6 {
		t.Errorf("期望星期 6，实际=%d", d)
	}
	if !cal.IsToday(6) || cal.IsToday(5) {
		t.Error("IsToday 判断错误")
	}
	if got := cal.FormatDate(cal.Now()); got != "2025-10-04" {
		t.Errorf("期望 2025-10-04，实际=%s", got)
	}
}

func TestCalendar_WeekOf(t *testing.T) {
	cal, _ := newTestCalendar(time.Time{})

	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{"学期首日", time.Date(2025, 9, 15, 0, 0, 0, 0, taipei), 1},
		{"第一周周日深夜", time.Date(2025, 9, 21, 23, 59, 59, 0, taipei), 1},
		{"第二周周一零点", time.Date(2025, 9, 22, 0, 0, 0, 0, taipei), 2},
		{"学期开始前", time.Date(2025, 9, 1, 12, 0, 0, 0, taipei), 1},
		{"学期开始前一天", time.Date(2025, 9, 14, 12, 0, 0, 0, taipei), 1},
		{"UTC 时刻按本地日期计算", time.Date(2025, 9, 21, 16, 30, 0, 0, time.UTC), 2},
		{"第 20 周", time.Date(2026, 1, 26, 9, 0, 0, 0, taipei), 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cal.WeekOf(tt.at); got != tt.want {
				t.Errorf("期望第 %d 周，实际=%d", tt.want, got)
			}
		})
	}
}

func TestCalendar_WeekMonotonic(t *testing.T) {
	cal, clk := newTestCalendar(time.Date(2025, 8, 1, 0, 0, 0, 0, taipei))

	prev := cal.CurrentWeek()
	for i := 0; i < 24*200; i++ {
		clk.t = clk.t.Add(time.Hour)
		w := cal.CurrentWeek()
		if w < 1 {
			t.Fatalf("%s 周次小于 1: %d", clk.t, w)
		}
		if w < prev {
			t.Fatalf("%s 周次回退: %d → %d", clk.t, prev, w)
		}
		prev = w
	}
}

func TestCalendar_NonMondayStart(t *testing.T) {
	clk := &fixedClock{t: time.Date(2025, 9, 22, 8, 0, 0, 0, taipei)}
	// 周三开学，仍按所在周的周一对齐
	cal := NewCalendar(clk, time.Date(2025, 9, 17, 0, 0, 0, 0, taipei), taipei)

	if w := cal.CurrentWeek(); w != 2 {
		t.Errorf("期望第 2 周，实际=%d", w)
	}
}

func TestCalendar_WeekDateRange(t *testing.T) {
	cal, _ := newTestCalendar(time.Time{})

	start, end := cal.WeekDateRange(3)
	if got := cal.FormatDate(start); got != "2025-09-29" {
		t.Errorf("期望起始 2025-09-29，实际=%s", got)
	}
	if got := cal.FormatDate(end); got != "2025-10-05" {
		t.Errorf("期望结束 2025-10-05，实际=%s", got)
	}

	start, end = cal.WeekDateRange(1)
	if cal.FormatDate(start) != "2025-09-15" || cal.FormatDate(end) != "2025-09-21" {
		t.Errorf("第 1 周日期范围错误: %s ~ %s", start, end)
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, b, want int }{
		{14, 7, 2},
		{13, 7, 1},
		{0, 7, 0},
		{-1, 7, -1},
		{-7, 7, -1},
		{-8, 7, -2},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("floorDiv(%d,%d)=%d，期望=%d", tt.a, tt.b, got, tt.want)
		}
	}
}
