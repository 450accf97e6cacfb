package service

import (
	"testing"
	"time"

	"github.com/DylanChiang-Dev/caicaizi-class/internal/model"
)

func sampleTimeSlots() []model.TimeSlot {
	return []model.TimeSlot{
		{Period: "1-2", StartTime: "8:15", EndTime: "9:45"},
		{Period: "3-4", StartTime: "10:05", EndTime: "11:35"},
		{Period: "5-6", StartTime: "13:00", EndTime: "14:30"},
		{Period: "7-8", StartTime: "14:50", EndTime: "16:20"},
		{Period: "9", StartTime: "16:30", EndTime: "17:15"},
		{Period: "10-11", StartTime: "18:15", EndTime: "19:45"},
		{Period: "12", StartTime: "19:55", EndTime: "20:40"},
	}
}

func TestNewPeriodTable(t *testing.T) {
	table, err := NewPeriodTable(sampleTimeSlots())
	if err != nil {
		t.Fatalf("构建节次表应成功: %v", err)
	}

	for _, label := range []string{"1-2", "3-4", "5-6", "7-8", "9", "10-11", "12"} {
		if _, _, ok := table.Lookup(label); !ok {
			t.Errorf("节次 %s 应可查到", label)
		}
	}

	start, end, ok := table.Lookup("9")
	if !ok || start != 990 || end != 1035 {
		t.Errorf("Lookup(9) = %d,%d,%v", start, end, ok)
	}
	if _, _, ok := table.Lookup("13"); ok {
		t.Error("未知节次应返回 ok=false")
	}
}

func TestNewPeriodTable_Errors(t *testing.T) {
	if _, err := NewPeriodTable([]model.TimeSlot{
		{Period: "1-2", StartTime: "8:15", EndTime: "9:45"},
		{Period: "1-2", StartTime: "10:05", EndTime: "11:35"},
	}); err == nil {
		t.Error("重复节次应报错")
	}
	if _, err := NewPeriodTable([]model.TimeSlot{
		{Period: "1-2", StartTime: "8.15", EndTime: "9:45"},
	}); err == nil {
		t.Error("时间格式错误应报错")
	}
}

func TestPeriodTable_IsCurrentPeriod(t *testing.T) {
	table, _ := NewPeriodTable(sampleTimeSlots())
	at := func(h, m int) time.Time { return time.Date(2025, 10, 4, h, m, 0, 0, taipei) }

	tests := []struct {
		name  string
		label string
		now   time.Time
		want  bool
	}{
		{"10:30 在 3-4", "3-4", at(10, 30), true},
		{"10:30 不在 1-2", "1-2", at(10, 30), false},
		{"开始边界", "3-4", at(10, 5), true},
		{"结束边界", "3-4", at(11, 35), true},
		{"开始前一分钟", "3-4", at(10, 4), false},
		{"结束后一分钟", "3-4", at(11, 36), false},
		{"单节次", "9", at(17, 0), true},
		{"未知标签", "13", at(10, 30), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.IsCurrentPeriod(tt.label, tt.now); got != tt.want {
				t.Errorf("期望 %v，实际 %v", tt.want, got)
			}
		})
	}
}

func TestPeriodService(t *testing.T) {
	table, _ := NewPeriodTable(sampleTimeSlots())
	// 02:30 UTC = 10:30 台北
	clk := &fixedClock{t: time.Date(2025, 10, 4, 2, 30, 0, 0, time.UTC)}
	svc := NewPeriodService(table, clk, taipei)

	if !svc.IsCurrentPeriod("3-4") {
		t.Error("10:30 应处于 3-4 节")
	}
	if svc.IsCurrentPeriod("1-2") {
		t.Error("10:30 不应处于 1-2 节")
	}
	if label, ok := svc.CurrentPeriod(); !ok || label != "3-4" {
		t.Errorf("CurrentPeriod 期望 3-4，实际 %q,%v", label, ok)
	}

	clk.t = time.Date(2025, 10, 4, 4, 0, 0, 0, time.UTC) // 12:00 午休
	if _, ok := svc.CurrentPeriod(); ok {
		t.Error("午休时间不应处于任何节次")
	}
}
