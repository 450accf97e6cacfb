package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/DylanChiang-Dev/caicaizi-class/internal/model"
)

// ════════════════════════════════════════════════════════════
// ICS 解析器测试
// ════════════════════════════════════════════════════════════

// 周重复课程、隔周课程、带 EXDATE 的课程、无法匹配节次的讲座、两次单次事件
const testICSContent = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//Test//EN
BEGIN:VEVENT
SUMMARY:高等數學
LOCATION:A101
DTSTART;TZID=Asia/Taipei:20250915T081500
DTEND;TZID=Asia/Taipei:20250915T094500
RRULE:FREQ=WEEKLY;COUNT=16
END:VEVENT
BEGIN:VEVENT
SUMMARY:物理實驗
DTSTART;TZID=Asia/Taipei:20250916T100500
DTEND;TZID=Asia/Taipei:20250916T113500
RRULE:FREQ=WEEKLY;INTERVAL=2;COUNT=8
END:VEVENT
BEGIN:VEVENT
SUMMARY:大學英語
DTSTART;TZID=Asia/Taipei:20250917T130000
DTEND;TZID=Asia/Taipei:20250917T143000
RRULE:FREQ=WEEKLY;COUNT=4
EXDATE;TZID=Asia/Taipei:20251001T130000
END:VEVENT
BEGIN:VEVENT
SUMMARY:專題講座
DTSTART;TZID=Asia/Taipei:20250917T090000
DTEND;TZID=Asia/Taipei:20250917T110000
END:VEVENT
BEGIN:VEVENT
SUMMARY:討論課
DTSTART;TZID=Asia/Taipei:20250919T163000
DURATION:PT45M
END:VEVENT
BEGIN:VEVENT
SUMMARY:討論課
DTSTART;TZID=Asia/Taipei:20250926T163000
DTEND;TZID=Asia/Taipei:20250926T171500
END:VEVENT
END:VCALENDAR`

func parseTestICS(t *testing.T, content string) *ICSResult {
	t.Helper()
	table, _ := NewPeriodTable(sampleTimeSlots())
	start := time.Date(2025, 9, 15, 0, 0, 0, 0, taipei)

	result, err := ParseICS(strings.NewReader(content), start, 20, table, taipei)
	if err != nil {
		t.Fatalf("ParseICS 应成功: %v", err)
	}
	return result
}

func TestParseICS_Courses(t *testing.T) {
	result := parseTestICS(t, testICSContent)

	if result.Skipped != 1 {
		t.Errorf("期望跳过 1 个事件，实际=%d", result.Skipped)
	}
	if len(result.Courses) != 4 {
		t.Fatalf("期望 4 门课程，实际=%d", len(result.Courses))
	}

	tests := []struct {
		name      string
		day       int
		periods   string
		weekType  model.WeekType
		weekRange string
	}{
		{"高等數學", 1, "1-2", model.WeekTypeAll, "1-16"},
		{"物理實驗", 2, "3-4", model.WeekTypeOdd, "1-15"},
		{"大學英語", 3, "5-6", model.WeekTypeAll, "1-4"},
		{"討論課", 5, "9", model.WeekTypeAll, "1-2"},
	}

	for i, tt := range tests {
		c := result.Courses[i]
		if c.Name != tt.name || c.DayOfWeek != tt.day || c.Periods != tt.periods ||
			c.WeekType != tt.weekType || c.WeekRange != tt.weekRange {
			t.Errorf("第 %d 门课程不符: %+v，期望 %+v", i, c, tt)
		}
	}
	if result.Courses[0].Classroom != "A101" {
		t.Errorf("LOCATION 应映射为教室，实际=%q", result.Courses[0].Classroom)
	}
	if result.Courses[0].ID != "ics_1" {
		t.Errorf("期望 ID ics_1，实际=%s", result.Courses[0].ID)
	}
}

func TestParseICS_Invalid(t *testing.T) {
	table, _ := NewPeriodTable(sampleTimeSlots())
	_, err := ParseICS(strings.NewReader("not an ics"), time.Now(), 20, table, taipei)
	if !errors.Is(err, ErrICSInvalid) {
		t.Errorf("期望 ErrICSInvalid，实际: %v", err)
	}
}

func TestParseICS_OutsideSemester(t *testing.T) {
	content := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//Test//EN
BEGIN:VEVENT
SUMMARY:暑期課
DTSTART;TZID=Asia/Taipei:20250707T081500
DTEND;TZID=Asia/Taipei:20250707T094500
END:VEVENT
END:VCALENDAR`

	result := parseTestICS(t, content)
	if len(result.Courses) != 0 || result.Skipped != 1 {
		t.Errorf("学期外事件应跳过: %+v", result)
	}
}

func TestParseRRule(t *testing.T) {
	r := parseRRule("FREQ=WEEKLY;INTERVAL=2;COUNT=8")
	if r.freq != "WEEKLY" || r.interval != 2 || r.count != 8 {
		t.Errorf("RRULE 解析错误: %+v", r)
	}

	r = parseRRule("FREQ=WEEKLY;UNTIL=20251231")
	want := time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)
	if !r.until.Equal(want) {
		t.Errorf("仅日期的 UNTIL 应包含当天，实际=%s", r.until)
	}
}

func TestComputeWeeks_Until(t *testing.T) {
	content := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//Test//Test//EN
BEGIN:VEVENT
SUMMARY:短期課
DTSTART;TZID=Asia/Taipei:20250915T081500
DTEND;TZID=Asia/Taipei:20250915T094500
RRULE:FREQ=WEEKLY;UNTIL=20251006T000000Z
END:VEVENT
END:VCALENDAR`

	result := parseTestICS(t, content)
	if len(result.Courses) != 1 || result.Courses[0].WeekRange != "1-3" {
		t.Errorf("UNTIL 截止错误: %+v", result.Courses)
	}
}

func TestDeriveWeekType(t *testing.T) {
	tests := []struct {
		weeks []int
		want  model.WeekType
	}{
		{nil, model.WeekTypeAll},
		{[]int{3}, model.WeekTypeAll},
		{[]int{1, 3, 5}, model.WeekTypeOdd},
		{[]int{2, 4}, model.WeekTypeEven},
		{[]int{1, 2}, model.WeekTypeAll},
	}
	for _, tt := range tests {
		if got := deriveWeekType(tt.weeks); got != tt.want {
			t.Errorf("deriveWeekType(%v)=%s，期望=%s", tt.weeks, got, tt.want)
		}
	}
}

func TestParseICSDuration(t *testing.T) {
	if d, ok := parseICSDuration("PT1H30M"); !ok || d != 90*time.Minute {
		t.Errorf("PT1H30M 解析错误: %s %v", d, ok)
	}
	if _, ok := parseICSDuration("P1D"); ok {
		t.Error("P1D 不支持")
	}
}

func TestImportService_PreviewICS(t *testing.T) {
	clk := &fixedClock{t: mondayWeek3}
	svc := NewImportService(newTestRepo(), newTestEngines(clk), zap.NewNop())

	resp, err := svc.PreviewICS(context.Background(), strings.NewReader(testICSContent))
	if err != nil {
		t.Fatalf("PreviewICS 应成功: %v", err)
	}
	if resp.Skipped != 1 || len(resp.Courses) != 4 {
		t.Fatalf("预览结果错误: skipped=%d courses=%d", resp.Skipped, len(resp.Courses))
	}

	first := resp.Courses[0]
	if first.TimeSlot == nil || first.TimeSlot.StartTime != "8:15" {
		t.Errorf("应附带时间段: %+v", first.TimeSlot)
	}
	names := []string{}
	for _, c := range resp.Courses {
		names = append(names, c.Name)
	}
	if !reflect.DeepEqual(names, []string{"高等數學", "物理實驗", "大學英語", "討論課"}) {
		t.Errorf("课程顺序错误: %v", names)
	}

	if _, err := svc.PreviewICS(context.Background(), strings.NewReader("garbage")); !errors.Is(err, ErrICSInvalid) {
		t.Errorf("期望 ErrICSInvalid，实际: %v", err)
	}
}
