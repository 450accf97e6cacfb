package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DylanChiang-Dev/caicaizi-class/internal/model"
	apperrors "github.com/DylanChiang-Dev/caicaizi-class/pkg/errors"
)

const validScheduleYAML = `
time_slots:
  - period: "1-2"
    start_time: "8:15"
    end_time: "9:55"
  - period: "3-4"
    start_time: "10:05"
    end_time: "11:35"
courses:
  - id: "1"
    name: 高等數學
    teacher: 王老師
    classroom: A101
    day_of_week: 1
    periods: "1-2"
    week_type: all
    week_range: "1-16"
    student_count: 45
  - id: "2"
    name: 大學英語
    teacher: 李老師
    classroom: B202
    day_of_week: 3
    periods: "3-4"
    week_type: odd
notes:
  - 第 10 週期中考
`

func writeSchedule(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写入测试文件失败: %v", err)
	}
	return path
}

func TestLoadScheduleFile_Valid(t *testing.T) {
	data, err := LoadScheduleFile(writeSchedule(t, validScheduleYAML))
	if err != nil {
		t.Fatalf("加载应成功: %v", err)
	}
	if len(data.TimeSlots) != 2 || len(data.Courses) != 2 || len(data.Notes) != 1 {
		t.Fatalf("数据条数不符: %d/%d/%d", len(data.TimeSlots), len(data.Courses), len(data.Notes))
	}
	if data.Courses[0].StudentCount == nil || *data.Courses[0].StudentCount != 45 {
		t.Error("student_count 应为 45")
	}
	if data.Courses[1].StudentCount != nil {
		t.Error("未填写 student_count 时应为 nil")
	}
	if data.Courses[1].WeekType != model.WeekTypeOdd {
		t.Errorf("期望 odd，实际=%s", data.Courses[1].WeekType)
	}
}

func TestLoadScheduleFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		wantMsg string
	}{
		{"星期越界", "day_of_week: 3", "day_of_week: 8", "校验失败"},
		{"单双周类型非法", "week_type: odd", "week_type: weekly", "校验失败"},
		{"时间格式非法", `end_time: "9:55"`, `end_time: "955"`, "校验失败"},
		{"跨午夜节次", `end_time: "9:55"`, `end_time: "8:00"`, "晚于开始时间"},
		{"课程 ID 重复", `id: "2"`, `id: "1"`, "重复"},
		{"节次重复", `period: "3-4"`, `period: "1-2"`, "重复"},
		{"周次范围倒序", `week_range: "1-16"`, `week_range: "16-1"`, "周次范围"},
		{"YAML 语法错误", "notes:", "notes: [", "解析"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Replace(validScheduleYAML, tt.from, tt.to, 1)
			_, err := LoadScheduleFile(writeSchedule(t, content))
			if err == nil {
				t.Fatal("期望返回错误")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("错误信息应包含 %q，实际: %v", tt.wantMsg, err)
			}
		})
	}
}

func TestLoadScheduleFile_Missing(t *testing.T) {
	if _, err := LoadScheduleFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("文件不存在时应返回错误")
	}
}

func TestScheduleRepo_Queries(t *testing.T) {
	ctx := context.Background()
	data, err := LoadScheduleFile(writeSchedule(t, validScheduleYAML))
	if err != nil {
		t.Fatalf("加载应成功: %v", err)
	}
	repo := NewScheduleRepo(data)

	c, err := repo.GetCourse(ctx, "2")
	if err != nil || c.Name != "大學英語" {
		t.Fatalf("GetCourse(2) 错误: %v %+v", err, c)
	}
	if _, err := repo.GetCourse(ctx, "99"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("期望 ErrNotFound，实际: %v", err)
	}

	slot, err := repo.GetTimeSlot(ctx, "3-4")
	if err != nil || slot.StartTime != "10:05" {
		t.Fatalf("GetTimeSlot 错误: %v %+v", err, slot)
	}
	if _, err := repo.GetTimeSlot(ctx, "9-10"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("期望 ErrNotFound，实际: %v", err)
	}
}

func TestScheduleRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	data, _ := LoadScheduleFile(writeSchedule(t, validScheduleYAML))
	repo := NewScheduleRepo(data)

	courses, _ := repo.ListCourses(ctx)
	courses[0].Name = "被改掉"
	*courses[0].StudentCount = 0

	again, _ := repo.ListCourses(ctx)
	if again[0].Name != "高等數學" {
		t.Error("修改返回值不应影响仓库数据")
	}
	if *again[0].StudentCount != 45 {
		t.Error("student_count 指针不应共享")
	}

	notes, _ := repo.Notes(ctx)
	notes[0] = "x"
	if again, _ := repo.Notes(ctx); again[0] == "x" {
		t.Error("Notes 应返回副本")
	}
}
