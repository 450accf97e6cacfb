package service

import (
	"github.com/DylanChiang-Dev/caicaizi-class/internal/model"
)

// ParseWeekRange 解析 "start-end" 形式的周次范围，见 model.ParseWeekRange
func ParseWeekRange(s string) (start, end int, ok bool) {
	return model.ParseWeekRange(s)
}

// IsWeekInRange week 是否位于范围内（闭区间）
// 范围格式无效时一律返回 true，避免因数据错误隐藏课程
// 倒序范围（如 "15-1"）格式有效但不含任何周次
func IsWeekInRange(week int, weekRange string) bool {
	start, end, ok := ParseWeekRange(weekRange)
	if !ok {
		return true
	}
	return start <= week && week <= end
}

// ShouldShowCourse 课程在第 week 周是否上课：周次范围与单双周同时满足
// weekRange 为空表示不限范围；未知的单双周类型按每周处理
func ShouldShowCourse(weekType model.WeekType, week int, weekRange string) bool {
	if weekRange != "" && !IsWeekInRange(week, weekRange) {
		return false
	}

	switch weekType {
	case model.WeekTypeOdd:
		return week%2 != 0
	case model.WeekTypeEven:
		return week%2 == 0
	default:
		return true
	}
}

// WeekTypeDisplay 单双周类型的显示文字
func WeekTypeDisplay(weekType model.WeekType) string {
	switch weekType {
	case model.WeekTypeOdd:
		return "單週"
	case model.WeekTypeEven:
		return "雙週"
	default:
		return "每週"
	}
}
