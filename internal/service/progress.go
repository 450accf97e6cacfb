package service

import (
	"fmt"
	"sort"

	"github.com/DylanChiang-Dev/caicaizi-class/internal/model"
)

// DefaultMaxWeek 未配置学期长度时使用的周数
const DefaultMaxWeek = 20

// CourseProgress 单门课程的进度
type CourseProgress struct {
	Course           model.Course
	StartWeek        int
	EndWeek          int
	DurationMinutes  int
	TotalMinutes     int
	CompletedMinutes int
	RemainingMinutes int
	Percentage       float64
	IsActive         bool
	WeeksCount       int
	CompletedWeeks   int
}

// SemesterProgress 全学期汇总进度
type SemesterProgress struct {
	TotalMinutes          int
	CompletedMinutes      int
	RemainingMinutes      int
	Percentage            float64
	TotalCourses          int
	CompletedCourses      int // 本周处于上课周次范围内的课程数
	AverageWeeksPerCourse float64
}

// ProgressStatus 进度档位
type ProgressStatus struct {
	Label   string
	Color   string
	BgColor string
}

// CalculateDuration 两个 H:MM 之间的分钟数
// 结束早于开始时结果为负，照常参与后续计算；时间无法解析时返回 0
func CalculateDuration(startTime, endTime string) int {
	start, err := model.ParseClock(startTime)
	if err != nil {
		return 0
	}
	end, err := model.ParseClock(endTime)
	if err != nil {
		return 0
	}
	return end - start
}

// EffectiveWeeks [start, end] 内符合单双周类型的周数；start > end 时为 0
func EffectiveWeeks(weekType model.WeekType, start, end int) int {
	if start > end {
		return 0
	}
	switch weekType {
	case model.WeekTypeAll:
		return end - start + 1
	case model.WeekTypeOdd, model.WeekTypeEven:
		wantOdd := weekType == model.WeekTypeOdd
		first, last := start, end
		if (first%2 != 0) != wantOdd {
			first++
		}
		if (last%2 != 0) != wantOdd {
			last--
		}
		if first > last {
			return 0
		}
		return (last-first)/2 + 1
	default:
		return 0
	}
}

// CompletedWeeks 截至 current 周已上过的周数；current 早于 start 时为 0
func CompletedWeeks(weekType model.WeekType, start, current int) int {
	if current < start {
		return 0
	}
	return EffectiveWeeks(weekType, start, current)
}

// ProgressCalculator 进度计算；未填写周次范围的课程按 [1, DefaultMaxWeek] 计
type ProgressCalculator struct {
	DefaultMaxWeek int
}

// NewProgressCalculator 创建 ProgressCalculator
func NewProgressCalculator(maxWeek int) *ProgressCalculator {
	if maxWeek < 1 {
		maxWeek = DefaultMaxWeek
	}
	return &ProgressCalculator{DefaultMaxWeek: maxWeek}
}

// CourseWeekRange 课程的起止周次
func (p *ProgressCalculator) CourseWeekRange(course model.Course) (int, int) {
	if start, end, ok := ParseWeekRange(course.WeekRange); ok {
		return start, end
	}
	return 1, p.DefaultMaxWeek
}

// CourseProgress 计算单门课程在第 week 周时的进度
func (p *ProgressCalculator) CourseProgress(course model.Course, slot model.TimeSlot, week int) CourseProgress {
	start, end := p.CourseWeekRange(course)
	effective := week
	if effective > end {
		effective = end
	}

	duration := CalculateDuration(slot.StartTime, slot.EndTime)
	totalWeeks := EffectiveWeeks(course.WeekType, start, end)
	doneWeeks := CompletedWeeks(course.WeekType, start, effective)

	total := duration * totalWeeks
	done := duration * doneWeeks

	return CourseProgress{
		Course:           course,
		StartWeek:        start,
		EndWeek:          end,
		DurationMinutes:  duration,
		TotalMinutes:     total,
		CompletedMinutes: done,
		RemainingMinutes: total - done,
		Percentage:       percentage(done, total),
		IsActive:         start <= week && week <= end,
		WeeksCount:       totalWeeks,
		CompletedWeeks:   doneWeeks,
	}
}

// SemesterProgress 汇总所有课程进度；节次无法匹配时间段的课程跳过
func (p *ProgressCalculator) SemesterProgress(courses []model.Course, slots []model.TimeSlot, week int) SemesterProgress {
	var sp SemesterProgress
	weeksSum := 0

	for _, cp := range p.resolve(courses, slots, week) {
		sp.TotalCourses++
		sp.TotalMinutes += cp.TotalMinutes
		sp.CompletedMinutes += cp.CompletedMinutes
		if cp.IsActive {
			sp.CompletedCourses++
		}
		if span := cp.EndWeek - cp.StartWeek + 1; span > 0 {
			weeksSum += span
		}
	}

	sp.RemainingMinutes = sp.TotalMinutes - sp.CompletedMinutes
	sp.Percentage = percentage(sp.CompletedMinutes, sp.TotalMinutes)
	if sp.TotalCourses > 0 {
		sp.AverageWeeksPerCourse = float64(weeksSum) / float64(sp.TotalCourses)
	}
	return sp
}

// AllCoursesProgress 所有可计算课程的进度，按百分比降序
func (p *ProgressCalculator) AllCoursesProgress(courses []model.Course, slots []model.TimeSlot, week int) []CourseProgress {
	list := p.resolve(courses, slots, week)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Percentage > list[j].Percentage
	})
	return list
}

func (p *ProgressCalculator) resolve(courses []model.Course, slots []model.TimeSlot, week int) []CourseProgress {
	bySlot := make(map[string]model.TimeSlot, len(slots))
	for _, s := range slots {
		bySlot[s.Period] = s
	}

	out := make([]CourseProgress, 0, len(courses))
	for _, c := range courses {
		slot, ok := bySlot[c.Periods]
		if !ok {
			continue
		}
		out = append(out, p.CourseProgress(c, slot, week))
	}
	return out
}

func percentage(done, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(done) / float64(total) * 100
}

// FormatDuration 格式化分钟数："1小時30分鐘" / "2小時" / "30分鐘"
func FormatDuration(minutes int) string {
	hours := minutes / 60
	mins := minutes % 60

	switch {
	case hours == 0:
		return fmt.Sprintf("%d分鐘", mins)
	case mins == 0:
		return fmt.Sprintf("%d小時", hours)
	default:
		return fmt.Sprintf("%d小時%d分鐘", hours, mins)
	}
}

// ── 进度档位 ──

var (
	statusNotStarted = ProgressStatus{Label: "尚未開始", Color: "text-gray-600", BgColor: "bg-gray-100"}
	statusJustBegun  = ProgressStatus{Label: "剛剛開始", Color: "text-blue-600", BgColor: "bg-blue-100"}
	statusOngoing    = ProgressStatus{Label: "進行中", Color: "text-indigo-600", BgColor: "bg-indigo-100"}
	statusPastHalf   = ProgressStatus{Label: "過半了", Color: "text-purple-600", BgColor: "bg-purple-100"}
	statusNearlyDone = ProgressStatus{Label: "即將完成", Color: "text-orange-600", BgColor: "bg-orange-100"}
	statusFinished   = ProgressStatus{Label: "已結束", Color: "text-green-600", BgColor: "bg-green-100"}
)

// StatusForPercentage 百分比对应的进度档位
// 0 单独一档，边界值 25/50/75 归入较高的一档，100 及以上为已结束
func StatusForPercentage(pct float64) ProgressStatus {
	switch {
	case pct == 0:
		return statusNotStarted
	case pct < 25:
		return statusJustBegun
	case pct < 50:
		return statusOngoing
	case pct < 75:
		return statusPastHalf
	case pct < 100:
		return statusNearlyDone
	default:
		return statusFinished
	}
}
