package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/DylanChiang-Dev/caicaizi-class/internal/dto"
	"github.com/DylanChiang-Dev/caicaizi-class/internal/model"
	"github.com/DylanChiang-Dev/caicaizi-class/internal/repository"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 职责：将 iCalendar (RFC 5545) 课表解析为 Course 列表（仅预览，不落库）。
//
//   - DTSTART 确定星期几，DTSTART/DTEND 的时刻必须与某个节次完全一致
//   - RRULE (WEEKLY: INTERVAL/COUNT/UNTIL) 与 EXDATE 推算上课周次
//   - 同 name+day+periods 的事件合并周次
//   - week_type 由周次推导，week_range 取首末周
// ─────────────────────────────────────────────────────────────

const icsMaxFileSize = 5 * 1024 * 1024 // 5MB

// golang-ical 只定义了 PropertyDuration，事件组件上需转换后查询
var componentPropertyDuration = ics.ComponentProperty(ics.PropertyDuration)

// ErrICSInvalid ICS 内容无法解析
var ErrICSInvalid = errors.New("ICS 文件格式无效")

// ICSResult ICS 解析结果
type ICSResult struct {
	Courses []model.Course
	Skipped int // 无标题、时间无法匹配节次或不在学期内的事件数
}

// parsedCourseEvent ICS 解析中间结构
type parsedCourseEvent struct {
	Name        string
	Location    string
	Description string
	DayOfWeek   int // 1=Monday … 7=Sunday
	Periods     string
	Weeks       []int
}

// ParseICS 解析 ICS 内容
//
// 参数：
//   - semesterStart: 学期起始日期（用于推算周次）
//   - maxWeek: 学期总周数，超出的重复日期忽略
//   - table: 节次表，用于把事件时刻映射为节次标签
func ParseICS(reader io.Reader, semesterStart time.Time, maxWeek int, table *PeriodTable, loc *time.Location) (*ICSResult, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrICSInvalid, err)
	}
	if loc == nil {
		loc = time.Local
	}

	// 阶段 1: 解析所有 VEVENT
	result := &ICSResult{}
	var events []parsedCourseEvent
	for _, comp := range cal.Events() {
		evt, ok := parseVEvent(comp, semesterStart, maxWeek, table, loc)
		if !ok {
			result.Skipped++
			continue
		}
		events = append(events, evt)
	}

	// 阶段 2: 合并同课程的周次
	merged := mergeEvents(events)

	// 阶段 3: 转为 model.Course
	result.Courses = make([]model.Course, 0, len(merged))
	for i, evt := range merged {
		sort.Ints(evt.Weeks)
		result.Courses = append(result.Courses, model.Course{
			ID:          fmt.Sprintf("ics_%d", i+1),
			Name:        evt.Name,
			Classroom:   evt.Location,
			DayOfWeek:   evt.DayOfWeek,
			Periods:     evt.Periods,
			WeekType:    deriveWeekType(evt.Weeks),
			WeekRange:   fmt.Sprintf("%d-%d", evt.Weeks[0], evt.Weeks[len(evt.Weeks)-1]),
			Description: evt.Description,
		})
	}
	return result, nil
}

// parseVEvent 解析单个 VEVENT 组件
func parseVEvent(evt *ics.VEvent, semesterStart time.Time, maxWeek int, table *PeriodTable, loc *time.Location) (parsedCourseEvent, bool) {
	name := propertyText(evt, ics.ComponentPropertySummary)
	if name == "" {
		return parsedCourseEvent{}, false
	}

	dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return parsedCourseEvent{}, false
	}
	dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil {
		// 无 DTEND 时尝试 DURATION（仅支持 PT#H#M 形式）
		d, ok := parseICSDuration(propertyText(evt, componentPropertyDuration))
		if !ok {
			return parsedCourseEvent{}, false
		}
		dtEnd = dtStart.Add(d)
	}

	periods, ok := table.Match(minuteOfDay(dtStart), minuteOfDay(dtEnd))
	if !ok {
		return parsedCourseEvent{}, false
	}

	weeks := computeWeeks(evt, dtStart, semesterStart, maxWeek, loc)
	if len(weeks) == 0 {
		return parsedCourseEvent{}, false
	}

	return parsedCourseEvent{
		Name:        name,
		Location:    propertyText(evt, ics.ComponentPropertyLocation),
		Description: propertyText(evt, ics.ComponentPropertyDescription),
		DayOfWeek:   isoWeekday(dtStart.Weekday()),
		Periods:     periods,
		Weeks:       weeks,
	}, true
}

// computeWeeks 根据 RRULE / EXDATE / 单次事件计算周次列表
func computeWeeks(evt *ics.VEvent, dtStart, semesterStart time.Time, maxWeek int, loc *time.Location) []int {
	inSemester := func(wk int) bool { return wk >= 1 && wk <= maxWeek }

	rruleProp := evt.GetProperty(ics.ComponentPropertyRrule)
	if rruleProp == nil {
		if wk := dateToWeekNumber(dtStart, semesterStart); inSemester(wk) {
			return []int{wk}
		}
		return nil
	}

	rule := parseRRule(rruleProp.Value)
	if rule.freq != "WEEKLY" {
		// 非周重复 → 仅首次
		if wk := dateToWeekNumber(dtStart, semesterStart); inSemester(wk) {
			return []int{wk}
		}
		return nil
	}

	exDates := parseExDates(evt, loc)

	interval := rule.interval
	if interval < 1 {
		interval = 1
	}

	var weeks []int
	weekSet := make(map[int]bool)

	current := dtStart
	maxDate := semesterStart.AddDate(0, 0, maxWeek*7)

	for count := 0; ; count++ {
		if !rule.until.IsZero() && current.After(rule.until) {
			break
		}
		if rule.count > 0 && count >= rule.count {
			break
		}
		if !current.Before(maxDate) {
			break
		}

		wk := dateToWeekNumber(current, semesterStart)
		if inSemester(wk) && !exDates[current.Format("20060102")] && !weekSet[wk] {
			weekSet[wk] = true
			weeks = append(weeks, wk)
		}
		current = current.AddDate(0, 0, 7*interval)
	}

	return weeks
}

// rruleParams RRULE 解析结果
type rruleParams struct {
	freq     string
	interval int
	count    int
	until    time.Time
}

// parseRRule 解析 RRULE 字符串（如 FREQ=WEEKLY;COUNT=16;INTERVAL=1）
func parseRRule(value string) rruleParams {
	r := rruleParams{interval: 1}
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			r.freq = strings.ToUpper(kv[1])
		case "INTERVAL":
			fmt.Sscanf(kv[1], "%d", &r.interval)
		case "COUNT":
			fmt.Sscanf(kv[1], "%d", &r.count)
		case "UNTIL":
			t, err := time.Parse("20060102T150405Z", kv[1])
			if err != nil {
				t, _ = time.Parse("20060102", kv[1])
				if !t.IsZero() {
					// 仅日期的 UNTIL 包含当天
					t = t.Add(24*time.Hour - time.Second)
				}
			}
			r.until = t
		}
	}
	return r
}

// parseExDates 解析事件中所有 EXDATE（支持逗号分隔的多个值）
func parseExDates(evt *ics.VEvent, loc *time.Location) map[string]bool {
	exDates := make(map[string]bool)
	for _, prop := range evt.Properties {
		if prop.IANAToken != string(ics.ComponentPropertyExdate) {
			continue
		}
		for _, v := range strings.Split(prop.Value, ",") {
			if t, ok := parseICSValue(strings.TrimSpace(v), "", loc); ok {
				exDates[t.Format("20060102")] = true
			}
		}
	}
	return exDates
}

// mergeEvents 合并相同课程事件的周次
func mergeEvents(events []parsedCourseEvent) []parsedCourseEvent {
	type key struct {
		Name      string
		DayOfWeek int
		Periods   string
	}
	merged := make(map[key]*parsedCourseEvent)
	order := []key{}

	for _, e := range events {
		k := key{Name: e.Name, DayOfWeek: e.DayOfWeek, Periods: e.Periods}
		if existing, ok := merged[k]; ok {
			weekSet := make(map[int]bool)
			for _, w := range existing.Weeks {
				weekSet[w] = true
			}
			for _, w := range e.Weeks {
				if !weekSet[w] {
					existing.Weeks = append(existing.Weeks, w)
				}
			}
			if existing.Location == "" {
				existing.Location = e.Location
			}
		} else {
			cp := e
			merged[k] = &cp
			order = append(order, k)
		}
	}

	result := make([]parsedCourseEvent, 0, len(merged))
	for _, k := range order {
		result = append(result, *merged[k])
	}
	return result
}

// ── 辅助函数 ──

// dateToWeekNumber 日期相对学期起始的周次（周一对齐，学期前为 0 或负数）
func dateToWeekNumber(date, semesterStart time.Time) int {
	days := mondayOf(date).daysSince(mondayOf(semesterStart.In(date.Location())))
	return floorDiv(days, 7) + 1
}

// deriveWeekType 根据周次推导单双周类型
func deriveWeekType(weeks []int) model.WeekType {
	// 只有一周时按每周处理
	if len(weeks) < 2 {
		return model.WeekTypeAll
	}
	allOdd, allEven := true, true
	for _, w := range weeks {
		if w%2 == 0 {
			allOdd = false
		} else {
			allEven = false
		}
	}
	if allOdd {
		return model.WeekTypeOdd
	}
	if allEven {
		return model.WeekTypeEven
	}
	return model.WeekTypeAll
}

func propertyText(evt *ics.VEvent, name ics.ComponentProperty) string {
	prop := evt.GetProperty(name)
	if prop == nil {
		return ""
	}
	return strings.TrimSpace(prop.Value)
}

// parseICSDuration 解析 PT1H30M 形式的 DURATION
func parseICSDuration(v string) (time.Duration, bool) {
	if !strings.HasPrefix(v, "PT") {
		return 0, false
	}
	d, err := time.ParseDuration(strings.ToLower(strings.TrimPrefix(v, "PT")))
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}

	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}

	t, ok := parseICSValue(prop.Value, tzid, loc)
	if !ok {
		return time.Time{}, fmt.Errorf("无法解析日期: %s", prop.Value)
	}
	return t, nil
}

// parseICSValue 尝试多种 ICS 日期格式，结果统一转换到 loc
func parseICSValue(val, tzid string, loc *time.Location) (time.Time, bool) {
	formats := []string{
		"20060102T150405Z",
		"20060102T150405",
		"20060102",
	}

	for _, layout := range formats {
		t, err := time.Parse(layout, val)
		if err != nil {
			continue
		}
		if strings.HasSuffix(layout, "Z") {
			return t.In(loc), true
		}
		if tzid != "" {
			if tzLoc, err := time.LoadLocation(tzid); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), true
			}
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), true
	}
	return time.Time{}, false
}

// ════════════════════════════════════════════════════════════
// ImportService：ICS 导入预览
// ════════════════════════════════════════════════════════════

// ImportService 课表导入业务接口
type ImportService interface {
	// PreviewICS 解析 ICS 文件并返回课程预览（课表数据为静态配置，不写入）
	PreviewICS(ctx context.Context, r io.Reader) (*dto.ImportPreviewResponse, error)
}

type importService struct {
	repo    *repository.Repository
	engines *Engines
	logger  *zap.Logger
}

// NewImportService 创建 ImportService 实例
func NewImportService(repo *repository.Repository, engines *Engines, logger *zap.Logger) ImportService {
	return &importService{repo: repo, engines: engines, logger: logger}
}

func (s *importService) PreviewICS(ctx context.Context, r io.Reader) (*dto.ImportPreviewResponse, error) {
	cal := s.engines.Calendar
	result, err := ParseICS(r, cal.SemesterStart(), s.engines.MaxWeek, s.engines.Periods.Table(), cal.Location())
	if err != nil {
		s.logger.Warn("ICS 解析失败", zap.Error(err))
		return nil, err
	}

	slots, err := s.repo.Schedule.ListTimeSlots(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]model.TimeSlot, len(slots))
	for _, slot := range slots {
		index[slot.Period] = slot
	}

	courses := make([]dto.CourseResponse, 0, len(result.Courses))
	for _, c := range result.Courses {
		courses = append(courses, newCourseResponse(c, index))
	}

	s.logger.Info("ICS 解析完成",
		zap.Int("courses", len(courses)),
		zap.Int("skipped", result.Skipped),
	)
	return &dto.ImportPreviewResponse{Courses: courses, Skipped: result.Skipped}, nil
}
