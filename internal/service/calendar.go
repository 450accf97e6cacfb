package service

import "time"

// Clock 当前时间来源（由 *clock.Source 实现）
type Clock interface {
	Now() time.Time
}

const dateLayout = "2006-01-02"

// Calendar 学期周次计算
//
// 周次以周一为界：当前日期所在周的周一与学期起始周的周一相差的整周数 + 1，
// 学期开始前的日期一律视为第 1 周。
type Calendar struct {
	clock  Clock
	loc    *time.Location
	start  time.Time // 学期起始日 00:00（loc）
	monday civilDate // 学期起始周的周一
}

// NewCalendar 创建 Calendar
func NewCalendar(clk Clock, semesterStart time.Time, loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.Local
	}
	s := semesterStart.In(loc)
	start := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
	return &Calendar{
		clock:  clk,
		loc:    loc,
		start:  start,
		monday: mondayOf(start),
	}
}

// Location 返回计算所用时区
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now 当前时间（已转换到 loc）
func (c *Calendar) Now() time.Time {
	return c.clock.Now().In(c.loc)
}

// SemesterStart 学期起始日 00:00
func (c *Calendar) SemesterStart() time.Time {
	return c.start
}

// CurrentWeek 当前周次，最小为 1
func (c *Calendar) CurrentWeek() int {
	return c.WeekOf(c.clock.Now())
}

// WeekOf 指定时刻所在的学期周次，最小为 1
func (c *Calendar) WeekOf(t time.Time) int {
	days := mondayOf(t.In(c.loc)).daysSince(c.monday)
	week := floorDiv(days, 7) + 1
	if week < 1 {
		return 1
	}
	return week
}

// CurrentWeekday 当前星期（1=周一 … 7=周日）
func (c *Calendar) CurrentWeekday() int {
	return isoWeekday(c.Now().Weekday())
}

// IsToday 给定星期是否为今天
func (c *Calendar) IsToday(dayOfWeek int) bool {
	return dayOfWeek == c.CurrentWeekday()
}

// WeekDateRange 第 week 周的起止日期（起始日 + (week-1)*7 天，跨度 7 天）
func (c *Calendar) WeekDateRange(week int) (start, end time.Time) {
	start = c.start.AddDate(0, 0, (week-1)*7)
	end = start.AddDate(0, 0, 6)
	return start, end
}

// FormatDate 格式化为 YYYY-MM-DD
func (c *Calendar) FormatDate(t time.Time) string {
	return t.In(c.loc).Format(dateLayout)
}

// ── 日期辅助 ──

// civilDate 不带时区的日历日期，按 UTC 零点存放以便做整天差值运算
type civilDate struct {
	t time.Time
}

func mondayOf(t time.Time) civilDate {
	offset := isoWeekday(t.Weekday()) - 1
	return civilDate{t: time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)}
}

func (d civilDate) daysSince(other civilDate) int {
	return int(d.t.Sub(other.t).Hours() / 24)
}

// isoWeekday 将 time.Weekday (0=周日) 转为 1=周一 … 7=周日
func isoWeekday(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
