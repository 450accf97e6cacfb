package service

import (
	"fmt"
	"time"

	"github.com/DylanChiang-Dev/caicaizi-class/internal/model"
)

// periodSpan 节次在一天内的分钟区间 [start, end]
type periodSpan struct {
	label string
	start int
	end   int
}

// PeriodTable 节次标签 → 当日时间区间
// 标签集合完全来自配置的时间段列表，不做硬编码
type PeriodTable struct {
	spans []periodSpan
	index map[string]int
}

// NewPeriodTable 由时间段列表构建节次表；时间格式错误或标签重复时报错
func NewPeriodTable(slots []model.TimeSlot) (*PeriodTable, error) {
	t := &PeriodTable{
		spans: make([]periodSpan, 0, len(slots)),
		index: make(map[string]int, len(slots)),
	}
	for _, slot := range slots {
		if _, dup := t.index[slot.Period]; dup {
			return nil, fmt.Errorf("节次 %q 重复", slot.Period)
		}
		start, end, err := slot.Minutes()
		if err != nil {
			return nil, fmt.Errorf("节次 %q: %w", slot.Period, err)
		}
		t.index[slot.Period] = len(t.spans)
		t.spans = append(t.spans, periodSpan{label: slot.Period, start: start, end: end})
	}
	return t, nil
}

// Lookup 返回节次的起止分钟
func (t *PeriodTable) Lookup(label string) (start, end int, ok bool) {
	i, ok := t.index[label]
	if !ok {
		return 0, 0, false
	}
	return t.spans[i].start, t.spans[i].end, true
}

// IsCurrentPeriod now 是否落在该节次内（两端均包含）；未知标签返回 false
func (t *PeriodTable) IsCurrentPeriod(label string, now time.Time) bool {
	start, end, ok := t.Lookup(label)
	if !ok {
		return false
	}
	m := minuteOfDay(now)
	return start <= m && m <= end
}

// CurrentLabel 返回 now 所在的第一个节次
func (t *PeriodTable) CurrentLabel(now time.Time) (string, bool) {
	m := minuteOfDay(now)
	for _, s := range t.spans {
		if s.start <= m && m <= s.end {
			return s.label, true
		}
	}
	return "", false
}

// Match 按起止分钟精确匹配节次
func (t *PeriodTable) Match(start, end int) (string, bool) {
	for _, s := range t.spans {
		if s.start == start && s.end == end {
			return s.label, true
		}
	}
	return "", false
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// PeriodService 节次表 + 时钟
type PeriodService struct {
	table *PeriodTable
	clock Clock
	loc   *time.Location
}

// NewPeriodService 创建 PeriodService
func NewPeriodService(table *PeriodTable, clk Clock, loc *time.Location) *PeriodService {
	if loc == nil {
		loc = time.Local
	}
	return &PeriodService{table: table, clock: clk, loc: loc}
}

// Table 返回节次表
func (p *PeriodService) Table() *PeriodTable {
	return p.table
}

// IsCurrentPeriod 当前时间是否处于该节次
func (p *PeriodService) IsCurrentPeriod(label string) bool {
	return p.table.IsCurrentPeriod(label, p.clock.Now().In(p.loc))
}

// CurrentPeriod 当前所在节次
func (p *PeriodService) CurrentPeriod() (string, bool) {
	return p.table.CurrentLabel(p.clock.Now().In(p.loc))
}
