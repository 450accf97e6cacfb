package service

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	"github.com/DylanChiang-Dev/caicaizi-class/internal/dto"
	"github.com/DylanChiang-Dev/caicaizi-class/internal/model"
	"github.com/DylanChiang-Dev/caicaizi-class/internal/repository"
	apperrors "github.com/DylanChiang-Dev/caicaizi-class/pkg/errors"
)

// ── 课表模块业务错误 ──

var (
	ErrCourseNotFound = errors.New("课程不存在")
	ErrWeekOutOfRange = errors.New("周次超出学期范围")
)

// ScheduleService 课表业务接口
type ScheduleService interface {
	// 当前周信息
	CurrentWeek(ctx context.Context) (*dto.WeekInfoResponse, error)
	// 某一周的课表（只含该周上课的课程）
	WeekView(ctx context.Context, week int) (*dto.WeekViewResponse, error)
	// 课程列表；week 非空时按该周过滤
	ListCourses(ctx context.Context, week *int) ([]dto.CourseResponse, error)
	// 课程详情（含进度）
	GetCourse(ctx context.Context, id string, week *int) (*dto.CourseDetailResponse, error)
	// 作息时间
	ListTimeSlots(ctx context.Context) ([]dto.TimeSlotResponse, error)
	// 学期总进度
	Progress(ctx context.Context, week *int) (*dto.SemesterProgressResponse, error)
	// 各课程进度（降序）
	CourseProgressList(ctx context.Context, week *int) ([]dto.CourseProgressResponse, error)
}

type scheduleService struct {
	repo    *repository.Repository
	engines *Engines
	logger  *zap.Logger
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, engines *Engines, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, engines: engines, logger: logger}
}

// ────────────────────── CurrentWeek ──────────────────────

func (s *scheduleService) CurrentWeek(_ context.Context) (*dto.WeekInfoResponse, error) {
	cal := s.engines.Calendar
	now := cal.Now()
	week := cal.WeekOf(now)
	start, end := cal.WeekDateRange(week)

	resp := &dto.WeekInfoResponse{
		Week:      week,
		Weekday:   isoWeekday(now.Weekday()),
		Today:     cal.FormatDate(now),
		StartDate: cal.FormatDate(start),
		EndDate:   cal.FormatDate(end),
		MaxWeek:   s.engines.MaxWeek,
	}
	if label, ok := s.engines.Periods.Table().CurrentLabel(now); ok {
		resp.Period = label
	}
	return resp, nil
}

// ────────────────────── WeekView ──────────────────────

func (s *scheduleService) WeekView(ctx context.Context, week int) (*dto.WeekViewResponse, error) {
	if err := s.checkWeek(week); err != nil {
		return nil, err
	}

	courses, err := s.repo.Schedule.ListCourses(ctx)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	slots, err := s.slotIndex(ctx)
	if err != nil {
		return nil, err
	}
	notes, err := s.repo.Schedule.Notes(ctx)
	if err != nil {
		return nil, err
	}

	cal := s.engines.Calendar
	currentWeek := cal.CurrentWeek()
	start, end := cal.WeekDateRange(week)

	visible := s.filterVisible(courses, week)
	list := make([]dto.CourseResponse, 0, len(visible))
	for _, c := range visible {
		list = append(list, s.toCourseResponse(c, slots, week, currentWeek))
	}

	return &dto.WeekViewResponse{
		Week:          week,
		StartDate:     cal.FormatDate(start),
		EndDate:       cal.FormatDate(end),
		IsCurrentWeek: week == currentWeek,
		Courses:       list,
		Notes:         notes,
	}, nil
}

// ────────────────────── ListCourses ──────────────────────

func (s *scheduleService) ListCourses(ctx context.Context, week *int) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Schedule.ListCourses(ctx)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	slots, err := s.slotIndex(ctx)
	if err != nil {
		return nil, err
	}

	currentWeek := s.engines.Calendar.CurrentWeek()
	target := currentWeek
	if week != nil {
		if err := s.checkWeek(*week); err != nil {
			return nil, err
		}
		target = *week
		courses = s.filterVisible(courses, target)
	} else {
		s.sortCourses(courses)
	}

	list := make([]dto.CourseResponse, 0, len(courses))
	for _, c := range courses {
		list = append(list, s.toCourseResponse(c, slots, target, currentWeek))
	}
	return list, nil
}

// ────────────────────── GetCourse ──────────────────────

func (s *scheduleService) GetCourse(ctx context.Context, id string, week *int) (*dto.CourseDetailResponse, error) {
	target, err := s.resolveWeek(week)
	if err != nil {
		return nil, err
	}

	course, err := s.repo.Schedule.GetCourse(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	slots, err := s.slotIndex(ctx)
	if err != nil {
		return nil, err
	}

	currentWeek := s.engines.Calendar.CurrentWeek()
	resp := &dto.CourseDetailResponse{
		Course:  s.toCourseResponse(*course, slots, target, currentWeek),
		Week:    target,
		Visible: ShouldShowCourse(course.WeekType, target, course.WeekRange),
	}
	// 节次不在作息表中的课程不计算进度
	slot, err := s.repo.Schedule.GetTimeSlot(ctx, course.Periods)
	switch {
	case err == nil:
		p := toCourseProgressResponse(s.engines.Progress.CourseProgress(*course, *slot, target))
		resp.Progress = &p
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}
	return resp, nil
}

// ────────────────────── ListTimeSlots ──────────────────────

func (s *scheduleService) ListTimeSlots(ctx context.Context) ([]dto.TimeSlotResponse, error) {
	slots, err := s.repo.Schedule.ListTimeSlots(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]dto.TimeSlotResponse, 0, len(slots))
	for _, slot := range slots {
		list = append(list, dto.TimeSlotResponse{
			Period:          slot.Period,
			StartTime:       slot.StartTime,
			EndTime:         slot.EndTime,
			DurationMinutes: CalculateDuration(slot.StartTime, slot.EndTime),
			IsCurrent:       s.engines.Periods.IsCurrentPeriod(slot.Period),
		})
	}
	return list, nil
}

// ────────────────────── Progress ──────────────────────

func (s *scheduleService) Progress(ctx context.Context, week *int) (*dto.SemesterProgressResponse, error) {
	target, err := s.resolveWeek(week)
	if err != nil {
		return nil, err
	}
	courses, slots, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	sp := s.engines.Progress.SemesterProgress(courses, slots, target)
	return &dto.SemesterProgressResponse{
		Week:                  target,
		TotalMinutes:          sp.TotalMinutes,
		CompletedMinutes:      sp.CompletedMinutes,
		RemainingMinutes:      sp.RemainingMinutes,
		Percentage:            sp.Percentage,
		TotalCourses:          sp.TotalCourses,
		CompletedCourses:      sp.CompletedCourses,
		AverageWeeksPerCourse: sp.AverageWeeksPerCourse,
		TotalText:             FormatDuration(sp.TotalMinutes),
		CompletedText:         FormatDuration(sp.CompletedMinutes),
		RemainingText:         FormatDuration(sp.RemainingMinutes),
		Status:                toStatusResponse(StatusForPercentage(sp.Percentage)),
	}, nil
}

func (s *scheduleService) CourseProgressList(ctx context.Context, week *int) ([]dto.CourseProgressResponse, error) {
	target, err := s.resolveWeek(week)
	if err != nil {
		return nil, err
	}
	courses, slots, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	all := s.engines.Progress.AllCoursesProgress(courses, slots, target)
	list := make([]dto.CourseProgressResponse, 0, len(all))
	for _, p := range all {
		list = append(list, toCourseProgressResponse(p))
	}
	return list, nil
}

// ── 内部辅助方法 ──

func (s *scheduleService) checkWeek(week int) error {
	if week < 1 || week > s.engines.MaxWeek {
		return ErrWeekOutOfRange
	}
	return nil
}

// resolveWeek 未指定周次时使用当前周
func (s *scheduleService) resolveWeek(week *int) (int, error) {
	if week == nil {
		return s.engines.Calendar.CurrentWeek(), nil
	}
	if err := s.checkWeek(*week); err != nil {
		return 0, err
	}
	return *week, nil
}

func (s *scheduleService) loadAll(ctx context.Context) ([]model.Course, []model.TimeSlot, error) {
	courses, err := s.repo.Schedule.ListCourses(ctx)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, nil, err
	}
	slots, err := s.repo.Schedule.ListTimeSlots(ctx)
	if err != nil {
		s.logger.Error("查询作息时间失败", zap.Error(err))
		return nil, nil, err
	}
	return courses, slots, nil
}

func (s *scheduleService) slotIndex(ctx context.Context) (map[string]model.TimeSlot, error) {
	slots, err := s.repo.Schedule.ListTimeSlots(ctx)
	if err != nil {
		s.logger.Error("查询作息时间失败", zap.Error(err))
		return nil, err
	}
	index := make(map[string]model.TimeSlot, len(slots))
	for _, slot := range slots {
		index[slot.Period] = slot
	}
	return index, nil
}

// filterVisible 保留第 week 周上课的课程，按星期、节次排序
func (s *scheduleService) filterVisible(courses []model.Course, week int) []model.Course {
	out := make([]model.Course, 0, len(courses))
	for _, c := range courses {
		if ShouldShowCourse(c.WeekType, week, c.WeekRange) {
			out = append(out, c)
		}
	}
	s.sortCourses(out)
	return out
}

func (s *scheduleService) sortCourses(courses []model.Course) {
	table := s.engines.Periods.Table()
	sort.SliceStable(courses, func(i, j int) bool {
		if courses[i].DayOfWeek != courses[j].DayOfWeek {
			return courses[i].DayOfWeek < courses[j].DayOfWeek
		}
		si, _, _ := table.Lookup(courses[i].Periods)
		sj, _, _ := table.Lookup(courses[j].Periods)
		return si < sj
	})
}

// toCourseResponse 今天 / 当前节次标记仅在当前周且该周上课时成立
func (s *scheduleService) toCourseResponse(c model.Course, slots map[string]model.TimeSlot, week, currentWeek int) dto.CourseResponse {
	resp := newCourseResponse(c, slots)
	if week == currentWeek && ShouldShowCourse(c.WeekType, week, c.WeekRange) && s.engines.Calendar.IsToday(c.DayOfWeek) {
		resp.IsToday = true
		resp.IsCurrentPeriod = s.engines.Periods.IsCurrentPeriod(c.Periods)
		if resp.TimeSlot != nil {
			resp.TimeSlot.IsCurrent = resp.IsCurrentPeriod
		}
	}
	return resp
}

func newCourseResponse(c model.Course, slots map[string]model.TimeSlot) dto.CourseResponse {
	resp := dto.CourseResponse{
		ID:            c.ID,
		Name:          c.Name,
		Teacher:       c.Teacher,
		Classroom:     c.Classroom,
		DayOfWeek:     c.DayOfWeek,
		Periods:       c.Periods,
		WeekType:      string(c.WeekType),
		WeekTypeLabel: WeekTypeDisplay(c.WeekType),
		WeekRange:     c.WeekRange,
		StudentCount:  c.StudentCount,
		CourseCode:    c.CourseCode,
		Note:          c.Note,
		Description:   c.Description,
	}
	if slot, ok := slots[c.Periods]; ok {
		resp.TimeSlot = &dto.TimeSlotResponse{
			Period:          slot.Period,
			StartTime:       slot.StartTime,
			EndTime:         slot.EndTime,
			DurationMinutes: CalculateDuration(slot.StartTime, slot.EndTime),
		}
	}
	return resp
}

func toCourseProgressResponse(p CourseProgress) dto.CourseProgressResponse {
	return dto.CourseProgressResponse{
		CourseID:         p.Course.ID,
		CourseName:       p.Course.Name,
		StartWeek:        p.StartWeek,
		EndWeek:          p.EndWeek,
		TotalMinutes:     p.TotalMinutes,
		CompletedMinutes: p.CompletedMinutes,
		RemainingMinutes: p.RemainingMinutes,
		Percentage:       p.Percentage,
		IsActive:         p.IsActive,
		WeeksCount:       p.WeeksCount,
		CompletedWeeks:   p.CompletedWeeks,
		TotalText:        FormatDuration(p.TotalMinutes),
		CompletedText:    FormatDuration(p.CompletedMinutes),
		RemainingText:    FormatDuration(p.RemainingMinutes),
		Status:           toStatusResponse(StatusForPercentage(p.Percentage)),
	}
}

func toStatusResponse(st ProgressStatus) dto.ProgressStatusResponse {
	return dto.ProgressStatusResponse{Label: st.Label, Color: st.Color, BgColor: st.BgColor}
}
