package repository

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/DylanChiang-Dev/caicaizi-class/internal/model"
	apperrors "github.com/DylanChiang-Dev/caicaizi-class/pkg/errors"
)

// ScheduleRepository 课表数据访问接口（只读，启动时加载一次）
type ScheduleRepository interface {
	ListCourses(ctx context.Context) ([]model.Course, error)
	GetCourse(ctx context.Context, id string) (*model.Course, error)
	ListTimeSlots(ctx context.Context) ([]model.TimeSlot, error)
	GetTimeSlot(ctx context.Context, period string) (*model.TimeSlot, error)
	Notes(ctx context.Context) ([]string, error)
}

// LoadScheduleFile 读取并校验 YAML 课表文件
func LoadScheduleFile(path string) (*model.ScheduleData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取课表文件失败: %w", err)
	}

	var data model.ScheduleData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析课表文件失败: %w", err)
	}

	if err := ValidateScheduleData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// ValidateScheduleData 校验课表数据
//   - 星期 1-7、单双周类型合法、时间格式 H:MM
//   - 课程 ID、节次标签唯一
//   - 时间段结束必须晚于开始（不支持跨午夜的节次）
//
//   - 周次范围若为 "start-end" 形式，start 不得大于 end
//
// 其它格式的周次范围不在此拒绝：格式错误时按整个学期处理
func ValidateScheduleData(data *model.ScheduleData) error {
	v := validator.New()
	if err := v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, err := model.ParseClock(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}

	if err := v.Struct(data); err != nil {
		return fmt.Errorf("课表数据校验失败: %w", err)
	}

	periods := make(map[string]bool, len(data.TimeSlots))
	for _, slot := range data.TimeSlots {
		if periods[slot.Period] {
			return fmt.Errorf("课表数据校验失败: 节次 %q 重复", slot.Period)
		}
		periods[slot.Period] = true

		start, end, err := slot.Minutes()
		if err != nil {
			return fmt.Errorf("课表数据校验失败: 节次 %q: %w", slot.Period, err)
		}
		if end <= start {
			return fmt.Errorf("课表数据校验失败: 节次 %q 结束时间必须晚于开始时间", slot.Period)
		}
	}

	ids := make(map[string]bool, len(data.Courses))
	for _, c := range data.Courses {
		if ids[c.ID] {
			return fmt.Errorf("课表数据校验失败: 课程 ID %q 重复", c.ID)
		}
		ids[c.ID] = true

		if start, end, ok := model.ParseWeekRange(c.WeekRange); ok && start > end {
			return fmt.Errorf("课表数据校验失败: 课程 %q 周次范围 %q 起始周大于结束周", c.ID, c.WeekRange)
		}
	}

	return nil
}

type scheduleRepo struct {
	timeSlots []model.TimeSlot
	courses   []model.Course
	notes     []string
}

// NewScheduleRepo 基于已加载的课表数据创建 ScheduleRepository
func NewScheduleRepo(data *model.ScheduleData) ScheduleRepository {
	if data == nil {
		data = &model.ScheduleData{}
	}
	r := &scheduleRepo{
		timeSlots: append([]model.TimeSlot(nil), data.TimeSlots...),
		notes:     append([]string(nil), data.Notes...),
	}
	r.courses = make([]model.Course, 0, len(data.Courses))
	for _, c := range data.Courses {
		r.courses = append(r.courses, copyCourse(c))
	}
	return r
}

func (r *scheduleRepo) ListCourses(_ context.Context) ([]model.Course, error) {
	out := make([]model.Course, 0, len(r.courses))
	for _, c := range r.courses {
		out = append(out, copyCourse(c))
	}
	return out, nil
}

func (r *scheduleRepo) GetCourse(_ context.Context, id string) (*model.Course, error) {
	for _, c := range r.courses {
		if c.ID == id {
			cp := copyCourse(c)
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *scheduleRepo) ListTimeSlots(_ context.Context) ([]model.TimeSlot, error) {
	return append([]model.TimeSlot(nil), r.timeSlots...), nil
}

func (r *scheduleRepo) GetTimeSlot(_ context.Context, period string) (*model.TimeSlot, error) {
	for _, s := range r.timeSlots {
		if s.Period == period {
			cp := s
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *scheduleRepo) Notes(_ context.Context) ([]string, error) {
	return append([]string(nil), r.notes...), nil
}

func copyCourse(c model.Course) model.Course {
	if c.StudentCount != nil {
		n := *c.StudentCount
		c.StudentCount = &n
	}
	return c
}
