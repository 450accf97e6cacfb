package dto

// ── 课表模块 DTO ──

// WeekQuery 可选周次查询参数（?week=）
type WeekQuery struct {
	Week *int `form:"week" binding:"omitempty,min=1"`
}

// WeekInfoResponse 当前周信息
type WeekInfoResponse struct {
	Week      int    `json:"week"`
	Weekday   int    `json:"weekday"` // 1=周一 … 7=周日
	Today     string `json:"today"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	MaxWeek   int    `json:"max_week"`
	Period    string `json:"current_period,omitempty"`
}

// CourseResponse 课程信息
type CourseResponse struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Teacher         string            `json:"teacher,omitempty"`
	Classroom       string            `json:"classroom"`
	DayOfWeek       int               `json:"day_of_week"`
	Periods         string            `json:"periods"`
	WeekType        string            `json:"week_type"`
	WeekTypeLabel   string            `json:"week_type_label"`
	WeekRange       string            `json:"week_range,omitempty"`
	StudentCount    *int              `json:"student_count,omitempty"`
	CourseCode      string            `json:"course_code,omitempty"`
	Note            string            `json:"note,omitempty"`
	Description     string            `json:"description,omitempty"`
	TimeSlot        *TimeSlotResponse `json:"time_slot,omitempty"`
	IsToday         bool              `json:"is_today"`
	IsCurrentPeriod bool              `json:"is_current_period"`
}

// WeekViewResponse 某一周的课表
type WeekViewResponse struct {
	Week          int              `json:"week"`
	StartDate     string           `json:"start_date"`
	EndDate       string           `json:"end_date"`
	IsCurrentWeek bool             `json:"is_current_week"`
	Courses       []CourseResponse `json:"courses"`
	Notes         []string         `json:"notes"`
}

// CourseDetailResponse 课程详情（含进度）
type CourseDetailResponse struct {
	Course   CourseResponse          `json:"course"`
	Week     int                     `json:"week"`
	Visible  bool                    `json:"visible"` // 该周是否上课
	Progress *CourseProgressResponse `json:"progress,omitempty"`
}

// ImportPreviewResponse ICS 导入预览
type ImportPreviewResponse struct {
	Courses []CourseResponse `json:"courses"`
	Skipped int              `json:"skipped"`
}
