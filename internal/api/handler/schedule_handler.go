package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DylanChiang-Dev/caicaizi-class/internal/dto"
	"github.com/DylanChiang-Dev/caicaizi-class/internal/service"
	"github.com/DylanChiang-Dev/caicaizi-class/pkg/response"
)

// ScheduleHandler 课表模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// GetCurrentWeek 当前教学周信息
// GET /api/v1/weeks/current
func (h *ScheduleHandler) GetCurrentWeek(c *gin.Context) {
	info, err := h.scheduleSvc.CurrentWeek(c.Request.Context())
	if err != nil {
		handleScheduleError(c, err)
		return
	}

	response.OK(c, info)
}

// GetWeek 某一周的课表
// GET /api/v1/weeks/:week
func (h *ScheduleHandler) GetWeek(c *gin.Context) {
	week, ok := parseWeekParam(c)
	if !ok {
		return
	}

	view, err := h.scheduleSvc.WeekView(c.Request.Context(), week)
	if err != nil {
		handleScheduleError(c, err)
		return
	}

	response.OK(c, view)
}

// ListCourses 课程列表；带 week 参数时只返回该周上课的课程
// GET /api/v1/courses?week=3
func (h *ScheduleHandler) ListCourses(c *gin.Context) {
	var q dto.WeekQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	courses, err := h.scheduleSvc.ListCourses(c.Request.Context(), q.Week)
	if err != nil {
		handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": courses})
}

// GetCourse 课程详情（含进度）
// GET /api/v1/courses/:id?week=3
func (h *ScheduleHandler) GetCourse(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程ID不能为空")
		return
	}

	var q dto.WeekQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	detail, err := h.scheduleSvc.GetCourse(c.Request.Context(), id, q.Week)
	if err != nil {
		handleScheduleError(c, err)
		return
	}

	response.OK(c, detail)
}

// ── 辅助 ──

// parseWeekParam 解析路径参数 :week，失败时已写入 400 响应
func parseWeekParam(c *gin.Context) (int, bool) {
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil || week < 1 {
		response.BadRequest(c, 21001, "周次无效")
		return 0, false
	}
	return week, true
}

func handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWeekOutOfRange):
		response.BadRequest(c, 21001, "周次超出学期范围")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 22001, "课程不存在")
	default:
		response.InternalError(c)
	}
}
