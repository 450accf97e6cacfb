package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/DylanChiang-Dev/caicaizi-class/internal/dto"
	"github.com/DylanChiang-Dev/caicaizi-class/internal/service"
	"github.com/DylanChiang-Dev/caicaizi-class/pkg/response"
)

// ProgressHandler 学期进度 HTTP 处理器
type ProgressHandler struct {
	scheduleSvc service.ScheduleService
}

// NewProgressHandler 创建 ProgressHandler
func NewProgressHandler(scheduleSvc service.ScheduleService) *ProgressHandler {
	return &ProgressHandler{scheduleSvc: scheduleSvc}
}

// GetProgress 学期整体进度；缺省为当前周
// GET /api/v1/progress?week=3
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	var q dto.WeekQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	progress, err := h.scheduleSvc.Progress(c.Request.Context(), q.Week)
	if err != nil {
		handleScheduleError(c, err)
		return
	}

	response.OK(c, progress)
}

// ListCourseProgress 各课程进度，按完成比例降序
// GET /api/v1/progress/courses?week=3
func (h *ProgressHandler) ListCourseProgress(c *gin.Context) {
	var q dto.WeekQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.scheduleSvc.CourseProgressList(c.Request.Context(), q.Week)
	if err != nil {
		handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}
