package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/DylanChiang-Dev/caicaizi-class/internal/service"
	"github.com/DylanChiang-Dev/caicaizi-class/pkg/response"
)

// TimeSlotHandler 作息时间 HTTP 处理器
type TimeSlotHandler struct {
	scheduleSvc service.ScheduleService
}

// NewTimeSlotHandler 创建 TimeSlotHandler
func NewTimeSlotHandler(scheduleSvc service.ScheduleService) *TimeSlotHandler {
	return &TimeSlotHandler{scheduleSvc: scheduleSvc}
}

// ListTimeSlots 获取节次作息列表（按开始时间排序）
// GET /api/v1/time-slots
func (h *TimeSlotHandler) ListTimeSlots(c *gin.Context) {
	slots, err := h.scheduleSvc.ListTimeSlots(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": slots})
}
