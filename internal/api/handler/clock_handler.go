package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/DylanChiang-Dev/caicaizi-class/internal/service"
	apperrors "github.com/DylanChiang-Dev/caicaizi-class/pkg/errors"
	"github.com/DylanChiang-Dev/caicaizi-class/pkg/response"
)

// ClockHandler 时钟模块 HTTP 处理器
type ClockHandler struct {
	clockSvc service.ClockService
}

// NewClockHandler 创建 ClockHandler
func NewClockHandler(clockSvc service.ClockService) *ClockHandler {
	return &ClockHandler{clockSvc: clockSvc}
}

// GetStatus 当前时间与校时状态
// GET /api/v1/clock
func (h *ClockHandler) GetStatus(c *gin.Context) {
	status, err := h.clockSvc.Status(c.Request.Context())
	if err != nil {
		h.handleClockError(c, err)
		return
	}

	response.OK(c, status)
}

// Sync 手动触发网络校时
// POST /api/v1/clock/sync
//
// 校时失败仍返回 200，success=false 且 status.error 记录原因
func (h *ClockHandler) Sync(c *gin.Context) {
	result, err := h.clockSvc.Sync(c.Request.Context())
	if err != nil {
		h.handleClockError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ClockHandler) handleClockError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrSyncInProgress):
		response.Conflict(c, 20001, "时间同步进行中，请稍后再试")
	default:
		response.InternalError(c)
	}
}
