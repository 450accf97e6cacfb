package dto

// ── 作息时间 DTO ──

// TimeSlotResponse 节次信息
type TimeSlotResponse struct {
	Period          string `json:"period"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
	IsCurrent       bool   `json:"is_current"`
}
