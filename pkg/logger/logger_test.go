package logger

import (
	"testing"

	"go.uber.org/zap"

	"github.com/DylanChiang-Dev/caicaizi-class/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		wantErr bool
		enabled zap.AtomicLevel
	}{
		{"json info", config.LogConfig{Level: "info", Format: "json"}, false, zap.NewAtomicLevelAt(zap.InfoLevel)},
		{"console debug", config.LogConfig{Level: "debug", Format: "console"}, false, zap.NewAtomicLevelAt(zap.DebugLevel)},
		{"非法级别", config.LogConfig{Level: "loud", Format: "json"}, true, zap.AtomicLevel{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(&tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("期望返回错误")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLogger 应成功: %v", err)
			}
			if !l.Core().Enabled(tt.enabled.Level()) {
				t.Errorf("级别 %s 应启用", tt.enabled.Level())
			}
			if tt.enabled.Level() == zap.InfoLevel && l.Core().Enabled(zap.DebugLevel) {
				t.Error("info 级别不应输出 debug")
			}
		})
	}
}
