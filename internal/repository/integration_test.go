//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DylanChiang-Dev/caicaizi-class/internal/model"
	"github.com/DylanChiang-Dev/caicaizi-class/internal/repository"
	"github.com/DylanChiang-Dev/caicaizi-class/pkg/database"
	apperrors "github.com/DylanChiang-Dev/caicaizi-class/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=class password=class_password dbname=class_test sslmode=disable TimeZone=Asia/Taipei"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "数据库迁移失败: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// ═══════════════════════════════════════════════════════════
// KVRepository
// ═══════════════════════════════════════════════════════════

func TestKVRepo_PutGetOverwrite(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewKVRepo(testDB)
	key := fmt.Sprintf("test-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		testDB.Where("key = ?", key).Delete(&model.KVEntry{})
	})

	if _, err := repo.Get(ctx, key); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("期望 ErrNotFound，实际: %v", err)
	}

	if err := repo.Put(ctx, key, []byte(`{"offset":1}`)); err != nil {
		t.Fatalf("Put 失败: %v", err)
	}
	if err := repo.Put(ctx, key, []byte(`{"offset":2}`)); err != nil {
		t.Fatalf("覆盖 Put 失败: %v", err)
	}

	got, err := repo.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get 失败: %v", err)
	}
	if string(got) != `{"offset":2}` {
		t.Errorf("期望覆盖后的值，实际: %s", got)
	}
}
