package boltdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	apperrors "github.com/DylanChiang-Dev/caicaizi-class/pkg/errors"
)

var bucketName = []byte("ClockState")

// Store 基于 bbolt 的本地文件键值存储
type Store struct {
	db *bbolt.DB
}

// Open 打开（或创建）数据库文件并初始化 bucket
func Open(path string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("打开 bolt 数据库失败: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化 bucket 失败: %w", err)
	}

	logger.Info("bolt 存储已就绪", zap.String("path", path))
	return &Store{db: db}, nil
}

// Get 读取键值；键不存在时返回 apperrors.ErrNotFound
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return fmt.Errorf("bucket %s 不存在", bucketName)
		}
		v := b.Get([]byte(key))
		if v == nil {
			return apperrors.ErrNotFound
		}
		// bbolt 返回的切片只在事务内有效
		out = append([]byte(nil), v...)
		return nil
	})
	return out, err
}

// Put 写入键值
func (s *Store) Put(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return fmt.Errorf("bucket %s 不存在", bucketName)
		}
		return b.Put([]byte(key), value)
	})
}

// Close 关闭数据库
func (s *Store) Close() error {
	return s.db.Close()
}
