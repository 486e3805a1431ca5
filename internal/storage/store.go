package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"talentflow/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ErrNotFound 表示集合中不存在对应记录。
var ErrNotFound = errors.New("record not found")

// Store 封装 SQLite 数据库访问，负责职位、候选人、问卷与时间线的读写。
// 每次写入在返回前落盘；写入失败时原记录保持不变。
type Store struct {
	db *gorm.DB
}

// NewStore 创建 Store 并自动迁移数据表。
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&model.Job{}, &model.Candidate{}, &model.TimelineEvent{}, &model.Assessment{}); err != nil {
		return nil, fmt.Errorf("auto migrate models: %w", err)
	}

	return &Store{db: db}, nil
}

// Close 关闭底层数据库连接。
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}
