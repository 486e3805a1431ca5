package storage

import (
	"context"
	"errors"
	"fmt"

	"talentflow/internal/model"

	"gorm.io/gorm"
)

// PutJob 整体写入一条职位记录，ID 为零时插入并回填，否则按主键覆盖。
func (s *Store) PutJob(ctx context.Context, job *model.Job) error {
	if err := s.db.WithContext(ctx).Save(job).Error; err != nil {
		return fmt.Errorf("put job: %w", err)
	}
	return nil
}

// GetJob 按 ID 获取职位。
func (s *Store) GetJob(ctx context.Context, id uint) (*model.Job, error) {
	var job model.Job
	if err := s.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// AllJobs 按插入顺序返回全部职位。
func (s *Store) AllJobs(ctx context.Context) ([]model.Job, error) {
	var jobs []model.Job
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("all jobs: %w", err)
	}
	return jobs, nil
}

// BulkAddJobs 批量插入职位，回填自增 ID。
func (s *Store) BulkAddJobs(ctx context.Context, jobs []model.Job) ([]model.Job, error) {
	if len(jobs) == 0 {
		return jobs, nil
	}
	if err := s.db.WithContext(ctx).Create(&jobs).Error; err != nil {
		return nil, fmt.Errorf("bulk add jobs: %w", err)
	}
	return jobs, nil
}

// ReplaceJobs 在单个事务内整体覆盖给定职位，供重排序使用：
// 要么全部改号落盘，要么一个都不动。
func (s *Store) ReplaceJobs(ctx context.Context, jobs []model.Job) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range jobs {
			if err := tx.Save(&jobs[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace jobs: %w", err)
	}
	return nil
}

// CountJobs 返回职位总数。
func (s *Store) CountJobs(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Job{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return total, nil
}
