package storage

import (
	"context"
	"fmt"

	"talentflow/internal/model"
)

// PutAssessment 整体写入一份问卷记录。
func (s *Store) PutAssessment(ctx context.Context, a *model.Assessment) error {
	if err := s.db.WithContext(ctx).Save(a).Error; err != nil {
		return fmt.Errorf("put assessment: %w", err)
	}
	return nil
}

// AllAssessments 按插入顺序返回全部问卷。
func (s *Store) AllAssessments(ctx context.Context) ([]model.Assessment, error) {
	var items []model.Assessment
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("all assessments: %w", err)
	}
	return items, nil
}

// BulkAddAssessments 批量插入问卷。
func (s *Store) BulkAddAssessments(ctx context.Context, items []model.Assessment) ([]model.Assessment, error) {
	if len(items) == 0 {
		return items, nil
	}
	if err := s.db.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, fmt.Errorf("bulk add assessments: %w", err)
	}
	return items, nil
}

// CountAssessments 返回问卷总数。
func (s *Store) CountAssessments(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Assessment{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count assessments: %w", err)
	}
	return total, nil
}
