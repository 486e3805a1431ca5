package storage

import (
	"context"
	"errors"
	"fmt"

	"talentflow/internal/model"

	"gorm.io/gorm"
)

// PutCandidate 整体写入一条候选人记录。
func (s *Store) PutCandidate(ctx context.Context, cand *model.Candidate) error {
	if err := s.db.WithContext(ctx).Save(cand).Error; err != nil {
		return fmt.Errorf("put candidate: %w", err)
	}
	return nil
}

// GetCandidate 按 ID 获取候选人。
func (s *Store) GetCandidate(ctx context.Context, id uint) (*model.Candidate, error) {
	var cand model.Candidate
	if err := s.db.WithContext(ctx).First(&cand, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	return &cand, nil
}

// AllCandidates 按插入顺序返回全部候选人。
func (s *Store) AllCandidates(ctx context.Context) ([]model.Candidate, error) {
	var cands []model.Candidate
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&cands).Error; err != nil {
		return nil, fmt.Errorf("all candidates: %w", err)
	}
	return cands, nil
}

// BulkAddCandidates 批量插入候选人，回填自增 ID。
func (s *Store) BulkAddCandidates(ctx context.Context, cands []model.Candidate) ([]model.Candidate, error) {
	if len(cands) == 0 {
		return cands, nil
	}
	// SQLite 对单条语句的绑定参数有上限，分批插入。
	if err := s.db.WithContext(ctx).CreateInBatches(&cands, 100).Error; err != nil {
		return nil, fmt.Errorf("bulk add candidates: %w", err)
	}
	return cands, nil
}

// PutCandidateWithEvent 在单个事务内更新候选人并追加一条时间线事件，
// 保证阶段变更与其留痕要么同时落盘要么都不落。
func (s *Store) PutCandidateWithEvent(ctx context.Context, cand *model.Candidate, event *model.TimelineEvent) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(cand).Error; err != nil {
			return err
		}
		return tx.Create(event).Error
	})
	if err != nil {
		return fmt.Errorf("put candidate with event: %w", err)
	}
	return nil
}

// TimelineFor 按追加顺序返回候选人的时间线事件。
func (s *Store) TimelineFor(ctx context.Context, candidateID uint) ([]model.TimelineEvent, error) {
	var events []model.TimelineEvent
	if err := s.db.WithContext(ctx).Where("candidate_id = ?", candidateID).Order("id ASC").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("timeline for candidate %d: %w", candidateID, err)
	}
	return events, nil
}

// CountCandidates 返回候选人总数。
func (s *Store) CountCandidates(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Candidate{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count candidates: %w", err)
	}
	return total, nil
}
