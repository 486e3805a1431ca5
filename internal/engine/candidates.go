package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"talentflow/internal/model"

	"gorm.io/datatypes"
)

// CandidateStore 定义候选人集合所需的持久化接口。
type CandidateStore interface {
	AllCandidates(ctx context.Context) ([]model.Candidate, error)
	PutCandidate(ctx context.Context, cand *model.Candidate) error
	PutCandidateWithEvent(ctx context.Context, cand *model.Candidate, event *model.TimelineEvent) error
	TimelineFor(ctx context.Context, candidateID uint) ([]model.TimelineEvent, error)
}

// JobDirectory 供候选人创建时校验 jobId 引用。
type JobDirectory interface {
	Exists(id uint) bool
}

// CandidateQuery 描述候选人列表查询条件。
type CandidateQuery struct {
	Search string
	Stage  model.Stage
	Page
}

// CandidatePage 是一次候选人查询的结果。
type CandidatePage struct {
	Candidates []model.Candidate
	Total      int
	Page       int
	PageSize   int
}

// Candidates 是候选人集合引擎，持有可重建的内存缓存。
type Candidates struct {
	mu    sync.RWMutex
	store CandidateStore
	jobs  JobDirectory
	items []model.Candidate
	now   func() time.Time
}

// NewCandidates 创建候选人引擎并加载全部记录。
func NewCandidates(ctx context.Context, store CandidateStore, jobs JobDirectory) (*Candidates, error) {
	items, err := store.AllCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	return &Candidates{store: store, jobs: jobs, items: items, now: time.Now}, nil
}

// List 对姓名与邮箱做大小写不敏感的子串搜索，可按阶段过滤；
// 无排序键，保持插入顺序。
func (c *Candidates) List(q CandidateQuery) CandidatePage {
	c.mu.RLock()
	defer c.mu.RUnlock()

	matched := make([]model.Candidate, 0, len(c.items))
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	for _, cand := range c.items {
		if q.Stage != "" && cand.Stage != q.Stage {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(cand.Name), needle) &&
			!strings.Contains(strings.ToLower(cand.Email), needle) {
			continue
		}
		matched = append(matched, cand)
	}

	page, size := q.normalized(20)
	return CandidatePage{
		Candidates: paginate(matched, page, size),
		Total:      len(matched),
		Page:       page,
		PageSize:   size,
	}
}

// Get 按 ID 返回候选人副本。
func (c *Candidates) Get(id uint) (model.Candidate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cand := range c.items {
		if cand.ID == id {
			return cand, nil
		}
	}
	return model.Candidate{}, ErrNotFound
}

// Create 新建候选人。jobID 必须指向已存在的职位，否则返回 ErrUnknownJob。
func (c *Candidates) Create(ctx context.Context, name, email string, stage model.Stage, jobID uint) (model.Candidate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.jobs != nil && !c.jobs.Exists(jobID) {
		return model.Candidate{}, fmt.Errorf("create candidate: job %d: %w", jobID, ErrUnknownJob)
	}
	if stage == "" {
		stage = model.StageApplied
	}

	cand := model.Candidate{Name: name, Email: email, Stage: stage, JobID: jobID}
	if err := c.store.PutCandidate(ctx, &cand); err != nil {
		return model.Candidate{}, err
	}
	c.items = append(c.items, cand)
	return cand, nil
}

// ChangeStage 变更候选人阶段，并追加恰好一条时间线事件；
// 两者在同一事务内落盘，失败时缓存不动。
func (c *Candidates) ChangeStage(ctx context.Context, id uint, stage model.Stage) (model.Candidate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i := range c.items {
		if c.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return model.Candidate{}, ErrNotFound
	}

	updated := c.items[idx]
	updated.Stage = stage
	event := model.TimelineEvent{
		CandidateID: id,
		Timestamp:   c.now(),
		Event:       datatypes.JSONMap{"stage": string(stage)},
	}
	if err := c.store.PutCandidateWithEvent(ctx, &updated, &event); err != nil {
		return model.Candidate{}, err
	}
	c.items[idx] = updated
	return updated, nil
}

// Timeline 按追加顺序返回候选人的时间线事件。
func (c *Candidates) Timeline(ctx context.Context, id uint) ([]model.TimelineEvent, error) {
	if _, err := c.Get(id); err != nil {
		return nil, err
	}
	events, err := c.store.TimelineFor(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load timeline: %w", err)
	}
	return events, nil
}
