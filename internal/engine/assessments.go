package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"talentflow/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AssessmentStore 定义问卷集合所需的持久化接口。
type AssessmentStore interface {
	AllAssessments(ctx context.Context) ([]model.Assessment, error)
	PutAssessment(ctx context.Context, a *model.Assessment) error
}

// Assessments 是问卷集合引擎，以 jobID 为键，一个职位至多一份。
type Assessments struct {
	mu    sync.RWMutex
	store AssessmentStore
	byJob map[uint]model.Assessment
	now   func() time.Time
	newID func() string
}

// NewAssessments 创建问卷引擎并加载全部记录。
func NewAssessments(ctx context.Context, store AssessmentStore) (*Assessments, error) {
	items, err := store.AllAssessments(ctx)
	if err != nil {
		return nil, fmt.Errorf("load assessments: %w", err)
	}
	byJob := make(map[uint]model.Assessment, len(items))
	for _, a := range items {
		byJob[a.JobID] = a
	}
	return &Assessments{store: store, byJob: byJob, now: time.Now, newID: uuid.NewString}, nil
}

// Get 返回某职位的问卷，不存在时返回 ErrNotFound。
func (a *Assessments) Get(jobID uint) (model.Assessment, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	item, ok := a.byJob[jobID]
	if !ok {
		return model.Assessment{}, ErrNotFound
	}
	return item, nil
}

// Save 整体覆盖某职位的编辑器状态（后写者胜，不做合并）；
// 问卷不存在时新建，答卷列表保持不变。
func (a *Assessments) Save(ctx context.Context, jobID uint, state model.BuilderState) (model.Assessment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	item, ok := a.byJob[jobID]
	if !ok {
		item = model.Assessment{
			JobID:     jobID,
			Responses: datatypes.NewJSONSlice([]model.AssessmentResponse{}),
		}
	}
	item.BuilderState = datatypes.NewJSONType(state)

	if err := a.store.PutAssessment(ctx, &item); err != nil {
		return model.Assessment{}, err
	}
	a.byJob[jobID] = item
	return item, nil
}

// Submit 向某职位的问卷追加一份答卷；问卷不存在时返回 ErrNotFound。
// 答卷只追加，已有提交永不修改。
func (a *Assessments) Submit(ctx context.Context, jobID, candidateID uint, answers map[string]any) (model.AssessmentResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	item, ok := a.byJob[jobID]
	if !ok {
		return model.AssessmentResponse{}, ErrNotFound
	}

	resp := model.AssessmentResponse{
		ID:          a.newID(),
		CandidateID: candidateID,
		Responses:   answers,
		SubmittedAt: a.now(),
	}
	updated := item
	updated.Responses = append(datatypes.NewJSONSlice([]model.AssessmentResponse{}), item.Responses...)
	updated.Responses = append(updated.Responses, resp)

	if err := a.store.PutAssessment(ctx, &updated); err != nil {
		return model.AssessmentResponse{}, err
	}
	a.byJob[jobID] = updated
	return resp, nil
}
