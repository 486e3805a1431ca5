package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"talentflow/internal/model"
)

// JobStore 定义职位集合所需的持久化接口。
type JobStore interface {
	AllJobs(ctx context.Context) ([]model.Job, error)
	PutJob(ctx context.Context, job *model.Job) error
	ReplaceJobs(ctx context.Context, jobs []model.Job) error
}

// JobQuery 描述职位列表查询条件。
type JobQuery struct {
	Search string
	Status model.JobStatus
	Sort   string
	Page
}

// JobPage 是一次职位查询的结果，Total 为过滤后、分页前的数量。
type JobPage struct {
	Jobs     []model.Job
	Total    int
	Page     int
	PageSize int
}

// JobPatch 限定职位允许的局部修改，使非法补丁无法表达。
type JobPatch interface {
	apply(job *model.Job)
}

// RenameJob 修改职位标题。
type RenameJob struct {
	Title string
}

func (p RenameJob) apply(job *model.Job) { job.Title = p.Title }

// ChangeJobStatus 切换 active/archived。
type ChangeJobStatus struct {
	Status model.JobStatus
}

func (p ChangeJobStatus) apply(job *model.Job) { job.Status = p.Status }

// ChangeJobSlug 修改 slug，应用前会重新校验唯一性。
type ChangeJobSlug struct {
	Slug string
}

func (p ChangeJobSlug) apply(job *model.Job) { job.Slug = p.Slug }

// Jobs 是职位集合引擎，启动时从持久层整体加载。
type Jobs struct {
	mu    sync.RWMutex
	store JobStore
	items []model.Job // 插入顺序，排序平手时以此为准
}

// NewJobs 创建职位引擎并加载全部记录。
func NewJobs(ctx context.Context, store JobStore) (*Jobs, error) {
	items, err := store.AllJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load jobs: %w", err)
	}
	return &Jobs{store: store, items: items}, nil
}

// List 依次应用过滤、搜索、排序、分页。
// 搜索对标题与 slug 做大小写不敏感的子串匹配；
// 排序稳定，默认按 Order，sort=title 时按标题。
func (j *Jobs) List(q JobQuery) JobPage {
	j.mu.RLock()
	defer j.mu.RUnlock()

	matched := make([]model.Job, 0, len(j.items))
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	for _, job := range j.items {
		if q.Status != "" && job.Status != q.Status {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(job.Title), needle) &&
			!strings.Contains(strings.ToLower(job.Slug), needle) {
			continue
		}
		matched = append(matched, job)
	}

	if q.Sort == "title" {
		sort.SliceStable(matched, func(a, b int) bool { return matched[a].Title < matched[b].Title })
	} else {
		sort.SliceStable(matched, func(a, b int) bool { return matched[a].Order < matched[b].Order })
	}

	page, size := q.normalized(10)
	return JobPage{
		Jobs:     paginate(matched, page, size),
		Total:    len(matched),
		Page:     page,
		PageSize: size,
	}
}

// Get 按 ID 返回职位副本。
func (j *Jobs) Get(id uint) (model.Job, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	for _, job := range j.items {
		if job.ID == id {
			return job, nil
		}
	}
	return model.Job{}, ErrNotFound
}

// Exists 判断职位是否存在，供候选人引擎做引用检查。
func (j *Jobs) Exists(id uint) bool {
	_, err := j.Get(id)
	return err == nil
}

// Create 新建职位。slug 重复（大小写敏感的精确匹配）返回 ErrDuplicateSlug；
// 未指定 order 时排到末尾。先写穿持久层，成功后才进入缓存。
func (j *Jobs) Create(ctx context.Context, title, slug string, status model.JobStatus, order int) (model.Job, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	maxOrder := 0
	for _, job := range j.items {
		if job.Slug == slug {
			return model.Job{}, fmt.Errorf("create job: %w", ErrDuplicateSlug)
		}
		if job.Order > maxOrder {
			maxOrder = job.Order
		}
	}

	if status == "" {
		status = model.JobStatusActive
	}
	if order <= 0 {
		order = maxOrder + 1
	}

	job := model.Job{Title: title, Slug: slug, Status: status, Order: order}
	if err := j.store.PutJob(ctx, &job); err != nil {
		return model.Job{}, err
	}
	j.items = append(j.items, job)
	return job, nil
}

// Update 对职位应用一组补丁，全部成功或全部不生效。
// 补丁涉及 slug 时先对其余全部记录重新校验唯一性。
func (j *Jobs) Update(ctx context.Context, id uint, patches ...JobPatch) (model.Job, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	idx := -1
	for i := range j.items {
		if j.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return model.Job{}, ErrNotFound
	}

	updated := j.items[idx]
	for _, p := range patches {
		if slug, ok := p.(ChangeJobSlug); ok {
			for i := range j.items {
				if i != idx && j.items[i].Slug == slug.Slug {
					return model.Job{}, fmt.Errorf("update job %d: %w", id, ErrDuplicateSlug)
				}
			}
		}
		p.apply(&updated)
	}

	if err := j.store.PutJob(ctx, &updated); err != nil {
		return model.Job{}, err
	}
	j.items[idx] = updated
	return updated, nil
}

// Reorder 把位于 fromOrder 的职位移动到 toOrder（均为 1 起始位置）：
// 取出该职位后把插入下标夹到 [0, N-1]（N 为取出后的数量），
// 再对整个序列按 1..N 重新编号，并在单个事务里整体落盘。
// 落盘失败时缓存保持原状，调用方观察不到部分改号。
func (j *Jobs) Reorder(ctx context.Context, fromOrder, toOrder int) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	seq := make([]model.Job, len(j.items))
	copy(seq, j.items)
	sort.SliceStable(seq, func(a, b int) bool { return seq[a].Order < seq[b].Order })

	idx := -1
	for i := range seq {
		if seq[i].Order == fromOrder {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("reorder from %d: %w", fromOrder, ErrInvalidPosition)
	}

	moving := seq[idx]
	seq = append(seq[:idx], seq[idx+1:]...)

	insert := toOrder - 1
	if insert < 0 {
		insert = 0
	}
	if max := len(seq) - 1; insert > max {
		insert = max
	}
	if insert < 0 {
		insert = 0
	}

	seq = append(seq, model.Job{})
	copy(seq[insert+1:], seq[insert:])
	seq[insert] = moving

	changed := make([]model.Job, 0, len(seq))
	for i := range seq {
		if seq[i].Order != i+1 {
			seq[i].Order = i + 1
			changed = append(changed, seq[i])
		}
	}
	if len(changed) == 0 {
		return nil
	}

	if err := j.store.ReplaceJobs(ctx, changed); err != nil {
		return err
	}

	orders := make(map[uint]int, len(changed))
	for _, job := range changed {
		orders[job.ID] = job.Order
	}
	for i := range j.items {
		if o, ok := orders[j.items[i].ID]; ok {
			j.items[i].Order = o
		}
	}
	return nil
}

// Snapshot 返回全部职位的副本，供乐观客户端留存回滚点。
func (j *Jobs) Snapshot() []model.Job {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]model.Job, len(j.items))
	copy(out, j.items)
	return out
}
