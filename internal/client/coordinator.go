// Package client 实现调用方的乐观变更协调器：先在本地应用变更，
// 再等待网关确认；确认失败时回滚到变更前的快照。
// 快照按值深拷贝，避免 current 与 snapshot 之间的别名共享。
package client

import (
	"context"
	"sync"

	"talentflow/internal/model"
)

// State 表示一次变更的生命周期状态。
type State string

const (
	StateIdle       State = "idle"
	StateApplied    State = "applied"
	StateConfirmed  State = "confirmed"
	StateRolledBack State = "rolled-back"
)

// Coordinator 管理某份集合视图上的乐观变更。
// 同一记录上的并发变更不加锁串行化，后发起的覆盖先发起的（已知竞态）。
type Coordinator[S any] struct {
	mu       sync.Mutex
	clone    func(S) S
	state    State
	current  S
	snapshot S
	lastErr  error
}

// New 创建协调器。clone 必须返回与输入不共享底层存储的副本。
func New[S any](initial S, clone func(S) S) *Coordinator[S] {
	return &Coordinator[S]{
		clone:   clone,
		state:   StateIdle,
		current: initial,
	}
}

// Current 返回当前视图的副本。
func (c *Coordinator[S]) Current() S {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clone(c.current)
}

// State 返回最近一次变更的状态。
func (c *Coordinator[S]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err 返回最近一次被回滚的变更携带的错误。
func (c *Coordinator[S]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Mutate 执行一次乐观变更：
// 先留存快照并在本地应用 apply，视图立即反映新状态；
// 随后等待 confirm 的结果——成功则丢弃快照，失败则精确恢复快照。
// confirm 期间不持有锁，视图读取不会被网关延迟阻塞。
func (c *Coordinator[S]) Mutate(ctx context.Context, apply func(S) S, confirm func(context.Context) error) error {
	c.mu.Lock()
	snapshot := c.clone(c.current)
	c.snapshot = snapshot
	c.current = apply(c.clone(c.current))
	c.state = StateApplied
	c.lastErr = nil
	c.mu.Unlock()

	err := confirm(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.current = snapshot
		c.state = StateRolledBack
		c.lastErr = err
		return err
	}
	var zero S
	c.snapshot = zero
	c.state = StateConfirmed
	return nil
}

// CloneJobs 是职位视图的标准拷贝函数。
func CloneJobs(jobs []model.Job) []model.Job {
	out := make([]model.Job, len(jobs))
	copy(out, jobs)
	return out
}

// CloneCandidates 是候选人视图的标准拷贝函数。
func CloneCandidates(cands []model.Candidate) []model.Candidate {
	out := make([]model.Candidate, len(cands))
	copy(out, cands)
	return out
}
