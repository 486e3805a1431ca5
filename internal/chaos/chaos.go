// Package chaos 提供可注入的延迟与随机失败策略，用来模拟网络环境，
// 让乐观更新的客户端有回滚路径可走。策略是可替换的接口，
// 测试里可以用确定性的实现代替随机数。
package chaos

import (
	"math/rand"
	"sync"
	"time"
)

// Policy 决定单次请求是否注入失败以及模拟多长的网络延迟。
// Fail 以操作标识为粒度独立判定；注入失败发生在业务逻辑之前，
// 对引擎而言等同于请求从未发出。
type Policy interface {
	Fail(op string) bool
	Latency() time.Duration
}

// DefaultFailRate 是未在失败率表中列出的操作使用的兜底失败率。
const DefaultFailRate = 0.08

// DefaultRates 返回按操作标识的失败率表：读低、写高、重排序最高；
// 候选人列表与问卷读取从不注入失败。
func DefaultRates() map[string]float64 {
	return map[string]float64{
		"jobs.list":           0.05,
		"jobs.create":         0.08,
		"jobs.update":         0.08,
		"jobs.reorder":        0.10,
		"candidates.list":     0,
		"candidates.create":   0.08,
		"candidates.update":   0.08,
		"candidates.timeline": 0,
		"assessments.get":     0,
		"assessments.save":    0.08,
		"assessments.submit":  0.08,
	}
}

// Random 按失败率表随机注入失败，延迟均匀分布在 [Min, Max)。
type Random struct {
	mu    sync.Mutex
	rng   *rand.Rand
	rates map[string]float64
	min   time.Duration
	max   time.Duration
}

// NewRandom 创建随机策略，默认延迟 200ms–1200ms、失败率表见 DefaultRates。
func NewRandom(rng *rand.Rand) *Random {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Random{
		rng:   rng,
		rates: DefaultRates(),
		min:   200 * time.Millisecond,
		max:   1200 * time.Millisecond,
	}
}

// Fail 判定给定操作本次是否注入失败。
func (r *Random) Fail(op string) bool {
	rate, ok := r.rates[op]
	if !ok {
		rate = DefaultFailRate
	}
	if rate <= 0 {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64() < rate
}

// Latency 返回本次请求的模拟延迟。
func (r *Random) Latency() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.min + time.Duration(r.rng.Int63n(int64(r.max-r.min)))
}

// None 不注入失败也不产生延迟，用于关闭混沌注入。
type None struct{}

// Fail 永远返回 false。
func (None) Fail(string) bool { return false }

// Latency 永远返回零。
func (None) Latency() time.Duration { return 0 }
