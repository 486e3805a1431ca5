package model

import "time"

// JobStatus 表示职位状态。
type JobStatus string

const (
	JobStatusActive   JobStatus = "active"
	JobStatusArchived JobStatus = "archived"
)

// Job 表示一个招聘职位
// 中文注释说明字段用途
// - Slug: 全局唯一的 URL 标识
// - Status: active 表示开放，archived 代替硬删除
// - Order: 看板排序位置，全集上保持 1..N 连续无重复
// - CreatedAt/UpdatedAt: 由 GORM 自动维护

type Job struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `json:"title"`
	Slug      string    `gorm:"uniqueIndex" json:"slug"`
	Status    JobStatus `json:"status"`
	Order     int       `gorm:"column:sort_order" json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
