// Package engine 持有各集合在内存中的可重建缓存，实现查询、校验与
// 排序算法，并在每次变更时写穿到持久层。缓存永远不是事实来源，
// 可以随时丢弃并从 storage 重新加载。
package engine

import "errors"

// 确定性的校验错误，网关将其映射为客户端错误；
// 其余错误一律视为持久层故障向上传播。
var (
	ErrDuplicateSlug   = errors.New("slug already in use")
	ErrInvalidPosition = errors.New("invalid reorder position")
	ErrUnknownJob      = errors.New("unknown job")
	ErrNotFound        = errors.New("record not found")
)

// IsValidation 判断错误是否为确定性的校验失败。
func IsValidation(err error) bool {
	return errors.Is(err, ErrDuplicateSlug) ||
		errors.Is(err, ErrInvalidPosition) ||
		errors.Is(err, ErrUnknownJob)
}

// Page 描述分页查询的通用参数，Page 从 1 开始。
type Page struct {
	Page     int
	PageSize int
}

func (p Page) normalized(defaultSize int) (int, int) {
	page := p.Page
	if page < 1 {
		page = 1
	}
	size := p.PageSize
	if size <= 0 {
		size = defaultSize
	}
	return page, size
}

// paginate 截取一页数据，越界页返回空序列而非错误。
func paginate[T any](items []T, page, size int) []T {
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}
