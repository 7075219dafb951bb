package repository

import "errors"

// ErrUnknownField 过滤或排序字段不在集合白名单内
var ErrUnknownField = errors.New("unknown collection field")

// Columns 集合字段映射：JSON 字段名 -> 数据库列名
type Columns map[string]string

// CollectionQuery 集合列表查询条件
// Filters 的值按子串匹配（与托管 API 一致），多个字段之间为 AND
type CollectionQuery struct {
	Filters map[string]string
	Page    int
	Limit   int
	SortBy  string
	Order   string
}
