package repository

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// CollectionRepository 托管集合数据访问接口
type CollectionRepository[T any] interface {
	Name() string
	List(query CollectionQuery) ([]T, error)
	GetByID(id string) (*T, error)
	Create(record *T) error
	Save(record *T) error
	Delete(id string) (*T, error)
}

// GormCollectionRepository GORM 实现
type GormCollectionRepository[T any] struct {
	db      *gorm.DB
	name    string
	columns Columns
}

func newCollectionRepository[T any](db *gorm.DB, name string, columns Columns) *GormCollectionRepository[T] {
	return &GormCollectionRepository[T]{db: db, name: name, columns: columns}
}

// Name 集合名称
func (r *GormCollectionRepository[T]) Name() string {
	return r.name
}

// WithTx 绑定事务
func (r *GormCollectionRepository[T]) WithTx(tx *gorm.DB) *GormCollectionRepository[T] {
	if tx == nil {
		return r
	}
	return &GormCollectionRepository[T]{db: tx, name: r.name, columns: r.columns}
}

// List 按字段子串过滤，默认按创建时间升序
func (r *GormCollectionRepository[T]) List(query CollectionQuery) ([]T, error) {
	dialect := dbDialectName(r.db)
	q := r.db.Model(new(T))

	fields := make([]string, 0, len(query.Filters))
	for field := range query.Filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		column, ok := r.columns[field]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		q = q.Where(containsCondition(dialect, column), containsArg(query.Filters[field]))
	}

	orderBy := "created_at asc"
	if sortBy := strings.TrimSpace(query.SortBy); sortBy != "" {
		column, ok := r.columns[sortBy]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, sortBy)
		}
		orderBy = orderClause(column, query.Order)
	}
	q = applyPagination(q.Order(orderBy).Order("id asc"), query.Page, query.Limit)

	var records []T
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// GetByID 根据 ID 获取记录，不存在时返回 nil
func (r *GormCollectionRepository[T]) GetByID(id string) (*T, error) {
	var record T
	if err := r.db.Where("id = ?", id).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Create 创建记录
func (r *GormCollectionRepository[T]) Create(record *T) error {
	return r.db.Create(record).Error
}

// Save 覆盖保存记录
func (r *GormCollectionRepository[T]) Save(record *T) error {
	return r.db.Save(record).Error
}

// Delete 删除记录并返回删除前的内容，不存在时返回 nil
func (r *GormCollectionRepository[T]) Delete(id string) (*T, error) {
	var deleted *T
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var record T
		if err := tx.Where("id = ?", id).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("id = ?", id).Delete(new(T)).Error; err != nil {
			return err
		}
		deleted = &record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
