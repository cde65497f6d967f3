package category

import "strings"

// Category 商品分类实体
// 设计说明:
// 1. Label唯一性是业务规则(创建前检查),数据库不加唯一索引,兼容旧库
// 2. 只要还有商品引用该分类就不能删除
type Category struct {
	ID    uint
	Label string // 分类名称(libelle)
}

// NewCategory 创建分类(工厂方法)
func NewCategory(label string) (*Category, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, ErrEmptyLabel
	}
	return &Category{Label: label}, nil
}

// Rename 修改分类名称(领域行为)
func (c *Category) Rename(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return ErrEmptyLabel
	}
	c.Label = label
	return nil
}
