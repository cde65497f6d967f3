package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/audit"
)

// auditRepository 审计日志仓储实现
// 只有INSERT和SELECT,没有UPDATE/DELETE
type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository 创建审计日志仓储
func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &auditRepository{db: db}
}

// Create 追加一条审计日志
func (r *auditRepository) Create(ctx context.Context, e *audit.Entry) error {
	model := &AuditModel{
		Action:    string(e.Action),
		Table:     e.TableName,
		RecordID:  e.RecordID,
		Actor:     e.Actor,
		Details:   nullString(e.Details),
		CreatedAt: e.CreatedAt,
	}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return wrapDBError(err, "写入审计日志失败")
	}
	e.ID = model.ID
	e.CreatedAt = model.CreatedAt
	return nil
}

// List SELECT * FROM historique ORDER BY created_at DESC
// 同一时刻写入的条目按ID倒序
func (r *auditRepository) List(ctx context.Context) ([]*audit.Entry, error) {
	return find(r.getDB(ctx).Order("created_at DESC").Order("id DESC"), toAuditEntity, "查询审计日志失败")
}

// ListByTable 某张表的审计日志
func (r *auditRepository) ListByTable(ctx context.Context, table string) ([]*audit.Entry, error) {
	return find(r.getDB(ctx).Where("table_name = ?", table).Order("created_at DESC").Order("id DESC"),
		toAuditEntity, "查询审计日志失败")
}

func (r *auditRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db)
}

func toAuditEntity(m *AuditModel) *audit.Entry {
	return &audit.Entry{
		ID:        m.ID,
		Action:    audit.Action(m.Action),
		TableName: m.Table,
		RecordID:  m.RecordID,
		Actor:     m.Actor,
		Details:   derefString(m.Details),
		CreatedAt: m.CreatedAt,
	}
}

// nullString 空串存为NULL
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
