package audit

import (
	"context"
	"time"
)

// DefaultActor 没有登录用户时的操作人
const DefaultActor = "system"

// Action 操作类型
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// 被审计的表
const (
	TableOrderLine     = "ligne_commande"
	TableStockMovement = "mouvement_stock"
)

// Entry 审计日志(只追加,不修改不删除)
type Entry struct {
	ID        uint
	Action    Action
	TableName string
	RecordID  *uint  // 批量操作时为空
	Actor     string // 操作人登录名
	Details   string
	CreatedAt time.Time
}

// NewEntry 创建审计条目
// recordID为0表示没有具体记录
func NewEntry(action Action, table string, recordID uint, details string) Entry {
	e := Entry{
		Action:    action,
		TableName: table,
		Details:   details,
	}
	if recordID != 0 {
		id := recordID
		e.RecordID = &id
	}
	return e
}

type actorKey struct{}

// WithActor 把当前操作人放入context
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom 取出当前操作人,默认system
func ActorFrom(ctx context.Context) string {
	if a, ok := ctx.Value(actorKey{}).(string); ok && a != "" {
		return a
	}
	return DefaultActor
}
