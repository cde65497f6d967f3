package audit

import (
	"context"
)

// Sink 审计写入能力
// Record没有返回值:审计失败永远不能阻塞或回滚业务操作,
// 实现方自行记录日志
type Sink interface {
	Record(ctx context.Context, e Entry)
}

// SinkFunc 函数适配器
type SinkFunc func(ctx context.Context, e Entry)

// Record 实现Sink
func (f SinkFunc) Record(ctx context.Context, e Entry) {
	f(ctx, e)
}

// NopSink 丢弃所有审计条目
var NopSink Sink = SinkFunc(func(context.Context, Entry) {})
