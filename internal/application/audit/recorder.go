package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/audit"
	"github.com/iruzen-dono/RestaurantApp/pkg/metrics"
)

// RecorderOptions 异步审计写入参数
type RecorderOptions struct {
	BufferSize   int           // 队列容量
	WriteTimeout time.Duration // 单条写入超时
}

// AsyncRecorder 异步审计写入器(实现audit.Sink)
// 设计说明:
// 1. Record只做非阻塞入队,业务操作永远不会等待审计落库
// 2. 后台单个goroutine按入队顺序写库
// 3. 队列满时丢弃并打WARN日志,写库失败只记日志
// 4. Close会等待队列中剩余条目写完(或ctx超时)
type AsyncRecorder struct {
	repo         audit.Repository
	log          *zap.Logger
	writeTimeout time.Duration
	now          func() time.Time

	queue chan audit.Entry
	done  chan struct{}

	mu      sync.RWMutex
	closed  bool
	started sync.Once
}

// NewAsyncRecorder 创建异步审计写入器,需调用Start启动后台写入
func NewAsyncRecorder(repo audit.Repository, log *zap.Logger, opts RecorderOptions) *AsyncRecorder {
	if opts.BufferSize < 1 {
		opts.BufferSize = 1
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 5 * time.Second
	}
	return &AsyncRecorder{
		repo:         repo,
		log:          log,
		writeTimeout: opts.WriteTimeout,
		now:          time.Now,
		queue:        make(chan audit.Entry, opts.BufferSize),
		done:         make(chan struct{}),
	}
}

// Start 启动后台写入goroutine(重复调用无副作用)
func (r *AsyncRecorder) Start() {
	r.started.Do(func() {
		go r.run()
	})
}

// Record 实现audit.Sink
// 时间和操作人在入队时确定,不受写入延迟影响
func (r *AsyncRecorder) Record(ctx context.Context, e audit.Entry) {
	if e.Actor == "" {
		e.Actor = audit.ActorFrom(ctx)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.drop(e, "审计写入器已关闭")
		return
	}

	select {
	case r.queue <- e:
		metrics.AuditQueueLength.Inc()
	default:
		r.drop(e, "审计队列已满")
	}
}

// Close 停止接收新条目并等待队列写完
// ctx超时返回ctx.Err(),剩余条目丢失
func (r *AsyncRecorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	// 从未Start过的话,在这里把队列写完
	r.Start()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *AsyncRecorder) run() {
	defer close(r.done)
	for e := range r.queue {
		metrics.AuditQueueLength.Dec()
		r.write(e)
	}
}

func (r *AsyncRecorder) write(e audit.Entry) {
	// 不使用请求的ctx:请求结束后ctx会被取消
	ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
	defer cancel()

	if err := r.repo.Create(ctx, &e); err != nil {
		metrics.AuditEntriesTotal.WithLabelValues(metrics.AuditFailed).Inc()
		r.log.Warn("审计日志写入失败",
			zap.String("action", string(e.Action)),
			zap.String("table", e.TableName),
			zap.String("details", e.Details),
			zap.Error(err))
		return
	}
	metrics.AuditEntriesTotal.WithLabelValues(metrics.AuditWritten).Inc()
}

func (r *AsyncRecorder) drop(e audit.Entry, reason string) {
	metrics.AuditEntriesTotal.WithLabelValues(metrics.AuditDropped).Inc()
	r.log.Warn(reason,
		zap.String("action", string(e.Action)),
		zap.String("table", e.TableName),
		zap.String("details", e.Details))
}
