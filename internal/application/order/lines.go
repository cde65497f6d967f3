package order

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/audit"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/order"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/product"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/persistence/mysql"
	"github.com/iruzen-dono/RestaurantApp/pkg/metrics"
	"github.com/iruzen-dono/RestaurantApp/pkg/tracing"
)

// lineDetails 明细审计日志的details格式
func lineDetails(l *order.Line) string {
	return fmt.Sprintf("cmd=%d prod=%d", l.OrderID, l.ProductID)
}

// AddLineUseCase 加菜用例
// 教学要点:这是整个项目最核心的用例
// 涉及:事务处理、并发控制、价格快照、尽力而为的审计
type AddLineUseCase struct {
	orderRepo   order.Repository
	lineRepo    order.LineRepository
	productRepo product.Repository
	txManager   *mysql.TxManager
	auditSink   audit.Sink
}

// NewAddLineUseCase 创建加菜用例
func NewAddLineUseCase(
	orderRepo order.Repository,
	lineRepo order.LineRepository,
	productRepo product.Repository,
	txManager *mysql.TxManager,
	auditSink audit.Sink,
) *AddLineUseCase {
	return &AddLineUseCase{
		orderRepo:   orderRepo,
		lineRepo:    lineRepo,
		productRepo: productRepo,
		txManager:   txManager,
		auditSink:   auditSink,
	}
}

// AddLineRequest 加菜请求
type AddLineRequest struct {
	OrderID   uint
	ProductID uint
	Quantity  int
}

// Execute 执行加菜
//
// 核心问题:总金额丢失更新
// 场景:两台收银终端同时给同一张订单加菜
// 错误实现:
//  1. 读订单 → total = 10
//  2. 内存中计算 → 10 + 5
//  3. 写回 → total = 15
//     两个请求都读到10,最后一个写回的覆盖了另一个(少算一道菜!)
//
// 正确实现:
//  1. SELECT FOR UPDATE 锁定订单行,检查状态
//  2. 查询商品,快照当前价格
//  3. 写入明细
//  4. UPDATE commande SET total = total + 行金额(数据库内原子累加)
//  5. COMMIT,之后再写审计日志
func (uc *AddLineUseCase) Execute(ctx context.Context, req AddLineRequest) (*LineResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "AddLine")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("order.id", int64(req.OrderID)),
		attribute.Int64("product.id", int64(req.ProductID)),
	)

	// 1. 参数校验(不碰数据库)
	if req.Quantity <= 0 {
		return nil, order.ErrInvalidQuantity
	}

	var line *order.Line
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		// 2. 锁定订单,只有进行中的订单可以加菜
		o, err := uc.orderRepo.LockByID(txCtx, req.OrderID)
		if err != nil {
			return err
		}
		if err := o.CanEditLines(); err != nil {
			return err
		}

		// 3. 价格快照:使用数据库中的当前售价,之后改价不影响这一行
		p, err := uc.productRepo.FindByID(txCtx, req.ProductID)
		if err != nil {
			return err
		}

		line, err = order.NewLine(o.ID, p.ID, req.Quantity, p.UnitPrice)
		if err != nil {
			return err
		}
		if err := uc.lineRepo.Create(txCtx, line); err != nil {
			return err
		}

		// 4. 原子累加总额
		return uc.orderRepo.AddToTotal(txCtx, o.ID, line.Amount)
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	metrics.OrderLinesAddedTotal.Inc()

	// 5. 审计(异步,失败不影响加菜结果)
	uc.auditSink.Record(ctx, audit.NewEntry(audit.ActionCreate, audit.TableOrderLine, line.ID, lineDetails(line)))

	return toLineResponse(line), nil
}

// UpdateLineQuantityUseCase 修改明细数量
// 行金额按快照单价重算,订单总额按差额调整
type UpdateLineQuantityUseCase struct {
	orderRepo order.Repository
	lineRepo  order.LineRepository
	txManager *mysql.TxManager
	auditSink audit.Sink
}

// NewUpdateLineQuantityUseCase 创建修改数量用例
func NewUpdateLineQuantityUseCase(
	orderRepo order.Repository,
	lineRepo order.LineRepository,
	txManager *mysql.TxManager,
	auditSink audit.Sink,
) *UpdateLineQuantityUseCase {
	return &UpdateLineQuantityUseCase{
		orderRepo: orderRepo,
		lineRepo:  lineRepo,
		txManager: txManager,
		auditSink: auditSink,
	}
}

// UpdateLineQuantityRequest 修改数量请求
// OrderID不为0时校验明细属于该订单
type UpdateLineQuantityRequest struct {
	OrderID  uint
	LineID   uint
	Quantity int
}

// Execute 执行修改
func (uc *UpdateLineQuantityUseCase) Execute(ctx context.Context, req UpdateLineQuantityRequest) (*LineResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "UpdateLineQuantity")
	defer span.End()

	if req.Quantity <= 0 {
		return nil, order.ErrInvalidQuantity
	}

	var line *order.Line
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		l, err := findLine(txCtx, uc.lineRepo, req.OrderID, req.LineID)
		if err != nil {
			return err
		}
		o, err := uc.orderRepo.LockByID(txCtx, l.OrderID)
		if err != nil {
			return err
		}
		if err := o.CanEditLines(); err != nil {
			return err
		}

		delta, err := l.ChangeQuantity(req.Quantity)
		if err != nil {
			return err
		}
		if err := uc.lineRepo.Update(txCtx, l); err != nil {
			return err
		}
		line = l
		if delta.IsZero() {
			return nil
		}
		return uc.orderRepo.AddToTotal(txCtx, o.ID, delta)
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	uc.auditSink.Record(ctx, audit.NewEntry(audit.ActionUpdate, audit.TableOrderLine, line.ID, lineDetails(line)))
	return toLineResponse(line), nil
}

// RemoveLineUseCase 删除明细
// 订单总额扣减该行金额
type RemoveLineUseCase struct {
	orderRepo order.Repository
	lineRepo  order.LineRepository
	txManager *mysql.TxManager
	auditSink audit.Sink
}

// NewRemoveLineUseCase 创建删除明细用例
func NewRemoveLineUseCase(
	orderRepo order.Repository,
	lineRepo order.LineRepository,
	txManager *mysql.TxManager,
	auditSink audit.Sink,
) *RemoveLineUseCase {
	return &RemoveLineUseCase{
		orderRepo: orderRepo,
		lineRepo:  lineRepo,
		txManager: txManager,
		auditSink: auditSink,
	}
}

// Execute 执行删除,orderID不为0时校验明细属于该订单
func (uc *RemoveLineUseCase) Execute(ctx context.Context, orderID, lineID uint) error {
	ctx, span := tracing.StartSpan(ctx, tracerName, "RemoveLine")
	defer span.End()

	var line *order.Line
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		l, err := findLine(txCtx, uc.lineRepo, orderID, lineID)
		if err != nil {
			return err
		}
		o, err := uc.orderRepo.LockByID(txCtx, l.OrderID)
		if err != nil {
			return err
		}
		if err := o.CanEditLines(); err != nil {
			return err
		}

		if err := uc.lineRepo.Delete(txCtx, l.ID); err != nil {
			return err
		}
		line = l
		return uc.orderRepo.AddToTotal(txCtx, o.ID, l.Amount.Neg())
	})
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}

	uc.auditSink.Record(ctx, audit.NewEntry(audit.ActionDelete, audit.TableOrderLine, line.ID, ""))
	return nil
}

// findLine 查询明细,orderID不为0时要求明细属于该订单
func findLine(ctx context.Context, repo order.LineRepository, orderID, lineID uint) (*order.Line, error) {
	l, err := repo.FindByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if orderID != 0 && l.OrderID != orderID {
		return nil, order.ErrLineNotFound
	}
	return l, nil
}
