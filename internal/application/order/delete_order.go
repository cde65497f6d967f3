package order

import (
	"context"
	"fmt"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/audit"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/order"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/persistence/mysql"
	"github.com/iruzen-dono/RestaurantApp/pkg/tracing"
)

// DeleteOrderUseCase 删除订单用例
// 业务规则:
// 1. 进行中的订单必须先取消,否则返回ErrOrderNotDeletable
// 2. 先删明细再删订单,在同一事务中完成
// 3. 只为明细记一条批量审计日志,订单本身不记
type DeleteOrderUseCase struct {
	orderRepo order.Repository
	lineRepo  order.LineRepository
	txManager *mysql.TxManager
	auditSink audit.Sink
}

// NewDeleteOrderUseCase 创建删除订单用例
func NewDeleteOrderUseCase(
	orderRepo order.Repository,
	lineRepo order.LineRepository,
	txManager *mysql.TxManager,
	auditSink audit.Sink,
) *DeleteOrderUseCase {
	return &DeleteOrderUseCase{
		orderRepo: orderRepo,
		lineRepo:  lineRepo,
		txManager: txManager,
		auditSink: auditSink,
	}
}

// Execute 执行删除
func (uc *DeleteOrderUseCase) Execute(ctx context.Context, orderID uint) error {
	ctx, span := tracing.StartSpan(ctx, tracerName, "DeleteOrder")
	defer span.End()

	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orderRepo.LockByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if err := o.CanDelete(); err != nil {
			return err
		}

		if _, err := uc.lineRepo.DeleteByOrder(txCtx, o.ID); err != nil {
			return err
		}
		return uc.orderRepo.Delete(txCtx, o.ID)
	})
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}

	uc.auditSink.Record(ctx, audit.NewEntry(audit.ActionDelete, audit.TableOrderLine, 0,
		fmt.Sprintf("deleteByCommande=%d", orderID)))
	return nil
}
