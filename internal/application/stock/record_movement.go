package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/audit"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/event"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/product"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/stock"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/persistence/mysql"
	"github.com/iruzen-dono/RestaurantApp/pkg/metrics"
	"github.com/iruzen-dono/RestaurantApp/pkg/tracing"
)

const tracerName = "stock"

// RecordMovementUseCase 记录库存流水
// 教学要点:
// 1. 写流水和调库存在同一事务中,库存不足时两者都回滚(不留孤立的流水)
// 2. 库存更新是 UPDATE produit SET stock_actuel = stock_actuel + ? WHERE stock_actuel + ? >= 0
// 3. 审计和低库存事件在提交之后发出,失败不影响结果
type RecordMovementUseCase struct {
	movementRepo stock.Repository
	productRepo  product.Repository
	txManager    *mysql.TxManager
	auditSink    audit.Sink
	publisher    event.Publisher
	log          *zap.Logger
	now          func() time.Time
}

// NewRecordMovementUseCase 创建记录流水用例
func NewRecordMovementUseCase(
	movementRepo stock.Repository,
	productRepo product.Repository,
	txManager *mysql.TxManager,
	auditSink audit.Sink,
	publisher event.Publisher,
	log *zap.Logger,
) *RecordMovementUseCase {
	return &RecordMovementUseCase{
		movementRepo: movementRepo,
		productRepo:  productRepo,
		txManager:    txManager,
		auditSink:    auditSink,
		publisher:    publisher,
		log:          log,
		now:          time.Now,
	}
}

// WithClock 替换时钟(测试用)
func (uc *RecordMovementUseCase) WithClock(now func() time.Time) *RecordMovementUseCase {
	uc.now = now
	return uc
}

// RecordMovementRequest 记录流水请求
type RecordMovementRequest struct {
	ProductID uint
	Type      stock.MovementType
	Quantity  int
	Date      time.Time // 为零值时取当天
	Reason    string
}

// Execute 执行记录
func (uc *RecordMovementUseCase) Execute(ctx context.Context, req RecordMovementRequest) (*MovementResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "RecordMovement")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("product.id", int64(req.ProductID)),
		attribute.String("movement.type", string(req.Type)),
	)

	date := req.Date
	if date.IsZero() {
		date = uc.now()
	}
	m, err := stock.NewMovement(req.ProductID, req.Type, req.Quantity, date, req.Reason)
	if err != nil {
		return nil, err
	}

	var updated *product.Product
	err = uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.productRepo.FindByID(txCtx, m.ProductID); err != nil {
			return err
		}
		if err := uc.movementRepo.Create(txCtx, m); err != nil {
			return err
		}
		if err := uc.productRepo.AdjustStock(txCtx, m.ProductID, m.Delta()); err != nil {
			return err
		}
		p, err := uc.productRepo.FindByID(txCtx, m.ProductID)
		if err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		if errors.Is(err, product.ErrInsufficientStock) {
			metrics.StockMovementsRejectedTotal.Inc()
		}
		tracing.RecordError(span, err)
		return nil, err
	}

	metrics.StockMovementsTotal.WithLabelValues(string(m.Type)).Inc()

	uc.auditSink.Record(ctx, audit.NewEntry(audit.ActionCreate, audit.TableStockMovement, m.ID,
		fmt.Sprintf("prod=%d type=%s", m.ProductID, m.Type)))

	if updated.IsLowStock() {
		uc.publishLowStock(ctx, updated)
	}

	return toMovementResponse(m, updated), nil
}

func (uc *RecordMovementUseCase) publishLowStock(ctx context.Context, p *product.Product) {
	alert := event.StockLowAlert{
		ProductID:      p.ID,
		Name:           p.Name,
		StockOnHand:    p.StockOnHand,
		AlertThreshold: p.AlertThreshold,
		OccurredAt:     uc.now(),
	}
	if err := uc.publisher.Publish(ctx, event.StockLow, alert); err != nil {
		uc.log.Warn("低库存事件发布失败", zap.Uint("product_id", p.ID), zap.Error(err))
	}
}
