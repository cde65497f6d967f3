package order_test

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apporder "github.com/iruzen-dono/RestaurantApp/internal/application/order"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/audit"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/event"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/order"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/product"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/persistence/mysql"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/persistence/mysql/mysqltest"
)

// recordingSink 收集审计条目
type recordingSink struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (s *recordingSink) Record(_ context.Context, e audit.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
}

func (s *recordingSink) all() []audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Entry(nil), s.entries...)
}

// recordingPublisher 收集发布的事件,err不为nil时发布失败
type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return p.err
}

// staleReadRepo 第一次FindByID返回旧快照,模拟另一个终端在读和写之间改了状态
type staleReadRepo struct {
	order.Repository
	mu    sync.Mutex
	stale *order.Order
}

func (r *staleReadRepo) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	r.mu.Lock()
	stale := r.stale
	r.stale = nil
	r.mu.Unlock()
	if stale != nil && stale.ID == id {
		snapshot := *stale
		return &snapshot, nil
	}
	return r.Repository.FindByID(ctx, id)
}

type fixture struct {
	orders   order.Repository
	lines    order.LineRepository
	products product.Repository
	sink     *recordingSink
	pub      *recordingPublisher

	create   *apporder.CreateOrderUseCase
	addLine  *apporder.AddLineUseCase
	update   *apporder.UpdateLineQuantityUseCase
	remove   *apporder.RemoveLineUseCase
	validate *apporder.ValidateOrderUseCase
	cancel   *apporder.CancelOrderUseCase
	del      *apporder.DeleteOrderUseCase
	get      *apporder.GetOrderUseCase
	list     *apporder.ListOrdersUseCase
	revenue  *apporder.RevenueUseCase
}

var today = time.Date(2024, 3, 1, 14, 30, 0, 0, time.Local)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := mysqltest.NewDB(t)
	log := zaptest.NewLogger(t)

	f := &fixture{
		orders:   mysql.NewOrderRepository(db),
		lines:    mysql.NewLineRepository(db),
		products: mysql.NewProductRepository(db),
		sink:     &recordingSink{},
		pub:      &recordingPublisher{},
	}
	tx := mysql.NewTxManager(db)

	f.create = apporder.NewCreateOrderUseCase(f.orders).WithClock(func() time.Time { return today })
	f.addLine = apporder.NewAddLineUseCase(f.orders, f.lines, f.products, tx, f.sink)
	f.update = apporder.NewUpdateLineQuantityUseCase(f.orders, f.lines, tx, f.sink)
	f.remove = apporder.NewRemoveLineUseCase(f.orders, f.lines, tx, f.sink)
	f.validate = apporder.NewValidateOrderUseCase(f.orders, f.pub, log)
	f.cancel = apporder.NewCancelOrderUseCase(f.orders, f.pub, log)
	f.del = apporder.NewDeleteOrderUseCase(f.orders, f.lines, tx, f.sink)
	f.get = apporder.NewGetOrderUseCase(f.orders, f.lines)
	f.list = apporder.NewListOrdersUseCase(f.orders)
	f.revenue = apporder.NewRevenueUseCase(f.orders)
	return f
}

func (f *fixture) product(t *testing.T, name, price string) *product.Product {
	t.Helper()
	stock := 100
	p, err := product.NewProduct(product.Attrs{
		Name:        name,
		UnitPrice:   decimal.RequireFromString(price),
		StockOnHand: &stock,
	})
	require.NoError(t, err)
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) newOrder(t *testing.T) uint {
	t.Helper()
	o, err := f.create.Execute(context.Background())
	require.NoError(t, err)
	return o.ID
}

func TestCreateOrder(t *testing.T) {
	f := newFixture(t)

	o, err := f.create.Execute(context.Background())
	require.NoError(t, err)
	assert.NotZero(t, o.ID)
	assert.Equal(t, "EN_COURS", o.State)
	assert.Equal(t, "0.00", o.Total)
	assert.Equal(t, "2024-03-01", o.Date)
}

func TestAddLine(t *testing.T) {
	ctx := context.Background()

	t.Run("总额等于明细之和", func(t *testing.T) {
		f := newFixture(t)
		p1 := f.product(t, "Pizza", "2.50")
		p2 := f.product(t, "Eau", "1.00")
		id := f.newOrder(t)

		l1, err := f.addLine.Execute(ctx, apporder.AddLineRequest{OrderID: id, ProductID: p1.ID, Quantity: 3})
		require.NoError(t, err)
		assert.Equal(t, "7.50", l1.Amount)

		o, err := f.get.Execute(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "7.50", o.Total)
		require.Len(t, o.Lines, 1)

		_, err = f.addLine.Execute(ctx, apporder.AddLineRequest{OrderID: id, ProductID: p2.ID, Quantity: 2})
		require.NoError(t, err)

		o, err = f.get.Execute(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "9.50", o.Total)
		assert.Len(t, o.Lines, 2)
	})

	t.Run("写入审计日志", func(t *testing.T) {
		f := newFixture(t)
		p := f.product(t, "Pizza", "2.50")
		id := f.newOrder(t)

		l, err := f.addLine.Execute(ctx, apporder.AddLineRequest{OrderID: id, ProductID: p.ID, Quantity: 1})
		require.NoError(t, err)

		entries := f.sink.all()
		require.Len(t, entries, 1)
		assert.Equal(t, audit.ActionCreate, entries[0].Action)
		assert.Equal(t, audit.TableOrderLine, entries[0].TableName)
		require.NotNil(t, entries[0].RecordID)
		assert.Equal(t, l.ID, *entries[0].RecordID)
		assert.Equal(t, "cmd="+uitoa(id)+" prod="+uitoa(p.ID), entries[0].Details)
	})

	t.Run("数量不合法时不写任何数据", func(t *testing.T) {
		f := newFixture(t)
		p := f.product(t, "Pizza", "2.50")
		id := f.newOrder(t)

		for _, q := range []int{0, -1} {
			_, err := f.addLine.Execute(ctx, apporder.AddLineRequest{OrderID: id, ProductID: p.ID, Quantity: q})
			assert.ErrorIs(t, err, order.ErrInvalidQuantity)
		}

		o, err := f.get.Execute(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "0.00", o.Total)
		assert.Empty(t, o.Lines)
		assert.Empty(t, f.sink.all())
	})

	t.Run("商品不存在", func(t *testing.T) {
		f := newFixture(t)
		id := f.newOrder(t)

		_, err := f.addLine.Execute(ctx, apporder.AddLineRequest{OrderID: id, ProductID: 999, Quantity: 1})
		assert.ErrorIs(t, err, product.ErrProductNotFound)
	})

	t.Run("订单不存在", func(t *testing.T) {
		f := newFixture(t)
		p := f.product(t, "Pizza", "2.50")

		_, err := f.addLine.Execute(ctx, apporder.AddLineRequest{OrderID: 999, ProductID: p.ID, Quantity: 1})
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})

	t.Run("改价不影响已加入的明细", func(t *testing.T) {
		f := newFixture(t)
		p := f.product(t, "Pizza", "2.50")
		id := f.newOrder(t)

		_, err := f.addLine.Execute(ctx, apporder.AddLineRequest{OrderID: id, ProductID: p.ID, Quantity: 2})
		require.NoError(t, err)

		p.UnitPrice = decimal.RequireFromString("9.99")
		require.NoError(t, f.products.Update(ctx, p))

		o, err := f.get.Execute(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "5.00", o.Total)
		assert.Equal(t, "2.50", o.Lines[0].UnitPrice)
	})

	t.Run("已结账的订单不能加菜", func(t *testing.T) {
		f := newFixture(t)
		p := f.product(t, "Pizza", "2.50")
		id := f.newOrder(t)
		_, err := f.validate.Execute(ctx, id)
		require.NoError(t, err)

		_, err = f.addLine.Execute(ctx, apporder.AddLineRequest{OrderID: id, ProductID: p.ID, Quantity: 1})
		assert.ErrorIs(t, err, order.ErrOrderNotEditable)
	})
}

func TestAddLine_Concurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Café", "2.50")
	id := f.newOrder(t)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.addLine.Execute(ctx, apporder.AddLineRequest{OrderID: id, ProductID: p.ID, Quantity: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	o, err := f.get.Execute(ctx, id)
	require.NoError(t, err)
	assert.Len(t, o.Lines, n)
	assert.Equal(t, "50.00", o.Total)
	assert.Len(t, f.sink.all(), n)
}

func TestUpdateAndRemoveLine(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p1 := f.product(t, "Pizza", "2.50")
	p2 := f.product(t, "Eau", "1.00")
	id := f.newOrder(t)

	l1, err := f.addLine.Execute(ctx, apporder.AddLineRequest{OrderID: id, ProductID: p1.ID, Quantity: 3})
	require.NoError(t, err)
	l2, err := f.addLine.Execute(ctx, apporder.AddLineRequest{OrderID: id, ProductID: p2.ID, Quantity: 2})
	require.NoError(t, err)

	t.Run("修改数量按差额调整总额", func(t *testing.T) {
		got, err := f.update.Execute(ctx, apporder.UpdateLineQuantityRequest{OrderID: id, LineID: l1.ID, Quantity: 1})
		require.NoError(t, err)
		assert.Equal(t, "2.50", got.Amount)

		o, err := f.get.Execute(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "4.50", o.Total)
	})

	t.Run("数量不合法", func(t *testing.T) {
		_, err := f.update.Execute(ctx, apporder.UpdateLineQuantityRequest{OrderID: id, LineID: l1.ID, Quantity: 0})
		assert.ErrorIs(t, err, order.ErrInvalidQuantity)
	})

	t.Run("明细不属于该订单", func(t *testing.T) {
		_, err := f.update.Execute(ctx, apporder.UpdateLineQuantityRequest{OrderID: id + 1, LineID: l1.ID, Quantity: 2})
		assert.ErrorIs(t, err, order.ErrLineNotFound)
	})

	t.Run("删除明细扣减总额", func(t *testing.T) {
		require.NoError(t, f.remove.Execute(ctx, id, l2.ID))

		o, err := f.get.Execute(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "2.50", o.Total)
		require.Len(t, o.Lines, 1)

		assert.ErrorIs(t, f.remove.Execute(ctx, id, l2.ID), order.ErrLineNotFound)
	})

	t.Run("审计动作", func(t *testing.T) {
		var actions []audit.Action
		for _, e := range f.sink.all() {
			actions = append(actions, e.Action)
		}
		assert.Equal(t, []audit.Action{audit.ActionCreate, audit.ActionCreate, audit.ActionUpdate, audit.ActionDelete}, actions)

		// 删除单条明细不带详情
		entries := f.sink.all()
		assert.Empty(t, entries[len(entries)-1].Details)
	})
}

func TestStateTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("重复结账", func(t *testing.T) {
		f := newFixture(t)
		id := f.newOrder(t)

		o, err := f.validate.Execute(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "VALIDEE", o.State)

		_, err = f.validate.Execute(ctx, id)
		assert.ErrorIs(t, err, order.ErrInvalidStateTransition)
		assert.Equal(t, []string{event.OrderValidated}, f.pub.keys)
	})

	t.Run("取消进行中和已结账的订单", func(t *testing.T) {
		f := newFixture(t)
		pending := f.newOrder(t)
		validated := f.newOrder(t)
		_, err := f.validate.Execute(ctx, validated)
		require.NoError(t, err)

		for _, id := range []uint{pending, validated} {
			o, err := f.cancel.Execute(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "ANNULEE", o.State)
		}
	})

	t.Run("重复取消", func(t *testing.T) {
		f := newFixture(t)
		id := f.newOrder(t)
		_, err := f.cancel.Execute(ctx, id)
		require.NoError(t, err)

		_, err = f.cancel.Execute(ctx, id)
		assert.ErrorIs(t, err, order.ErrAlreadyCancelled)
	})

	t.Run("并发取消时后到者返回已取消", func(t *testing.T) {
		f := newFixture(t)
		id := f.newOrder(t)
		snapshot, err := f.orders.FindByID(ctx, id)
		require.NoError(t, err)

		_, err = f.cancel.Execute(ctx, id)
		require.NoError(t, err)

		repo := &staleReadRepo{Repository: f.orders, stale: snapshot}
		late := apporder.NewCancelOrderUseCase(repo, f.pub, zaptest.NewLogger(t))
		_, err = late.Execute(ctx, id)
		assert.ErrorIs(t, err, order.ErrAlreadyCancelled)
		assert.Equal(t, []string{event.OrderCancelled}, f.pub.keys)
	})

	t.Run("并发结账时后到者返回状态错误", func(t *testing.T) {
		f := newFixture(t)
		id := f.newOrder(t)
		snapshot, err := f.orders.FindByID(ctx, id)
		require.NoError(t, err)

		_, err = f.cancel.Execute(ctx, id)
		require.NoError(t, err)

		repo := &staleReadRepo{Repository: f.orders, stale: snapshot}
		late := apporder.NewValidateOrderUseCase(repo, f.pub, zaptest.NewLogger(t))
		_, err = late.Execute(ctx, id)
		assert.ErrorIs(t, err, order.ErrInvalidStateTransition)

		o, err := f.get.Execute(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "ANNULEE", o.State)
	})

	t.Run("已取消不能结账", func(t *testing.T) {
		f := newFixture(t)
		id := f.newOrder(t)
		_, err := f.cancel.Execute(ctx, id)
		require.NoError(t, err)

		_, err = f.validate.Execute(ctx, id)
		assert.ErrorIs(t, err, order.ErrInvalidStateTransition)
	})

	t.Run("事件发布失败不影响状态变更", func(t *testing.T) {
		f := newFixture(t)
		f.pub.err = errors.New("broker down")
		id := f.newOrder(t)

		_, err := f.validate.Execute(ctx, id)
		require.NoError(t, err)

		o, err := f.get.Execute(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "VALIDEE", o.State)
	})

	t.Run("订单不存在", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.validate.Execute(ctx, 999)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}

func TestDeleteOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("进行中的订单不能删除", func(t *testing.T) {
		f := newFixture(t)
		id := f.newOrder(t)

		err := f.del.Execute(ctx, id)
		assert.ErrorIs(t, err, order.ErrOrderNotDeletable)

		_, err = f.get.Execute(ctx, id)
		assert.NoError(t, err)
	})

	t.Run("删除已结账和已取消的订单及其明细", func(t *testing.T) {
		f := newFixture(t)
		p := f.product(t, "Pizza", "2.50")

		validated := f.newOrder(t)
		cancelled := f.newOrder(t)
		keep := f.newOrder(t)
		for _, id := range []uint{validated, cancelled, keep} {
			_, err := f.addLine.Execute(ctx, apporder.AddLineRequest{OrderID: id, ProductID: p.ID, Quantity: 1})
			require.NoError(t, err)
		}
		_, err := f.validate.Execute(ctx, validated)
		require.NoError(t, err)
		_, err = f.cancel.Execute(ctx, cancelled)
		require.NoError(t, err)

		require.NoError(t, f.del.Execute(ctx, validated))
		require.NoError(t, f.del.Execute(ctx, cancelled))

		for _, id := range []uint{validated, cancelled} {
			_, err := f.get.Execute(ctx, id)
			assert.ErrorIs(t, err, order.ErrOrderNotFound)
			lines, err := f.lines.ListByOrder(ctx, id)
			require.NoError(t, err)
			assert.Empty(t, lines)
		}

		remaining, err := f.lines.ListByOrder(ctx, keep)
		require.NoError(t, err)
		assert.Len(t, remaining, 1)

		entries := f.sink.all()
		last := entries[len(entries)-1]
		assert.Equal(t, audit.ActionDelete, last.Action)
		assert.Nil(t, last.RecordID)
		assert.Equal(t, "deleteByCommande="+uitoa(cancelled), last.Details)
	})

	t.Run("订单不存在", func(t *testing.T) {
		f := newFixture(t)
		assert.ErrorIs(t, f.del.Execute(ctx, 999), order.ErrOrderNotFound)
	})
}

func TestRevenue(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.product(t, "Pizza", "2.50")

	t.Run("没有已结账订单返回0", func(t *testing.T) {
		r, err := f.revenue.ComputeRevenue(ctx, today)
		require.NoError(t, err)
		assert.Equal(t, "0.00", r.Revenue)
	})

	paid := f.newOrder(t)
	open := f.newOrder(t)
	for _, id := range []uint{paid, open} {
		_, err := f.addLine.Execute(ctx, apporder.AddLineRequest{OrderID: id, ProductID: p.ID, Quantity: 4})
		require.NoError(t, err)
	}
	_, err := f.validate.Execute(ctx, paid)
	require.NoError(t, err)

	t.Run("只统计已结账", func(t *testing.T) {
		r, err := f.revenue.ComputeRevenue(ctx, today)
		require.NoError(t, err)
		assert.Equal(t, "10.00", r.Revenue)
		assert.Equal(t, "2024-03-01", r.From)
	})

	t.Run("区间", func(t *testing.T) {
		r, err := f.revenue.ComputeRevenueBetween(ctx, today.AddDate(0, 0, -7), today)
		require.NoError(t, err)
		assert.Equal(t, "10.00", r.Revenue)
	})

	t.Run("开始日期晚于结束日期", func(t *testing.T) {
		_, err := f.revenue.ComputeRevenueBetween(ctx, today, today.AddDate(0, 0, -1))
		assert.ErrorIs(t, err, order.ErrInvalidDateRange)
	})

	t.Run("按日期列出", func(t *testing.T) {
		list, err := f.list.Execute(ctx, &today)
		require.NoError(t, err)
		assert.Len(t, list, 2)

		other := today.AddDate(0, 0, 1)
		list, err = f.list.Execute(ctx, &other)
		require.NoError(t, err)
		assert.Empty(t, list)

		all, err := f.list.Execute(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func uitoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
