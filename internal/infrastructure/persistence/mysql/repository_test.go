package mysql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/audit"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/category"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/order"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/product"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/stock"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/user"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/persistence/mysql"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/persistence/mysql/mysqltest"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func intPtr(v int) *int { return &v }

func newProduct(t *testing.T, repo product.Repository, name string, price string, stockOnHand, threshold int) *product.Product {
	t.Helper()
	p, err := product.NewProduct(product.Attrs{
		Name:           name,
		UnitPrice:      decimal.RequireFromString(price),
		StockOnHand:    intPtr(stockOnHand),
		AlertThreshold: intPtr(threshold),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestCategoryRepository(t *testing.T) {
	ctx := context.Background()
	db := mysqltest.NewDB(t)
	repo := mysql.NewCategoryRepository(db)
	products := mysql.NewProductRepository(db)

	t.Run("创建并按名称排序", func(t *testing.T) {
		for _, label := range []string{"Plats", "Boissons", "Desserts"} {
			c, err := category.NewCategory(label)
			require.NoError(t, err)
			require.NoError(t, repo.Create(ctx, c))
			assert.NotZero(t, c.ID)
		}

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "Boissons", list[0].Label)
		assert.Equal(t, "Desserts", list[1].Label)
		assert.Equal(t, "Plats", list[2].Label)
	})

	t.Run("ExistsByLabel", func(t *testing.T) {
		ok, err := repo.ExistsByLabel(ctx, "Boissons")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.ExistsByLabel(ctx, "Entrées")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("统计引用商品", func(t *testing.T) {
		list, err := repo.List(ctx)
		require.NoError(t, err)
		drinks := list[0]

		p := newProduct(t, products, "Coca", "1.50", 10, 5)
		p.CategoryID = drinks.ID
		require.NoError(t, products.Update(ctx, p))

		n, err := repo.CountProducts(ctx, drinks.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("删除不存在的分类", func(t *testing.T) {
		err := repo.Delete(ctx, 9999)
		assert.ErrorIs(t, err, category.ErrCategoryNotFound)
	})

	t.Run("名称未变化时更新不报错", func(t *testing.T) {
		list, err := repo.List(ctx)
		require.NoError(t, err)
		assert.NoError(t, repo.Update(ctx, list[1]))
	})
}

func TestProductRepository_AdjustStock(t *testing.T) {
	ctx := context.Background()
	repo := mysql.NewProductRepository(mysqltest.NewDB(t))
	p := newProduct(t, repo, "Coca", "1.50", 10, 5)

	t.Run("出库成功", func(t *testing.T) {
		require.NoError(t, repo.AdjustStock(ctx, p.ID, -4))
		got, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, got.StockOnHand)
	})

	t.Run("库存不足时不修改", func(t *testing.T) {
		err := repo.AdjustStock(ctx, p.ID, -7)
		assert.ErrorIs(t, err, product.ErrInsufficientStock)

		got, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 6, got.StockOnHand)
	})

	t.Run("恰好扣到0", func(t *testing.T) {
		require.NoError(t, repo.AdjustStock(ctx, p.ID, -6))
		got, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.StockOnHand)
		assert.True(t, got.IsLowStock())
	})

	t.Run("商品不存在", func(t *testing.T) {
		err := repo.AdjustStock(ctx, 9999, 1)
		assert.ErrorIs(t, err, product.ErrProductNotFound)
	})
}

func TestProductRepository_LowStock(t *testing.T) {
	ctx := context.Background()
	repo := mysql.NewProductRepository(mysqltest.NewDB(t))

	newProduct(t, repo, "Tiramisu", "4.00", 2, 5)
	newProduct(t, repo, "Eau", "1.00", 50, 5)
	newProduct(t, repo, "Café", "1.20", 5, 5) // 等于阈值不算低库存
	newProduct(t, repo, "Burger", "9.90", 0, 3)

	low, err := repo.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "Burger", low[0].Name)
	assert.Equal(t, "Tiramisu", low[1].Name)

	n, err := repo.CountLowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestProductRepository_ZeroThresholdKept(t *testing.T) {
	ctx := context.Background()
	repo := mysql.NewProductRepository(mysqltest.NewDB(t))

	p := newProduct(t, repo, "Pain", "0.50", 0, 0)
	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AlertThreshold)
	assert.True(t, decimal.RequireFromString("0.50").Equal(got.UnitPrice))
}

func TestOrderRepository(t *testing.T) {
	ctx := context.Background()
	db := mysqltest.NewDB(t)
	repo := mysql.NewOrderRepository(db)

	t.Run("原子累加总额", func(t *testing.T) {
		o := order.NewOrder(day(2024, 3, 1))
		require.NoError(t, repo.Create(ctx, o))

		require.NoError(t, repo.AddToTotal(ctx, o.ID, decimal.RequireFromString("7.50")))
		require.NoError(t, repo.AddToTotal(ctx, o.ID, decimal.RequireFromString("2.00")))

		got, err := repo.FindByID(ctx, o.ID)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("9.50").Equal(got.Total), "total=%s", got.Total)
		assert.Equal(t, order.StatePending, got.State)
	})

	t.Run("条件更新状态", func(t *testing.T) {
		o := order.NewOrder(day(2024, 3, 1))
		require.NoError(t, repo.Create(ctx, o))

		require.NoError(t, repo.UpdateState(ctx, o.ID, order.StatePending, order.StateValidated))
		err := repo.UpdateState(ctx, o.ID, order.StatePending, order.StateValidated)
		assert.ErrorIs(t, err, order.ErrInvalidStateTransition)

		err = repo.UpdateState(ctx, 9999, order.StatePending, order.StateValidated)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})

	t.Run("累加不存在的订单", func(t *testing.T) {
		err := repo.AddToTotal(ctx, 9999, decimal.NewFromInt(1))
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}

func TestOrderRepository_Revenue(t *testing.T) {
	ctx := context.Background()
	repo := mysql.NewOrderRepository(mysqltest.NewDB(t))

	create := func(date time.Time, total string, state order.State) {
		o := order.NewOrder(date)
		require.NoError(t, repo.Create(ctx, o))
		require.NoError(t, repo.AddToTotal(ctx, o.ID, decimal.RequireFromString(total)))
		if state != order.StatePending {
			require.NoError(t, repo.UpdateState(ctx, o.ID, order.StatePending, state))
		}
	}

	create(day(2024, 3, 1), "10.00", order.StateValidated)
	create(day(2024, 3, 1), "5.25", order.StateValidated)
	create(day(2024, 3, 1), "99.00", order.StatePending)
	create(day(2024, 3, 2), "20.00", order.StateValidated)
	create(day(2024, 3, 3), "7.00", order.StateCancelled)
	create(day(2024, 3, 4), "1.00", order.StateValidated)

	t.Run("单日只统计已结账", func(t *testing.T) {
		sum, err := repo.SumValidatedTotal(ctx, day(2024, 3, 1))
		require.NoError(t, err)
		assert.Equal(t, "15.25", sum.StringFixed(2))
	})

	t.Run("区间含两端", func(t *testing.T) {
		sum, err := repo.SumValidatedTotalBetween(ctx, day(2024, 3, 1), day(2024, 3, 3))
		require.NoError(t, err)
		assert.Equal(t, "35.25", sum.StringFixed(2))
	})

	t.Run("没有数据返回0", func(t *testing.T) {
		sum, err := repo.SumValidatedTotal(ctx, day(2023, 1, 1))
		require.NoError(t, err)
		assert.True(t, sum.IsZero())
	})

	t.Run("全部营业额", func(t *testing.T) {
		sum, err := repo.SumAllValidatedTotal(ctx)
		require.NoError(t, err)
		assert.Equal(t, "36.25", sum.StringFixed(2))
	})

	t.Run("按日期查询按ID倒序", func(t *testing.T) {
		list, err := repo.ListByDate(ctx, day(2024, 3, 1))
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Greater(t, list[0].ID, list[1].ID)
	})

	t.Run("列表按日期倒序", func(t *testing.T) {
		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 6)
		assert.Equal(t, day(2024, 3, 4).Format("2006-01-02"), list[0].Date.Format("2006-01-02"))
	})
}

func TestLineRepository(t *testing.T) {
	ctx := context.Background()
	db := mysqltest.NewDB(t)
	repo := mysql.NewLineRepository(db)

	l1, err := order.NewLine(1, 10, 3, decimal.RequireFromString("2.50"))
	require.NoError(t, err)
	l2, err := order.NewLine(1, 11, 1, decimal.RequireFromString("1.00"))
	require.NoError(t, err)
	l3, err := order.NewLine(2, 10, 2, decimal.RequireFromString("2.50"))
	require.NoError(t, err)
	for _, l := range []*order.Line{l1, l2, l3} {
		require.NoError(t, repo.Create(ctx, l))
	}

	got, err := repo.FindByID(ctx, l1.ID)
	require.NoError(t, err)
	assert.Equal(t, "7.50", got.Amount.StringFixed(2))

	lines, err := repo.ListByOrder(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, lines, 2)

	_, err = got.ChangeQuantity(4)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.FindByID(ctx, l1.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", got.Amount.StringFixed(2))

	n, err := repo.DeleteByOrder(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, uint(2), all[0].OrderID)

	assert.ErrorIs(t, repo.Delete(ctx, l1.ID), order.ErrLineNotFound)
}

func TestMovementRepository(t *testing.T) {
	ctx := context.Background()
	repo := mysql.NewMovementRepository(mysqltest.NewDB(t))

	record := func(productID uint, typ stock.MovementType, qty int, date time.Time) *stock.Movement {
		m, err := stock.NewMovement(productID, typ, qty, date, "livraison")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, m))
		return m
	}

	first := record(1, stock.MovementIn, 10, day(2024, 3, 1))
	record(1, stock.MovementOut, 4, day(2024, 3, 2))
	record(2, stock.MovementOut, 1, day(2024, 3, 2))

	got, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, stock.MovementIn, got.Type)
	assert.Equal(t, "livraison", got.Reason)

	byProduct, err := repo.ListByProduct(ctx, 1)
	require.NoError(t, err)
	require.Len(t, byProduct, 2)
	assert.Equal(t, stock.MovementOut, byProduct[0].Type) // 最新的在前

	byDate, err := repo.ListByDate(ctx, day(2024, 3, 2))
	require.NoError(t, err)
	require.Len(t, byDate, 2)
	assert.Less(t, byDate[0].ID, byDate[1].ID)

	_, err = repo.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, stock.ErrMovementNotFound)
}

func TestAuditRepository(t *testing.T) {
	ctx := context.Background()
	db := mysqltest.NewDB(t)
	repo := mysql.NewAuditRepository(db)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local)
	for i, table := range []string{audit.TableOrderLine, audit.TableStockMovement, audit.TableOrderLine} {
		e := audit.NewEntry(audit.ActionCreate, table, uint(i+1), "cmd=1 prod=2")
		e.Actor = audit.DefaultActor
		e.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, &e))
	}
	bulk := audit.NewEntry(audit.ActionDelete, audit.TableOrderLine, 0, "deleteByCommande=1")
	bulk.Actor = audit.DefaultActor
	bulk.CreatedAt = base.Add(time.Hour)
	require.NoError(t, repo.Create(ctx, &bulk))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, audit.ActionDelete, all[0].Action)
	assert.Nil(t, all[0].RecordID)
	assert.True(t, all[1].CreatedAt.After(all[2].CreatedAt))

	lines, err := repo.ListByTable(ctx, audit.TableOrderLine)
	require.NoError(t, err)
	assert.Len(t, lines, 3)

	// 没有详情时details列为NULL
	single := audit.NewEntry(audit.ActionDelete, audit.TableOrderLine, 7, "")
	single.Actor = audit.DefaultActor
	single.CreatedAt = base.Add(2 * time.Hour)
	require.NoError(t, repo.Create(ctx, &single))

	var nulls int64
	require.NoError(t, db.Table("historique").Where("details IS NULL").Count(&nulls).Error)
	assert.Equal(t, int64(1), nulls)

	all, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all[0].Details)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := mysql.NewUserRepository(mysqltest.NewDB(t))

	u := user.NewUser("caisse1", "$2a$04$hash")
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID)

	err := repo.Create(ctx, user.NewUser("caisse1", "x"))
	assert.ErrorIs(t, err, user.ErrLoginDuplicate)

	ok, err := repo.ExistsByLogin(ctx, "caisse1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.FindByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestTxManager_Rollback(t *testing.T) {
	ctx := context.Background()
	db := mysqltest.NewDB(t)
	tx := mysql.NewTxManager(db)
	orders := mysql.NewOrderRepository(db)
	lines := mysql.NewLineRepository(db)

	o := order.NewOrder(day(2024, 3, 1))
	require.NoError(t, orders.Create(ctx, o))

	boom := errors.New("boom")
	err := tx.Transaction(ctx, func(ctx context.Context) error {
		l, err := order.NewLine(o.ID, 1, 2, decimal.RequireFromString("3.00"))
		require.NoError(t, err)
		require.NoError(t, lines.Create(ctx, l))
		require.NoError(t, orders.AddToTotal(ctx, o.ID, l.Amount))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := orders.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, got.Total.IsZero(), "回滚后总额应为0")

	ls, err := lines.ListByOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, ls)
}
