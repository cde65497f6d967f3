//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 说明：
// 1. main.go默认使用app.go中的手动组装(newApp)
// 2. 本文件声明同一套Provider,运行 `wire gen ./cmd/api` 可生成wire_gen.go
// 3. 资源释放通过Provider返回的cleanup函数串联

package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appaudit "github.com/iruzen-dono/RestaurantApp/internal/application/audit"
	"github.com/iruzen-dono/RestaurantApp/internal/application/catalog"
	"github.com/iruzen-dono/RestaurantApp/internal/application/dashboard"
	"github.com/iruzen-dono/RestaurantApp/internal/application/export"
	apporder "github.com/iruzen-dono/RestaurantApp/internal/application/order"
	appstock "github.com/iruzen-dono/RestaurantApp/internal/application/stock"
	appuser "github.com/iruzen-dono/RestaurantApp/internal/application/user"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/audit"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/category"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/event"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/product"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/user"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/config"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/persistence/mysql"
	httpapi "github.com/iruzen-dono/RestaurantApp/internal/interface/http"
	"github.com/iruzen-dono/RestaurantApp/internal/interface/http/handler"
	"github.com/iruzen-dono/RestaurantApp/internal/interface/http/middleware"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedisWithCleanup,
	providePublisherWithCleanup,
	provideRecorderWithCleanup,
	wire.Bind(new(audit.Sink), new(*appaudit.AsyncRecorder)),
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewTxManager,
	mysql.NewCategoryRepository,
	wire.Bind(new(category.Repository), new(*mysql.CategoryRepository)),
	wire.Bind(new(product.CategoryChecker), new(*mysql.CategoryRepository)),
	mysql.NewProductRepository,
	mysql.NewOrderRepository,
	mysql.NewLineRepository,
	mysql.NewMovementRepository,
	mysql.NewAuditRepository,
	mysql.NewUserRepository,
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	category.NewService,
	product.NewService,
	user.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	provideStatsCache,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
	catalog.NewCreateCategoryUseCase,
	catalog.NewQueryCategoriesUseCase,
	catalog.NewRenameCategoryUseCase,
	catalog.NewDeleteCategoryUseCase,
	catalog.NewCreateProductUseCase,
	catalog.NewUpdateProductUseCase,
	catalog.NewDeleteProductUseCase,
	catalog.NewQueryProductsUseCase,
	apporder.NewCreateOrderUseCase,
	apporder.NewGetOrderUseCase,
	apporder.NewListOrdersUseCase,
	apporder.NewAddLineUseCase,
	apporder.NewUpdateLineQuantityUseCase,
	apporder.NewRemoveLineUseCase,
	apporder.NewValidateOrderUseCase,
	apporder.NewCancelOrderUseCase,
	apporder.NewDeleteOrderUseCase,
	apporder.NewRevenueUseCase,
	appstock.NewRecordMovementUseCase,
	appstock.NewAdjustStockUseCase,
	appstock.NewListMovementsUseCase,
	appaudit.NewListEntriesUseCase,
	dashboard.NewStatsUseCase,
	export.NewExportUseCase,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	wire.Bind(new(middleware.TokenBlacklist), new(appuser.SessionStore)),
	middleware.NewAuthMiddleware,
	wire.Struct(new(handler.OrderUseCases), "*"),
	handler.NewAuthHandler,
	handler.NewCategoryHandler,
	handler.NewProductHandler,
	handler.NewOrderHandler,
	handler.NewStockHandler,
	handler.NewAuditHandler,
	handler.NewDashboardHandler,
	handler.NewExportHandler,
	wire.Struct(new(httpapi.Handlers), "*"),
	provideRouter,
)

// ========================================
// cleanup形式的Provider
// ========================================

func provideDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := mysql.NewDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = mysql.Close(db) }, nil
}

func provideRedisWithCleanup(cfg *config.Config, log *zap.Logger) (*goredis.Client, func(), error) {
	client, err := provideRedis(cfg, log)
	if err != nil || client == nil {
		return nil, func() {}, err
	}
	return client, func() { _ = client.Close() }, nil
}

func providePublisherWithCleanup(cfg *config.Config, log *zap.Logger) (event.Publisher, func()) {
	p, closeFn := providePublisher(cfg, log)
	return p, func() { _ = closeFn(context.Background()) }
}

func provideRecorderWithCleanup(cfg *config.Config, repo audit.Repository, log *zap.Logger) (*appaudit.AsyncRecorder, func()) {
	r := provideAuditRecorder(cfg, repo, log)
	return r, func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = r.Close(ctx)
	}
}

// InitializeApp 初始化Gin引擎
// 返回的cleanup按依赖的逆序释放资源
func InitializeApp(cfg *config.Config, log *zap.Logger) (*gin.Engine, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		applicationSet,
		handlerSet,
	)
	return nil, nil, nil
}
