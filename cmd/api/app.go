package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
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
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/mq"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/persistence/mysql"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/persistence/redis"
	httpapi "github.com/iruzen-dono/RestaurantApp/internal/interface/http"
	"github.com/iruzen-dono/RestaurantApp/internal/interface/http/handler"
	"github.com/iruzen-dono/RestaurantApp/internal/interface/http/middleware"
	"github.com/iruzen-dono/RestaurantApp/pkg/circuitbreaker"
	"github.com/iruzen-dono/RestaurantApp/pkg/jwt"
	"github.com/iruzen-dono/RestaurantApp/pkg/tracing"
)

// app 组装好的应用
type app struct {
	log     *zap.Logger
	db      *gorm.DB
	engine  *gin.Engine
	closers []func(context.Context) error // 按注册的逆序关闭
}

func (a *app) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// close 依次释放资源:审计队列 → MQ → Redis → 追踪 → 数据库
func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn("资源关闭失败", zap.Error(err))
		}
	}
}

// newApp 手动依赖注入
// 依赖链:Repository ← Service ← UseCase ← Handler ← Router
// wire.go中的Injector与这里保持同样的Provider
func newApp(cfg *config.Config, log *zap.Logger) (_ *app, err error) {
	a := &app{log: log}
	defer func() {
		if err != nil {
			a.close(context.Background())
		}
	}()

	// 基础设施层
	db, err := mysql.NewDB(cfg, log)
	if err != nil {
		return nil, err
	}
	a.db = db
	a.onClose(func(context.Context) error { return mysql.Close(db) })

	if shutdown := provideTracer(cfg, log); shutdown != nil {
		a.onClose(shutdown)
	}

	redisClient, err := provideRedis(cfg, log)
	if err != nil {
		return nil, err
	}
	if redisClient != nil {
		a.onClose(func(context.Context) error { return redisClient.Close() })
	}

	publisher, closePublisher := providePublisher(cfg, log)
	a.onClose(closePublisher)

	// 仓储层
	tx := mysql.NewTxManager(db)
	categoryRepo := mysql.NewCategoryRepository(db)
	productRepo := mysql.NewProductRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	lineRepo := mysql.NewLineRepository(db)
	movementRepo := mysql.NewMovementRepository(db)
	auditRepo := mysql.NewAuditRepository(db)
	userRepo := mysql.NewUserRepository(db)

	recorder := provideAuditRecorder(cfg, auditRepo, log)
	a.onClose(recorder.Close)

	// 领域层
	categoryService := category.NewService(categoryRepo)
	productService := product.NewService(productRepo, categoryRepo)
	userService := user.NewService(userRepo)

	// 应用层
	jwtManager := provideJWTManager(cfg)
	sessions := provideSessionStore(redisClient)
	stats := dashboard.NewStatsUseCase(orderRepo, productRepo, provideStatsCache(cfg, redisClient), log)

	orderUseCases := handler.OrderUseCases{
		Create:     apporder.NewCreateOrderUseCase(orderRepo),
		Get:        apporder.NewGetOrderUseCase(orderRepo, lineRepo),
		List:       apporder.NewListOrdersUseCase(orderRepo),
		AddLine:    apporder.NewAddLineUseCase(orderRepo, lineRepo, productRepo, tx, recorder),
		UpdateLine: apporder.NewUpdateLineQuantityUseCase(orderRepo, lineRepo, tx, recorder),
		RemoveLine: apporder.NewRemoveLineUseCase(orderRepo, lineRepo, tx, recorder),
		Validate:   apporder.NewValidateOrderUseCase(orderRepo, publisher, log),
		Cancel:     apporder.NewCancelOrderUseCase(orderRepo, publisher, log),
		Delete:     apporder.NewDeleteOrderUseCase(orderRepo, lineRepo, tx, recorder),
		Revenue:    apporder.NewRevenueUseCase(orderRepo),
	}

	// 接口层
	handlers := httpapi.Handlers{
		Auth: handler.NewAuthHandler(
			appuser.NewLoginUseCase(userService, jwtManager, sessions, log),
			appuser.NewLogoutUseCase(sessions),
		),
		Category: handler.NewCategoryHandler(
			catalog.NewCreateCategoryUseCase(categoryService),
			catalog.NewQueryCategoriesUseCase(categoryService),
			catalog.NewRenameCategoryUseCase(categoryService),
			catalog.NewDeleteCategoryUseCase(categoryService),
		),
		Product: handler.NewProductHandler(
			catalog.NewCreateProductUseCase(productService),
			catalog.NewUpdateProductUseCase(tx, productService),
			catalog.NewDeleteProductUseCase(productService),
			catalog.NewQueryProductsUseCase(productService),
			stats,
		),
		Order: handler.NewOrderHandler(orderUseCases, stats),
		Stock: handler.NewStockHandler(
			appstock.NewRecordMovementUseCase(movementRepo, productRepo, tx, recorder, publisher, log),
			appstock.NewAdjustStockUseCase(productRepo),
			appstock.NewListMovementsUseCase(movementRepo),
			stats,
		),
		Audit:     handler.NewAuditHandler(appaudit.NewListEntriesUseCase(auditRepo)),
		Dashboard: handler.NewDashboardHandler(stats),
		Export:    handler.NewExportHandler(export.NewExportUseCase(productRepo, orderRepo, log)),
	}

	a.engine = provideRouter(cfg, log, middleware.NewAuthMiddleware(jwtManager, sessions), handlers)
	return a, nil
}

// ========================================
// Custom Providers
// ========================================

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideRedis 未启用Redis时返回nil客户端
func provideRedis(cfg *config.Config, log *zap.Logger) (*goredis.Client, error) {
	if !cfg.Redis.Enabled {
		log.Info("Redis未启用,会话与看板缓存降级")
		return nil, nil
	}
	return redis.NewClient(cfg, log)
}

// provideSessionStore 没有Redis时不保存会话,登出黑名单也不生效
func provideSessionStore(client *goredis.Client) appuser.SessionStore {
	if client == nil {
		return appuser.NopSessionStore{}
	}
	return redis.NewSessionStore(client)
}

// provideStatsCache 注意返回接口nil而不是(*StatsCache)(nil)
func provideStatsCache(cfg *config.Config, client *goredis.Client) dashboard.Cache {
	if client == nil {
		return nil
	}
	return redis.NewStatsCache(client, cfg.Redis.StatsTTL)
}

// providePublisher 领域事件发布
// MQ连不上时只告警,收银业务照常进行
func providePublisher(cfg *config.Config, log *zap.Logger) (event.Publisher, func(context.Context) error) {
	noop := func(context.Context) error { return nil }
	if !cfg.MQ.Enabled {
		return event.NopPublisher{}, noop
	}
	p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, log)
	if err != nil {
		log.Warn("连接RabbitMQ失败,领域事件不再发布", zap.Error(err))
		return event.NopPublisher{}, noop
	}
	failures := uint32(cfg.MQ.BreakerFailures)
	guarded := mq.NewGuardedPublisher(p, circuitbreaker.Config{
		Interval:    time.Minute,
		Timeout:     cfg.MQ.BreakerTimeout,
		ReadyToTrip: func(c circuitbreaker.Counts) bool { return c.ConsecutiveFailures >= failures },
	}, log)
	return guarded, func(context.Context) error { return p.Close() }
}

// provideTracer 启用时初始化OTLP导出,返回关闭函数
func provideTracer(cfg *config.Config, log *zap.Logger) func(context.Context) error {
	if !cfg.Tracing.Enabled {
		return nil
	}
	shutdown, err := tracing.InitTracer(tracing.Options{
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		log.Warn("初始化链路追踪失败", zap.Error(err))
		return nil
	}
	log.Info("✓ 链路追踪已启用", zap.String("endpoint", cfg.Tracing.Endpoint))
	return shutdown
}

// provideAuditRecorder 创建并启动异步审计写入
func provideAuditRecorder(cfg *config.Config, repo audit.Repository, log *zap.Logger) *appaudit.AsyncRecorder {
	r := appaudit.NewAsyncRecorder(repo, log, appaudit.RecorderOptions{
		BufferSize:   cfg.Audit.BufferSize,
		WriteTimeout: cfg.Audit.WriteTimeout,
	})
	r.Start()
	return r
}

// provideRouter release模式下关闭Swagger
func provideRouter(cfg *config.Config, log *zap.Logger, auth *middleware.AuthMiddleware, h httpapi.Handlers) *gin.Engine {
	return httpapi.NewRouter(httpapi.RouterOptions{
		Mode:    cfg.Server.Mode,
		Swagger: cfg.Server.Mode != gin.ReleaseMode,
	}, log, auth, h)
}
