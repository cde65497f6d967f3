// Package http 收银台HTTP接口:路由、中间件装配
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/iruzen-dono/RestaurantApp/internal/interface/http/handler"
	"github.com/iruzen-dono/RestaurantApp/internal/interface/http/middleware"
	"github.com/iruzen-dono/RestaurantApp/pkg/response"
)

// Handlers 所有HTTP处理器
type Handlers struct {
	Auth      *handler.AuthHandler
	Category  *handler.CategoryHandler
	Product   *handler.ProductHandler
	Order     *handler.OrderHandler
	Stock     *handler.StockHandler
	Audit     *handler.AuditHandler
	Dashboard *handler.DashboardHandler
	Export    *handler.ExportHandler
}

// RouterOptions 路由配置
type RouterOptions struct {
	Mode    string // debug | release | test
	Swagger bool   // 是否开放Swagger文档
}

// NewRouter 创建Gin引擎并注册全部路由
// 中间件顺序:Recovery → Tracing → RequestLogger → Metrics → (RequireAuth) → Handler
func NewRouter(opts RouterOptions, log *zap.Logger, auth *middleware.AuthMiddleware, h Handlers) *gin.Engine {
	switch opts.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(opts.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(
		middleware.Recovery(log),
		middleware.Tracing(),
		middleware.RequestLogger(log),
		middleware.Metrics(),
	)

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档 http://localhost:8080/swagger/index.html
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	{
		// 公开接口
		v1.POST("/auth/login", h.Auth.Login)

		// 需要登录
		authorized := v1.Group("")
		authorized.Use(auth.RequireAuth())
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			categories := authorized.Group("/categories")
			{
				categories.GET("", h.Category.List)
				categories.POST("", h.Category.Create)
				categories.GET("/:id", h.Category.Get)
				categories.PUT("/:id", h.Category.Update)
				categories.DELETE("/:id", h.Category.Delete)
			}

			products := authorized.Group("/products")
			{
				products.GET("", h.Product.List)
				products.POST("", h.Product.Create)
				products.GET("/low-stock", h.Product.LowStock)
				products.GET("/:id", h.Product.Get)
				products.PUT("/:id", h.Product.Update)
				products.DELETE("/:id", h.Product.Delete)
			}

			orders := authorized.Group("/orders")
			{
				orders.POST("", h.Order.Create)
				orders.GET("", h.Order.List)
				orders.GET("/:id", h.Order.Get)
				orders.DELETE("/:id", h.Order.Delete)
				orders.POST("/:id/lines", h.Order.AddLine)
				orders.PUT("/:id/lines/:lineId", h.Order.UpdateLine)
				orders.DELETE("/:id/lines/:lineId", h.Order.RemoveLine)
				orders.POST("/:id/validate", h.Order.Validate)
				orders.POST("/:id/cancel", h.Order.Cancel)
			}
			authorized.GET("/revenue", h.Order.Revenue)

			stock := authorized.Group("/stock")
			{
				stock.POST("/movements", h.Stock.RecordMovement)
				stock.GET("/movements", h.Stock.ListMovements)
				stock.POST("/increase", h.Stock.Increase)
				stock.POST("/decrease", h.Stock.Decrease)
			}

			authorized.GET("/audit", h.Audit.List)
			authorized.GET("/dashboard", h.Dashboard.Stats)

			exports := authorized.Group("/exports")
			{
				exports.GET("/products.csv", h.Export.Products)
				exports.GET("/orders.csv", h.Export.Orders)
			}
		}
	}

	return r
}
