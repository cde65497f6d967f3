package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/iruzen-dono/RestaurantApp/docs" // Swagger文档
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/config"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/logger"
	apperrors "github.com/iruzen-dono/RestaurantApp/pkg/errors"
)

// shutdownTimeout 优雅关闭的最长等待时间
const shutdownTimeout = 15 * time.Second

// @title           Restaurant POS API
// @version         1.0
// @description     餐厅收银系统:商品目录、点单结账、库存流水、审计日志、看板与CSV导出
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     格式: Bearer {access_token}

// main 主程序入口
// 启动顺序:配置 → 日志 → 数据库 → 可选组件(追踪/Redis/MQ) → 审计 → HTTP + gRPC健康检查
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化日志
	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	zlog.Info("✓ 配置加载成功",
		zap.Int("port", cfg.Server.Port),
		zap.Int("grpc_port", cfg.Server.GRPCPort),
		zap.String("mode", cfg.Server.Mode),
		zap.String("database", fmt.Sprintf("%s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)))

	// 3. 组装依赖
	a, err := newApp(cfg, zlog)
	if err != nil {
		if errors.Is(err, apperrors.ErrStoreUnavailable) {
			printDBChecklist(cfg, err)
			os.Exit(1)
		}
		zlog.Fatal("初始化失败", zap.Error(err))
	}

	// 4. 启动服务
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      a.engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zlog.Info("🚀 HTTP服务启动成功", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP服务异常退出: %w", err)
		}
		return nil
	})

	if cfg.Server.GRPCPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
		if err != nil {
			zlog.Fatal("监听gRPC端口失败", zap.Error(err))
		}
		health := newHealthServer(a.db, zlog)
		g.Go(func() error {
			health.watch(gctx)
			return nil
		})
		g.Go(func() error {
			zlog.Info("🚀 gRPC健康检查启动成功", zap.String("addr", lis.Addr().String()))
			return health.serve(lis)
		})
		g.Go(func() error {
			<-gctx.Done()
			health.stop()
			return nil
		})
	}

	// 5. 优雅关闭
	g.Go(func() error {
		<-gctx.Done()
		zlog.Info("📴 收到关闭信号,开始优雅关闭...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zlog.Error("服务退出", zap.Error(err))
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.close(closeCtx)
	zlog.Info("✅ 服务已安全关闭")
}

// printDBChecklist 数据库不可达时给出排查清单
func printDBChecklist(cfg *config.Config, err error) {
	fmt.Fprintf(os.Stderr, "❌ 无法连接数据库 %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Fprintf(os.Stderr, "   错误: %v\n\n", err)
	fmt.Fprintln(os.Stderr, "请检查:")
	fmt.Fprintln(os.Stderr, "  1. MySQL服务是否已启动")
	fmt.Fprintf(os.Stderr, "  2. 数据库 %s 是否已创建\n", cfg.Database.DBName)
	fmt.Fprintf(os.Stderr, "  3. 用户 %s 的密码是否正确\n", cfg.Database.User)
	fmt.Fprintln(os.Stderr, "  4. 环境变量覆盖(POS_DATABASE_HOST、POS_DATABASE_PASSWORD等)是否生效")
}
