package main

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"gorm.io/gorm"

	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/persistence/mysql"
)

const (
	healthService  = "restaurant.pos"
	healthInterval = 10 * time.Second
)

// healthServer gRPC标准健康检查
// 状态跟随数据库连通性:能ping通为SERVING,否则NOT_SERVING
type healthServer struct {
	db     *gorm.DB
	log    *zap.Logger
	grpc   *grpc.Server
	health *health.Server
}

func newHealthServer(db *gorm.DB, log *zap.Logger) *healthServer {
	hs := health.NewServer()
	s := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(s, hs)
	reflection.Register(s) // grpcurl调试用

	return &healthServer{db: db, log: log, grpc: s, health: hs}
}

func (h *healthServer) serve(lis net.Listener) error {
	return h.grpc.Serve(lis)
}

// watch 定期检查数据库,ctx结束时返回
func (h *healthServer) watch(ctx context.Context) {
	h.check(ctx)
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.check(ctx)
		}
	}
}

func (h *healthServer) check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := mysql.Ping(ctx, h.db); err != nil {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		h.log.Warn("健康检查:数据库不可达", zap.Error(err))
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(healthService, status)
}

// stop 先标记NOT_SERVING再停止,负载均衡可以提前摘除
func (h *healthServer) stop() {
	h.health.Shutdown()
	h.grpc.GracefulStop()
}
