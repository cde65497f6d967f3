// export 把商品和订单导出为CSV文件(produits.csv / commandes.csv)
//
// 用法:
//
//	go run ./cmd/export [-config config/config.yaml] [-dir exports]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/iruzen-dono/RestaurantApp/internal/application/export"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/config"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/logger"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/persistence/mysql"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径(默认按config/config.yaml查找)")
	dir := flag.String("dir", "", "输出目录(默认取export.dir)")
	flag.Parse()

	if err := run(*configPath, *dir); err != nil {
		fmt.Fprintf(os.Stderr, "❌ 导出失败: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, dir string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = cfg.Export.Dir
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := mysql.NewDB(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = mysql.Close(db) }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	uc := export.NewExportUseCase(mysql.NewProductRepository(db), mysql.NewOrderRepository(db), log)
	if err := uc.WriteFiles(ctx, dir); err != nil {
		return err
	}

	log.Info("✓ 导出完成",
		zap.String("products", filepath.Join(dir, export.ProductsFile)),
		zap.String("orders", filepath.Join(dir, export.OrdersFile)))
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}
