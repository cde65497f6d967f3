// Package export 把商品表和订单表导出为CSV
//
// 格式与旧版导出脚本一致:第一行是列名,之后每条记录一行;
// 含逗号、引号或换行的字段加双引号,内部引号写成两个。
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/order"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/product"
)

// 导出文件名
const (
	ProductsFile = "produits.csv"
	OrdersFile   = "commandes.csv"
)

var (
	productHeader = []string{"id", "nom", "categorie_id", "prix_vente", "stock_actuel", "seuil_alerte"}
	orderHeader   = []string{"id", "date_commande", "etat", "total"}
)

// ExportUseCase CSV导出用例
type ExportUseCase struct {
	productRepo product.Repository
	orderRepo   order.Repository
	log         *zap.Logger
}

// NewExportUseCase 创建导出用例
func NewExportUseCase(productRepo product.Repository, orderRepo order.Repository, log *zap.Logger) *ExportUseCase {
	return &ExportUseCase{productRepo: productRepo, orderRepo: orderRepo, log: log}
}

// ExportProducts 导出商品表
func (uc *ExportUseCase) ExportProducts(ctx context.Context, w io.Writer) error {
	list, err := uc.productRepo.List(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(list))
	for _, p := range list {
		category := ""
		if p.CategoryID != 0 {
			category = uitoa(p.CategoryID)
		}
		rows = append(rows, []string{
			uitoa(p.ID),
			p.Name,
			category,
			p.UnitPrice.StringFixed(2),
			strconv.Itoa(p.StockOnHand),
			strconv.Itoa(p.AlertThreshold),
		})
	}
	return writeCSV(w, productHeader, rows)
}

// ExportOrders 导出订单表
func (uc *ExportUseCase) ExportOrders(ctx context.Context, w io.Writer) error {
	list, err := uc.orderRepo.List(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(list))
	for _, o := range list {
		rows = append(rows, []string{
			uitoa(o.ID),
			o.Date.Format("2006-01-02"),
			o.State.String(),
			o.Total.StringFixed(2),
		})
	}
	return writeCSV(w, orderHeader, rows)
}

// WriteFiles 在dir下生成produits.csv和commandes.csv,目录不存在时自动创建
func (uc *ExportUseCase) WriteFiles(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("创建导出目录失败: %w", err)
	}

	jobs := []struct {
		name string
		fn   func(context.Context, io.Writer) error
	}{
		{ProductsFile, uc.ExportProducts},
		{OrdersFile, uc.ExportOrders},
	}
	for _, job := range jobs {
		path := filepath.Join(dir, job.name)
		if err := writeFile(ctx, path, job.fn); err != nil {
			return err
		}
		uc.log.Info("导出完成", zap.String("file", path))
	}
	return nil
}

func writeFile(ctx context.Context, path string, fn func(context.Context, io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建文件失败: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("写入%s失败: %w", path, cerr)
		}
	}()
	return fn(ctx, f)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("写入CSV失败: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("写入CSV失败: %w", err)
	}
	return nil
}

func uitoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
