package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/config"
	apperrors "github.com/iruzen-dono/RestaurantApp/pkg/errors"
)

// pingTimeout 启动连通性检查超时
const pingTimeout = 5 * time.Second

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. 开发环境开启SQL日志，生产环境关闭
// 4. 自动迁移表结构（只建表/加字段，兼容旧库）
func NewDB(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	// 1. 配置GORM日志
	logLevel := logger.Silent
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info // 开发环境打印SQL
	}

	// 2. 连接数据库
	db, err := Open(mysql.Open(cfg.Database.DSN()), logLevel)
	if err != nil {
		return nil, apperrors.WithCause(apperrors.ErrStoreUnavailable, err)
	}

	// 3. 配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// 4. 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := Ping(ctx, db); err != nil {
		return nil, err
	}
	log.Info("✓ 数据库连接成功",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName))

	// 5. 自动迁移表结构
	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return db, nil
}

// Open 用指定方言打开GORM连接
// 生产使用MySQL,测试使用SQLite(见mysqltest包)
func Open(dialector gorm.Dialector, logLevel logger.LogLevel) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		// 把驱动相关的唯一键/外键错误统一翻译成gorm.ErrDuplicatedKey等
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now()
		},
	})
}

// Ping 数据库连通性检查
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return apperrors.WithCause(apperrors.ErrStoreUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperrors.WithCause(apperrors.ErrStoreUnavailable, err)
	}
	return nil
}

// Close 关闭连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate 自动迁移表结构
// 学习要点：
// 1. AutoMigrate只会创建表、添加字段，不会删除或修改现有字段
// 2. 表名和列名沿用旧库(法语命名)，已有数据可以直接接入
// 3. historique表在第一次写审计日志之前就已存在
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&CategoryModel{},
		&ProductModel{},
		&UserModel{},
		&OrderModel{},
		&LineModel{},
		&MovementModel{},
		&AuditModel{},
	)
}

// =========================================
// GORM模型
// =========================================
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. domain层实体不依赖GORM，Repository负责两者之间的转换
// 3. 数值字段不加default tag：GORM会把零值替换成默认值(阈值0会变成10)

// CategoryModel 分类
type CategoryModel struct {
	ID    uint   `gorm:"primaryKey"`
	Label string `gorm:"column:libelle;size:100;not null;index;comment:分类名称"`
}

// TableName 指定表名
func (CategoryModel) TableName() string {
	return "categorie"
}

// ProductModel 商品
// 价格使用decimal(10,2)存储
type ProductModel struct {
	ID             uint            `gorm:"primaryKey"`
	Name           string          `gorm:"column:nom;size:100;not null;index;comment:商品名称"`
	CategoryID     *uint           `gorm:"column:categorie_id;index;comment:分类ID"`
	UnitPrice      decimal.Decimal `gorm:"column:prix_vente;type:decimal(10,2);not null;comment:售价"`
	StockOnHand    int             `gorm:"column:stock_actuel;not null;comment:当前库存"`
	AlertThreshold int             `gorm:"column:seuil_alerte;not null;comment:预警阈值"`
}

// TableName 指定表名
func (ProductModel) TableName() string {
	return "produit"
}

// UserModel 用户
type UserModel struct {
	ID       uint   `gorm:"primaryKey"`
	Login    string `gorm:"column:login;uniqueIndex;size:50;not null;comment:登录名"`
	Password string `gorm:"column:motDePasse;size:255;not null;comment:密码(bcrypt)"`
}

// TableName 指定表名
func (UserModel) TableName() string {
	return "utilisateur"
}

// OrderModel 订单
// 教学要点:
// 1. 与LineModel是一对多关系(删除时手动级联)
// 2. date_commande只存日期,营业额按日期查询
type OrderModel struct {
	ID    uint            `gorm:"primaryKey"`
	Date  time.Time       `gorm:"column:date_commande;type:date;not null;index;comment:下单日期"`
	State string          `gorm:"column:etat;size:20;not null;index;comment:订单状态(EN_COURS/VALIDEE/ANNULEE)"`
	Total decimal.Decimal `gorm:"column:total;type:decimal(10,2);not null;comment:订单总金额"`
}

// TableName 指定表名
func (OrderModel) TableName() string {
	return "commande"
}

// LineModel 订单明细
// 记录加入订单时的价格快照(prix_unitaire)
type LineModel struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"column:commande_id;not null;index;comment:订单ID"`
	ProductID uint            `gorm:"column:produit_id;not null;index;comment:商品ID"`
	Quantity  int             `gorm:"column:quantite;not null;comment:数量"`
	UnitPrice decimal.Decimal `gorm:"column:prix_unitaire;type:decimal(10,2);not null;comment:单价快照"`
	Amount    decimal.Decimal `gorm:"column:montant_ligne;type:decimal(10,2);not null;comment:行金额"`
}

// TableName 指定表名
func (LineModel) TableName() string {
	return "ligne_commande"
}

// MovementModel 库存流水
type MovementModel struct {
	ID        uint      `gorm:"primaryKey"`
	ProductID uint      `gorm:"column:produit_id;not null;index;comment:商品ID"`
	Type      string    `gorm:"column:type;size:10;not null;comment:类型(ENTREE/SORTIE)"`
	Quantity  int       `gorm:"column:quantite;not null;comment:数量"`
	Date      time.Time `gorm:"column:date_mouvement;type:date;not null;index;comment:发生日期"`
	Reason    string    `gorm:"column:motif;size:255;comment:原因"`
}

// TableName 指定表名
func (MovementModel) TableName() string {
	return "mouvement_stock"
}

// AuditModel 审计日志
// Table字段对应table_name列(不能叫TableName,会和GORM的TableName方法冲突)
type AuditModel struct {
	ID        uint      `gorm:"primaryKey"`
	Action    string    `gorm:"column:action;size:20;not null"`
	Table     string    `gorm:"column:table_name;size:50;not null;index"`
	RecordID  *uint     `gorm:"column:record_id"`
	Actor     string    `gorm:"column:user;size:100;not null"`
	Details   *string   `gorm:"column:details;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

// TableName 指定表名
func (AuditModel) TableName() string {
	return "historique"
}
