// Package dto HTTP层请求结构
// binding tag只做格式校验,业务规则(数量>0、价格>0等)由领域层校验
package dto

import "github.com/shopspring/decimal"

// LoginRequest 登录请求
type LoginRequest struct {
	Login    string `json:"login" binding:"required" example:"caisse1"`
	Password string `json:"password" binding:"required" example:"secret"`
}

// CategoryRequest 创建/修改分类
type CategoryRequest struct {
	Label string `json:"label" binding:"required,max=100" example:"Boissons"`
}

// ProductRequest 创建/修改商品
// stock_on_hand、alert_threshold不填时:创建使用默认值(0/10),修改保持原值
type ProductRequest struct {
	Name           string          `json:"name" binding:"required,max=100" example:"Coca 33cl"`
	CategoryID     uint            `json:"category_id" example:"1"`
	UnitPrice      decimal.Decimal `json:"unit_price" swaggertype:"string" example:"2.50"`
	StockOnHand    *int            `json:"stock_on_hand" example:"24"`
	AlertThreshold *int            `json:"alert_threshold" example:"10"`
}

// AddLineRequest 订单加菜
type AddLineRequest struct {
	ProductID uint `json:"product_id" binding:"required" example:"1"`
	Quantity  int  `json:"quantity" example:"2"`
}

// UpdateLineRequest 修改明细数量
type UpdateLineRequest struct {
	Quantity int `json:"quantity" example:"3"`
}

// MovementRequest 记录库存流水
type MovementRequest struct {
	ProductID uint   `json:"product_id" binding:"required" example:"1"`
	Type      string `json:"type" binding:"required" enums:"ENTREE,SORTIE" example:"ENTREE"`
	Quantity  int    `json:"quantity" example:"12"`
	Date      string `json:"date" example:"2024-03-01"` // 不填取当天
	Reason    string `json:"reason" binding:"max=255" example:"livraison"`
}

// AdjustStockRequest 直接调整库存(不记流水,不记审计)
type AdjustStockRequest struct {
	ProductID uint `json:"product_id" binding:"required" example:"1"`
	Quantity  int  `json:"quantity" example:"5"`
}
