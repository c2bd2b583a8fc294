package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 店舗に属する商品
type Product struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	StoreID     string          `gorm:"type:uuid;not null;index" json:"store_id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"type:varchar(100)" json:"category"`
	Price       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Stock       int64           `gorm:"not null;default:0" json:"stock"`
	ImageURL    string          `gorm:"type:text" json:"image_url"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}
