package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type BusinessType string

const (
	BusinessTypeRetail       BusinessType = "retail"
	BusinessTypeService      BusinessType = "service"
	BusinessTypeDigital      BusinessType = "digital"
	BusinessTypeDropshipping BusinessType = "dropshipping"
	BusinessTypeCustom       BusinessType = "custom"
)

// 有効なbusiness_typeか
func ValidBusinessType(t BusinessType) bool {
	switch t {
	case BusinessTypeRetail, BusinessTypeService, BusinessTypeDigital, BusinessTypeDropshipping, BusinessTypeCustom:
		return true
	}
	return false
}

type Plan string

const (
	PlanFree       Plan = "free"
	PlanStarter    Plan = "starter"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

func ValidPlan(p Plan) bool {
	switch p {
	case PlanFree, PlanStarter, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// 店舗の集計カウンタ
// 書き換えは原子的な加算のみ。クライアント入力で直接上書きしない
type StoreAnalytics struct {
	Visitors int64           `gorm:"not null;default:0" json:"visitors"`
	Orders   int64           `gorm:"not null;default:0" json:"orders"`
	Revenue  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"revenue"`
}

// 店舗（テナント）
// slug/domainは作成時に採番して以後不変
type Store struct {
	ID           string         `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string         `gorm:"type:uuid;not null;uniqueIndex:uq_stores_owner_name,priority:1" json:"user_id"`
	BusinessName string         `gorm:"type:varchar(255);not null;uniqueIndex:uq_stores_owner_name,priority:2" json:"business_name"`
	BusinessType BusinessType   `gorm:"type:varchar(30);not null" json:"business_type"`
	Description  string         `gorm:"type:text" json:"description"`
	Slug         string         `gorm:"type:varchar(130);not null;uniqueIndex:uq_stores_slug" json:"slug"`
	Domain       string         `gorm:"type:varchar(255);not null;uniqueIndex:uq_stores_domain" json:"domain"`
	Analytics    StoreAnalytics `gorm:"embedded;embeddedPrefix:analytics_" json:"analytics"`
	Plan         Plan           `gorm:"type:varchar(20);not null;default:'free'" json:"plan"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
