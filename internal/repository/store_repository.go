package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("not found")

// slug（またはそこから導出したdomain）のunique制約に負けた
var ErrSlugTaken = errors.New("slug taken")

// (user_id, business_name) のunique制約に負けた
var ErrDuplicateStore = errors.New("duplicate store")

// 一覧検索
type StoreListQuery struct {
	Search string
	UserID string
	Plan   string
	Active *bool
}

// 集計カウンタへの加算量。負の値も許す（注文取り消しなど）
type AnalyticsDelta struct {
	Visitors int64
	Orders   int64
	Revenue  decimal.Decimal
}

// 店舗の永続化だけを約束。
type StoreRepository interface {
	// slug予約と店舗作成は同じINSERT。事前チェックではなく
	// unique制約の衝突を ErrSlugTaken / ErrDuplicateStore で返す
	Create(ctx context.Context, s model.Store) (model.Store, error)
	FindByID(ctx context.Context, id string) (model.Store, error)
	List(ctx context.Context, q StoreListQuery) ([]model.Store, error)
	// 1回のUPDATEで全フィールドを適用（all-or-nothing）
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (model.Store, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error

	ExistsByOwnerAndName(ctx context.Context, userID string, businessName string) (bool, error)
	DomainTaken(ctx context.Context, domain string) (bool, error)

	// 原子的な加算。読み出し→加算→書き戻しはしない
	IncrementAnalytics(ctx context.Context, id string, d AnalyticsDelta) (model.Store, error)
}
