package repository

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type StoreGormRepository struct {
	db *gorm.DB
}

// DI
func NewStoreGormRepository(db *gorm.DB) *StoreGormRepository {
	return &StoreGormRepository{db: db}
}

// 店舗を作成する
// slugの予約はこのINSERT自身。unique制約の衝突を型付きエラーに変換して
// 呼び出し側（採番ループ）に返す
func (r *StoreGormRepository) Create(ctx context.Context, s model.Store) (model.Store, error) {
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		switch {
		case isUniqueViolation(err, "uq_stores_slug"), isUniqueViolation(err, "uq_stores_domain"):
			return model.Store{}, repo.ErrSlugTaken
		case isUniqueViolation(err, "uq_stores_owner_name"):
			return model.Store{}, repo.ErrDuplicateStore
		}
		return model.Store{}, err
	}
	return s, nil
}

// IDで店舗を取得
func (r *StoreGormRepository) FindByID(ctx context.Context, id string) (model.Store, error) {
	var s model.Store

	err := retryTransient(ctx, func() error {
		return r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	})

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Store{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Store{}, err
	}
	return s, nil
}

// 検索/プラン/所有者/活性の絞り込み付きで作成日時の降順に返す
func (r *StoreGormRepository) List(ctx context.Context, q repo.StoreListQuery) ([]model.Store, error) {
	var stores []model.Store

	err := retryTransient(ctx, func() error {
		tx := r.db.WithContext(ctx).Model(&model.Store{})

		if strings.TrimSpace(q.Search) != "" {
			like := "%" + strings.TrimSpace(q.Search) + "%"
			tx = tx.Where("business_name ILIKE ?", like)
		}
		if q.UserID != "" {
			tx = tx.Where("user_id = ?", q.UserID)
		}
		if q.Plan != "" {
			tx = tx.Where("plan = ?", q.Plan)
		}
		if q.Active != nil {
			tx = tx.Where("is_active = ?", *q.Active)
		}

		return tx.Order("created_at desc").Order("id desc").Find(&stores).Error
	})

	if err != nil {
		return []model.Store{}, err
	}
	return stores, nil
}

// 指定フィールドだけを1回のUPDATEで適用し、更新後の店舗を返す
func (r *StoreGormRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (model.Store, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Store{}).
		Where("id = ?", id).
		Updates(fields)

	if res.Error != nil {
		if isUniqueViolation(res.Error, "uq_stores_owner_name") {
			return model.Store{}, repo.ErrDuplicateStore
		}
		return model.Store{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.Store{}, repo.ErrNotFound
	}

	return r.FindByID(ctx, id)
}

// stores.is_activeを更新
func (r *StoreGormRepository) SetActive(ctx context.Context, id string, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.Store{}).
		Where("id = ?", id).
		Update("is_active", active)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 物理削除。削除後はslug/domainが再利用可能になる
func (r *StoreGormRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Store{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 同一オーナー・同一店名が既にあるか
// 事前チェック用。最終的な一意性はunique制約が守る
func (r *StoreGormRepository) ExistsByOwnerAndName(ctx context.Context, userID string, businessName string) (bool, error) {
	var count int64

	err := retryTransient(ctx, func() error {
		return r.db.WithContext(ctx).
			Model(&model.Store{}).
			Where("user_id = ? AND business_name = ?", userID, businessName).
			Count(&count).Error
	})

	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// domainが使用中か（純粋な読み取り）
func (r *StoreGormRepository) DomainTaken(ctx context.Context, domain string) (bool, error) {
	var count int64

	err := retryTransient(ctx, func() error {
		return r.db.WithContext(ctx).
			Model(&model.Store{}).
			Where("domain = ?", domain).
			Count(&count).Error
	})

	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// 集計カウンタを1文のUPDATEで加算する
// 読み出し→加算→書き戻しはしない。負へは振り切らせずGREATESTで0に止める
// 加算は冪等でないのでリトライしない（接続断時に二重適用しうる）
func (r *StoreGormRepository) IncrementAnalytics(ctx context.Context, id string, d repo.AnalyticsDelta) (model.Store, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Store{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"analytics_visitors": gorm.Expr("GREATEST(analytics_visitors + ?, 0)", d.Visitors),
			"analytics_orders":   gorm.Expr("GREATEST(analytics_orders + ?, 0)", d.Orders),
			"analytics_revenue":  gorm.Expr("GREATEST(analytics_revenue + ?, 0)", d.Revenue),
		})
	if res.Error != nil {
		return model.Store{}, res.Error
	}
	if res.RowsAffected == 0 {
		return model.Store{}, repo.ErrNotFound
	}

	return r.FindByID(ctx, id)
}
