package repository

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 指定店舗の公開商品を、検索/ソート/ページング付きで返す。
func (r *ProductGormRepository) ListPublicByStore(ctx context.Context, storeID string, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	err := retryTransient(ctx, func() error {
		tx := r.db.WithContext(ctx).Model(&model.Product{})

		// 公開（is_active=true）のものだけ
		tx = tx.Where("store_id = ? AND is_active = ?", storeID, true)

		if strings.TrimSpace(q.Q) != "" {
			like := "%" + strings.TrimSpace(q.Q) + "%"
			tx = tx.Where("name ILIKE ?", like)
		}

		//total（件数）
		if err := tx.Count(&total).Error; err != nil {
			return err
		}

		//sort
		switch q.Sort {
		case "price_asc":
			tx = tx.Order("price asc").Order("id asc")
		case "price_desc":
			tx = tx.Order("price desc").Order("id desc")
		default:
			tx = tx.Order("created_at desc").Order("id desc")
		}

		offset := (q.Page - 1) * q.Limit
		return tx.Offset(offset).Limit(q.Limit).Find(&products).Error
	})

	if err != nil {
		return []model.Product{}, 0, err
	}
	return products, total, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product

	err := retryTransient(ctx, func() error {
		return r.db.WithContext(ctx).First(&p, id).Error
	})

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}
