package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

// ユーザーのカートを取得し、無ければ作成
// 同時に2リクエストが作成しても、user_idのunique制約で片方が負けて
// 作成済みの1つを読み直す
func (r *CartGormRepository) GetOrCreateByUserID(ctx context.Context, userID string) (model.Cart, error) {
	var cart model.Cart

	findErr := retryTransient(ctx, func() error {
		return r.db.WithContext(ctx).
			Where("user_id = ?", userID).
			First(&cart).Error
	})
	if findErr == nil {
		return cart, nil
	}
	if !errors.Is(findErr, gorm.ErrRecordNotFound) {
		return model.Cart{}, findErr
	}

	// 無ければ作る
	now := time.Now()
	cart = model.Cart{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if createErr := r.db.WithContext(ctx).Create(&cart).Error; createErr != nil {
		if isUniqueViolation(createErr, "uq_carts_user") {
			retryErr := r.db.WithContext(ctx).
				Where("user_id = ?", userID).
				First(&cart).Error
			if retryErr == nil {
				return cart, nil
			}
		}
		return model.Cart{}, createErr
	}

	return cart, nil
}

// ユーザーのカートを取得
func (r *CartGormRepository) FindByUserID(ctx context.Context, userID string) (model.Cart, error) {
	var cart model.Cart

	err := retryTransient(ctx, func() error {
		return r.db.WithContext(ctx).
			Where("user_id = ?", userID).
			First(&cart).Error
	})

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Cart{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Cart{}, err
	}
	return cart, nil
}

// カート明細を一覧取得
func (r *CartGormRepository) ListItems(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	var items []model.CartItem

	err := retryTransient(ctx, func() error {
		return r.db.WithContext(ctx).
			Where("cart_id = ?", cartID).
			Order("id asc").
			Find(&items).Error
	})

	if err != nil {
		return []model.CartItem{}, err
	}
	return items, nil
}

// 同一商品は数量加算
// SELECT→UPDATEではなく、(cart_id, product_id)のunique制約に対する
// 1文のupsertで行う。同時addは両方とも加算に反映される
func (r *CartGormRepository) AddItem(ctx context.Context, cartID int64, productID int64, addQty int64) error {
	if addQty <= 0 {
		return errors.New("invalid quantity")
	}

	now := time.Now()
	item := model.CartItem{
		CartID:    cartID,
		ProductID: productID,
		Quantity:  addQty,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
				"updated_at": now,
			}),
		}).
		Create(&item).Error
}

// 明細の数量を上書き（加算ではない）
func (r *CartGormRepository) SetItemQuantity(ctx context.Context, cartID int64, productID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細を行ごと削除
func (r *CartGormRepository) RemoveItem(ctx context.Context, cartID int64, productID int64) error {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&model.CartItem{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
