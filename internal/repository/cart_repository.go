package repository

import (
	"context"

	"app/internal/domain/model"
)

type CartRepository interface {
	// ユーザーのカートを取得し、無ければ作成
	// 同時作成はuser_idのunique制約で1つに収束させる
	GetOrCreateByUserID(ctx context.Context, userID string) (model.Cart, error)
	FindByUserID(ctx context.Context, userID string) (model.Cart, error)
	ListItems(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同一商品は数量加算。1文のupsertで行う
	AddItem(ctx context.Context, cartID int64, productID int64, addQty int64) error
	// 上書き（加算ではない）。行が無ければ ErrNotFound
	SetItemQuantity(ctx context.Context, cartID int64, productID int64, qty int64) error
	// 行ごと削除。行が無ければ ErrNotFound
	RemoveItem(ctx context.Context, cartID int64, productID int64) error
}
