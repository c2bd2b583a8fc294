package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type UserGormRepository struct {
	db *gorm.DB
}

// DI
func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

// 新規ユーザー作成。emailの重複は ErrEmailTaken
func (r *UserGormRepository) Create(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err, "uq_users_email") {
			return repo.ErrEmailTaken
		}
		return err
	}
	return nil
}

// IDからユーザーを1件取得する。
func (r *UserGormRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User

	err := retryTransient(ctx, func() error {
		return r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// メールからユーザーを一件取得する。
func (r *UserGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User

	err := retryTransient(ctx, func() error {
		return r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
