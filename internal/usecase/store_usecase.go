package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/slug"
	"app/internal/validator"

	"github.com/shopspring/decimal"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// StoreUsecase は /stores の業務ロジックです。
type StoreUsecase struct {
	storeRepo      repo.StoreRepository
	idGen          IDGenerator
	platformDomain string
}

// DI
func NewStoreUsecase(storeRepo repo.StoreRepository, idGen IDGenerator, platformDomain string) *StoreUsecase {
	return &StoreUsecase{
		storeRepo:      storeRepo,
		idGen:          idGen,
		platformDomain: platformDomain,
	}
}

// POST /storesの入力DTO
type CreateStoreInput struct {
	BusinessName string
	BusinessType model.BusinessType
	Description  string
	Plan         model.Plan
}

// CreateStore は店舗を作成し、slug/domainを採番する。
// slugの予約と店舗INSERTは同じ1文。衝突したら-2, -3, ...で取り直す
func (u *StoreUsecase) CreateStore(ctx context.Context, userID string, in CreateStoreInput) (model.Store, error) {
	if userID == "" {
		return model.Store{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	v := validator.ValidateNewStore(validator.NewStoreInput{
		OwnerID:      userID,
		BusinessName: in.BusinessName,
		BusinessType: in.BusinessType,
		Plan:         in.Plan,
	})
	if len(v.MissingFields) > 0 {
		return model.Store{}, NewHTTPError(http.StatusBadRequest, "missing required fields: "+strings.Join(v.MissingFields, ", "))
	}
	if len(v.InvalidFields) > 0 {
		return model.Store{}, NewHTTPError(http.StatusBadRequest, "invalid fields: "+strings.Join(v.InvalidFields, ", "))
	}

	base, err := slug.Normalize(in.BusinessName)
	if err != nil {
		return model.Store{}, NewHTTPError(http.StatusBadRequest, "business_name yields empty slug")
	}

	// 事前チェック（親切なエラー用）。最終防衛線はunique制約
	exists, err := u.storeRepo.ExistsByOwnerAndName(ctx, userID, strings.TrimSpace(in.BusinessName))
	if err != nil {
		return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if exists {
		return model.Store{}, NewHTTPError(http.StatusConflict, "store with this business name already exists for this user")
	}

	plan := in.Plan
	if plan == "" {
		plan = model.PlanFree
	}

	for attempt := 1; attempt <= slug.MaxAttempts; attempt++ {
		cand := slug.Candidate(base, attempt)

		s := model.Store{
			ID:           u.idGen.NewID(),
			UserID:       userID,
			BusinessName: strings.TrimSpace(in.BusinessName),
			BusinessType: in.BusinessType,
			Description:  in.Description,
			Slug:         cand,
			Domain:       cand + "." + u.platformDomain,
			Plan:         plan,
			IsActive:     true,
		}

		created, err := u.storeRepo.Create(ctx, s)
		if err == nil {
			return created, nil
		}
		if errors.Is(err, repo.ErrSlugTaken) {
			// 負けたら次の候補で取り直す
			continue
		}
		if errors.Is(err, repo.ErrDuplicateStore) {
			return model.Store{}, NewHTTPError(http.StatusConflict, "store with this business name already exists for this user")
		}
		return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return model.Store{}, NewHTTPError(http.StatusConflict, "slug allocation exhausted")
}

// GetStore は店舗1件を返す。
func (u *StoreUsecase) GetStore(ctx context.Context, id string) (model.Store, error) {
	s, err := u.storeRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Store{}, NewHTTPError(http.StatusNotFound, "store not found")
	}
	if err != nil {
		return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s, nil
}

// GET /storesの入力DTO
type ListStoresInput struct {
	Search string
	UserID string
	Plan   string
	Active *bool
}

type StoreListOutput struct {
	Count  int           `json:"count"`
	Stores []model.Store `json:"stores"`
}

// ListStores は作成日時の降順で店舗一覧を返す。
func (u *StoreUsecase) ListStores(ctx context.Context, in ListStoresInput) (StoreListOutput, error) {
	stores, err := u.storeRepo.List(ctx, repo.StoreListQuery{
		Search: in.Search,
		UserID: in.UserID,
		Plan:   in.Plan,
		Active: in.Active,
	})
	if err != nil {
		return StoreListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return StoreListOutput{Count: len(stores), Stores: stores}, nil
}

// PUT /stores/:idの入力DTO
// slug/domain/analyticsはこの経路では変更不可（handlerで弾く）
type UpdateStoreInput struct {
	BusinessName *string
	BusinessType *model.BusinessType
	Description  *string
	Plan         *model.Plan
	IsActive     *bool
}

// UpdateStore は識別子以外のフィールドを1回のUPDATEで更新する。
func (u *StoreUsecase) UpdateStore(ctx context.Context, id string, in UpdateStoreInput) (model.Store, error) {
	fields := map[string]interface{}{}

	if in.BusinessName != nil {
		name := strings.TrimSpace(*in.BusinessName)
		if name == "" {
			return model.Store{}, NewHTTPError(http.StatusBadRequest, "business_name must not be empty")
		}
		fields["business_name"] = name
	}
	if in.BusinessType != nil {
		if !model.ValidBusinessType(*in.BusinessType) {
			return model.Store{}, NewHTTPError(http.StatusBadRequest, "invalid business_type")
		}
		fields["business_type"] = *in.BusinessType
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Plan != nil {
		if !model.ValidPlan(*in.Plan) {
			return model.Store{}, NewHTTPError(http.StatusBadRequest, "invalid plan")
		}
		fields["plan"] = *in.Plan
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}

	if len(fields) == 0 {
		return model.Store{}, NewHTTPError(http.StatusBadRequest, "no updatable fields")
	}

	s, err := u.storeRepo.UpdateFields(ctx, id, fields)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Store{}, NewHTTPError(http.StatusNotFound, "store not found")
	}
	if errors.Is(err, repo.ErrDuplicateStore) {
		return model.Store{}, NewHTTPError(http.StatusConflict, "store with this business name already exists for this user")
	}
	if err != nil {
		return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s, nil
}

// DeactivateStore は店舗を停止する。slug/domainは保持したまま
func (u *StoreUsecase) DeactivateStore(ctx context.Context, id string) error {
	err := u.storeRepo.SetActive(ctx, id, false)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "store not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// DeleteStore は店舗を物理削除する。
// 行が消えるのでslug/domainは即座に再利用可能になる
func (u *StoreUsecase) DeleteStore(ctx context.Context, id string) error {
	err := u.storeRepo.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "store not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// CheckDomainAvailable はdomainが未使用かを返す（副作用なし）。
func (u *StoreUsecase) CheckDomainAvailable(ctx context.Context, domain string) (bool, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return false, NewHTTPError(http.StatusBadRequest, "domain is required")
	}

	taken, err := u.storeRepo.DomainTaken(ctx, domain)
	if err != nil {
		return false, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return !taken, nil
}

// PATCH /stores/:id/analyticsの入力DTO
type AnalyticsDeltaInput struct {
	Visitors int64
	Orders   int64
	Revenue  decimal.Decimal
}

// IncrementAnalytics は集計カウンタへ原子的に加算する。
// 同時に来た加算は両方反映される（加算は可換）。カウンタは0未満にならない
func (u *StoreUsecase) IncrementAnalytics(ctx context.Context, id string, in AnalyticsDeltaInput) (model.Store, error) {
	s, err := u.storeRepo.IncrementAnalytics(ctx, id, repo.AnalyticsDelta{
		Visitors: in.Visitors,
		Orders:   in.Orders,
		Revenue:  in.Revenue,
	})
	if errors.Is(err, repo.ErrNotFound) {
		return model.Store{}, NewHTTPError(http.StatusNotFound, "store not found")
	}
	if err != nil {
		return model.Store{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s, nil
}
