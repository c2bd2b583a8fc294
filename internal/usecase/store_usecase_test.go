package usecase_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/sync/errgroup"
)

// =====================
// Mocks
// =====================

type StoreRepoMock struct{ mock.Mock }

func (m *StoreRepoMock) Create(ctx context.Context, s model.Store) (model.Store, error) {
	args := m.Called(ctx, s)
	created, _ := args.Get(0).(model.Store)
	return created, args.Error(1)
}

func (m *StoreRepoMock) FindByID(ctx context.Context, id string) (model.Store, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(model.Store)
	return s, args.Error(1)
}

func (m *StoreRepoMock) List(ctx context.Context, q repo.StoreListQuery) ([]model.Store, error) {
	args := m.Called(ctx, q)
	stores, _ := args.Get(0).([]model.Store)
	return stores, args.Error(1)
}

func (m *StoreRepoMock) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (model.Store, error) {
	args := m.Called(ctx, id, fields)
	s, _ := args.Get(0).(model.Store)
	return s, args.Error(1)
}

func (m *StoreRepoMock) SetActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *StoreRepoMock) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *StoreRepoMock) ExistsByOwnerAndName(ctx context.Context, userID string, businessName string) (bool, error) {
	args := m.Called(ctx, userID, businessName)
	return args.Bool(0), args.Error(1)
}

func (m *StoreRepoMock) DomainTaken(ctx context.Context, domain string) (bool, error) {
	args := m.Called(ctx, domain)
	return args.Bool(0), args.Error(1)
}

func (m *StoreRepoMock) IncrementAnalytics(ctx context.Context, id string, d repo.AnalyticsDelta) (model.Store, error) {
	args := m.Called(ctx, id, d)
	s, _ := args.Get(0).(model.Store)
	return s, args.Error(1)
}

type uuidGen struct{}

func (g *uuidGen) NewID() string { return uuid.NewString() }

func assertHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if !ok {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	assert.Equal(t, status, he.Status)
}

// =====================
// CreateStore
// =====================

func TestStoreUsecase_CreateStore_MissingFields(t *testing.T) {
	uc := usecase.NewStoreUsecase(new(StoreRepoMock), &uuidGen{}, "droppyshop.com")

	_, err := uc.CreateStore(context.Background(), "owner-1", usecase.CreateStoreInput{})

	assertHTTPStatus(t, err, http.StatusBadRequest)
	he, _ := usecase.AsHTTPError(err)
	assert.Contains(t, he.Message, "business_name")
	assert.Contains(t, he.Message, "business_type")
}

func TestStoreUsecase_CreateStore_InvalidBusinessType(t *testing.T) {
	uc := usecase.NewStoreUsecase(new(StoreRepoMock), &uuidGen{}, "droppyshop.com")

	_, err := uc.CreateStore(context.Background(), "owner-1", usecase.CreateStoreInput{
		BusinessName: "Coffee House",
		BusinessType: "spaceship",
	})

	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestStoreUsecase_CreateStore_EmptySlug(t *testing.T) {
	uc := usecase.NewStoreUsecase(new(StoreRepoMock), &uuidGen{}, "droppyshop.com")

	_, err := uc.CreateStore(context.Background(), "owner-1", usecase.CreateStoreInput{
		BusinessName: "!!!",
		BusinessType: model.BusinessTypeRetail,
	})

	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestStoreUsecase_CreateStore_Success(t *testing.T) {
	ctx := context.Background()

	sRepo := new(StoreRepoMock)
	uc := usecase.NewStoreUsecase(sRepo, &uuidGen{}, "droppyshop.com")

	sRepo.On("ExistsByOwnerAndName", mock.Anything, "owner-1", "Coffee House").Return(false, nil)
	sRepo.On("Create", mock.Anything, mock.MatchedBy(func(s model.Store) bool {
		return s.Slug == "coffee-house" && s.Domain == "coffee-house.droppyshop.com" && s.IsActive
	})).Return(model.Store{ID: "s-1", Slug: "coffee-house", Domain: "coffee-house.droppyshop.com"}, nil)

	out, err := uc.CreateStore(ctx, "owner-1", usecase.CreateStoreInput{
		BusinessName: "Coffee House",
		BusinessType: model.BusinessTypeRetail,
	})

	assert.NoError(t, err)
	assert.Equal(t, "coffee-house", out.Slug)
	assert.Equal(t, "coffee-house.droppyshop.com", out.Domain)

	sRepo.AssertExpectations(t)
}

// 重複店名は事前チェックで409になり、slugを1つも消費しない
func TestStoreUsecase_CreateStore_DuplicateName(t *testing.T) {
	sRepo := new(StoreRepoMock)
	uc := usecase.NewStoreUsecase(sRepo, &uuidGen{}, "droppyshop.com")

	sRepo.On("ExistsByOwnerAndName", mock.Anything, "owner-1", "Coffee House").Return(true, nil)

	_, err := uc.CreateStore(context.Background(), "owner-1", usecase.CreateStoreInput{
		BusinessName: "Coffee House",
		BusinessType: model.BusinessTypeRetail,
	})

	assertHTTPStatus(t, err, http.StatusConflict)
	sRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 事前チェックをすり抜けたレースはunique制約からの型付きエラーで409
func TestStoreUsecase_CreateStore_DuplicateRace(t *testing.T) {
	sRepo := new(StoreRepoMock)
	uc := usecase.NewStoreUsecase(sRepo, &uuidGen{}, "droppyshop.com")

	sRepo.On("ExistsByOwnerAndName", mock.Anything, "owner-1", "Coffee House").Return(false, nil)
	sRepo.On("Create", mock.Anything, mock.Anything).Return(model.Store{}, repo.ErrDuplicateStore)

	_, err := uc.CreateStore(context.Background(), "owner-1", usecase.CreateStoreInput{
		BusinessName: "Coffee House",
		BusinessType: model.BusinessTypeRetail,
	})

	assertHTTPStatus(t, err, http.StatusConflict)
}

// slugが取られていたら-2, -3, ...で取り直す
func TestStoreUsecase_CreateStore_SlugConflictRetries(t *testing.T) {
	sRepo := new(StoreRepoMock)
	uc := usecase.NewStoreUsecase(sRepo, &uuidGen{}, "droppyshop.com")

	sRepo.On("ExistsByOwnerAndName", mock.Anything, "owner-2", "Coffee House").Return(false, nil)
	sRepo.On("Create", mock.Anything, mock.MatchedBy(func(s model.Store) bool {
		return s.Slug == "coffee-house"
	})).Return(model.Store{}, repo.ErrSlugTaken).Once()
	sRepo.On("Create", mock.Anything, mock.MatchedBy(func(s model.Store) bool {
		return s.Slug == "coffee-house-2"
	})).Return(model.Store{ID: "s-2", Slug: "coffee-house-2"}, nil).Once()

	out, err := uc.CreateStore(context.Background(), "owner-2", usecase.CreateStoreInput{
		BusinessName: "Coffee House",
		BusinessType: model.BusinessTypeRetail,
	})

	assert.NoError(t, err)
	assert.Equal(t, "coffee-house-2", out.Slug)
	sRepo.AssertExpectations(t)
}

// base〜base-20まで全部取られていたら409で打ち切る（無限ループしない）
func TestStoreUsecase_CreateStore_AllocationExhausted(t *testing.T) {
	sRepo := new(StoreRepoMock)
	uc := usecase.NewStoreUsecase(sRepo, &uuidGen{}, "droppyshop.com")

	sRepo.On("ExistsByOwnerAndName", mock.Anything, "owner-3", "Coffee House").Return(false, nil)
	sRepo.On("Create", mock.Anything, mock.Anything).Return(model.Store{}, repo.ErrSlugTaken)

	_, err := uc.CreateStore(context.Background(), "owner-3", usecase.CreateStoreInput{
		BusinessName: "Coffee House",
		BusinessType: model.BusinessTypeRetail,
	})

	assertHTTPStatus(t, err, http.StatusConflict)
	he, _ := usecase.AsHTTPError(err)
	assert.Contains(t, he.Message, "exhausted")

	// 20候補で止まる
	assert.Equal(t, 20, len(sRepo.Calls)-1)
}

// =====================
// 同時割り当て（インメモリのunique制約で模擬）
// =====================

// unique制約付きストレージのインメモリ版
// 衝突判定と登録を1クリティカルセクションで行う
type fakeStoreRepo struct {
	mu     sync.Mutex
	slugs  map[string]struct{}
	owners map[string]struct{} // "userID/businessName"
	stores map[string]model.Store
}

func newFakeStoreRepo() *fakeStoreRepo {
	return &fakeStoreRepo{
		slugs:  map[string]struct{}{},
		owners: map[string]struct{}{},
		stores: map[string]model.Store{},
	}
}

func (f *fakeStoreRepo) Create(ctx context.Context, s model.Store) (model.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, taken := f.slugs[s.Slug]; taken {
		return model.Store{}, repo.ErrSlugTaken
	}
	ownerKey := s.UserID + "/" + s.BusinessName
	if _, dup := f.owners[ownerKey]; dup {
		return model.Store{}, repo.ErrDuplicateStore
	}

	f.slugs[s.Slug] = struct{}{}
	f.owners[ownerKey] = struct{}{}
	f.stores[s.ID] = s
	return s, nil
}

func (f *fakeStoreRepo) FindByID(ctx context.Context, id string) (model.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stores[id]
	if !ok {
		return model.Store{}, repo.ErrNotFound
	}
	return s, nil
}

func (f *fakeStoreRepo) List(ctx context.Context, q repo.StoreListQuery) ([]model.Store, error) {
	panic("not used in concurrency tests")
}

func (f *fakeStoreRepo) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (model.Store, error) {
	panic("not used in concurrency tests")
}

func (f *fakeStoreRepo) SetActive(ctx context.Context, id string, active bool) error {
	panic("not used in concurrency tests")
}

func (f *fakeStoreRepo) Delete(ctx context.Context, id string) error {
	panic("not used in concurrency tests")
}

func (f *fakeStoreRepo) ExistsByOwnerAndName(ctx context.Context, userID string, businessName string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.owners[userID+"/"+businessName]
	return ok, nil
}

func (f *fakeStoreRepo) DomainTaken(ctx context.Context, domain string) (bool, error) {
	panic("not used in concurrency tests")
}

// DBと同じく加算と書き戻しを1クリティカルセクションで行い、0未満には振り切らせない
func (f *fakeStoreRepo) IncrementAnalytics(ctx context.Context, id string, d repo.AnalyticsDelta) (model.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.stores[id]
	if !ok {
		return model.Store{}, repo.ErrNotFound
	}

	s.Analytics.Visitors = max(s.Analytics.Visitors+d.Visitors, 0)
	s.Analytics.Orders = max(s.Analytics.Orders+d.Orders, 0)

	rev := s.Analytics.Revenue.Add(d.Revenue)
	if rev.IsNegative() {
		rev = decimal.Zero
	}
	s.Analytics.Revenue = rev

	f.stores[id] = s
	return s, nil
}

// 同名店舗をN人が同時に作っても、slug/domainはN個すべて異なる
func TestStoreUsecase_ConcurrentCreate_DistinctSlugs(t *testing.T) {
	ctx := context.Background()

	fake := newFakeStoreRepo()
	uc := usecase.NewStoreUsecase(fake, &uuidGen{}, "droppyshop.com")

	const N = 15

	var mu sync.Mutex
	slugs := map[string]struct{}{}
	domains := map[string]struct{}{}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < N; i++ {
		owner := fmt.Sprintf("owner-%d", i)
		g.Go(func() error {
			s, err := uc.CreateStore(ctx, owner, usecase.CreateStoreInput{
				BusinessName: "Coffee House",
				BusinessType: model.BusinessTypeRetail,
			})
			if err != nil {
				return err
			}
			mu.Lock()
			slugs[s.Slug] = struct{}{}
			domains[s.Domain] = struct{}{}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent create failed: %v", err)
	}

	assert.Equal(t, N, len(slugs))
	assert.Equal(t, N, len(domains))
	for s := range slugs {
		assert.True(t, strings.HasPrefix(s, "coffee-house"))
	}
}

// =====================
// Update / Delete / Analytics
// =====================

func TestStoreUsecase_UpdateStore_NoFields(t *testing.T) {
	uc := usecase.NewStoreUsecase(new(StoreRepoMock), &uuidGen{}, "droppyshop.com")

	_, err := uc.UpdateStore(context.Background(), "s-1", usecase.UpdateStoreInput{})

	assertHTTPStatus(t, err, http.StatusBadRequest)
}

func TestStoreUsecase_UpdateStore_AppliesAllFieldsAtOnce(t *testing.T) {
	sRepo := new(StoreRepoMock)
	uc := usecase.NewStoreUsecase(sRepo, &uuidGen{}, "droppyshop.com")

	desc := "new description"
	plan := model.PlanPro

	sRepo.On("UpdateFields", mock.Anything, "s-1", map[string]interface{}{
		"description": "new description",
		"plan":        model.PlanPro,
	}).Return(model.Store{ID: "s-1", Description: desc, Plan: plan}, nil)

	out, err := uc.UpdateStore(context.Background(), "s-1", usecase.UpdateStoreInput{
		Description: &desc,
		Plan:        &plan,
	})

	assert.NoError(t, err)
	assert.Equal(t, model.PlanPro, out.Plan)
	sRepo.AssertExpectations(t)
}

func TestStoreUsecase_UpdateStore_NotFound(t *testing.T) {
	sRepo := new(StoreRepoMock)
	uc := usecase.NewStoreUsecase(sRepo, &uuidGen{}, "droppyshop.com")

	desc := "x"
	sRepo.On("UpdateFields", mock.Anything, "missing", mock.Anything).Return(model.Store{}, repo.ErrNotFound)

	_, err := uc.UpdateStore(context.Background(), "missing", usecase.UpdateStoreInput{Description: &desc})

	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestStoreUsecase_DeleteStore_NotFound(t *testing.T) {
	sRepo := new(StoreRepoMock)
	uc := usecase.NewStoreUsecase(sRepo, &uuidGen{}, "droppyshop.com")

	sRepo.On("Delete", mock.Anything, "missing").Return(repo.ErrNotFound)

	err := uc.DeleteStore(context.Background(), "missing")

	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestStoreUsecase_IncrementAnalytics_NotFound(t *testing.T) {
	sRepo := new(StoreRepoMock)
	uc := usecase.NewStoreUsecase(sRepo, &uuidGen{}, "droppyshop.com")

	sRepo.On("IncrementAnalytics", mock.Anything, "missing", mock.Anything).Return(model.Store{}, repo.ErrNotFound)

	_, err := uc.IncrementAnalytics(context.Background(), "missing", usecase.AnalyticsDeltaInput{Orders: 1})

	assertHTTPStatus(t, err, http.StatusNotFound)
}

// 同時加算は1つも失われず、合計ちょうどに収束する
func TestStoreUsecase_IncrementAnalytics_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()

	fake := newFakeStoreRepo()
	fake.stores["s-1"] = model.Store{ID: "s-1"}
	uc := usecase.NewStoreUsecase(fake, &uuidGen{}, "droppyshop.com")

	const N = 100

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < N; i++ {
		g.Go(func() error {
			_, err := uc.IncrementAnalytics(ctx, "s-1", usecase.AnalyticsDeltaInput{
				Visitors: 1,
				Orders:   1,
				Revenue:  decimal.NewFromInt(10),
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent increment failed: %v", err)
	}

	out, err := uc.GetStore(ctx, "s-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(N), out.Analytics.Visitors)
	assert.Equal(t, int64(N), out.Analytics.Orders)
	assert.True(t, out.Analytics.Revenue.Equal(decimal.NewFromInt(N*10)))
}

// 負の加算（注文取り消しなど）でカウンタは0未満に振り切れない
func TestStoreUsecase_IncrementAnalytics_ClampsAtZero(t *testing.T) {
	ctx := context.Background()

	fake := newFakeStoreRepo()
	fake.stores["s-1"] = model.Store{
		ID: "s-1",
		Analytics: model.StoreAnalytics{
			Visitors: 5,
			Orders:   2,
			Revenue:  decimal.NewFromInt(100),
		},
	}
	uc := usecase.NewStoreUsecase(fake, &uuidGen{}, "droppyshop.com")

	out, err := uc.IncrementAnalytics(ctx, "s-1", usecase.AnalyticsDeltaInput{
		Visitors: -10,
		Orders:   -1,
		Revenue:  decimal.NewFromInt(-500),
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(0), out.Analytics.Visitors)
	assert.Equal(t, int64(1), out.Analytics.Orders)
	assert.True(t, out.Analytics.Revenue.Equal(decimal.Zero))
}

func TestStoreUsecase_CheckDomainAvailable(t *testing.T) {
	sRepo := new(StoreRepoMock)
	uc := usecase.NewStoreUsecase(sRepo, &uuidGen{}, "droppyshop.com")

	sRepo.On("DomainTaken", mock.Anything, "coffee-house.droppyshop.com").Return(true, nil)
	sRepo.On("DomainTaken", mock.Anything, "free.droppyshop.com").Return(false, nil)

	available, err := uc.CheckDomainAvailable(context.Background(), "coffee-house.droppyshop.com")
	assert.NoError(t, err)
	assert.False(t, available)

	available, err = uc.CheckDomainAvailable(context.Background(), "free.droppyshop.com")
	assert.NoError(t, err)
	assert.True(t, available)
}
