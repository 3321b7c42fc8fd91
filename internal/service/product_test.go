package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/giftcard-catalog/internal/domain"
	"github.com/utafrali/giftcard-catalog/internal/repository"
	apperrors "github.com/utafrali/giftcard-catalog/pkg/errors"
	"github.com/utafrali/giftcard-catalog/pkg/pagination"
)

// --- Mock Repository ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Count(ctx context.Context) int {
	args := m.Called(ctx)
	return args.Int(0)
}

func (m *mockProductRepository) All(ctx context.Context) []domain.Product {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product)
}

func (m *mockProductRepository) Query(ctx context.Context, q repository.ProductQuery) ([]domain.Product, int) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.Product), args.Int(1)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id int64) (domain.Product, bool) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Bool(1)
}

func (m *mockProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *mockProductRepository) Update(ctx context.Context, id int64, patch domain.ProductPatch) (domain.Product, bool, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(domain.Product), args.Bool(1), args.Error(2)
}

func (m *mockProductRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// --- Mock Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishProductCreated(ctx context.Context, product domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockPublisher) PublishProductUpdated(ctx context.Context, product domain.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockPublisher) PublishProductDeleted(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestService(repo *mockProductRepository, pub *mockPublisher) *ProductService {
	return NewProductService(repo, pub, newTestLogger())
}

func strPtr(s string) *string {
	return &s
}

func listQuery(page, limit int, search string) repository.ProductQuery {
	return repository.ProductQuery{
		Search:    search,
		SortBy:    domain.SortByName,
		SortOrder: domain.SortDesc,
		Params:    pagination.Params{Page: page, Limit: limit},
	}
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Product not found", appErr.Message)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- Tests ---

func TestListAll(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestService(repo, new(mockPublisher))
	all := []domain.Product{{ID: 1, Name: "Apple"}, {ID: 2, Name: "Banana"}}

	repo.On("All", mock.Anything).Return(all)

	assert.Equal(t, all, svc.ListAll(context.Background()))
	repo.AssertExpectations(t)
}

func TestListProducts_Envelope(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestService(repo, new(mockPublisher))
	q := listQuery(1, 2, "")
	page := []domain.Product{{ID: 3, Name: "Cherry"}, {ID: 2, Name: "Banana"}}

	repo.On("Count", mock.Anything).Return(3)
	repo.On("Query", mock.Anything, q).Return(page, 3)

	result, err := svc.ListProducts(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, page, result.Data)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 2, result.Limit)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.TotalPages)
	assert.True(t, result.HasNext)
	assert.False(t, result.HasPrev)
	repo.AssertExpectations(t)
}

func TestListProducts_ShortCircuitsPastCollection(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestService(repo, new(mockPublisher))

	repo.On("Count", mock.Anything).Return(4)

	result, err := svc.ListProducts(context.Background(), listQuery(3, 2, ""))
	require.NoError(t, err)

	assert.Equal(t, pagination.Empty[domain.Product](pagination.Params{Page: 3, Limit: 2}), result)
	repo.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
}

func TestListProducts_HugePageIsEmpty(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestService(repo, new(mockPublisher))
	q := listQuery(1<<62+1, 4, "")

	repo.On("Count", mock.Anything).Return(3)

	result, err := svc.ListProducts(context.Background(), q)
	require.NoError(t, err)

	assert.Empty(t, result.Data)
	assert.NotNil(t, result.Data)
	assert.False(t, result.HasPrev)
	assert.Zero(t, result.Total)
	repo.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
}

func TestListProducts_PastFilteredTotal(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestService(repo, new(mockPublisher))
	q := listQuery(2, 10, "amazon")

	repo.On("Count", mock.Anything).Return(50)
	repo.On("Query", mock.Anything, q).Return([]domain.Product{}, 3)

	result, err := svc.ListProducts(context.Background(), q)
	require.NoError(t, err)

	assert.Empty(t, result.Data)
	assert.NotNil(t, result.Data)
	assert.Equal(t, 2, result.Page)
	assert.Zero(t, result.Total)
	assert.Zero(t, result.TotalPages)
	assert.False(t, result.HasNext)
	assert.False(t, result.HasPrev)
}

func TestListProducts_SearchOnLaterPage(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestService(repo, new(mockPublisher))
	q := listQuery(2, 1, "an")
	page := []domain.Product{{ID: 4, Name: "Mango"}}

	repo.On("Count", mock.Anything).Return(10)
	repo.On("Query", mock.Anything, q).Return(page, 2)

	result, err := svc.ListProducts(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, page, result.Data)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.TotalPages)
	assert.False(t, result.HasNext)
	assert.True(t, result.HasPrev)
}

func TestListProducts_EmptyCollection(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestService(repo, new(mockPublisher))

	repo.On("Count", mock.Anything).Return(0)

	result, err := svc.ListProducts(context.Background(), listQuery(1, 10, ""))
	require.NoError(t, err)
	assert.Empty(t, result.Data)
	assert.Zero(t, result.TotalPages)
	assert.False(t, result.HasPrev)
}

func TestListProducts_DefaultsSort(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestService(repo, new(mockPublisher))

	repo.On("Count", mock.Anything).Return(1)
	repo.On("Query", mock.Anything, mock.MatchedBy(func(q repository.ProductQuery) bool {
		return q.SortBy == domain.SortByID && q.SortOrder == domain.SortAsc
	})).Return([]domain.Product{{ID: 1}}, 1)

	_, err := svc.ListProducts(context.Background(), repository.ProductQuery{Params: pagination.DefaultParams()})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestListProducts_InvalidParams(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestService(repo, new(mockPublisher))

	_, err := svc.ListProducts(context.Background(), listQuery(0, 10, ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	repo.AssertNotCalled(t, "Count", mock.Anything)
}

func TestGetProduct_Found(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestService(repo, new(mockPublisher))
	want := domain.Product{ID: 7, Name: "Steam"}

	repo.On("GetByID", mock.Anything, int64(7)).Return(want, true)

	got, err := svc.GetProduct(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetProduct_NotFound(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestService(repo, new(mockPublisher))

	repo.On("GetByID", mock.Anything, int64(999)).Return(domain.Product{}, false)

	_, err := svc.GetProduct(context.Background(), 999)
	assertNotFound(t, err)
}

func TestCreateProduct_Success(t *testing.T) {
	repo := new(mockProductRepository)
	pub := new(mockPublisher)
	svc := newTestService(repo, pub)

	input := domain.Product{ID: 5, Name: "Steam", Typename: "Other"}
	stored := domain.Product{Name: "Steam", Typename: domain.TypenameProductInfo}
	created := stored
	created.ID = 123

	repo.On("Create", mock.Anything, stored).Return(created, nil)
	pub.On("PublishProductCreated", mock.Anything, created).Return(nil)

	got, err := svc.CreateProduct(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestCreateProduct_RepoError(t *testing.T) {
	repo := new(mockProductRepository)
	pub := new(mockPublisher)
	svc := newTestService(repo, pub)
	diskErr := errors.New("disk full")

	repo.On("Create", mock.Anything, mock.Anything).Return(domain.Product{}, diskErr)

	_, err := svc.CreateProduct(context.Background(), domain.Product{Name: "Steam"})
	require.Error(t, err)
	assert.ErrorIs(t, err, diskErr)
	assert.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INTERNAL_ERROR", appErr.Code)
	assert.Equal(t, apperrors.MessageInternal, appErr.Message)
	pub.AssertNotCalled(t, "PublishProductCreated", mock.Anything, mock.Anything)
}

func TestCreateProduct_PublishFailureIsNotFatal(t *testing.T) {
	repo := new(mockProductRepository)
	pub := new(mockPublisher)
	svc := newTestService(repo, pub)
	created := domain.Product{ID: 1, Name: "Steam", Typename: domain.TypenameProductInfo}

	repo.On("Create", mock.Anything, mock.Anything).Return(created, nil)
	pub.On("PublishProductCreated", mock.Anything, created).Return(errors.New("broker down"))

	got, err := svc.CreateProduct(context.Background(), domain.Product{Name: "Steam"})
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestUpdateProduct_Success(t *testing.T) {
	repo := new(mockProductRepository)
	pub := new(mockPublisher)
	svc := newTestService(repo, pub)
	patch := domain.ProductPatch{Name: strPtr("Renamed")}
	updated := domain.Product{ID: 2, Name: "Renamed"}

	repo.On("GetByID", mock.Anything, int64(2)).Return(domain.Product{ID: 2, Name: "Banana"}, true)
	repo.On("Update", mock.Anything, int64(2), patch).Return(updated, true, nil)
	pub.On("PublishProductUpdated", mock.Anything, updated).Return(nil)

	got, err := svc.UpdateProduct(context.Background(), 2, patch)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestUpdateProduct_NotFoundSkipsRepository(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestService(repo, new(mockPublisher))

	repo.On("GetByID", mock.Anything, int64(999)).Return(domain.Product{}, false)

	_, err := svc.UpdateProduct(context.Background(), 999, domain.ProductPatch{Name: strPtr("x")})
	assertNotFound(t, err)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateProduct_DeletedConcurrently(t *testing.T) {
	repo := new(mockProductRepository)
	pub := new(mockPublisher)
	svc := newTestService(repo, pub)

	repo.On("GetByID", mock.Anything, int64(2)).Return(domain.Product{ID: 2}, true)
	repo.On("Update", mock.Anything, int64(2), mock.Anything).Return(domain.Product{}, false, nil)

	_, err := svc.UpdateProduct(context.Background(), 2, domain.ProductPatch{})
	assertNotFound(t, err)
	pub.AssertNotCalled(t, "PublishProductUpdated", mock.Anything, mock.Anything)
}

func TestUpdateProduct_RepoError(t *testing.T) {
	repo := new(mockProductRepository)
	svc := newTestService(repo, new(mockPublisher))
	diskErr := errors.New("rename failed")

	repo.On("GetByID", mock.Anything, int64(2)).Return(domain.Product{ID: 2}, true)
	repo.On("Update", mock.Anything, int64(2), mock.Anything).Return(domain.Product{}, true, diskErr)

	_, err := svc.UpdateProduct(context.Background(), 2, domain.ProductPatch{})
	assert.ErrorIs(t, err, diskErr)
}

func TestDeleteProduct_Success(t *testing.T) {
	repo := new(mockProductRepository)
	pub := new(mockPublisher)
	svc := newTestService(repo, pub)

	repo.On("GetByID", mock.Anything, int64(3)).Return(domain.Product{ID: 3}, true)
	repo.On("Delete", mock.Anything, int64(3)).Return(true, nil)
	pub.On("PublishProductDeleted", mock.Anything, int64(3)).Return(nil)

	got, err := svc.DeleteProduct(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, DeleteResult{ID: 3}, got)
	pub.AssertExpectations(t)
}

func TestDeleteProduct_Twice(t *testing.T) {
	repo := new(mockProductRepository)
	pub := new(mockPublisher)
	svc := newTestService(repo, pub)

	repo.On("GetByID", mock.Anything, int64(3)).Return(domain.Product{ID: 3}, true).Once()
	repo.On("Delete", mock.Anything, int64(3)).Return(true, nil).Once()
	pub.On("PublishProductDeleted", mock.Anything, int64(3)).Return(nil).Once()
	repo.On("GetByID", mock.Anything, int64(3)).Return(domain.Product{}, false).Once()

	_, err := svc.DeleteProduct(context.Background(), 3)
	require.NoError(t, err)

	_, err = svc.DeleteProduct(context.Background(), 3)
	assertNotFound(t, err)
	repo.AssertNumberOfCalls(t, "Delete", 1)
}

func TestDeleteProduct_RepoError(t *testing.T) {
	repo := new(mockProductRepository)
	pub := new(mockPublisher)
	svc := newTestService(repo, pub)
	diskErr := errors.New("disk full")

	repo.On("GetByID", mock.Anything, int64(3)).Return(domain.Product{ID: 3}, true)
	repo.On("Delete", mock.Anything, int64(3)).Return(true, diskErr)

	_, err := svc.DeleteProduct(context.Background(), 3)
	assert.ErrorIs(t, err, diskErr)
	pub.AssertNotCalled(t, "PublishProductDeleted", mock.Anything, mock.Anything)
}

func TestNewProductService_NilPublisher(t *testing.T) {
	repo := new(mockProductRepository)
	svc := NewProductService(repo, nil, newTestLogger())
	created := domain.Product{ID: 1}

	repo.On("Create", mock.Anything, mock.Anything).Return(created, nil)

	_, err := svc.CreateProduct(context.Background(), domain.Product{})
	require.NoError(t, err)
}
