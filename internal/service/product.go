package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/giftcard-catalog/internal/domain"
	"github.com/utafrali/giftcard-catalog/internal/event"
	"github.com/utafrali/giftcard-catalog/internal/repository"
	apperrors "github.com/utafrali/giftcard-catalog/pkg/errors"
	"github.com/utafrali/giftcard-catalog/pkg/pagination"
)

// productResource names products in not-found messages.
const productResource = "Product"

// DeleteResult is returned by a successful delete.
type DeleteResult struct {
	ID int64 `json:"id"`
}

// ProductService implements the business logic for product operations.
type ProductService struct {
	repo      repository.ProductRepository
	publisher event.Publisher
	logger    *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, publisher event.Publisher, logger *slog.Logger) *ProductService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// ListAll returns every product in stored order.
func (s *ProductService) ListAll(ctx context.Context) []domain.Product {
	return s.repo.All(ctx)
}

// ListProducts returns one page of products with paging metadata. A page past
// the end of the matching products yields an empty envelope.
func (s *ProductService) ListProducts(ctx context.Context, q repository.ProductQuery) (pagination.Result[domain.Product], error) {
	if q.Params.Page < 1 || q.Params.Limit < 1 {
		return pagination.Result[domain.Product]{}, apperrors.InvalidInput("page and limit must be positive")
	}
	if q.SortBy == "" {
		q.SortBy = domain.SortByID
	}
	if q.SortOrder == "" {
		q.SortOrder = domain.SortAsc
	}

	offset := q.Params.Offset()
	if offset >= s.repo.Count(ctx) {
		return pagination.Empty[domain.Product](q.Params), nil
	}

	items, total := s.repo.Query(ctx, q)
	if offset >= total {
		return pagination.Empty[domain.Product](q.Params), nil
	}

	return pagination.NewResult(items, total, q.Params), nil
}

// GetProduct retrieves a product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	product, ok := s.repo.GetByID(ctx, id)
	if !ok {
		return domain.Product{}, apperrors.NotFound(productResource)
	}
	return product, nil
}

// CreateProduct stores a new product. Any id on the input is ignored.
func (s *ProductService) CreateProduct(ctx context.Context, input domain.Product) (domain.Product, error) {
	input.ID = 0
	input.Typename = domain.TypenameProductInfo

	product, err := s.repo.Create(ctx, input)
	if err != nil {
		return domain.Product{}, apperrors.Internal(fmt.Errorf("create product: %w", err))
	}

	if err := s.publisher.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.Int64("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", product.ID),
		slog.String("name", product.Name),
	)

	return product, nil
}

// UpdateProduct merges patch into an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, patch domain.ProductPatch) (domain.Product, error) {
	if _, ok := s.repo.GetByID(ctx, id); !ok {
		return domain.Product{}, apperrors.NotFound(productResource)
	}

	product, found, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return domain.Product{}, apperrors.Internal(fmt.Errorf("update product: %w", err))
	}
	if !found {
		return domain.Product{}, apperrors.NotFound(productResource)
	}

	if err := s.publisher.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.Int64("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.Int64("product_id", product.ID),
	)

	return product, nil
}

// DeleteProduct removes an existing product.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) (DeleteResult, error) {
	if _, ok := s.repo.GetByID(ctx, id); !ok {
		return DeleteResult{}, apperrors.NotFound(productResource)
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return DeleteResult{}, apperrors.Internal(fmt.Errorf("delete product: %w", err))
	}
	if !removed {
		return DeleteResult{}, apperrors.NotFound(productResource)
	}

	if err := s.publisher.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.Int64("product_id", id),
	)

	return DeleteResult{ID: id}, nil
}
