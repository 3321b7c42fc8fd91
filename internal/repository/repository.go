package repository

import (
	"context"

	"github.com/utafrali/giftcard-catalog/internal/domain"
	"github.com/utafrali/giftcard-catalog/pkg/pagination"
)

// ProductQuery defines search, sort and paging criteria for listing products.
type ProductQuery struct {
	Search    string
	SortBy    domain.SortField
	SortOrder domain.SortOrder
	Params    pagination.Params
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Count returns the size of the whole collection.
	Count(ctx context.Context) int

	// All returns every product in stored order.
	All(ctx context.Context) []domain.Product

	// Query returns one page of products matching q and the filtered total.
	Query(ctx context.Context, q ProductQuery) ([]domain.Product, int)

	// GetByID retrieves a product by its identifier. The bool is false when absent.
	GetByID(ctx context.Context, id int64) (domain.Product, bool)

	// Create assigns an id, prepends the product and persists the collection.
	Create(ctx context.Context, product domain.Product) (domain.Product, error)

	// Update merges patch into the product with the given id. The bool is false
	// when no such product exists, in which case nothing is written.
	Update(ctx context.Context, id int64, patch domain.ProductPatch) (domain.Product, bool, error)

	// Delete removes the product with the given id and persists the collection,
	// even when nothing matched. The bool reports whether a product was removed.
	Delete(ctx context.Context, id int64) (bool, error)
}
