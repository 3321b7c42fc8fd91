// Package memory implements the product repository as an in-memory
// collection backed by a persisted snapshot.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/utafrali/giftcard-catalog/internal/domain"
	"github.com/utafrali/giftcard-catalog/internal/idgen"
	"github.com/utafrali/giftcard-catalog/internal/repository"
)

// Snapshotter loads and saves the whole collection.
type Snapshotter interface {
	Load(ctx context.Context) ([]domain.Product, error)
	Save(ctx context.Context, products []domain.Product) error
}

// Options tune query behaviour.
type Options struct {
	// SearchFields are matched against the search term. Defaults to name.
	SearchFields []domain.SearchField
	// Locale orders text sort fields. Defaults to English.
	Locale language.Tag
}

// ProductRepository implements repository.ProductRepository. It owns the
// collection for the process lifetime; every mutation is saved before it
// becomes visible.
type ProductRepository struct {
	mu       sync.RWMutex
	products []domain.Product

	store        Snapshotter
	ids          idgen.Generator
	searchFields []domain.SearchField
	locale       language.Tag
	size         prometheus.Gauge
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository loads the collection from store. reg may be nil.
func NewProductRepository(
	ctx context.Context,
	store Snapshotter,
	ids idgen.Generator,
	opts Options,
	reg prometheus.Registerer,
) (*ProductRepository, error) {
	products, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	if len(opts.SearchFields) == 0 {
		opts.SearchFields = []domain.SearchField{domain.SearchFieldName}
	}
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}

	r := &ProductRepository{
		products:     products,
		store:        store,
		ids:          ids,
		searchFields: slices.Clone(opts.SearchFields),
		locale:       opts.Locale,
		size: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "memory_store_products",
			Help: "Number of products held in memory",
		}),
	}
	r.size.Set(float64(len(products)))
	return r, nil
}

// Count returns the size of the whole collection.
func (r *ProductRepository) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products)
}

// All returns a copy of the collection in stored order.
func (r *ProductRepository) All(_ context.Context) []domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneAll(r.products)
}

// Query filters, sorts and paginates the collection. The returned total is
// the number of products that matched the search.
func (r *ProductRepository) Query(_ context.Context, q repository.ProductQuery) ([]domain.Product, int) {
	r.mu.RLock()
	matched := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if p.Matches(q.Search, r.searchFields) {
			matched = append(matched, p.Clone())
		}
	}
	r.mu.RUnlock()

	slices.SortStableFunc(matched, r.comparator(q.SortBy, q.SortOrder))

	total := len(matched)
	offset := q.Params.Offset()
	if offset < 0 || offset >= total {
		return []domain.Product{}, total
	}
	end := min(offset+q.Params.Limit, total)
	return matched[offset:end], total
}

// GetByID retrieves a product by id.
func (r *ProductRepository) GetByID(_ context.Context, id int64) (domain.Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		return r.products[i].Clone(), true
	}
	return domain.Product{}, false
}

// Create assigns a fresh id and prepends the product.
func (r *ProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := product.Clone()
	created.ID = r.nextID()

	next := make([]domain.Product, 0, len(r.products)+1)
	next = append(next, created)
	next = append(next, r.products...)

	if err := r.commit(ctx, next); err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}
	return created.Clone(), nil
}

// Update merges patch into the stored product.
func (r *ProductRepository) Update(ctx context.Context, id int64, patch domain.ProductPatch) (domain.Product, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.Product{}, false, nil
	}

	updated := r.products[i].Clone()
	patch.Apply(&updated)

	next := slices.Clone(r.products)
	next[i] = updated

	if err := r.commit(ctx, next); err != nil {
		return domain.Product{}, true, fmt.Errorf("update product: %w", err)
	}
	return updated.Clone(), true, nil
}

// Delete removes every product with the given id. The collection is saved
// even when nothing matched.
func (r *ProductRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := slices.DeleteFunc(slices.Clone(r.products), func(p domain.Product) bool {
		return p.ID == id
	})
	removed := len(next) != len(r.products)

	if err := r.commit(ctx, next); err != nil {
		return removed, fmt.Errorf("delete product: %w", err)
	}
	return removed, nil
}

// commit saves next and swaps it in. Callers hold the write lock.
func (r *ProductRepository) commit(ctx context.Context, next []domain.Product) error {
	if err := r.store.Save(ctx, next); err != nil {
		return err
	}
	r.products = next
	r.size.Set(float64(len(next)))
	return nil
}

// nextID draws ids until one is unused. Callers hold the lock.
func (r *ProductRepository) nextID() int64 {
	for {
		id := r.ids.NewID()
		if r.indexOf(id) < 0 {
			return id
		}
	}
}

func (r *ProductRepository) indexOf(id int64) int {
	return slices.IndexFunc(r.products, func(p domain.Product) bool {
		return p.ID == id
	})
}

// comparator returns the ordering for the given field and direction. Each
// call builds its own collator; collators are not safe for concurrent use.
func (r *ProductRepository) comparator(field domain.SortField, order domain.SortOrder) func(a, b domain.Product) int {
	var compare func(a, b domain.Product) int

	switch field {
	case domain.SortByGvtID:
		compare = func(a, b domain.Product) int { return cmp.Compare(a.GvtID, b.GvtID) }
	case domain.SortByName:
		c := collate.New(r.locale, collate.IgnoreCase)
		compare = func(a, b domain.Product) int { return c.CompareString(a.Name, b.Name) }
	case domain.SortByProductTitle:
		c := collate.New(r.locale, collate.IgnoreCase)
		compare = func(a, b domain.Product) int { return c.CompareString(a.ProductTitle, b.ProductTitle) }
	default:
		compare = func(a, b domain.Product) int { return cmp.Compare(a.ID, b.ID) }
	}

	if order == domain.SortDesc {
		return func(a, b domain.Product) int { return -compare(a, b) }
	}
	return compare
}

func cloneAll(products []domain.Product) []domain.Product {
	out := make([]domain.Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}
